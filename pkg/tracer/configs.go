package tracer

// Config controls the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName identifies this service in exported traces.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is recorded as the deployment environment resource attribute.
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport controls whether spans are exported over OTLP HTTP.
	// When false the provider is still installed globally so instrumented
	// code records spans, but nothing leaves the process.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
