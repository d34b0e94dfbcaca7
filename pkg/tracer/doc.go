// Package tracer installs the OpenTelemetry tracer provider used by the
// statement executor.
//
// The provider is set globally; instrumented packages obtain their tracer via
// otel.Tracer and need no reference to this package. When export is disabled
// the provider still records spans locally, which keeps instrumentation
// harmless in environments without a collector.
package tracer
