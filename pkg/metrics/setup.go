package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus registry and the HTTP server that exposes it.
// The Registerer carries the service label and is what the executor and ID
// generator register their collectors on.
type Metrics struct {
	Server      *http.Server
	Registry    *prometheus.Registry
	Registerer  prometheus.Registerer
	serviceName string
}

// NewMetrics creates a registry wrapped with the service label and an HTTP
// server serving it on the configured address.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	server := &http.Server{
		Addr:    address,
		Handler: handler,
	}

	return &Metrics{
		Server:      server,
		Registry:    registry,
		Registerer:  wrappedRegistry,
		serviceName: cfg.ServiceName,
	}
}
