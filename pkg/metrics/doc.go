// Package metrics provides the Prometheus registry and HTTP server shared by
// the module. The executor and ID generator register their collectors on the
// wrapped Registerer so every metric carries the service label.
package metrics
