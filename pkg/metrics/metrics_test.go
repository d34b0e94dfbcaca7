package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsDefaultsAddress(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "dbcore-test"})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}

func TestRegistererAttachesServiceLabel(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "dbcore-test"})

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_events_total",
		Help: "test counter",
	})
	m.Registerer.MustRegister(counter)
	counter.Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Len(t, families[0].Metric, 1)

	labels := families[0].Metric[0].Label
	require.Len(t, labels, 1)
	assert.Equal(t, "service", labels[0].GetName())
	assert.Equal(t, "dbcore-test", labels[0].GetValue())
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "dbcore-test"})

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_requests_total",
		Help: "test counter",
	})
	m.Registerer.MustRegister(counter)
	counter.Inc()

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_requests_total")
}
