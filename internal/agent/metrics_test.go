package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetricsDefaultsToStdoutExporter(t *testing.T) {
	m, err := NewMetrics("")
	require.NoError(t, err)
	require.NotNil(t, m.Provider)
	require.NotNil(t, m.Meter)
	require.NotNil(t, m.Registry)
	require.NotNil(t, m.HTTPRequests)
	require.NotNil(t, m.QueryDuration)
	require.NotNil(t, m.InjectAttach)

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	m.Shutdown(context.Background())
}

func TestMetricsCountersAreUsable(t *testing.T) {
	m, err := NewMetrics("")
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	m.HTTPRequests.Inc()
	m.QueryDuration.Observe(12.5)
	m.InjectAttach.WithLabelValues("ok").Inc()
}
