package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncCaseCreated()
	m.IncCaseCreated()
	m.IncCreationConflict("still_valid")
	m.IncTransition("Completed", "worker")
	m.IncAIVerdict("rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CasesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CreationConflicts.WithLabelValues("still_valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("Completed", "worker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AIVerdicts.WithLabelValues("rejected")))

	m.ObserveExternal("analyzer", 200*time.Millisecond)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCaseCreated()
		m.IncCreationConflict("active_request")
		m.IncTransition("Rejected", "ai")
		m.IncAssignment("ok")
		m.IncAIVerdict("accepted")
		m.ObserveExternal("renderer", time.Second)
	})
}
