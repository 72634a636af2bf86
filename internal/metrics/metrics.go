package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case engine. All methods are safe
// on a nil receiver.
type Metrics struct {
	// Cases opened
	CasesCreated prometheus.Counter

	// Creation attempts refused by the gate, by reason
	CreationConflicts *prometheus.CounterVec

	// Status transitions by target status and trigger
	StatusTransitions *prometheus.CounterVec

	// Assignment outcomes
	Assignments *prometheus.CounterVec

	// AI verdicts by outcome
	AIVerdicts *prometheus.CounterVec

	// Latency of external collaborator calls
	ExternalLatency *prometheus.HistogramVec
}

// New registers every case metric with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CasesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "kycflow_cases_created_total",
			Help: "Total KYC cases opened",
		}),

		CreationConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycflow_case_creation_conflicts_total",
			Help: "Case creation attempts refused by the active or still-valid gate",
		}, []string{"reason"}),

		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycflow_case_status_transitions_total",
			Help: "Case status transitions by target status and trigger",
		}, []string{"status", "trigger"}), // trigger: "worker", "ai", "assignment"

		Assignments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycflow_case_assignments_total",
			Help: "Case assignment attempts by outcome",
		}, []string{"outcome"}),

		AIVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycflow_ai_verdicts_total",
			Help: "AI document verdicts by outcome",
		}, []string{"outcome"}),

		ExternalLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycflow_external_call_duration_seconds",
			Help:    "Duration of analyzer, renderer and storage calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"collaborator"}),
	}
}

func (m *Metrics) IncCaseCreated() {
	if m != nil {
		m.CasesCreated.Inc()
	}
}

func (m *Metrics) IncCreationConflict(reason string) {
	if m != nil {
		m.CreationConflicts.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncTransition(status, trigger string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(status, trigger).Inc()
	}
}

func (m *Metrics) IncAssignment(outcome string) {
	if m != nil {
		m.Assignments.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncAIVerdict(outcome string) {
	if m != nil {
		m.AIVerdicts.WithLabelValues(outcome).Inc()
	}
}

// ObserveExternal records how long a collaborator call took
func (m *Metrics) ObserveExternal(collaborator string, d time.Duration) {
	if m != nil {
		m.ExternalLatency.WithLabelValues(collaborator).Observe(d.Seconds())
	}
}
