// Package metrics exposes Prometheus collectors for the ticket workflow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"supportflow/internal/types"
)

const namespace = "supportflow"

// Workflow records state timings and outcomes on its own registry so tests
// and multiple engines never collide on the default one.
type Workflow struct {
	reg *prometheus.Registry

	stateDuration *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
	escalations   *prometheus.CounterVec
	persisted     *prometheus.CounterVec
	ragConfidence prometheus.Histogram
}

func NewWorkflow() *Workflow {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Workflow{
		reg: reg,
		stateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "state_duration_seconds",
			Help:      "Time spent in each workflow state.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"state"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_total",
			Help:      "Processed tickets by final status and category.",
		}, []string{"status", "category"}),
		escalations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Escalated tickets by priority label.",
		}, []string{"priority"}),
		persisted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_writes_total",
			Help:      "Final ticket record writes by result.",
		}, []string{"result"}),
		ragConfidence: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rag_confidence",
			Help:      "Best knowledge base relevance per ticket.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}

func (w *Workflow) ObserveState(state string, took time.Duration) {
	w.stateDuration.WithLabelValues(state).Observe(took.Seconds())
}

func (w *Workflow) ObserveOutcome(o types.WorkflowOutcome) {
	w.outcomes.WithLabelValues(string(o.FinalStatus), string(o.Classification.Category)).Inc()
	if o.Escalation != nil {
		w.escalations.WithLabelValues(o.Escalation.PriorityLabel).Inc()
	}
	result := "saved"
	if !o.TicketSaved {
		result = "failed"
	}
	w.persisted.WithLabelValues(result).Inc()
	w.ragConfidence.Observe(o.RagConfidence)
}

func (w *Workflow) Registry() *prometheus.Registry { return w.reg }

func (w *Workflow) Handler() http.Handler {
	return promhttp.HandlerFor(w.reg, promhttp.HandlerOpts{Registry: w.reg})
}
