package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportflow/internal/types"
)

func TestWorkflow_ObserveOutcome(t *testing.T) {
	m := NewWorkflow()
	pkg := types.EscalationPackage{Priority: types.PriorityHigh, PriorityLabel: "HIGH"}
	m.ObserveOutcome(types.WorkflowOutcome{
		FinalStatus:    types.StatusEscalated,
		Classification: types.Classification{Category: types.CategoryComplaint},
		Escalation:     &pkg,
		TicketSaved:    true,
	})
	m.ObserveOutcome(types.WorkflowOutcome{
		FinalStatus:    types.StatusResolved,
		Classification: types.Classification{Category: types.CategoryGeneral},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("escalated", "complaint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("resolved", "general")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.escalations.WithLabelValues("HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persisted.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persisted.WithLabelValues("failed")))
}

func TestWorkflow_Handler(t *testing.T) {
	m := NewWorkflow()
	m.ObserveState("classify", 120*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `supportflow_state_duration_seconds_count{state="classify"} 1`), body)
}
