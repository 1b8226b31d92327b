package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"supportflow/internal/llm"
	types "supportflow/internal/types"
)

func TestComputePriority(t *testing.T) {
	tests := []struct {
		name   string
		cls    types.Classification
		reason string
		want   types.Priority
	}{
		{"critical wins over everything", types.Classification{Urgency: types.UrgencyCritical, Sentiment: types.SentimentNegative, Category: types.CategoryRefund}, "low knowledge base confidence (0.10)", types.PriorityCritical},
		{"complaint", types.Classification{Urgency: types.UrgencyLow, Category: types.CategoryComplaint}, "", types.PriorityCritical},
		{"high negative", types.Classification{Urgency: types.UrgencyHigh, Sentiment: types.SentimentNegative}, "", types.PriorityHigh},
		{"high neutral", types.Classification{Urgency: types.UrgencyHigh, Sentiment: types.SentimentNeutral}, "", types.PriorityMedium},
		{"medium", types.Classification{Urgency: types.UrgencyMedium}, "", types.PriorityMedium},
		{"low with confidence reason", types.Classification{Urgency: types.UrgencyLow}, "low knowledge base Confidence (0.30)", types.PriorityMedium},
		{"low", types.Classification{Urgency: types.UrgencyLow}, "no relevant knowledge base articles found", types.PriorityLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputePriority(tc.cls, tc.reason))
		})
	}
}

func TestComputePriority_IsTotal(t *testing.T) {
	reasons := []string{"", "complaints require human review", "low knowledge base confidence (0.20)", "resolution error: boom"}
	for _, c := range types.Categories {
		for _, u := range types.Urgencies {
			for _, s := range types.Sentiments {
				for _, r := range reasons {
					p := ComputePriority(types.Classification{Category: c, Urgency: u, Sentiment: s}, r)
					assert.GreaterOrEqual(t, int(p), 1)
					assert.LessOrEqual(t, int(p), 4)
					if u == types.UrgencyCritical {
						assert.Equal(t, types.PriorityCritical, p)
					}
				}
			}
		}
	}
}

func TestEscalator_PackageUsesModelMessage(t *testing.T) {
	f := llm.NewFakeClient().SetReply(llm.PhaseEscalate, "  We're on it, a specialist will reach out.  ")
	e := &Escalator{LLM: f}
	cls := types.Classification{Category: types.CategoryComplaint, Urgency: types.UrgencyMedium, Sentiment: types.SentimentNegative, Summary: "rude staff"}
	tools := types.ToolResultSet{types.ToolKBResults: types.OK([]types.KBArticle{})}

	pkg := e.Package(context.Background(), types.NewTicket("T-9", "Rude staff", "Staff was rude", "", ""), cls, tools,
		"complaints require human review", "draft answer")

	assert.Equal(t, types.PriorityCritical, pkg.Priority)
	assert.Equal(t, "CRITICAL", pkg.PriorityLabel)
	assert.True(t, pkg.ResolverAttempted)
	assert.Equal(t, "We're on it, a specialist will reach out.", pkg.CustomerMessage)
	assert.Equal(t, "T-9", pkg.Ticket.ID)
	assert.Contains(t, f.Calls()[0].Prompt, "Escalation reason: complaints require human review")

	tools[types.ToolCallerInfo] = types.OK("late write")
	_, ok := pkg.ToolResults[types.ToolCallerInfo]
	assert.False(t, ok)
}

func TestEscalator_FallsBackToGenericMessage(t *testing.T) {
	f := llm.NewFakeClient().SetError(llm.PhaseEscalate, errors.New("timeout"))
	pkg := (&Escalator{LLM: f}).Package(context.Background(), types.NewTicket("T", "s", "d", "", ""),
		types.Classification{Urgency: types.UrgencyLow}, nil, "no relevant knowledge base articles found", "")

	assert.Equal(t, GenericHoldingMessage, pkg.CustomerMessage)
	assert.Equal(t, types.PriorityLow, pkg.Priority)
	assert.False(t, pkg.ResolverAttempted)
}
