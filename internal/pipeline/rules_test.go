package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	types "supportflow/internal/types"
)

func baseInput() RuleInput {
	return RuleInput{
		Classification: types.Classification{
			Category:  types.CategoryGeneral,
			Urgency:   types.UrgencyMedium,
			Sentiment: types.SentimentNeutral,
		},
		RagConfidence: 0.9,
		KBResultCount: 3,
		ResponseText:  "You can download your tickets from My Reservations.",
		Tools:         types.ToolResultSet{types.ToolKBResults: types.OK([]types.KBArticle{article("kb-1", 0.9)})},
	}
}

func TestRuleEngine_Decide(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RuleInput)
		want   bool
		reason string
	}{
		{"resolved", func(*RuleInput) {}, false, ""},
		{"complaint always escalates", func(in *RuleInput) {
			in.Classification.Category = types.CategoryComplaint
			in.RagConfidence = 1
		}, true, "complaints require human review"},
		{"complaint beats low confidence", func(in *RuleInput) {
			in.Classification.Category = types.CategoryComplaint
			in.RagConfidence = 0.1
			in.KBResultCount = 0
		}, true, "complaints require human review"},
		{"low confidence", func(in *RuleInput) { in.RagConfidence = 0.3 },
			true, "low knowledge base confidence (0.30)"},
		{"no kb results", func(in *RuleInput) { in.KBResultCount = 0 },
			true, "no relevant knowledge base articles found"},
		{"hedging", func(in *RuleInput) {
			in.ResponseText = "Sorry, I Don't Have Enough Information to answer."
		}, true, "response indicates need for specialist assistance"},
		{"critical negative", func(in *RuleInput) {
			in.Classification.Urgency = types.UrgencyCritical
			in.Classification.Sentiment = types.SentimentNegative
			in.RagConfidence = 0.65
		}, true, "critical negative issue with moderate knowledge base confidence (0.65)"},
		{"critical negative with strong confidence", func(in *RuleInput) {
			in.Classification.Urgency = types.UrgencyCritical
			in.Classification.Sentiment = types.SentimentNegative
			in.RagConfidence = 0.75
		}, false, ""},
		{"tool error in refund", func(in *RuleInput) {
			in.Classification.Category = types.CategoryRefund
			in.Tools[types.ToolCallerReservations] = types.ToolResult{Err: "connection refused"}
		}, true, "tool error in critical category: error: connection refused"},
		{"tool error ignored outside money categories", func(in *RuleInput) {
			in.Tools[types.ToolCallerReservations] = types.ToolResult{Err: "connection refused"}
		}, false, ""},
		{"raw substring match on string payload", func(in *RuleInput) {
			in.Classification.Category = types.CategoryCancellation
			in.Tools["notes"] = types.OK("Shows an Error message at checkout")
		}, true, "tool error in critical category: Shows an Error message at checkout"},
	}
	e := NewRuleEngine()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mutate(&in)
			got, reason := e.Decide(in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestRuleEngine_LowConfidenceReasonCarriesValue(t *testing.T) {
	e := NewRuleEngine()
	for _, c := range []float64{0, 0.12, 0.3, 0.49} {
		in := baseInput()
		in.RagConfidence = c
		esc, reason := e.Decide(in)
		assert.True(t, esc)
		assert.Contains(t, reason, "confidence (0.")
	}
}

func TestRuleEngine_ToolErrorExcerptIsTruncated(t *testing.T) {
	in := baseInput()
	in.Classification.Category = types.CategoryRefund
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	in.Tools[types.ToolCallerInfo] = types.ToolResult{Err: string(long)}
	esc, reason := NewRuleEngine().Decide(in)
	assert.True(t, esc)
	assert.Len(t, reason, len("tool error in critical category: ")+maxToolErrorExcerpt)
}

func TestRuleEngine_Order(t *testing.T) {
	assert.Equal(t, []string{
		"complaint", "low_confidence", "no_kb_results",
		"hedging_response", "critical_negative", "tool_error",
	}, NewRuleEngine().Rules())
}
