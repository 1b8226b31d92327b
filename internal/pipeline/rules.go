package pipeline

import (
	"fmt"
	"strings"

	t "supportflow/internal/types"
)

// RuleInput is everything the escalation rules look at.
type RuleInput struct {
	Classification t.Classification
	RagConfidence  float64
	KBResultCount  int
	ResponseText   string
	Tools          t.ToolResultSet
}

// Rule is one predicate of the escalation policy. Match returns the reason
// and true when the rule fires.
type Rule struct {
	Name  string
	Match func(in RuleInput) (string, bool)
}

// RuleEngine evaluates its rules top-down; the first match wins.
type RuleEngine struct {
	rules []Rule
}

// HedgingPhrases mark a response where the model itself admits it cannot help.
var HedgingPhrases = []string{
	"don't have enough information",
	"don't have that information",
	"connect you with a specialist",
	"unable to resolve",
	"need to escalate",
	"let me connect you",
}

const maxToolErrorExcerpt = 100

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{rules: DefaultRules()}
}

// NewRuleEngineWith builds an engine over a custom rule list.
func NewRuleEngineWith(rules ...Rule) *RuleEngine {
	return &RuleEngine{rules: append([]Rule(nil), rules...)}
}

// DefaultRules returns the escalation policy in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "complaint", Match: func(in RuleInput) (string, bool) {
			return "complaints require human review", in.Classification.Category == t.CategoryComplaint
		}},
		{Name: "low_confidence", Match: func(in RuleInput) (string, bool) {
			if in.RagConfidence < 0.5 {
				return fmt.Sprintf("low knowledge base confidence (%.2f)", in.RagConfidence), true
			}
			return "", false
		}},
		{Name: "no_kb_results", Match: func(in RuleInput) (string, bool) {
			return "no relevant knowledge base articles found", in.KBResultCount == 0
		}},
		{Name: "hedging_response", Match: func(in RuleInput) (string, bool) {
			lower := strings.ToLower(in.ResponseText)
			for _, p := range HedgingPhrases {
				if strings.Contains(lower, p) {
					return "response indicates need for specialist assistance", true
				}
			}
			return "", false
		}},
		{Name: "critical_negative", Match: func(in RuleInput) (string, bool) {
			c := in.Classification
			if c.Urgency == t.UrgencyCritical && c.Sentiment == t.SentimentNegative && in.RagConfidence < 0.7 {
				return fmt.Sprintf("critical negative issue with moderate knowledge base confidence (%.2f)", in.RagConfidence), true
			}
			return "", false
		}},
		{Name: "tool_error", Match: func(in RuleInput) (string, bool) {
			if !in.Classification.Category.In(t.CategoryRefund, t.CategoryCancellation) {
				return "", false
			}
			// Raw substring match: legitimate text containing "error" also fires.
			_, text, ok := in.Tools.FirstTextContaining("error")
			if !ok {
				return "", false
			}
			return "tool error in critical category: " + truncateRunes(text, maxToolErrorExcerpt), true
		}},
	}
}

// Decide returns whether to escalate and why. Resolved tickets get an empty reason.
func (e *RuleEngine) Decide(in RuleInput) (bool, string) {
	for _, r := range e.rules {
		if reason, ok := r.Match(in); ok {
			return true, reason
		}
	}
	return false, ""
}

// Rules lists the rule names in evaluation order.
func (e *RuleEngine) Rules() []string {
	out := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.Name)
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
