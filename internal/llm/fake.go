package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Phases issued by the triage pipeline. FakeClient keys scripted replies on them.
const (
	PhaseClassify = "classify"
	PhaseResolve  = "resolve"
	PhaseEscalate = "escalate"
)

// FakeCall records one Generate invocation.
type FakeCall struct {
	Phase  string
	System string
	Prompt string
}

// FakeClient returns deterministic replies per phase for offline runs and tests.
// Scripted replies and errors take precedence over the keyword heuristics.
type FakeClient struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []FakeCall
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		replies: map[string]string{},
		errs:    map[string]error{},
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// SetReply scripts the raw reply text for a phase.
func (f *FakeClient) SetReply(phase, reply string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[phase] = reply
	return f
}

// SetError makes every call in phase fail with err.
func (f *FakeClient) SetError(phase string, err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[phase] = err
	return f
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor counts recorded calls for one phase.
func (f *FakeClient) CallsFor(phase string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Phase == phase {
			n++
		}
	}
	return n
}

func (f *FakeClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Phase: phase, System: system, Prompt: prompt})
	err := f.errs[phase]
	reply, scripted := f.replies[phase]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}
	if scripted {
		return reply, nil
	}
	switch phase {
	case PhaseClassify:
		return fakeClassification(prompt), nil
	case PhaseResolve:
		return "Thanks for reaching out. Based on our help articles, here is what you can do: " +
			"open My Reservations, select the booking and follow the steps shown there. " +
			"Let us know if anything else comes up.", nil
	case PhaseEscalate:
		return "Thank you for your patience. I've passed your request to a specialist on our team, " +
			"and they will follow up with you shortly.", nil
	}
	return "", ErrEmptyReply
}

var fakeCategoryWords = []struct {
	category string
	words    []string
}{
	{"off_topic", []string{"weather", "recipe", "poem", "stock price", "homework"}},
	{"complaint", []string{"terrible", "worst", "unacceptable", "complain", "furious"}},
	{"refund", []string{"refund", "money back", "reimburse"}},
	{"cancellation", []string{"cancel"}},
	{"payment", []string{"charged", "payment", "card", "invoice"}},
	{"technical", []string{"error", "crash", "bug", "not loading", "app"}},
	{"account", []string{"password", "login", "account", "email address"}},
	{"ticket", []string{"ticket", "qr code", "seat"}},
	{"reservation", []string{"reservation", "booking", "booked"}},
	{"event_inquiry", []string{"event", "venue", "lineup", "start time"}},
}

func fakeClassification(prompt string) string {
	p := strings.ToLower(prompt)
	category := "general"
	for _, c := range fakeCategoryWords {
		for _, w := range c.words {
			if strings.Contains(p, w) {
				category = c.category
				break
			}
		}
		if category != "general" {
			break
		}
	}
	urgency := "medium"
	switch {
	case strings.Contains(p, "urgent") || strings.Contains(p, "tonight") || strings.Contains(p, "immediately"):
		urgency = "critical"
	case strings.Contains(p, "asap") || strings.Contains(p, "today"):
		urgency = "high"
	case strings.Contains(p, "whenever") || strings.Contains(p, "just wondering"):
		urgency = "low"
	}
	sentiment := "neutral"
	switch {
	case strings.Contains(p, "furious") || strings.Contains(p, "unacceptable"):
		sentiment = "negative"
	case strings.Contains(p, "disappointed") || strings.Contains(p, "annoyed") || strings.Contains(p, "terrible"):
		sentiment = "negative"
	case strings.Contains(p, "thanks") || strings.Contains(p, "love"):
		sentiment = "positive"
	}
	b, _ := json.Marshal(map[string]string{
		"category":  category,
		"urgency":   urgency,
		"sentiment": sentiment,
		"summary":   "Customer request about " + strings.ReplaceAll(category, "_", " ") + ".",
	})
	return string(b)
}
