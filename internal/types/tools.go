package types

import (
	"sort"
	"strings"
)

// Lookup names used as keys of a ToolResultSet.
const (
	ToolKBResults          = "kb_results"
	ToolCallerInfo         = "caller_info"
	ToolCallerReservations = "caller_reservations"
	ToolCallerTickets      = "caller_support_tickets"
	ToolReservationInfo    = "reservation_info"
	ToolOffTopic           = "off_topic"
)

// ToolResult is either a successful payload or an error marker, never both.
type ToolResult struct {
	Payload any    `json:"payload,omitempty"`
	Err     string `json:"error,omitempty"`
}

func OK(payload any) ToolResult { return ToolResult{Payload: payload} }

func Failed(err error) ToolResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ToolResult{Err: msg}
}

func (r ToolResult) Failed() bool { return r.Err != "" }

// Text is the string form consulted by the escalation rules. Error markers
// render as "error: <message>"; string payloads are returned as is; any
// other payload has no text form.
func (r ToolResult) Text() (string, bool) {
	if r.Failed() {
		return "error: " + r.Err, true
	}
	if s, ok := r.Payload.(string); ok {
		return s, true
	}
	return "", false
}

// ToolResultSet maps a lookup name to its result. Built once per ticket.
type ToolResultSet map[string]ToolResult

// Clone returns a shallow copy so that holders cannot mutate each other's view.
func (s ToolResultSet) Clone() ToolResultSet {
	if s == nil {
		return nil
	}
	out := make(ToolResultSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s ToolResultSet) Get(key string) (ToolResult, bool) {
	r, ok := s[key]
	return r, ok
}

// OffTopic reports whether the set is the off-topic short-circuit marker.
func (s ToolResultSet) OffTopic() bool {
	r, ok := s[ToolOffTopic]
	if !ok {
		return false
	}
	v, _ := r.Payload.(bool)
	return v
}

// KBArticles returns the knowledge-base matches, best first.
func (s ToolResultSet) KBArticles() []KBArticle {
	r, ok := s[ToolKBResults]
	if !ok || r.Failed() {
		return nil
	}
	arts, _ := r.Payload.([]KBArticle)
	return arts
}

// Keys returns the lookup names in sorted order.
func (s ToolResultSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FailedKeys returns the lookups that ended with an error marker.
func (s ToolResultSet) FailedKeys() []string {
	var out []string
	for _, k := range s.Keys() {
		if s[k].Failed() {
			out = append(out, k)
		}
	}
	return out
}

// FirstTextContaining returns the first text value (in key order) that
// contains needle, compared case-insensitively.
func (s ToolResultSet) FirstTextContaining(needle string) (string, string, bool) {
	needle = strings.ToLower(needle)
	for _, k := range s.Keys() {
		text, ok := s[k].Text()
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(text), needle) {
			return k, text, true
		}
	}
	return "", "", false
}
