package workflow

import "supportflow/internal/types"

type State string

const (
	StateClassifying State = "classifying"
	StateGathering   State = "gathering"
	StateResolving   State = "resolving"
	StateRouting     State = "routing"
	StateEscalating  State = "escalating"
	StateResponding  State = "responding"
	StateDone        State = "done"
)

// runState accumulates what each state produces. Steps receive it by value
// and return the updated copy; each step only sets the fields it owns.
type runState struct {
	ticket         types.Ticket
	classification types.Classification
	tools          types.ToolResultSet
	confidence     float64
	resolution     types.Resolution
	escalation     *types.EscalationPackage
	finalStatus    types.Status
	finalResponse  string
	trace          []string
}

func (s runState) visit(st State) runState {
	trace := make([]string, len(s.trace), len(s.trace)+1)
	copy(trace, s.trace)
	s.trace = append(trace, string(st))
	return s
}

func (s runState) outcome() types.WorkflowOutcome {
	return types.WorkflowOutcome{
		TicketID:         s.ticket.ID,
		FinalStatus:      s.finalStatus,
		FinalResponse:    s.finalResponse,
		Classification:   s.classification,
		ToolResults:      s.tools.Clone(),
		RagConfidence:    s.confidence,
		EscalationReason: s.resolution.EscalationReason,
		Escalation:       s.escalation,
		States:           s.trace,
	}
}
