package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"supportflow/internal/pipeline"
	"supportflow/internal/types"
)

var ErrMissingDependency = errors.New("workflow: missing dependency")

type step func(ctx context.Context, s runState) (runState, State)

// Controller drives one ticket through the triage states. It is safe for
// concurrent use; every Process call owns its own runState.
type Controller struct {
	deps   Deps
	log    *zap.Logger
	tracer trace.Tracer
	steps  map[State]step
}

func New(deps Deps) (*Controller, error) {
	switch {
	case deps.Classifier == nil:
		return nil, fmt.Errorf("%w: classifier", ErrMissingDependency)
	case deps.Gatherer == nil:
		return nil, fmt.Errorf("%w: gatherer", ErrMissingDependency)
	case deps.Resolver == nil:
		return nil, fmt.Errorf("%w: resolver", ErrMissingDependency)
	case deps.Escalator == nil:
		return nil, fmt.Errorf("%w: escalator", ErrMissingDependency)
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: ticket store", ErrMissingDependency)
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = 5 * time.Second
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		deps:   deps,
		log:    log.Named("workflow"),
		tracer: otel.Tracer("supportflow/workflow"),
	}
	c.steps = map[State]step{
		StateClassifying: c.classify,
		StateGathering:   c.gather,
		StateResolving:   c.resolve,
		StateRouting:     c.route,
		StateEscalating:  c.escalate,
		StateResponding:  c.respond,
	}
	return c, nil
}

// Process runs the ticket to Done. It always returns an outcome with a final
// status; persistence problems are reported on the outcome, not as errors.
func (c *Controller) Process(ctx context.Context, ticket types.Ticket) types.WorkflowOutcome {
	ctx, span := c.tracer.Start(ctx, "ticket.process",
		trace.WithAttributes(attribute.String("ticket_id", ticket.ID)))
	defer span.End()

	s := runState{ticket: ticket}
	state := StateClassifying
	for state != StateDone {
		s, state = c.run(ctx, state, s)
	}
	s = s.visit(StateDone)

	out := s.outcome()
	c.persist(ctx, s.ticket, &out)
	c.afterDone(ctx, out)

	span.SetAttributes(
		attribute.String("final_status", string(out.FinalStatus)),
		attribute.String("category", string(out.Classification.Category)),
		attribute.Bool("ticket_saved", out.TicketSaved),
	)
	c.log.Info("ticket processed",
		zap.String("ticket_id", out.TicketID),
		zap.String("status", string(out.FinalStatus)),
		zap.String("category", string(out.Classification.Category)),
		zap.Float64("rag_confidence", out.RagConfidence),
		zap.String("reason", out.EscalationReason),
		zap.Bool("ticket_saved", out.TicketSaved),
	)
	return out
}

func (c *Controller) run(ctx context.Context, state State, s runState) (out runState, next State) {
	fn, ok := c.steps[state]
	if !ok {
		return internalEscalation(s, fmt.Sprintf("internal error: no transition from %s", state)), StateDone
	}
	ctx, span := c.tracer.Start(ctx, "state."+string(state))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("state panicked", zap.String("state", string(state)), zap.Any("panic", r))
			span.SetStatus(codes.Error, fmt.Sprint(r))
			out = internalEscalation(s.visit(state), fmt.Sprintf("internal error in %s: %v", state, r))
			next = StateDone
		}
		span.End()
		if c.deps.Metrics != nil {
			c.deps.Metrics.ObserveState(string(state), time.Since(start))
		}
	}()
	return fn(ctx, s.visit(state))
}

// internalEscalation hands the ticket to a human when the workflow itself
// failed. No model is called; the customer gets the generic holding message.
func internalEscalation(s runState, reason string) runState {
	s.resolution.Status = types.StatusEscalated
	s.resolution.EscalationReason = reason
	pkg := types.NewEscalationPackage(s.ticket, s.classification, s.tools, reason,
		pipeline.ComputePriority(s.classification, reason), s.resolution.ResponseText, pipeline.GenericHoldingMessage)
	s.escalation = &pkg
	s.finalStatus = types.StatusEscalated
	s.finalResponse = pkg.CustomerMessage
	return s
}

func (c *Controller) classify(ctx context.Context, s runState) (runState, State) {
	s.classification = c.deps.Classifier.Classify(ctx, s.ticket.Subject, s.ticket.Description)
	return s, StateGathering
}

func (c *Controller) gather(ctx context.Context, s runState) (runState, State) {
	s.tools, s.confidence = c.deps.Gatherer.Gather(ctx, s.ticket, s.classification)
	if s.tools.OffTopic() {
		s.resolution = types.Resolution{
			Status:       types.StatusResolved,
			ResponseText: pipeline.OffTopicResponse,
		}
		return s, StateRouting
	}
	return s, StateResolving
}

func (c *Controller) resolve(ctx context.Context, s runState) (runState, State) {
	s.resolution = c.deps.Resolver.Resolve(ctx, s.ticket, s.classification, s.tools)
	s.confidence = s.resolution.RagConfidence
	return s, StateRouting
}

func (c *Controller) route(_ context.Context, s runState) (runState, State) {
	if s.resolution.Escalated() {
		return s, StateEscalating
	}
	return s, StateResponding
}

func (c *Controller) escalate(ctx context.Context, s runState) (runState, State) {
	pkg := c.deps.Escalator.Package(ctx, s.ticket, s.classification, s.tools,
		s.resolution.EscalationReason, s.resolution.ResponseText)
	s.escalation = &pkg
	s.finalStatus = types.StatusEscalated
	s.finalResponse = pkg.CustomerMessage
	return s, StateDone
}

func (c *Controller) respond(_ context.Context, s runState) (runState, State) {
	s.finalStatus = types.StatusResolved
	s.finalResponse = s.resolution.ResponseText
	return s, StateDone
}

func (c *Controller) persist(ctx context.Context, ticket types.Ticket, out *types.WorkflowOutcome) {
	// The outcome is decided; a caller that went away must not lose the record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.deps.PersistTimeout)
	defer cancel()
	rec := TicketRecord(ticket, *out)
	if err := c.deps.Store.CreateTicket(ctx, rec); err != nil {
		out.TicketSaved = false
		out.TicketSaveError = err.Error()
		c.log.Warn("ticket save failed", zap.String("ticket_id", out.TicketID), zap.Error(err))
		return
	}
	out.TicketSaved = true
}

func (c *Controller) afterDone(ctx context.Context, out types.WorkflowOutcome) {
	ctx = context.WithoutCancel(ctx)
	if c.deps.Archive != nil && out.Escalation != nil {
		actx, cancel := context.WithTimeout(ctx, c.deps.PersistTimeout)
		key, err := c.deps.Archive.Put(actx, *out.Escalation)
		cancel()
		if err != nil {
			c.log.Warn("escalation archive failed", zap.String("ticket_id", out.TicketID), zap.Error(err))
		} else {
			c.log.Debug("escalation archived", zap.String("ticket_id", out.TicketID), zap.String("key", key))
		}
	}
	if c.deps.Publisher != nil {
		pctx, cancel := context.WithTimeout(ctx, c.deps.PersistTimeout)
		err := c.deps.Publisher.Publish(pctx, out)
		cancel()
		if err != nil {
			c.log.Warn("outcome publish failed", zap.String("ticket_id", out.TicketID), zap.Error(err))
		}
	}
	if c.deps.Metrics != nil {
		c.deps.Metrics.ObserveOutcome(out)
	}
}
