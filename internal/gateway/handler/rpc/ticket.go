// Package rpc exposes ticket processing as a Connect procedure. Messages are
// google.protobuf.Struct so clients need no generated stubs.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"supportflow/internal/types"
)

const (
	ServiceName            = "supportflow.v1.TicketService"
	ProcessTicketProcedure = "/" + ServiceName + "/ProcessTicket"
)

type Processor interface {
	Process(ctx context.Context, ticket types.Ticket) types.WorkflowOutcome
}

type TicketHandler struct {
	proc Processor
}

func NewTicketHandler(proc Processor) *TicketHandler {
	return &TicketHandler{proc: proc}
}

// Handler returns the mount path and handler, like generated Connect code.
func (h *TicketHandler) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	return ProcessTicketProcedure, connect.NewUnaryHandler(ProcessTicketProcedure, h.ProcessTicket, opts...)
}

func (h *TicketHandler) ProcessTicket(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	ticket, err := ticketFromStruct(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	out := h.proc.Process(ctx, ticket)
	msg, err := outcomeToStruct(out)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func ticketFromStruct(s *structpb.Struct) (types.Ticket, error) {
	raw := func(name string) string { return s.GetFields()[name].GetStringValue() }
	field := func(name string) string { return strings.TrimSpace(raw(name)) }
	subject, description := raw("subject"), raw("description")
	if strings.TrimSpace(subject) == "" && strings.TrimSpace(description) == "" {
		return types.Ticket{}, errors.New("subject or description is required")
	}
	id := field("ticket_id")
	if id == "" {
		id = types.NewTicketID("TKT")
	}
	return types.NewTicket(id, subject, description, field("caller_email"), field("reservation_id")), nil
}

func outcomeToStruct(out types.WorkflowOutcome) (*structpb.Struct, error) {
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal outcome: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return structpb.NewStruct(m)
}
