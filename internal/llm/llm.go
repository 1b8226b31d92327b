package llm

import (
	"context"
	"errors"
)

var ErrEmptyReply = errors.New("llm: empty reply from model")

// LLMClient turns a system instruction plus a user prompt into text.
type LLMClient interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
