package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Middleware decorates an LLMClient with a cross-cutting concern.
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Timeout --------

// Timeout bounds every call. A non-positive d disables it.
func Timeout(d time.Duration) Middleware {
	return func(next LLMClient) LLMClient {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next LLMClient
	d    time.Duration
}

func (c *timed) Name() string { return c.next.Name() }
func (c *timed) Close() error { return c.next.Close() }
func (c *timed) Generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	out, err := c.next.Generate(ctx, system, prompt)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("llm %s: timed out after %s: %w", c.next.Name(), c.d, err)
	}
	return out, err
}

// -------- Rate limiting --------

// RateLimit throttles calls to rps with the given burst. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next LLMClient) LLMClient {
		rl := newRPSLimiter(rps, burst)
		if rl == nil {
			return next
		}
		return &rateLimited{next: next, rl: rl}
	}
}

type rateLimited struct {
	next LLMClient
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}
func (c *rateLimited) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Generate(ctx, system, prompt)
}

// -------- Retry with exponential backoff --------

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent errors and context cancellation stop it.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next LLMClient) LLMClient {
		if maxAttempts == 1 {
			return next
		}
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }
func (r *retrying) Generate(ctx context.Context, system, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Generate(ctx, system, prompt)
		if err == nil {
			return out, nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs request size, latency and errors per phase.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger.Named("llm")}
	}
}

type logging struct {
	next LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) Generate(ctx context.Context, system, prompt string) (string, error) {
	phase := PhaseFrom(ctx)
	start := time.Now()
	out, err := l.next.Generate(ctx, system, prompt)
	fields := []zap.Field{
		zap.String("client", l.next.Name()),
		zap.String("phase", phase),
		zap.Int("request_bytes", len(system)+len(prompt)),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		l.log.Warn("llm call failed", append(fields, zap.Error(err))...)
		return out, err
	}
	l.log.Debug("llm call", append(fields, zap.Int("reply_bytes", len(out)))...)
	return out, nil
}
