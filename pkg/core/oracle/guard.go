package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/metrics"
)

// DefaultTimeout bounds a single oracle call.
const DefaultTimeout = 30 * time.Second

// Guard wraps a Generator with a timeout, logging and metrics.
type Guard struct {
	gen     Generator
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

type GuardOption func(*Guard)

func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) GuardOption {
	return func(g *Guard) { g.metrics = m }
}

// NewGuard returns a Guard around gen. A nil gen makes every call fall back.
func NewGuard(gen Generator, opts ...GuardOption) *Guard {
	g := &Guard{gen: gen, timeout: DefaultTimeout, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.Named("oracle")
	return g
}

// Timeout reports the per-call bound.
func (g *Guard) Timeout() time.Duration {
	if g == nil {
		return DefaultTimeout
	}
	return g.timeout
}

type panicError struct{ value any }

func (p *panicError) Error() string { return fmt.Sprintf("generator panicked: %v", p.value) }

// Structured asks the guarded generator for a T. Any failure returns
// fallback; Structured itself never fails.
func Structured[T any](ctx context.Context, g *Guard, req Request, fallback T) T {
	if g == nil || g.gen == nil {
		return fallback
	}

	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		g.metrics.ObserveOracle(req.Role, outcome, time.Since(start))
	}()

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: &panicError{value: r}}
			}
		}()
		var v T
		err := g.gen.GenerateStructured(cctx, req, &v)
		ch <- result{val: v, err: err}
	}()

	select {
	case r := <-ch:
		if r.err == nil {
			return r.val
		}
		var pe *panicError
		switch {
		case errors.As(r.err, &pe):
			outcome = metrics.OutcomePanic
		case errors.Is(r.err, context.DeadlineExceeded):
			outcome = metrics.OutcomeTimeout
		default:
			outcome = metrics.OutcomeFallback
		}
		g.log.Warn("oracle call failed, using fallback",
			zap.String("role", req.Role),
			zap.String("outcome", outcome),
			zap.Error(r.err),
		)
		return fallback
	case <-cctx.Done():
		outcome = metrics.OutcomeTimeout
		if !errors.Is(cctx.Err(), context.DeadlineExceeded) {
			outcome = metrics.OutcomeFallback
		}
		g.log.Warn("oracle call abandoned, using fallback",
			zap.String("role", req.Role),
			zap.Duration("timeout", g.timeout),
			zap.Error(cctx.Err()),
		)
		return fallback
	}
}
