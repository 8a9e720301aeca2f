package editor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/diagram"
)

// Handler executes a command against the editor state
type Handler interface {
	Handle(ctx context.Context, cmd Command) error
}

// HandlerFunc is an adapter to allow functions to be used as handlers
type HandlerFunc func(ctx context.Context, cmd Command) error

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Middleware wraps command dispatch. Middlewares must pass the context they
// receive on to next; Dispatch reads the applied state back through it.
type Middleware func(next Handler) Handler

type resultKey struct{}

// result carries the state a command produced out of the handler chain.
type result struct {
	state diagram.Snapshot
	set   bool
}

func withResult(ctx context.Context, r *result) context.Context {
	return context.WithValue(ctx, resultKey{}, r)
}

func resultFrom(ctx context.Context) *result {
	r, _ := ctx.Value(resultKey{}).(*result)
	return r
}

// Chain applies middlewares so the first one listed runs outermost
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Metrics receives editor observations
type Metrics interface {
	RecordCommand(command string, err error, duration time.Duration)
	RecordHistoryOp(op string, applied bool)
	SetHistoryDepth(past, future int)
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, cmd Command) error {
			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Warn("command rejected",
					zap.String("command", cmd.Name()),
					zap.Error(err))
			} else {
				logger.Debug("command applied", zap.String("command", cmd.Name()))
			}
			return err
		})
	}
}

// MetricsMiddleware times every command and counts outcomes
func MetricsMiddleware(m Metrics) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			m.RecordCommand(cmd.Name(), err, time.Since(start))
			return err
		})
	}
}
