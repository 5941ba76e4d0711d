package panicerr

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

// Safe wraps fn so that a panic comes back as an error.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// SafeContext is Safe for functions that take a context.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// Go runs a long-lived worker in its own goroutine. A panic or error is
// logged under name instead of crashing the process.
func Go(ctx context.Context, name string, fn func(context.Context) error) {
	go func() {
		if err := SafeContext(fn)(ctx); err != nil {
			slog.ErrorContext(ctx, "background worker stopped", "worker", name, "error", err)
		}
	}()
}
