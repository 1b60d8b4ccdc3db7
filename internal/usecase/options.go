package usecase

import (
	"io"
	"log/slog"
	"time"
)

// base carries the logger and clock shared by the use cases.
type base struct {
	log *slog.Logger
	now func() time.Time
}

func newBase() base {
	return base{
		log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now: time.Now,
	}
}

// Option configures the logger and clock of a use case.
type Option func(*base)

func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

func apply(b *base, opts []Option) {
	for _, opt := range opts {
		opt(b)
	}
}
