package catalog

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type options struct {
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
}

// Option configures a catalog.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
