package registry

import (
	"context"

	"github.com/healthdot/registry/internal/logging"
	"github.com/healthdot/registry/internal/server/models"
)

// Sink receives events after the mutation that produced them committed.
// Implementations must not block for long; the registry holds no lock while
// publishing but the caller is still waiting.
type Sink interface {
	Publish(ctx context.Context, events []*models.Event)
}

// LogSink writes committed events to the structured log. It is the default
// sink; external relays (webhooks, message buses) can replace it.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(l logging.Logger) *LogSink {
	return &LogSink{logger: l.With("module", "event_sink")}
}

func (s *LogSink) Publish(ctx context.Context, events []*models.Event) {
	for _, e := range events {
		s.logger.Info(ctx, "event",
			"kind", e.Kind, "token_id", e.TokenID,
			"from", e.From, "to", e.To,
			"owner", e.Owner, "delegate", e.Delegate,
			"operator", e.Operator, "approved", e.Approved,
		)
	}
}
