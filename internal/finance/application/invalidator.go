package application

import (
	"context"

	"github.com/sebuszqo/FinanceTracker/internal/events"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/log"
)

// ChangeNotifier is told about every successful write.
type ChangeNotifier interface {
	Changed(ctx context.Context, userID string, resource domain.Resource, action events.Action, ids []string)
}

type summaryCache interface {
	InvalidateUser(userID string) int
}

// Invalidator drops the user's cached summaries and publishes a change event.
type Invalidator struct {
	summaries summaryCache
	publisher events.Publisher
	logger    *log.Logger
}

func NewInvalidator(summaries summaryCache, publisher events.Publisher, logger *log.Logger) *Invalidator {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Invalidator{summaries: summaries, publisher: publisher, logger: logger}
}

func (i *Invalidator) Changed(ctx context.Context, userID string, resource domain.Resource, action events.Action, ids []string) {
	dropped := i.summaries.InvalidateUser(userID)
	i.logger.DebugContext(ctx, "Invalidated cached summaries",
		"user_id", userID, "resource", resource, "action", action, "dropped", dropped)

	event := events.NewChangeEvent(userID, resource.String(), action, ids)
	if err := i.publisher.PublishChange(ctx, event); err != nil {
		i.logger.ErrorContext(ctx, "Failed to publish change event",
			"routing_key", event.RoutingKey(), "error", err)
	}
}
