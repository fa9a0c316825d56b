package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/propexpo/stall-booking-api/internal/domain"
)

// Notifier receives every committed inventory change.
type Notifier interface {
	Publish(ctx context.Context, event domain.InventoryEvent) error
}

// Fanout publishes to all notifiers and reports every failure.
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, event domain.InventoryEvent) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// notify never fails the operation that triggered it: the change is already
// committed.
func notify(ctx context.Context, n Notifier, event domain.InventoryEvent) {
	if n == nil {
		return
	}

	event.OccurredAt = time.Now().UTC()
	if err := n.Publish(ctx, event); err != nil {
		zap.L().Warn("failed to publish inventory event",
			zap.String("type", string(event.Type)),
			zap.Uint("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

func uintPtr(v uint) *uint {
	return &v
}

func intPtr(v int) *int {
	return &v
}
