// AngelaMos | 2026
// events.go

package events

import (
	"context"
	"time"
)

// Routing keys published on the topic exchange.
const (
	CourseCreated     = "course.created"
	CourseUpdated     = "course.updated"
	CourseDeactivated = "course.deactivated"
	PurchaseCompleted = "purchase.completed"
)

type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
