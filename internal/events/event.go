// Package events publishes listing changes to RabbitMQ so other services
// can follow venues, artists and shows as they are listed or removed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QueueName is the durable queue listing events are published to.
const QueueName = "fyyur.listings"

// Type names what happened to which entity.
type Type string

const (
	VenueCreated  Type = "venue.created"
	VenueUpdated  Type = "venue.updated"
	VenueDeleted  Type = "venue.deleted"
	ArtistCreated Type = "artist.created"
	ArtistUpdated Type = "artist.updated"
	ArtistDeleted Type = "artist.deleted"
	ShowCreated   Type = "show.created"
)

// ListingEvent is the message body, encoded as JSON.
type ListingEvent struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	EntityID   uint64    `json:"entity_id"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewListingEvent stamps a new event with a random id.
func NewListingEvent(t Type, entityID uint64, name string, at time.Time) ListingEvent {
	return ListingEvent{
		ID:         uuid.NewString(),
		Type:       t,
		EntityID:   entityID,
		Name:       name,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers listing events.  Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev ListingEvent) error
	Close() error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ListingEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }

// NewPublisher returns an AMQP publisher for url, or a NopPublisher when url
// is empty.
func NewPublisher(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return NewAMQPPublisher(url, QueueName)
}
