// Package invalidation publishes cache-invalidation events after resolution
// passes change materialized records. Downstream caches subscribe to the
// channel and flush whatever they hold for the named entities.
package invalidation

import (
	"context"
	"time"
)

// Event names what changed. Kind is an entity kind slug, or "*" when a
// batch pass touched several kinds. Slug is empty for batch passes.
// Changed counts entities rewritten.
type Event struct {
	Kind    string    `json:"kind"`
	Slug    string    `json:"slug,omitempty"`
	Changed int       `json:"changed"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }
