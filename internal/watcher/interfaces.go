package watcher

import (
	"context"

	"github.com/handii-app/volunteer-directory/internal/domain"
	"github.com/handii-app/volunteer-directory/pkg/publishers"
	"github.com/handii-app/volunteer-directory/pkg/volunteers"
)

// Directory is the slice of the volunteer directory client a pass needs.
type Directory interface {
	Health(ctx context.Context) (domain.HealthStatus, error)
	List(ctx context.Context, f volunteers.Filter) (domain.VolunteersResponse, error)
}

// HubMatcher resolves which hubs a volunteer serves.
type HubMatcher interface {
	MatchingIDs(v domain.Volunteer) []string
}

// EventPublisher publishes change events downstream and reports how many
// sinks accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
