package publishers

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/handii-app/volunteer-directory/internal/domain"
)

// Event types emitted when the directory changes between polls.
const (
	EventVolunteerAdded               = "volunteer.added"
	EventVolunteerUpdated             = "volunteer.updated"
	EventVolunteerAvailabilityChanged = "volunteer.availability_changed"
	EventVolunteerRemoved             = "volunteer.removed"
)

// Event represents the payload published downstream.
type Event struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	VolunteerID int64             `json:"volunteer_id"`
	Volunteer   *domain.Volunteer `json:"volunteer,omitempty"`
	Hubs        []string          `json:"hubs,omitempty"`
	ObservedAt  time.Time         `json:"observed_at"`
}

// NewEvent constructs an Event for the given volunteer change. v may be nil
// for removals.
func NewEvent(typ string, volunteerID int64, v *domain.Volunteer, hubs []string) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        typ,
		VolunteerID: volunteerID,
		Volunteer:   v,
		Hubs:        hubs,
		ObservedAt:  time.Now().UTC(),
	}
}

// Attributes are the routing attributes attached to queue/topic messages.
func (e Event) Attributes() map[string]string {
	return map[string]string{
		"event_type":   e.Type,
		"volunteer_id": strconv.FormatInt(e.VolunteerID, 10),
	}
}
