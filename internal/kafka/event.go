package kafka

import (
	"strconv"
	"time"

	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/google/uuid"
)

const (
	EventFlightCreated          = "flight_created"
	EventFlightUpdated          = "flight_updated"
	EventFlightDeleted          = "flight_deleted"
	EventFlightsDeletedByOrigin = "flights_deleted_by_origin"
	EventFlightsDeletedAll      = "flights_deleted_all"
)

// FlightEvent describes one successful write to the flight store. Bulk
// deletes leave FlightID zero and ScheduledAt nil.
type FlightEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	FlightID    int64     `json:"flight_id,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewFlightEvent(eventType string, f domain.Flight) FlightEvent {
	event := FlightEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		FlightID:    f.ID,
		Origin:      f.Origin,
		Destination: f.Destination,
		OccurredAt:  time.Now().UTC(),
	}
	if !f.ScheduledAt.IsZero() {
		at := f.ScheduledAt.UTC()
		event.ScheduledAt = &at
	}
	return event
}

// Key is the partition key: the flight id, or the origin for bulk deletes.
func (e FlightEvent) Key() string {
	if e.FlightID != 0 {
		return strconv.FormatInt(e.FlightID, 10)
	}
	if e.Origin != "" {
		return e.Origin
	}
	return e.Type
}
