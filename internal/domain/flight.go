package domain

import "time"

type Flight struct {
	ID          int64     `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// IsNew reports whether the flight has not been persisted yet.
func (f Flight) IsNew() bool {
	return f.ID == 0
}
