package models

import "time"

// DateLayout is the calendar-day format events are scheduled with.
const DateLayout = "2006-01-02"

type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventUpdate carries the fields an administrator may change after creation.
// The organizer is fixed once the event exists.
type EventUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

func (e *Event) Apply(upd EventUpdate) {
	e.Name = upd.Name
	e.Description = upd.Description
	e.Date = upd.Date
	e.Location = upd.Location
}
