package model

import (
	"time"
)

// Reminder is a titled notification that fires according to its Frequency.
type Reminder struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ShortID returns the first 8 characters of the id for display.
func (r *Reminder) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// IsOneTime reports whether the reminder fires once and is then removed.
func (r *Reminder) IsOneTime() bool {
	return r.Frequency.IsOneTime()
}

// FindReminder returns the index of the reminder with the given id, or -1.
func FindReminder(reminders []Reminder, id string) int {
	for i := range reminders {
		if reminders[i].ID == id {
			return i
		}
	}
	return -1
}
