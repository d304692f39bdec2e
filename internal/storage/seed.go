package storage

import (
	"time"

	"github.com/manav03panchal/watchout/internal/model"
)

var seedCreatedAt = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

// SeedReminders returns the starter reminders installed when no active
// document exists yet.
func SeedReminders() []model.Reminder {
	return []model.Reminder{
		{
			ID:          "1",
			Title:       "Take a Break",
			Description: "Step away from AI tools and solve the problem with your expertise",
			Frequency:   model.Recurring(model.Interval30s),
			CreatedAt:   seedCreatedAt,
		},
		{
			ID:          "2",
			Title:       "Code Review",
			Description: "Review your recent code changes with a fresh perspective",
			Frequency:   model.Recurring(model.Interval60s),
			CreatedAt:   seedCreatedAt,
		},
	}
}
