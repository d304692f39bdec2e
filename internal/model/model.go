// Package model defines the domain models for WatchOut.
package model

// Document keys used by the reminder store.
const (
	KeyReminders       = "reminders"
	KeyReminderLibrary = "reminderLibrary"
)
