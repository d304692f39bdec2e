package output

import (
	"time"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ReminderOutput represents a reminder in JSON output.
type ReminderOutput struct {
	model.Reminder
	Scheduled bool   `json:"scheduled"`
	NextFire  string `json:"next_fire,omitempty"`
}

// NewReminderOutput creates a ReminderOutput. next is nil when the
// reminder has no pending timer.
func NewReminderOutput(r model.Reminder, next *time.Time) *ReminderOutput {
	out := &ReminderOutput{Reminder: r}
	if next != nil {
		out.Scheduled = true
		out.NextFire = next.UTC().Format(time.RFC3339)
	}
	return out
}

// RemindersResponse represents the reminder list output in JSON.
type RemindersResponse struct {
	Reminders  []*ReminderOutput `json:"reminders"`
	TotalCount int               `json:"total_count"`
	Scheduled  int               `json:"scheduled"`
}

// NewRemindersResponse joins the reminder list with the pending timers.
func NewRemindersResponse(list []model.Reminder, timers []engine.Timer) *RemindersResponse {
	next := timerIndex(timers)
	resp := &RemindersResponse{
		Reminders:  make([]*ReminderOutput, len(list)),
		TotalCount: len(list),
	}
	for i, r := range list {
		if at, ok := next[r.ID]; ok {
			resp.Reminders[i] = NewReminderOutput(r, &at)
			resp.Scheduled++
		} else {
			resp.Reminders[i] = NewReminderOutput(r, nil)
		}
	}
	return resp
}

// LibraryResponse represents the library output in JSON.
type LibraryResponse struct {
	Library    []model.Reminder `json:"library"`
	TotalCount int              `json:"total_count"`
}

// ActionResponse reports the outcome of a command acting on one reminder.
type ActionResponse struct {
	Status   string          `json:"status"`
	Reminder *ReminderOutput `json:"reminder,omitempty"`
	ID       string          `json:"id,omitempty"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// PrintReminders outputs the active reminders.
func (j *JSONFormatter) PrintReminders(list []model.Reminder, timers []engine.Timer) error {
	return j.JSON(NewRemindersResponse(list, timers))
}

// PrintLibrary outputs the saved reminders.
func (j *JSONFormatter) PrintLibrary(list []model.Reminder) error {
	if list == nil {
		list = []model.Reminder{}
	}
	return j.JSON(LibraryResponse{Library: list, TotalCount: len(list)})
}

// PrintAction outputs the result of an action on a reminder.
func (j *JSONFormatter) PrintAction(status string, r *model.Reminder, next *time.Time) error {
	resp := ActionResponse{Status: status}
	if r != nil {
		resp.Reminder = NewReminderOutput(*r, next)
	}
	return j.JSON(resp)
}

// PrintActionID outputs the result of an action that only has an id.
func (j *JSONFormatter) PrintActionID(status, id string) error {
	return j.JSON(ActionResponse{Status: status, ID: id})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(err error) error {
	resp := ErrorResponse{
		Status:     "error",
		Error:      err.Error(),
		Suggestion: errors.GetSuggestion(err),
	}
	if ve, ok := errors.AsValidation(err); ok {
		resp.Error = ve.Message
		resp.Field = ve.Field
	}
	return j.JSON(resp)
}
