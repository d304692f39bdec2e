// Package engine ties the reminder store to the scheduler. It is the single
// entry point used by the CLI, the HTTP API, the MCP server and the dashboard.
package engine

import (
	"context"
	"time"

	"github.com/manav03panchal/watchout/internal/model"
)

// Controller is the set of operations the outer surfaces need. *Engine
// implements it in process; api.Client implements it against a running daemon.
// Ids are full reminder ids; callers resolve prefixes first.
type Controller interface {
	List(ctx context.Context) ([]model.Reminder, error)
	ListLibrary(ctx context.Context) ([]model.Reminder, error)
	Add(ctx context.Context, title, description string, freq model.Frequency) (model.Reminder, error)
	Remove(ctx context.Context, id string) error
	SaveToLibrary(ctx context.Context, id string) (model.Reminder, error)
	RemoveFromLibrary(ctx context.Context, id string) error
	ActivateFromLibrary(ctx context.Context, id string) (model.Reminder, error)
	ActiveIDs(ctx context.Context) ([]string, error)
	Timers(ctx context.Context) ([]Timer, error)
	Schedule(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
}

// Timer describes a pending timer.
type Timer struct {
	ID       string    `json:"id"`
	NextFire time.Time `json:"nextFire"`
}
