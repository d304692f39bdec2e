package storage

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/validate"
)

// StoreOptions configures a ReminderStore.
type StoreOptions struct {
	// Clock stamps createdAt. Defaults to the wall clock.
	Clock clock.Clock
	// Seed installs SeedReminders when the active document is missing or corrupt.
	Seed bool
}

// ReminderStore owns the active and library reminder collections.
//
// Reads return copies. Every mutation is written through to the backing
// DocumentStore; write failures are logged and counted but never returned,
// so the in-memory state is authoritative for the lifetime of the process.
type ReminderStore struct {
	mu      sync.RWMutex
	docs    DocumentStore
	clock   clock.Clock
	active  []model.Reminder
	library []model.Reminder

	writeFailures int
	newID         func() string
}

// NewReminderStore loads both collections from docs.
func NewReminderStore(docs DocumentStore, opts StoreOptions) *ReminderStore {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	s := &ReminderStore{
		docs:  docs,
		clock: opts.Clock,
		newID: func() string { return uuid.New().String() },
	}

	var fallback []model.Reminder
	if opts.Seed {
		fallback = SeedReminders()
	}
	s.active = s.load(model.KeyReminders, fallback)
	s.library = s.load(model.KeyReminderLibrary, nil)
	return s
}

func (s *ReminderStore) load(key string, fallback []model.Reminder) []model.Reminder {
	data, err := s.docs.Get(key)
	if err != nil {
		if !IsErrKeyNotFound(err) {
			logging.Warn("falling back to defaults", logging.KeyError, errors.NewPersistenceError("load", key, err))
		}
		return fallback
	}

	var list []model.Reminder
	if err := json.Unmarshal(data, &list); err != nil {
		logging.Warn("stored document is corrupt, falling back to defaults",
			logging.KeyError, errors.NewPersistenceError("load", key, err))
		return fallback
	}
	return list
}

// persist must be called with s.mu held.
func (s *ReminderStore) persist(key string, list []model.Reminder) {
	if list == nil {
		list = []model.Reminder{}
	}

	data, err := json.Marshal(list)
	if err == nil {
		err = s.docs.Set(key, data)
	}
	if err != nil {
		s.writeFailures++
		logging.Error("failed to persist reminders",
			logging.KeyError, errors.NewPersistenceError("save", key, err),
			logging.KeyCount, len(list))
	}
}

// List returns a snapshot of the active reminders in insertion order.
func (s *ReminderStore) List() []model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.active)
}

// ListLibrary returns a snapshot of the saved reminders.
func (s *ReminderStore) ListLibrary() []model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.library)
}

// Get returns the active reminder with the given id.
func (s *ReminderStore) Get(id string) (model.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := model.FindReminder(s.active, id); i >= 0 {
		return s.active[i], true
	}
	return model.Reminder{}, false
}

// Resolve finds an active reminder by full id or unique id prefix.
func (s *ReminderStore) Resolve(idOrPrefix string) (model.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Resolve(s.active, idOrPrefix)
}

// ResolveLibrary finds a saved reminder by full id or unique id prefix.
func (s *ReminderStore) ResolveLibrary(idOrPrefix string) (model.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Resolve(s.library, idOrPrefix)
}

// Add validates and appends a new active reminder.
// The returned reminder carries a fresh id and the current createdAt.
func (s *ReminderStore) Add(title, description string, freq model.Frequency) (model.Reminder, error) {
	title = validate.Text(title)
	description = validate.Text(description)

	if err := validate.Title(title); err != nil {
		return model.Reminder{}, err
	}
	if err := validate.Description(description); err != nil {
		return model.Reminder{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.Reminder{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Frequency:   freq,
		CreatedAt:   s.clock.Now().UTC(),
	}
	s.active = append(s.active, r)
	s.persist(model.KeyReminders, s.active)

	logging.DebugLog("reminder added", logging.KeyReminderID, r.ID, logging.KeyTitle, r.Title)
	return r, nil
}

// Remove deletes the active reminder with the given id. It reports whether
// a reminder was removed; an absent id is a no-op.
func (s *ReminderStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := model.FindReminder(s.active, id)
	if i < 0 {
		return false
	}
	s.active = append(s.active[:i:i], s.active[i+1:]...)
	s.persist(model.KeyReminders, s.active)
	return true
}

// SaveToLibrary copies an active reminder into the library. Saving an id
// that is already in the library is a no-op. ok is false when id is not active.
func (s *ReminderStore) SaveToLibrary(id string) (r model.Reminder, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := model.FindReminder(s.active, id)
	if i < 0 {
		return model.Reminder{}, false
	}
	r = s.active[i]

	if model.FindReminder(s.library, id) < 0 {
		s.library = append(s.library, r)
		s.persist(model.KeyReminderLibrary, s.library)
	}
	return r, true
}

// RemoveFromLibrary deletes a saved reminder. An absent id is a no-op.
func (s *ReminderStore) RemoveFromLibrary(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := model.FindReminder(s.library, id)
	if i < 0 {
		return false
	}
	s.library = append(s.library[:i:i], s.library[i+1:]...)
	s.persist(model.KeyReminderLibrary, s.library)
	return true
}

// ActivateFromLibrary appends r to the active set unless its id is already
// active. It reports whether r was added.
func (s *ReminderStore) ActivateFromLibrary(r model.Reminder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if model.FindReminder(s.active, r.ID) >= 0 {
		return false
	}
	s.active = append(s.active, r)
	s.persist(model.KeyReminders, s.active)
	return true
}

// WriteFailures returns how many writes have failed since the store was opened.
func (s *ReminderStore) WriteFailures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeFailures
}

// Backend names the backing document store.
func (s *ReminderStore) Backend() string {
	return s.docs.Backend()
}

// Close closes the backing document store.
func (s *ReminderStore) Close() error {
	return s.docs.Close()
}

// Resolve finds a reminder in list by exact id, else by unique id prefix.
func Resolve(list []model.Reminder, idOrPrefix string) (model.Reminder, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return model.Reminder{}, errors.ErrReminderNotFound
	}
	if i := model.FindReminder(list, idOrPrefix); i >= 0 {
		return list[i], nil
	}

	var matches []model.Reminder
	for _, r := range list {
		if strings.HasPrefix(r.ID, idOrPrefix) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return model.Reminder{}, errors.ErrReminderNotFound
	case 1:
		return matches[0], nil
	default:
		return model.Reminder{}, errors.ErrAmbiguousID
	}
}

func clone(list []model.Reminder) []model.Reminder {
	out := make([]model.Reminder, len(list))
	copy(out, list)
	return out
}
