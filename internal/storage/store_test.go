package storage

import (
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
)

// failingDocs accepts reads from an inner store but rejects every write.
type failingDocs struct {
	DocumentStore
}

func (f failingDocs) Set(string, []byte) error {
	return stderrors.New("disk full")
}

func setupTestStore(t *testing.T) (*ReminderStore, *DB, *clock.Mock) {
	db := setupTestDB(t)
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	return NewReminderStore(db, StoreOptions{Clock: mock}), db, mock
}

func storedDocument(t *testing.T, docs DocumentStore, key string) []model.Reminder {
	t.Helper()
	data, err := docs.Get(key)
	require.NoError(t, err)
	var list []model.Reminder
	require.NoError(t, json.Unmarshal(data, &list))
	return list
}

// =============================================================================
// Loading
// =============================================================================

func TestNewReminderStoreSeeds(t *testing.T) {
	db := setupTestDB(t)

	s := NewReminderStore(db, StoreOptions{Seed: true})
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Take a Break", list[0].Title)
	assert.Equal(t, model.Interval30s, list[0].Frequency.Interval())
	assert.Equal(t, "Code Review", list[1].Title)
	assert.Equal(t, model.Interval60s, list[1].Frequency.Interval())
	assert.Empty(t, s.ListLibrary())

	_, err := db.Get(model.KeyReminders)
	assert.ErrorIs(t, err, ErrKeyNotFound, "seed is not written until the first mutation")
}

func TestNewReminderStoreWithoutSeed(t *testing.T) {
	s := NewReminderStore(setupTestDB(t), StoreOptions{})
	assert.Empty(t, s.List())
}

func TestNewReminderStoreCorruptDocuments(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Set(model.KeyReminders, []byte("{not json")))
	require.NoError(t, db.Set(model.KeyReminderLibrary, []byte("42")))

	s := NewReminderStore(db, StoreOptions{Seed: true})
	assert.Len(t, s.List(), 2, "corrupt active document falls back to the seed")
	assert.Empty(t, s.ListLibrary(), "corrupt library falls back to empty")
}

func TestNewReminderStoreLoadsExisting(t *testing.T) {
	db := setupTestDB(t)
	doc := `[{"id":"abc","title":"Water","description":"Drink","frequency":{"type":"recurring","value":"1h","label":"Every hour"},"createdAt":"2024-03-20T10:00:00.000Z"}]`
	require.NoError(t, db.Set(model.KeyReminders, []byte(doc)))
	require.NoError(t, db.Set(model.KeyReminderLibrary, []byte(doc)))

	s := NewReminderStore(db, StoreOptions{Seed: true})
	require.Len(t, s.List(), 1)
	assert.Equal(t, "Water", s.List()[0].Title)
	require.Len(t, s.ListLibrary(), 1)
}

func TestStoreReopen(t *testing.T) {
	db := setupTestDB(t)

	s := NewReminderStore(db, StoreOptions{})
	r, err := s.Add("Stretch", "Stand up", model.Recurring(model.Interval30s))
	require.NoError(t, err)
	s.SaveToLibrary(r.ID)

	reopened := NewReminderStore(db, StoreOptions{Seed: true})
	assert.Equal(t, s.List(), reopened.List())
	assert.Equal(t, s.ListLibrary(), reopened.ListLibrary())
}

// =============================================================================
// Add / Remove
// =============================================================================

func TestAdd(t *testing.T) {
	s, db, mock := setupTestStore(t)

	r, err := s.Add("  Stretch ", " Stand up ", model.Recurring(model.Interval30s))
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Stretch", r.Title)
	assert.Equal(t, "Stand up", r.Description)
	assert.Equal(t, model.Recurring(model.Interval30s), r.Frequency)
	assert.True(t, mock.Now().Equal(r.CreatedAt))

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, r, list[0])

	stored := storedDocument(t, db, model.KeyReminders)
	require.Len(t, stored, 1)
	assert.Equal(t, r.ID, stored[0].ID)
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s, _, _ := setupTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		r, err := s.Add("t", "d", model.Recurring(model.Interval60s))
		require.NoError(t, err)
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
}

func TestAddValidation(t *testing.T) {
	s, _, _ := setupTestStore(t)

	tests := []struct {
		name, title, description, field string
	}{
		{"empty title", "", "d", "title"},
		{"blank title", "   ", "d", "title"},
		{"empty description", "t", "", "description"},
		{"blank description", "t", "\t\n", "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(tt.title, tt.description, model.Recurring(model.Interval30s))
			require.Error(t, err)
			ve, ok := errors.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
			assert.NotEmpty(t, errors.GetSuggestion(err))
		})
	}
	assert.Empty(t, s.List())
}

func TestRemove(t *testing.T) {
	s, db, _ := setupTestStore(t)

	a, _ := s.Add("a", "a", model.Recurring(model.Interval30s))
	b, _ := s.Add("b", "b", model.Recurring(model.Interval30s))

	assert.True(t, s.Remove(a.ID))
	assert.False(t, s.Remove(a.ID), "second remove is a no-op")
	assert.False(t, s.Remove("nope"))

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Len(t, storedDocument(t, db, model.KeyReminders), 1)
}

func TestRemoveLastWritesEmptyArray(t *testing.T) {
	s, db, _ := setupTestStore(t)
	r, _ := s.Add("a", "a", model.Recurring(model.Interval30s))
	s.Remove(r.ID)

	data, err := db.Get(model.KeyReminders)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestListIsSnapshot(t *testing.T) {
	s, _, _ := setupTestStore(t)
	r, _ := s.Add("a", "a", model.Recurring(model.Interval30s))

	list := s.List()
	list[0].Title = "changed"

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, "a", got.Title)
	assert.Len(t, s.List(), 1)
}

// =============================================================================
// Library
// =============================================================================

func TestSaveToLibrary(t *testing.T) {
	s, db, _ := setupTestStore(t)
	r, _ := s.Add("Stretch", "Stand up", model.Recurring(model.Interval30s))

	saved, ok := s.SaveToLibrary(r.ID)
	require.True(t, ok)
	assert.Equal(t, r, saved)

	_, ok = s.SaveToLibrary(r.ID)
	assert.True(t, ok)
	assert.Len(t, s.ListLibrary(), 1, "saving twice keeps one entry")
	assert.Len(t, storedDocument(t, db, model.KeyReminderLibrary), 1)

	assert.Len(t, s.List(), 1, "saving does not remove from active")

	_, ok = s.SaveToLibrary("unknown")
	assert.False(t, ok)
}

func TestRemoveFromLibrary(t *testing.T) {
	s, _, _ := setupTestStore(t)
	r, _ := s.Add("a", "a", model.Recurring(model.Interval30s))
	s.SaveToLibrary(r.ID)

	assert.True(t, s.RemoveFromLibrary(r.ID))
	assert.False(t, s.RemoveFromLibrary(r.ID))
	assert.Empty(t, s.ListLibrary())
	assert.Len(t, s.List(), 1, "active set is untouched")
}

func TestActivateFromLibrary(t *testing.T) {
	s, _, _ := setupTestStore(t)
	r, _ := s.Add("a", "a", model.Recurring(model.Interval30s))
	s.SaveToLibrary(r.ID)

	assert.False(t, s.ActivateFromLibrary(r), "already active")
	assert.Len(t, s.List(), 1)

	s.Remove(r.ID)
	assert.True(t, s.ActivateFromLibrary(r))
	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, r, list[0], "activation keeps id and createdAt")
	assert.Len(t, s.ListLibrary(), 1, "library entry remains")
}

// =============================================================================
// Resolve
// =============================================================================

func TestResolve(t *testing.T) {
	list := []model.Reminder{
		{ID: "0f8b1c2a-aaaa"},
		{ID: "0f8b9999-bbbb"},
		{ID: "1"},
	}

	r, err := Resolve(list, "0f8b1")
	require.NoError(t, err)
	assert.Equal(t, "0f8b1c2a-aaaa", r.ID)

	r, err = Resolve(list, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", r.ID, "exact match wins")

	_, err = Resolve(list, "0f8b")
	assert.ErrorIs(t, err, errors.ErrAmbiguousID)

	_, err = Resolve(list, "zz")
	assert.ErrorIs(t, err, errors.ErrReminderNotFound)

	_, err = Resolve(list, "")
	assert.ErrorIs(t, err, errors.ErrReminderNotFound)
}

func TestStoreResolve(t *testing.T) {
	s, _, _ := setupTestStore(t)
	r, _ := s.Add("a", "a", model.Recurring(model.Interval30s))

	got, err := s.Resolve(r.ShortID())
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = s.ResolveLibrary(r.ShortID())
	assert.ErrorIs(t, err, errors.ErrReminderNotFound)

	s.SaveToLibrary(r.ID)
	got, err = s.ResolveLibrary(r.ShortID())
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

// =============================================================================
// Write failures
// =============================================================================

func TestWriteFailuresAreSwallowed(t *testing.T) {
	db := setupTestDB(t)
	s := NewReminderStore(failingDocs{db}, StoreOptions{})

	r, err := s.Add("a", "a", model.Recurring(model.Interval30s))
	require.NoError(t, err, "write failures never reach the caller")
	assert.Len(t, s.List(), 1, "in-memory state proceeds")

	s.SaveToLibrary(r.ID)
	s.Remove(r.ID)

	assert.Equal(t, 3, s.WriteFailures())
	assert.Empty(t, s.List())
	assert.Len(t, s.ListLibrary(), 1)
}

func TestStoreBackend(t *testing.T) {
	s := NewReminderStore(setupTestSQLite(t), StoreOptions{})
	assert.Equal(t, "sqlite", s.Backend())
}
