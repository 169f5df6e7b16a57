// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/college-calendar/internal/auth"
	"github.com/olegiv/college-calendar/internal/model"
)

func newEventsCollection(t *testing.T) *Collection[model.EventDocument] {
	t.Helper()
	return NewCollection(CollectionEvents, filepath.Join(t.TempDir(), EventsFile), DefaultEvents)
}

func TestCollection_LoadCreatesDefaults(t *testing.T) {
	c := newEventsCollection(t)

	_, err := os.Stat(c.path)
	require.True(t, os.IsNotExist(err), "document should not exist before first load")

	doc, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Events)

	data, err := os.ReadFile(c.path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events": []}`, string(data))
}

func TestCollection_SaveLoadRoundTrip(t *testing.T) {
	c := newEventsCollection(t)
	ctx := context.Background()

	want := model.EventDocument{Events: []model.Event{
		{ID: "1", EventDate: "2024-05-01", Title: "Orientation", Type: "academic", CreatedBy: "admin"},
		{ID: "2", EventDate: "2024-05-02", Title: "Sports Day", Description: "Main ground", Type: "sports"},
	}}
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCollection_CorruptDocument(t *testing.T) {
	c := newEventsCollection(t)
	require.NoError(t, os.WriteFile(c.path, []byte("{not json"), 0o644))

	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "parse", se.Op)
	assert.Equal(t, CollectionEvents, se.Collection)
}

func TestCollection_UnreadableDocument(t *testing.T) {
	c := newEventsCollection(t)
	// A directory in place of the file makes the read fail.
	require.NoError(t, os.Mkdir(c.path, 0o755))

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
}

func TestCollection_UpdateErrorLeavesDocument(t *testing.T) {
	c := newEventsCollection(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, model.EventDocument{Events: []model.Event{{ID: "1", Title: "Keep"}}}))

	errAbort := errors.New("abort")
	err := c.Update(ctx, func(doc *model.EventDocument) error {
		doc.Events[0].Title = "Changed"
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	doc, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Keep", doc.Events[0].Title)
}

func TestCollection_CanceledContext(t *testing.T) {
	c := newEventsCollection(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Save(ctx, model.EventDocument{}), context.Canceled)
}

// Two callers doing their own Load and Save race: the second full-document
// write discards the first caller's change.
func TestCollection_UnserializedLoadSaveLosesUpdate(t *testing.T) {
	c := newEventsCollection(t)
	ctx := context.Background()
	require.NoError(t, c.Save(ctx, model.EventDocument{Events: []model.Event{{ID: "1", Title: "Original", Type: "exam"}}}))

	first, err := c.Load(ctx)
	require.NoError(t, err)
	second, err := c.Load(ctx)
	require.NoError(t, err)

	first.Events[0].Title = "Title from first writer"
	require.NoError(t, c.Save(ctx, first))

	second.Events[0].Type = "holiday"
	require.NoError(t, c.Save(ctx, second))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Events[0].Title, "first writer's change is lost")
	assert.Equal(t, "holiday", got.Events[0].Type)
}

func TestCollection_UpdateSerializesWriters(t *testing.T) {
	c := newEventsCollection(t)
	ctx := context.Background()
	_, err := c.Load(ctx)
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := c.Update(ctx, func(doc *model.EventDocument) error {
				doc.Events = append(doc.Events, model.Event{ID: string(rune('a' + i))})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Events, writers)
}

func TestCollection_Snapshot(t *testing.T) {
	c := newEventsCollection(t)
	ctx := context.Background()
	want := model.EventDocument{Events: []model.Event{{ID: "1", Title: "Convocation"}}}
	require.NoError(t, c.Save(ctx, want))

	dir := t.TempDir()
	require.NoError(t, c.Snapshot(ctx, dir))

	copied := NewCollection(CollectionEvents, filepath.Join(dir, EventsFile), DefaultEvents)
	got, err := copied.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_InitSeedsDefaultUsers(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx))

	users, err := s.Users.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users.Users, 3)

	admin := users.FindByUsername(DefaultAdminUsername)
	require.NotNil(t, admin)
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	ok, err := auth.CheckPassword(DefaultAdminPassword, admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	seen := map[string]bool{}
	for _, u := range users.Users {
		assert.False(t, seen[u.Username], "duplicate username %q", u.Username)
		seen[u.Username] = true
	}

	for _, name := range []string{UsersFile, EventsFile, ReportsFile} {
		_, err := os.Stat(filepath.Join(s.DataDir(), name))
		assert.NoError(t, err, name)
	}
}

func TestStore_InitKeepsExistingUsers(t *testing.T) {
	dir := t.TempDir()
	existing := `{"users":[{"id":9,"username":"registrar","password":"x","role":"admin","email":"r@college.edu","name":"Registrar"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte(existing), 0o644))

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))

	users, err := s.Users.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "registrar", users.Users[0].Username)
}

func TestStore_Snapshot(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	dir := filepath.Join(t.TempDir(), "backup")
	require.NoError(t, s.Snapshot(ctx, dir))

	for _, name := range []string{UsersFile, EventsFile, ReportsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
