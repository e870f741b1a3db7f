package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStore_AddGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	id, err := s.Add(ctx, CollectionPatients, Document{"userId": "u1", "name": "Ana", "phone": "555"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := s.Get(ctx, CollectionPatients, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", snap.String("name"))
	assert.Equal(t, "u1", snap.String("userId"))

	require.NoError(t, s.Update(ctx, CollectionPatients, id, Document{"name": "Ana María", "phone": nil}))
	snap, err = s.Get(ctx, CollectionPatients, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", snap.String("name"))
	_, hasPhone := snap.Data["phone"]
	assert.False(t, hasPhone, "nil update value removes the field")

	require.NoError(t, s.Delete(ctx, CollectionPatients, id))
	_, err = s.Get(ctx, CollectionPatients, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is a no-op
	assert.NoError(t, s.Delete(ctx, CollectionPatients, id))
}

func TestFileStore_UpdateMissing(t *testing.T) {
	s := newTestFileStore(t)
	err := s.Update(context.Background(), CollectionReports, "nope", Document{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_PartitionsByUser(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Add(ctx, CollectionPatients, Document{"userId": "alice", "name": "A"})
	require.NoError(t, err)
	_, err = s.Add(ctx, CollectionPatients, Document{"userId": "bob", "name": "B"})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, CollectionUsers, "carol", Document{"email": "c@example.com"}))

	assert.FileExists(t, filepath.Join(dir, CollectionPatients, "alice.json"))
	assert.FileExists(t, filepath.Join(dir, CollectionPatients, "bob.json"))
	assert.FileExists(t, filepath.Join(dir, CollectionUsers, "carol.json"))

	// a userId that could escape the directory lands in the shared file
	_, err = s.Add(ctx, CollectionPatients, Document{"userId": "../evil", "name": "E"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, CollectionPatients, sharedPartition+".json"))
	_, err = os.Stat(filepath.Join(dir, "evil.json"))
	assert.True(t, os.IsNotExist(err))

	alice, err := s.Query(ctx, CollectionPatients, Where("userId", "alice"))
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "A", alice[0].String("name"))
}

func TestFileStore_SetReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	require.NoError(t, s.Set(ctx, CollectionUsers, "u1", Document{"email": "old@example.com", "displayName": "Old"}))
	require.NoError(t, s.Set(ctx, CollectionUsers, "u1", Document{"email": "new@example.com"}))

	snap, err := s.Get(ctx, CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", snap.String("email"))
	assert.Empty(t, snap.String("displayName"))

	all, err := s.Query(ctx, CollectionUsers, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStore_QueryOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		_, err := s.Add(ctx, CollectionReports, Document{
			"userId":    "u1",
			"title":     title,
			"createdAt": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
		})
		require.NoError(t, err)
	}
	_, err := s.Add(ctx, CollectionReports, Document{"userId": "u2", "title": "other", "createdAt": base.Format(time.RFC3339Nano)})
	require.NoError(t, err)

	snaps, err := s.Query(ctx, CollectionReports, Where("userId", "u1").NewestFirst())
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "third", snaps[0].String("title"))
	assert.Equal(t, "second", snaps[1].String("title"))
	assert.Equal(t, "first", snaps[2].String("title"))

	limited, err := s.Query(ctx, CollectionReports, Query{Limit: 2}.And("userId", "u1").NewestFirst())
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestFileStore_QueryWithSecondFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	_, err := s.Add(ctx, CollectionReports, Document{"userId": "u1", "patientId": "p1"})
	require.NoError(t, err)
	_, err = s.Add(ctx, CollectionReports, Document{"userId": "u1", "patientId": "p2"})
	require.NoError(t, err)

	snaps, err := s.Query(ctx, CollectionReports, Where("userId", "u1").And("patientId", "p1"))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "p1", snaps[0].String("patientId"))
}

func TestFileStore_GetMany(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	a, err := s.Add(ctx, CollectionPatients, Document{"userId": "u1", "name": "A"})
	require.NoError(t, err)
	b, err := s.Add(ctx, CollectionPatients, Document{"userId": "u2", "name": "B"})
	require.NoError(t, err)

	got, err := s.GetMany(ctx, CollectionPatients, []string{a, b, "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[a].String("name"))
	assert.Equal(t, "B", got[b].String("name"))
	assert.Nil(t, got["missing"])
}

func TestFileStore_DeleteAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	patientID, err := s.Add(ctx, CollectionPatients, Document{"userId": "u1", "name": "A"})
	require.NoError(t, err)
	r1, err := s.Add(ctx, CollectionReports, Document{"userId": "u1", "patientId": patientID})
	require.NoError(t, err)
	r2, err := s.Add(ctx, CollectionReports, Document{"userId": "u1", "patientId": patientID})
	require.NoError(t, err)
	keep, err := s.Add(ctx, CollectionReports, Document{"userId": "u1", "patientId": "other"})
	require.NoError(t, err)

	err = s.DeleteAtomic(ctx, []Ref{
		{Collection: CollectionReports, ID: r1},
		{Collection: CollectionReports, ID: r2},
		{Collection: CollectionReports, ID: "already-gone"},
		{Collection: CollectionPatients, ID: patientID},
	})
	require.NoError(t, err)

	_, err = s.Get(ctx, CollectionPatients, patientID)
	assert.ErrorIs(t, err, ErrNotFound)
	remaining, err := s.Query(ctx, CollectionReports, Where("userId", "u1"))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep, remaining[0].ID)
}

func TestFileStore_ReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	id, err := s.Add(ctx, CollectionPatients, Document{"userId": "u1", "name": "A"})
	require.NoError(t, err)
	snap, err := s.Get(ctx, CollectionPatients, id)
	require.NoError(t, err)
	snap.Data["name"] = "mutated"

	again, err := s.Get(ctx, CollectionPatients, id)
	require.NoError(t, err)
	assert.Equal(t, "A", again.String("name"))
}
