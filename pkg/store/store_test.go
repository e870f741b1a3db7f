package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDropsID(t *testing.T) {
	type patient struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Age  *int   `json:"age,omitempty"`
	}
	doc, err := Encode(patient{ID: "abc", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, Document{"name": "Ana"}, doc)
}

func TestSnapshotDecodeNormalizesNumbers(t *testing.T) {
	var out struct {
		Age       int       `json:"age"`
		CreatedAt time.Time `json:"createdAt"`
	}
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := &Snapshot{ID: "x", Data: Document{"age": int64(42), "createdAt": created}}
	require.NoError(t, snap.Decode(&out))
	assert.Equal(t, 42, out.Age)
	assert.True(t, created.Equal(out.CreatedAt))
}

func TestSnapshotString(t *testing.T) {
	var nilSnap *Snapshot
	assert.Equal(t, "", nilSnap.String("name"))
	snap := &Snapshot{Data: Document{"name": "Ana", "age": 3}}
	assert.Equal(t, "Ana", snap.String("name"))
	assert.Equal(t, "", snap.String("age"))
}

func TestMatches(t *testing.T) {
	doc := Document{"userId": "u1", "version": float64(1)}
	assert.True(t, matches(doc, nil))
	assert.True(t, matches(doc, []Filter{{Field: "userId", Value: "u1"}}))
	assert.True(t, matches(doc, []Filter{{Field: "version", Value: 1}}))
	assert.False(t, matches(doc, []Filter{{Field: "userId", Value: "u2"}}))
	assert.False(t, matches(doc, []Filter{{Field: "patientId", Value: "p"}}))
}

func TestFinishOrdering(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snaps := []*Snapshot{
		{ID: "b", Data: Document{"createdAt": t0.Format(time.RFC3339Nano)}},
		{ID: "c", Data: Document{"createdAt": t0.Add(time.Minute)}},
		{ID: "a", Data: Document{"createdAt": t0.Format(time.RFC3339Nano)}},
		{ID: "z", Data: Document{}},
	}

	out := finish(snaps, Query{}.NewestFirst())
	ids := make([]string, 0, len(out))
	for _, s := range out {
		ids = append(ids, s.ID)
	}
	// equal timestamps fall back to id order; missing timestamps sort last
	assert.Equal(t, []string{"c", "a", "b", "z"}, ids)
}

func TestQueryLimitDefault(t *testing.T) {
	assert.Equal(t, DefaultLimit, Query{}.limit())
	assert.Equal(t, 5, Query{Limit: 5}.limit())
	assert.Equal(t, -1, Where("userId", "u1").All().limit())
}

func TestServerLimit(t *testing.T) {
	n, ok := Query{}.serverLimit()
	assert.True(t, ok)
	assert.Equal(t, DefaultLimit, n)

	n, ok = Query{Limit: 7}.serverLimit()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	// ordered queries must read every match before sorting, or the newest could be cut
	_, ok = Query{Limit: 7}.NewestFirst().serverLimit()
	assert.False(t, ok)
	_, ok = Where("patientId", "p1").All().serverLimit()
	assert.False(t, ok)
}

func TestFinishAllKeepsEverything(t *testing.T) {
	snaps := make([]*Snapshot, 0, DefaultLimit+20)
	for i := 0; i < DefaultLimit+20; i++ {
		snaps = append(snaps, &Snapshot{ID: fmt.Sprintf("r%03d", i), Data: Document{}})
	}
	assert.Len(t, finish(snaps, Query{}.All()), DefaultLimit+20)
	assert.Len(t, finish(snaps, Query{}), DefaultLimit)
}

func TestTimestampMatchesEncode(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 500, time.UTC)
	doc, err := Encode(struct {
		CreatedAt time.Time `json:"createdAt"`
	}{CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, doc["createdAt"], Timestamp(at))
}

func TestQueryAndDoesNotAlias(t *testing.T) {
	base := Where("userId", "u1")
	a := base.And("patientId", "p1")
	b := base.And("patientId", "p2")
	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "p1", a.Filters[1].Value)
	assert.Equal(t, "p2", b.Filters[1].Value)
}

func TestUnconfigured(t *testing.T) {
	var s Store = Unconfigured{}
	ctx := context.Background()
	_, err := s.Get(ctx, CollectionPatients, "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.Add(ctx, CollectionPatients, Document{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.Query(ctx, CollectionPatients, Query{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.DeleteAtomic(ctx, nil), ErrNotConfigured)
	assert.Equal(t, "unconfigured", s.Name())
}
