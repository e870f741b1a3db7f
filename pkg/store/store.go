package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Collection names shared by every backend
const (
	CollectionUsers        = "users"
	CollectionPatients     = "patients"
	CollectionReports      = "reports"
	CollectionFeedback     = "feedback"
	CollectionDeviceTokens = "device_tokens"
)

// DefaultLimit caps list queries when the caller does not set one
const DefaultLimit = 100

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrNotConfigured is returned by every operation of an unconfigured store
	ErrNotConfigured = errors.New("document store not configured")
)

// Document is the schemaless body of a stored record. Keys are top-level field names.
type Document map[string]interface{}

// Snapshot is a document read back from the store together with its id
type Snapshot struct {
	ID   string
	Data Document
}

// Decode copies the snapshot into dst through its json tags.
// Backends return slightly different scalar types (int64 vs float64, time.Time vs string),
// a JSON round trip normalizes them.
func (s *Snapshot) Decode(dst interface{}) error {
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	return nil
}

// String returns a top-level string field, or "" when absent or not a string
func (s *Snapshot) String(field string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	v, _ := s.Data[field].(string)
	return v
}

// Encode turns a json-tagged struct into a Document. The "id" key is dropped because ids
// live outside the document body.
func Encode(src interface{}) (Document, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	delete(doc, "id")
	return doc, nil
}

// Timestamp formats t the way Encode stores time.Time fields, so values written through
// Update compare and decode like the ones written at creation.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// Filter is an equality filter on a top-level field
type Filter struct {
	Field string
	Value interface{}
}

// Query describes a list operation over one collection
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where is a convenience constructor for a filtered query
func Where(field string, value interface{}) Query {
	return Query{Filters: []Filter{{Field: field, Value: value}}}
}

// And appends another equality filter
func (q Query) And(field string, value interface{}) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// NewestFirst orders by createdAt descending
func (q Query) NewestFirst() Query {
	q.OrderBy = "createdAt"
	q.Desc = true
	return q
}

// All lifts the default limit so every matching document is returned
func (q Query) All() Query {
	q.Limit = -1
	return q
}

// limit is the cap applied after ordering, -1 when unbounded
func (q Query) limit() int {
	switch {
	case q.Limit == 0:
		return DefaultLimit
	case q.Limit < 0:
		return -1
	}
	return q.Limit
}

// serverLimit is the cap a backend may push down into its own query. Ordered queries are
// sorted in memory, so they read the whole filtered set and are cut afterwards.
func (q Query) serverLimit() (int, bool) {
	if q.OrderBy != "" || q.Limit < 0 {
		return 0, false
	}
	return q.limit(), true
}

// Ref addresses one document
type Ref struct {
	Collection string
	ID         string
}

// Store is the persistence gateway. Every backend implements the same contract so the
// choice between them is made once at startup.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Snapshot, error)
	// GetMany resolves several ids of one collection in a single round trip.
	// Missing ids are absent from the result.
	GetMany(ctx context.Context, collection string, ids []string) (map[string]*Snapshot, error)
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update replaces the given top-level fields. A nil value removes the field.
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]*Snapshot, error)
	// DeleteAtomic removes every referenced document as one unit, or none of them.
	DeleteAtomic(ctx context.Context, refs []Ref) error
	Name() string
	Close() error
}

// matches reports whether doc satisfies every equality filter
func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]
		if !ok || fmt.Sprint(v) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

// finish orders and truncates a fetched page. Ordering happens here rather than in the
// backend so no composite index is needed for filter + order combinations.
func finish(snaps []*Snapshot, q Query) []*Snapshot {
	if q.OrderBy != "" {
		sort.SliceStable(snaps, func(i, j int) bool {
			a, b := timeField(snaps[i].Data, q.OrderBy), timeField(snaps[j].Data, q.OrderBy)
			if a.Equal(b) {
				return snaps[i].ID < snaps[j].ID
			}
			if q.Desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}
	if n := q.limit(); n >= 0 && len(snaps) > n {
		snaps = snaps[:n]
	}
	return snaps
}

func timeField(doc Document, field string) time.Time {
	switch v := doc[field].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
