package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// partitionField decides which per-user file a document lives in
const partitionField = "userId"

const sharedPartition = "_shared"

// FileStore keeps one JSON array per user per collection under dir:
//
//	<dir>/<collection>/<userId>.json
//
// It is the development fallback when no hosted store is configured.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

type fileEntry struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	log.Info().Str("component", "store").Str("dir", dir).Msg("using filesystem store")
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Name() string { return "filesystem" }

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Get(_ context.Context, collection, id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, entry, err := s.locate(collection, id)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: entry.ID, Data: copyDocument(entry.Data)}, nil
}

func (s *FileStore) GetMany(_ context.Context, collection string, ids []string) (map[string]*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	result := make(map[string]*Snapshot, len(ids))
	err := s.scan(collection, func(_ string, entries []fileEntry) error {
		for _, e := range entries {
			if wanted[e.ID] {
				result[e.ID] = &Snapshot{ID: e.ID, Data: copyDocument(e.Data)}
			}
		}
		return nil
	})
	return result, err
}

func (s *FileStore) Add(_ context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id, s.put(collection, id, doc)
}

func (s *FileStore) Set(_ context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if partition, _, err := s.locate(collection, id); err == nil {
		if err := s.removeFrom(collection, partition, id); err != nil {
			return err
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.put(collection, id, doc)
}

func (s *FileStore) Update(_ context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition, entry, err := s.locate(collection, id)
	if err != nil {
		return err
	}
	entries, err := s.read(collection, partition)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID != entry.ID {
			continue
		}
		if entries[i].Data == nil {
			entries[i].Data = Document{}
		}
		for k, v := range fields {
			if v == nil {
				delete(entries[i].Data, k)
				continue
			}
			entries[i].Data[k] = v
		}
	}
	return s.write(collection, partition, entries)
}

func (s *FileStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition, _, err := s.locate(collection, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.removeFrom(collection, partition, id)
}

func (s *FileStore) Query(_ context.Context, collection string, q Query) ([]*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snaps []*Snapshot
	collect := func(_ string, entries []fileEntry) error {
		for _, e := range entries {
			if matches(e.Data, q.Filters) {
				snaps = append(snaps, &Snapshot{ID: e.ID, Data: copyDocument(e.Data)})
			}
		}
		return nil
	}

	// A userId filter maps straight onto one partition file
	if owner, ok := partitionFilter(q.Filters); ok {
		entries, err := s.read(collection, owner)
		if err != nil {
			return nil, err
		}
		if err := collect(owner, entries); err != nil {
			return nil, err
		}
	} else if err := s.scan(collection, collect); err != nil {
		return nil, err
	}
	return finish(snaps, q), nil
}

// DeleteAtomic computes every affected file first, then writes them. If a write fails the
// files already written are restored to their previous contents.
func (s *FileStore) DeleteAtomic(_ context.Context, refs []Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type fileKey struct{ collection, partition string }
	before := map[fileKey][]fileEntry{}
	after := map[fileKey][]fileEntry{}

	for _, ref := range refs {
		partition, _, err := s.locate(ref.Collection, ref.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		key := fileKey{ref.Collection, partition}
		if _, ok := after[key]; !ok {
			entries, err := s.read(ref.Collection, partition)
			if err != nil {
				return err
			}
			before[key] = entries
			after[key] = append([]fileEntry(nil), entries...)
		}
		after[key] = withoutID(after[key], ref.ID)
	}

	var written []fileKey
	for key, entries := range after {
		if err := s.write(key.collection, key.partition, entries); err != nil {
			for _, done := range written {
				if rerr := s.write(done.collection, done.partition, before[done]); rerr != nil {
					log.Error().Str("component", "store").Err(rerr).Msg("failed to restore file after aborted batch")
				}
			}
			return fmt.Errorf("atomic delete: %w", err)
		}
		written = append(written, key)
	}
	return nil
}

func (s *FileStore) put(collection, id string, doc Document) error {
	partition := partitionOf(id, doc)
	entries, err := s.read(collection, partition)
	if err != nil {
		return err
	}
	entries = append(entries, fileEntry{ID: id, Data: copyDocument(doc)})
	return s.write(collection, partition, entries)
}

func (s *FileStore) removeFrom(collection, partition, id string) error {
	entries, err := s.read(collection, partition)
	if err != nil {
		return err
	}
	return s.write(collection, partition, withoutID(entries, id))
}

// locate finds the partition holding id. The caller holds mu.
func (s *FileStore) locate(collection, id string) (string, *fileEntry, error) {
	var (
		foundPartition string
		found          *fileEntry
	)
	errStop := errors.New("stop")
	err := s.scan(collection, func(partition string, entries []fileEntry) error {
		for i := range entries {
			if entries[i].ID == id {
				foundPartition, found = partition, &entries[i]
				return errStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return "", nil, err
	}
	if found == nil {
		return "", nil, ErrNotFound
	}
	return foundPartition, found, nil
}

func (s *FileStore) scan(collection string, fn func(partition string, entries []fileEntry) error) error {
	files, err := filepath.Glob(filepath.Join(s.dir, collection, "*.json"))
	if err != nil {
		return err
	}
	for _, file := range files {
		partition := strings.TrimSuffix(filepath.Base(file), ".json")
		entries, err := s.read(collection, partition)
		if err != nil {
			return err
		}
		if err := fn(partition, entries); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) path(collection, partition string) string {
	return filepath.Join(s.dir, collection, partition+".json")
}

func (s *FileStore) read(collection, partition string) ([]fileEntry, error) {
	raw, err := os.ReadFile(s.path(collection, partition))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", collection, partition, err)
	}
	var entries []fileEntry
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s/%s: %w", collection, partition, err)
	}
	return entries, nil
}

func (s *FileStore) write(collection, partition string, entries []fileEntry) error {
	if entries == nil {
		entries = []fileEntry{}
	}
	target := s.path(collection, partition)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), partition+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func partitionOf(id string, doc Document) string {
	if owner, ok := doc[partitionField].(string); ok && safePartition(owner) {
		return owner
	}
	// users are keyed by their own uid
	if safePartition(id) {
		if _, hasOwner := doc[partitionField]; !hasOwner {
			return id
		}
	}
	return sharedPartition
}

func partitionFilter(filters []Filter) (string, bool) {
	for _, f := range filters {
		if f.Field == partitionField {
			if v, ok := f.Value.(string); ok && safePartition(v) {
				return v, true
			}
		}
	}
	return "", false
}

// safePartition rejects values that could escape the collection directory
func safePartition(v string) bool {
	return v != "" && !strings.ContainsAny(v, `/\.`) && v != sharedPartition
}

func withoutID(entries []fileEntry, id string) []fileEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
