package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the hosted backend
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized client (see pkg/firebase)
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	log.Info().Str("component", "store").Msg("using Firestore store")
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Name() string { return "firestore" }

func (s *FirestoreStore) Close() error { return s.client.Close() }

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Snapshot, error) {
	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return &Snapshot{ID: doc.Ref.ID, Data: doc.Data()}, nil
}

func (s *FirestoreStore) GetMany(ctx context.Context, collection string, ids []string) (map[string]*Snapshot, error) {
	result := make(map[string]*Snapshot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, s.client.Collection(collection).Doc(id))
	}
	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("firestore get all %s: %w", collection, err)
	}
	for _, doc := range docs {
		if doc == nil || !doc.Exists() {
			continue
		}
		result[doc.Ref.ID] = &Snapshot{ID: doc.Ref.ID, Data: doc.Data()}
	}
	return result, nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]interface{}(doc))
	if err != nil {
		return "", fmt.Errorf("firestore add %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, doc Document) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]interface{}(doc)); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields Document) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		if v == nil {
			updates = append(updates, firestore.Update{Path: k, Value: firestore.Delete})
			continue
		}
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if len(updates) == 0 {
		return nil
	}
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]*Snapshot, error) {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	// Ordering with equality filters on other fields needs a composite index,
	// so ordered queries read every match and sort in memory.
	if n, ok := q.serverLimit(); ok {
		fq = fq.Limit(n)
	}

	docs, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query %s: %w", collection, err)
	}
	snaps := make([]*Snapshot, 0, len(docs))
	for _, doc := range docs {
		snaps = append(snaps, &Snapshot{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return finish(snaps, q), nil
}

// DeleteAtomic runs every delete inside one Firestore transaction
func (s *FirestoreStore) DeleteAtomic(ctx context.Context, refs []Ref) error {
	if len(refs) == 0 {
		return nil
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, ref := range refs {
			if err := tx.Delete(s.client.Collection(ref.Collection).Doc(ref.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("firestore atomic delete: %w", err)
	}
	return nil
}
