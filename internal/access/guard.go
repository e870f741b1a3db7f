package access

import (
	"context"
	"errors"
	"fmt"

	"focusmeet-backend/pkg/apperror"
	"focusmeet-backend/pkg/store"
)

// OwnerField is the document field holding the owning user id
const OwnerField = "userId"

// Guard is the single ownership check shared by patients and reports
type Guard interface {
	// Authorize loads collection/id and verifies it belongs to uid
	Authorize(ctx context.Context, collection, id, uid string) (*store.Snapshot, error)
}

type guard struct {
	store store.Store
}

func NewGuard(s store.Store) Guard {
	return &guard{store: s}
}

func (g *guard) Authorize(ctx context.Context, collection, id, uid string) (*store.Snapshot, error) {
	label := entityLabel(collection)
	if id == "" {
		return nil, apperror.NotFound(label + " not found")
	}
	snap, err := g.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound(label + " not found")
		}
		return nil, apperror.Dependency(fmt.Sprintf("could not load %s", label), err)
	}
	if snap.String(OwnerField) != uid {
		return nil, apperror.Forbidden("forbidden")
	}
	return snap, nil
}

func entityLabel(collection string) string {
	switch collection {
	case store.CollectionPatients:
		return "patient"
	case store.CollectionReports:
		return "report"
	case store.CollectionDeviceTokens:
		return "device token"
	default:
		return "document"
	}
}
