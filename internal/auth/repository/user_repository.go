package repository

import (
	"context"
	"errors"

	authdomain "focusmeet-backend/internal/auth/domain"
	"focusmeet-backend/pkg/store"
)

// UserRepository persists user profiles keyed by uid
type UserRepository interface {
	// FindByID returns nil, nil when the user does not exist
	FindByID(ctx context.Context, uid string) (*authdomain.User, error)
	Save(ctx context.Context, user *authdomain.User) error
	// Source names the backing store, reported by the ensure endpoint
	Source() string
}

// userRepository implements UserRepository interface
type userRepository struct {
	store store.Store
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{
		store: s,
	}
}

func (r *userRepository) FindByID(ctx context.Context, uid string) (*authdomain.User, error) {
	snap, err := r.store.Get(ctx, store.CollectionUsers, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var user authdomain.User
	if err := snap.Decode(&user); err != nil {
		return nil, err
	}
	user.UID = snap.ID
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *authdomain.User) error {
	doc, err := store.Encode(user)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, store.CollectionUsers, user.UID, doc)
}

func (r *userRepository) Source() string {
	return r.store.Name()
}
