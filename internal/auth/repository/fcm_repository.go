package repository

import (
	"context"
	"errors"
	"time"

	authdomain "focusmeet-backend/internal/auth/domain"
	"focusmeet-backend/pkg/store"

	"github.com/google/uuid"
)

// FCMTokenRepository defines the interface for FCM token operations
type FCMTokenRepository interface {
	SaveToken(ctx context.Context, userID, token, deviceInfo string) error
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error)
	// FindByToken returns nil, nil when the token is unknown
	FindByToken(ctx context.Context, token string) (*authdomain.DeviceToken, error)
	DeleteToken(ctx context.Context, token string) error
}

// fcmTokenRepository implements FCMTokenRepository interface
type fcmTokenRepository struct {
	store store.Store
}

// NewFCMTokenRepository creates a new instance of fcmTokenRepository
func NewFCMTokenRepository(s store.Store) FCMTokenRepository {
	return &fcmTokenRepository{
		store: s,
	}
}

// tokenID derives a stable document id from the token so registering twice is an upsert
func tokenID(token string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("fcm:"+token)).String()
}

// SaveToken saves or updates an FCM token for a user. A token registered by another
// user moves to the new owner.
func (r *fcmTokenRepository) SaveToken(ctx context.Context, userID, token, deviceInfo string) error {
	now := time.Now().UTC()
	createdAt := now
	if existing, err := r.FindByToken(ctx, token); err != nil {
		return err
	} else if existing != nil && existing.UserID == userID {
		createdAt = existing.CreatedAt
	}

	doc, err := store.Encode(&authdomain.DeviceToken{
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, store.CollectionDeviceTokens, tokenID(token), doc)
}

// GetTokensByUserID returns all FCM tokens for a user
func (r *fcmTokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error) {
	snaps, err := r.store.Query(ctx, store.CollectionDeviceTokens, store.Where("userId", userID))
	if err != nil {
		return nil, err
	}
	tokens := make([]authdomain.DeviceToken, 0, len(snaps))
	for _, snap := range snaps {
		var t authdomain.DeviceToken
		if err := snap.Decode(&t); err != nil {
			return nil, err
		}
		t.ID = snap.ID
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *fcmTokenRepository) FindByToken(ctx context.Context, token string) (*authdomain.DeviceToken, error) {
	snap, err := r.store.Get(ctx, store.CollectionDeviceTokens, tokenID(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var t authdomain.DeviceToken
	if err := snap.Decode(&t); err != nil {
		return nil, err
	}
	t.ID = snap.ID
	return &t, nil
}

// DeleteToken removes a specific FCM token
func (r *fcmTokenRepository) DeleteToken(ctx context.Context, token string) error {
	return r.store.Delete(ctx, store.CollectionDeviceTokens, tokenID(token))
}
