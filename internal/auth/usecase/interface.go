package usecase

import (
	"context"

	authdomain "focusmeet-backend/internal/auth/domain"
	authdto "focusmeet-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for user profile and device registration logic
type AuthUsecase interface {
	// EnsureUser creates the profile on first sign-in and advances lastLoginAt afterwards
	EnsureUser(ctx context.Context, identity *authdomain.Identity, req *authdto.EnsureUserRequest) (*authdto.EnsureUserResponse, error)

	// RegisterDevice upserts an FCM token for the user
	RegisterDevice(ctx context.Context, userID string, req *authdto.RegisterDeviceRequest) error

	// UnregisterDevice removes a token owned by the user
	UnregisterDevice(ctx context.Context, userID, token string) error
}
