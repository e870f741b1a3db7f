package usecase

import (
	"context"
	"strings"
	"time"

	authdomain "focusmeet-backend/internal/auth/domain"
	authdto "focusmeet-backend/internal/auth/dto"
	"focusmeet-backend/internal/auth/repository"
	"focusmeet-backend/pkg/apperror"

	"github.com/rs/zerolog/log"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	fcmRepo  repository.FCMTokenRepository
	now      func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, fcmRepo repository.FCMTokenRepository) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		fcmRepo:  fcmRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *authUsecase) EnsureUser(ctx context.Context, identity *authdomain.Identity, req *authdto.EnsureUserRequest) (*authdto.EnsureUserResponse, error) {
	if identity == nil || identity.UID == "" {
		return nil, apperror.Unauthenticated("unauthenticated")
	}
	if req == nil {
		req = &authdto.EnsureUserRequest{}
	}

	existing, err := u.userRepo.FindByID(ctx, identity.UID)
	if err != nil {
		return nil, apperror.Dependency("could not ensure user", err)
	}

	now := u.now()
	user := existing
	if user == nil {
		user = &authdomain.User{UID: identity.UID, CreatedAt: now}
		// the verified token email is the fallback for a brand new profile
		user.Email = identity.Email
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	user.LastLoginAt = now

	if err := u.userRepo.Save(ctx, user); err != nil {
		return nil, apperror.Dependency("could not ensure user", err)
	}

	log.Info().Str("component", "users").Str("uid", user.UID).Bool("created", existing == nil).Msg("user ensured")
	return &authdto.EnsureUserResponse{OK: true, Source: u.userRepo.Source(), UID: user.UID}, nil
}

func (u *authUsecase) RegisterDevice(ctx context.Context, userID string, req *authdto.RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return apperror.Validation("token is required")
	}
	if err := u.fcmRepo.SaveToken(ctx, userID, token, strings.TrimSpace(req.DeviceInfo)); err != nil {
		return apperror.Dependency("could not register device", err)
	}
	return nil
}

func (u *authUsecase) UnregisterDevice(ctx context.Context, userID, token string) error {
	existing, err := u.fcmRepo.FindByToken(ctx, token)
	if err != nil {
		return apperror.Dependency("could not unregister device", err)
	}
	if existing == nil {
		return apperror.NotFound("device token not found")
	}
	if existing.UserID != userID {
		return apperror.Forbidden("forbidden")
	}
	if err := u.fcmRepo.DeleteToken(ctx, token); err != nil {
		return apperror.Dependency("could not unregister device", err)
	}
	return nil
}
