package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"focusmeet-backend/internal/feedback/domain"
	"focusmeet-backend/internal/feedback/dto"
	"focusmeet-backend/internal/feedback/repository"
	"focusmeet-backend/pkg/apperror"

	"github.com/rs/zerolog/log"
)

type FeedbackUsecase interface {
	// Create stores a rating from the caller. email comes from the verified token.
	Create(ctx context.Context, userID, email string, req *dto.CreateFeedbackRequest) (string, error)
}

type feedbackUsecase struct {
	repo repository.FeedbackRepository
	now  func() time.Time
}

func NewFeedbackUsecase(repo repository.FeedbackRepository) FeedbackUsecase {
	return &feedbackUsecase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (u *feedbackUsecase) Create(ctx context.Context, userID, email string, req *dto.CreateFeedbackRequest) (string, error) {
	if req == nil || req.Rating == nil {
		return "", apperror.Validation("rating must be between 1 and 5")
	}
	r := *req.Rating
	if r != math.Trunc(r) || r < domain.MinRating || r > domain.MaxRating {
		return "", apperror.Validation("rating must be between 1 and 5")
	}

	fb := &domain.Feedback{
		UserID:    userID,
		UserEmail: email,
		Rating:    int(r),
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: u.now(),
	}
	id, err := u.repo.Create(ctx, fb)
	if err != nil {
		return "", apperror.Dependency("could not save feedback", err)
	}
	log.Info().Str("component", "feedback").Str("id", id).Int("rating", fb.Rating).Msg("feedback received")
	return id, nil
}
