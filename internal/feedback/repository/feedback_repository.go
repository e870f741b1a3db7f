package repository

import (
	"context"

	"focusmeet-backend/internal/feedback/domain"
	"focusmeet-backend/pkg/store"
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) (string, error)
}

type feedbackRepository struct {
	store store.Store
}

func NewFeedbackRepository(s store.Store) FeedbackRepository {
	return &feedbackRepository{store: s}
}

func (r *feedbackRepository) Create(ctx context.Context, fb *domain.Feedback) (string, error) {
	doc, err := store.Encode(fb)
	if err != nil {
		return "", err
	}
	return r.store.Add(ctx, store.CollectionFeedback, doc)
}
