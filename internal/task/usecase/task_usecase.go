package usecase

import (
	"context"
	"errors"
	"strings"

	reportrepo "focusmeet-backend/internal/report/repository"
	"focusmeet-backend/internal/task/domain"
	"focusmeet-backend/pkg/apperror"
	"focusmeet-backend/pkg/store"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// GetUserTasks flattens the tasks of the user's reports, newest report first.
	// responsible filters case-insensitively when not empty.
	GetUserTasks(ctx context.Context, userID, responsible string, limit, offset int) ([]*domain.Task, int, error)
}

type taskUsecase struct {
	reports reportrepo.ReportRepository
}

func NewTaskUsecase(reports reportrepo.ReportRepository) TaskUsecase {
	return &taskUsecase{reports: reports}
}

func (u *taskUsecase) GetUserTasks(ctx context.Context, userID, responsible string, limit, offset int) ([]*domain.Task, int, error) {
	reports, err := u.reports.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			return []*domain.Task{}, 0, nil
		}
		return nil, 0, apperror.Dependency("could not list tasks", err)
	}

	responsible = strings.TrimSpace(responsible)
	tasks := []*domain.Task{}
	for _, r := range reports {
		if r.Analysis == nil {
			continue
		}
		for _, t := range r.Analysis.Tasks {
			if responsible != "" && !strings.EqualFold(strings.TrimSpace(t.Responsible), responsible) {
				continue
			}
			tasks = append(tasks, &domain.Task{
				ReportID:    r.ID,
				ReportTitle: r.Title,
				PatientID:   r.PatientID,
				Description: t.Description,
				Responsible: t.Responsible,
				CreatedAt:   r.CreatedAt,
			})
		}
	}

	total := len(tasks)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	return tasks[offset:end], total, nil
}
