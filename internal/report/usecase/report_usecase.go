package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"focusmeet-backend/internal/access"
	"focusmeet-backend/internal/report/domain"
	"focusmeet-backend/internal/report/dto"
	"focusmeet-backend/internal/report/repository"
	"focusmeet-backend/pkg/apperror"
	"focusmeet-backend/pkg/fuzzy"
	"focusmeet-backend/pkg/store"

	"github.com/rs/zerolog/log"
)

// UnnamedPatient is shown in lists when a report's patient cannot be resolved
const UnnamedPatient = "Paciente sin nombre"

// Notifier is told about every saved report. Implementations must not block the caller.
type Notifier interface {
	ReportSaved(userID string, report *domain.Report)
}

// ReportUsecase defines the report business logic. Every method is scoped to userID.
type ReportUsecase interface {
	Create(ctx context.Context, userID string, req *dto.CreateReportRequest) (*domain.Report, error)
	Get(ctx context.Context, userID, id string) (*dto.ReportDetail, error)
	Update(ctx context.Context, userID, id string, req *dto.UpdateReportRequest) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID, query string) ([]*domain.Summary, error)
	ListByPatient(ctx context.Context, userID, patientID string) ([]*domain.Summary, error)
}

type reportUsecase struct {
	repo     repository.ReportRepository
	guard    access.Guard
	notifier Notifier
	now      func() time.Time
}

// NewReportUsecase wires the report usecase. notifier may be nil.
func NewReportUsecase(repo repository.ReportRepository, guard access.Guard, notifier Notifier) ReportUsecase {
	return &reportUsecase{
		repo:     repo,
		guard:    guard,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *reportUsecase) Create(ctx context.Context, userID string, req *dto.CreateReportRequest) (*domain.Report, error) {
	if req == nil || req.Analysis == nil {
		return nil, apperror.Validation("analysis is required")
	}
	patientID := strings.TrimSpace(req.PatientID)
	if patientID == "" {
		return nil, apperror.Validation("patientId is required")
	}
	format, ok := domain.ParseFormat(req.Format)
	if !ok {
		return nil, apperror.Validation("format must be soap or hpi_ros")
	}
	if _, err := u.guard.Authorize(ctx, store.CollectionPatients, patientID, userID); err != nil {
		return nil, err
	}

	analysis := *req.Analysis
	analysis.Normalize()
	meta := req.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}

	report := &domain.Report{
		UserID:    userID,
		PatientID: patientID,
		Title:     domain.DeriveTitle(&analysis),
		Analysis:  &analysis,
		Meta:      meta,
		Format:    format,
		Version:   domain.SchemaVersion,
		CreatedAt: u.now(),
	}

	id, err := u.repo.Create(ctx, report)
	if err != nil {
		return nil, apperror.Dependency("could not save report", err)
	}
	report.ID = id

	log.Info().Str("component", "reports").Str("id", id).Str("format", string(format)).Msg("report saved")
	if u.notifier != nil {
		u.notifier.ReportSaved(userID, report)
	}
	return report, nil
}

func (u *reportUsecase) Get(ctx context.Context, userID, id string) (*dto.ReportDetail, error) {
	snap, err := u.guard.Authorize(ctx, store.CollectionReports, id, userID)
	if err != nil {
		return nil, err
	}
	report, err := repository.Decode(snap)
	if err != nil {
		return nil, apperror.Dependency("could not read report", err)
	}

	detail := &dto.ReportDetail{Report: report}
	if report.PatientID != "" {
		names, err := u.repo.PatientNames(ctx, userID, []string{report.PatientID})
		if err != nil {
			log.Warn().Err(err).Str("component", "reports").Str("id", id).Msg("patient name lookup failed")
		} else if name, ok := names[report.PatientID]; ok {
			detail.PatientName = &name
		}
	}
	return detail, nil
}

func (u *reportUsecase) Update(ctx context.Context, userID, id string, req *dto.UpdateReportRequest) error {
	if req == nil || (req.Analysis == nil && req.Meta == nil) {
		return apperror.Validation("nothing to update")
	}
	if _, err := u.guard.Authorize(ctx, store.CollectionReports, id, userID); err != nil {
		return err
	}

	fields := store.Document{"updatedAt": store.Timestamp(u.now())}
	if req.Analysis != nil {
		analysis, err := store.Encode(req.Analysis)
		if err != nil {
			return apperror.Validation("invalid analysis")
		}
		fields["analysis"] = map[string]interface{}(analysis)
	}
	if req.Meta != nil {
		fields["meta"] = req.Meta
	}

	if err := u.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NotFound("report not found")
		}
		return apperror.Dependency("could not update report", err)
	}
	return nil
}

func (u *reportUsecase) Delete(ctx context.Context, userID, id string) error {
	if _, err := u.guard.Authorize(ctx, store.CollectionReports, id, userID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return apperror.Dependency("could not delete report", err)
	}
	log.Info().Str("component", "reports").Str("id", id).Msg("report deleted")
	return nil
}

func (u *reportUsecase) List(ctx context.Context, userID, query string) ([]*domain.Summary, error) {
	reports, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			return []*domain.Summary{}, nil
		}
		return nil, apperror.Dependency("could not list reports", err)
	}
	summaries := u.summarize(ctx, userID, reports)
	return fuzzy.Rank(query, summaries, (*domain.Summary).SearchFields), nil
}

func (u *reportUsecase) ListByPatient(ctx context.Context, userID, patientID string) ([]*domain.Summary, error) {
	if _, err := u.guard.Authorize(ctx, store.CollectionPatients, patientID, userID); err != nil {
		return nil, err
	}
	reports, err := u.repo.ListByPatient(ctx, userID, patientID)
	if err != nil {
		return nil, apperror.Dependency("could not list reports", err)
	}
	return u.summarize(ctx, userID, reports), nil
}

// summarize projects reports and attaches patient names with one batched lookup.
// A failed lookup only costs the names.
func (u *reportUsecase) summarize(ctx context.Context, userID string, reports []*domain.Report) []*domain.Summary {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range reports {
		if r.PatientID != "" && !seen[r.PatientID] {
			seen[r.PatientID] = true
			ids = append(ids, r.PatientID)
		}
	}

	names, err := u.repo.PatientNames(ctx, userID, ids)
	if err != nil {
		log.Warn().Err(err).Str("component", "reports").Msg("patient name lookup failed")
		names = map[string]string{}
	}

	out := make([]*domain.Summary, 0, len(reports))
	for _, r := range reports {
		s := r.Summarize()
		if r.PatientID != "" {
			name := names[r.PatientID]
			if name == "" {
				name = UnnamedPatient
			}
			s.PatientName = &name
		}
		out = append(out, s)
	}
	return out
}
