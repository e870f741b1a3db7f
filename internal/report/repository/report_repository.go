package repository

import (
	"context"

	patientrepo "focusmeet-backend/internal/patient/repository"
	"focusmeet-backend/internal/report/domain"
	"focusmeet-backend/pkg/store"
)

// ReportRepository defines the persistence operations on reports
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) (string, error)
	Update(ctx context.Context, id string, fields store.Document) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Report, error)
	ListByPatient(ctx context.Context, userID, patientID string) ([]*domain.Report, error)
	// PatientNames resolves patient ids owned by userID to their names in one lookup
	PatientNames(ctx context.Context, userID string, ids []string) (map[string]string, error)
}

type reportRepository struct {
	store store.Store
}

func NewReportRepository(s store.Store) ReportRepository {
	return &reportRepository{store: s}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) (string, error) {
	doc, err := store.Encode(report)
	if err != nil {
		return "", err
	}
	return r.store.Add(ctx, store.CollectionReports, doc)
}

func (r *reportRepository) Update(ctx context.Context, id string, fields store.Document) error {
	return r.store.Update(ctx, store.CollectionReports, id, fields)
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.CollectionReports, id)
}

func (r *reportRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Report, error) {
	return r.list(ctx, store.Where("userId", userID).NewestFirst())
}

func (r *reportRepository) ListByPatient(ctx context.Context, userID, patientID string) ([]*domain.Report, error) {
	return r.list(ctx, store.Where("userId", userID).And("patientId", patientID).NewestFirst())
}

func (r *reportRepository) list(ctx context.Context, q store.Query) ([]*domain.Report, error) {
	snaps, err := r.store.Query(ctx, store.CollectionReports, q)
	if err != nil {
		return nil, err
	}
	reports := make([]*domain.Report, 0, len(snaps))
	for _, snap := range snaps {
		rep, err := Decode(snap)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (r *reportRepository) PatientNames(ctx context.Context, userID string, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	snaps, err := r.store.GetMany(ctx, store.CollectionPatients, ids)
	if err != nil {
		return nil, err
	}
	for id, snap := range snaps {
		patient, err := patientrepo.Decode(snap)
		if err != nil || patient.UserID != userID {
			continue
		}
		names[id] = patient.Name
	}
	return names, nil
}

// Decode turns a stored snapshot into a Report
func Decode(snap *store.Snapshot) (*domain.Report, error) {
	var rep domain.Report
	if err := snap.Decode(&rep); err != nil {
		return nil, err
	}
	rep.ID = snap.ID
	if rep.Format == "" {
		rep.Format = domain.FormatSOAP
	}
	return &rep, nil
}
