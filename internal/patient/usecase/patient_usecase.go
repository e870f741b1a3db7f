package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"focusmeet-backend/internal/access"
	"focusmeet-backend/internal/patient/domain"
	"focusmeet-backend/internal/patient/dto"
	"focusmeet-backend/internal/patient/repository"
	"focusmeet-backend/pkg/apperror"
	"focusmeet-backend/pkg/fuzzy"
	"focusmeet-backend/pkg/store"

	"github.com/rs/zerolog/log"
)

// PatientUsecase defines the patient business logic. Every method is scoped to userID.
type PatientUsecase interface {
	Create(ctx context.Context, userID string, in *dto.PatientInput) (*domain.Patient, error)
	Get(ctx context.Context, userID, id string) (*domain.Patient, error)
	Update(ctx context.Context, userID, id string, in *dto.PatientInput) error
	Delete(ctx context.Context, userID, id string) error
	// List returns the user's patients newest first, filtered by query when it is not empty
	List(ctx context.Context, userID, query string) ([]*domain.Patient, error)
}

type patientUsecase struct {
	repo  repository.PatientRepository
	guard access.Guard
	now   func() time.Time
}

func NewPatientUsecase(repo repository.PatientRepository, guard access.Guard) PatientUsecase {
	return &patientUsecase{
		repo:  repo,
		guard: guard,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (u *patientUsecase) Create(ctx context.Context, userID string, in *dto.PatientInput) (*domain.Patient, error) {
	name, err := requireName(in)
	if err != nil {
		return nil, err
	}
	age, err := validAge(in.Age)
	if err != nil {
		return nil, err
	}

	patient := &domain.Patient{
		UserID:    userID,
		Name:      name,
		Age:       age,
		Phone:     trimmed(in.Phone),
		Email:     trimmed(in.Email),
		Diagnosis: trimmed(in.Diagnosis),
		Notes:     trimmed(in.Notes),
		CreatedAt: u.now(),
	}

	id, err := u.repo.Create(ctx, patient)
	if err != nil {
		return nil, apperror.Dependency("could not create patient", err)
	}
	patient.ID = id

	log.Info().Str("component", "patients").Str("id", id).Msg("patient created")
	return patient, nil
}

func (u *patientUsecase) Get(ctx context.Context, userID, id string) (*domain.Patient, error) {
	snap, err := u.guard.Authorize(ctx, store.CollectionPatients, id, userID)
	if err != nil {
		return nil, err
	}
	patient, err := repository.Decode(snap)
	if err != nil {
		return nil, apperror.Dependency("could not read patient", err)
	}
	return patient, nil
}

func (u *patientUsecase) Update(ctx context.Context, userID, id string, in *dto.PatientInput) error {
	name, err := requireName(in)
	if err != nil {
		return err
	}
	age, err := validAge(in.Age)
	if err != nil {
		return err
	}
	if _, err := u.guard.Authorize(ctx, store.CollectionPatients, id, userID); err != nil {
		return err
	}

	fields := store.Document{
		"name":      name,
		"updatedAt": store.Timestamp(u.now()),
	}
	if in.Age.Set {
		if age == nil {
			fields["age"] = nil
		} else {
			fields["age"] = *age
		}
	}
	setOptional(fields, "phone", in.Phone)
	setOptional(fields, "email", in.Email)
	setOptional(fields, "diagnosis", in.Diagnosis)
	setOptional(fields, "notes", in.Notes)

	if err := u.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperror.NotFound("patient not found")
		}
		return apperror.Dependency("could not update patient", err)
	}
	return nil
}

func (u *patientUsecase) Delete(ctx context.Context, userID, id string) error {
	if _, err := u.guard.Authorize(ctx, store.CollectionPatients, id, userID); err != nil {
		return err
	}
	removed, err := u.repo.DeleteWithReports(ctx, userID, id)
	if err != nil {
		return apperror.Dependency("could not delete patient", err)
	}
	log.Info().Str("component", "patients").Str("id", id).Int("reports", removed).Msg("patient deleted")
	return nil
}

func (u *patientUsecase) List(ctx context.Context, userID, query string) ([]*domain.Patient, error) {
	patients, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			return []*domain.Patient{}, nil
		}
		return nil, apperror.Dependency("could not list patients", err)
	}
	return fuzzy.Rank(query, patients, (*domain.Patient).SearchFields), nil
}

func requireName(in *dto.PatientInput) (string, error) {
	if in == nil || !in.Name.Present() {
		return "", apperror.Validation("name is required")
	}
	name := strings.TrimSpace(in.Name.Value)
	if name == "" {
		return "", apperror.Validation("name is required")
	}
	return name, nil
}

// validAge returns nil for absent, null or 0 and rejects negative values
func validAge(age dto.Optional[dto.FlexInt]) (*int, error) {
	if !age.Present() || age.Value == 0 {
		return nil, nil
	}
	if age.Value < 0 {
		return nil, apperror.Validation("age must be a positive integer")
	}
	v := int(age.Value)
	return &v, nil
}

func trimmed(o dto.Optional[string]) string {
	if !o.Present() {
		return ""
	}
	return strings.TrimSpace(o.Value)
}

// setOptional applies the update rule for optional text fields: absent leaves the stored value,
// null or blank clears it, anything else replaces it.
func setOptional(fields store.Document, key string, o dto.Optional[string]) {
	if !o.Set {
		return
	}
	if v := trimmed(o); v != "" {
		fields[key] = v
		return
	}
	fields[key] = nil
}
