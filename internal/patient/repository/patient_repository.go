package repository

import (
	"context"
	"fmt"
	"time"

	"focusmeet-backend/internal/patient/domain"
	"focusmeet-backend/pkg/store"
)

// PatientRepository defines the persistence operations on patients
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) (string, error)
	// Update replaces the given fields. Keys are the API field names (name, age, phone...).
	Update(ctx context.Context, id string, fields store.Document) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Patient, error)
	// DeleteWithReports removes the patient and every report of userID that references it,
	// as one atomic batch. Returns the number of reports removed.
	DeleteWithReports(ctx context.Context, userID, id string) (int, error)
}

type patientRepository struct {
	store store.Store
}

func NewPatientRepository(s store.Store) PatientRepository {
	return &patientRepository{store: s}
}

// patientDoc is the stored shape. Field names match the patient documents the web app
// already keeps in Firestore.
type patientDoc struct {
	UserID      string     `json:"userId"`
	Nombre      string     `json:"nombre"`
	Edad        *int       `json:"edad,omitempty"`
	Telefono    string     `json:"telefono,omitempty"`
	Email       string     `json:"email,omitempty"`
	Diagnostico string     `json:"diagnostico,omitempty"`
	Notas       string     `json:"notas,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// storedField maps API field names onto stored ones. Unlisted names are stored as is.
var storedField = map[string]string{
	"name":      "nombre",
	"age":       "edad",
	"phone":     "telefono",
	"diagnosis": "diagnostico",
	"notes":     "notas",
}

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) (string, error) {
	doc, err := store.Encode(&patientDoc{
		UserID:      patient.UserID,
		Nombre:      patient.Name,
		Edad:        patient.Age,
		Telefono:    patient.Phone,
		Email:       patient.Email,
		Diagnostico: patient.Diagnosis,
		Notas:       patient.Notes,
		CreatedAt:   patient.CreatedAt,
		UpdatedAt:   patient.UpdatedAt,
	})
	if err != nil {
		return "", err
	}
	return r.store.Add(ctx, store.CollectionPatients, doc)
}

func (r *patientRepository) Update(ctx context.Context, id string, fields store.Document) error {
	stored := make(store.Document, len(fields))
	for k, v := range fields {
		if name, ok := storedField[k]; ok {
			k = name
		}
		stored[k] = v
	}
	return r.store.Update(ctx, store.CollectionPatients, id, stored)
}

func (r *patientRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Patient, error) {
	snaps, err := r.store.Query(ctx, store.CollectionPatients, store.Where("userId", userID).NewestFirst())
	if err != nil {
		return nil, err
	}
	patients := make([]*domain.Patient, 0, len(snaps))
	for _, snap := range snaps {
		p, err := Decode(snap)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, nil
}

func (r *patientRepository) DeleteWithReports(ctx context.Context, userID, id string) (int, error) {
	reports, err := r.store.Query(ctx, store.CollectionReports, store.Where("patientId", id).
		And("userId", userID).
		All())
	if err != nil {
		return 0, fmt.Errorf("list reports of patient %s: %w", id, err)
	}

	refs := make([]store.Ref, 0, len(reports)+1)
	for _, rep := range reports {
		refs = append(refs, store.Ref{Collection: store.CollectionReports, ID: rep.ID})
	}
	refs = append(refs, store.Ref{Collection: store.CollectionPatients, ID: id})

	if err := r.store.DeleteAtomic(ctx, refs); err != nil {
		return 0, err
	}
	return len(reports), nil
}

// Decode turns a stored snapshot into a Patient
func Decode(snap *store.Snapshot) (*domain.Patient, error) {
	var doc patientDoc
	if err := snap.Decode(&doc); err != nil {
		return nil, err
	}
	return &domain.Patient{
		ID:        snap.ID,
		UserID:    doc.UserID,
		Name:      doc.Nombre,
		Age:       doc.Edad,
		Phone:     doc.Telefono,
		Email:     doc.Email,
		Diagnosis: doc.Diagnostico,
		Notes:     doc.Notas,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
