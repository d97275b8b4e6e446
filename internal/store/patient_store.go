package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"patient-portal-server/internal/models"
)

var patientSortColumns = map[string]string{
	"createdAt": "created_at",
	"lastName":  "last_name",
	"firstName": "first_name",
}

// PatientStore persists owner-scoped patient profiles.
type PatientStore struct {
	db *gorm.DB
}

// NewPatientStore creates a new PatientStore.
func NewPatientStore(db *gorm.DB) *PatientStore {
	return &PatientStore{db: db}
}

// First returns the owner's profile, the oldest if several exist.
func (s *PatientStore) First(ctx context.Context, owner string) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at asc").
		First(&patient).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &patient, nil
}

// List returns every profile the owner created.
func (s *PatientStore) List(ctx context.Context, owner string, opts ListOptions) ([]models.Patient, error) {
	query, err := orderBy(s.db.WithContext(ctx).Where("owner = ?", owner), opts.Sort, patientSortColumns,
		Sort{Field: "createdAt", Direction: Ascending})
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	patients := []models.Patient{}
	if err := query.Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// Create stores a new profile owned by owner.
func (s *PatientStore) Create(ctx context.Context, owner string, patient *models.Patient) error {
	patient.ID = ""
	patient.Owner = owner
	if err := s.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

// Update overwrites every field of an existing owned profile.
func (s *PatientStore) Update(ctx context.Context, owner string, patient *models.Patient) error {
	var existing models.Patient
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", patient.ID, owner).
		First(&existing).Error
	if err != nil {
		return notFound(err)
	}

	patient.Owner = owner
	patient.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}
