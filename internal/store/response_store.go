package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"patient-portal-server/internal/models"
)

var responseSortColumns = map[string]string{
	"submittedAt": "submitted_at",
	"createdAt":   "created_at",
	"formType":    "form_type",
}

// DefaultResponseSort lists the newest submissions first.
var DefaultResponseSort = Sort{Field: "submittedAt", Direction: Descending}

// ResponseStore persists owner-scoped questionnaire responses. Responses are
// append-only apart from explicit deletes.
type ResponseStore struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

// NewResponseStore creates a new ResponseStore. notifier may be nil.
func NewResponseStore(db *gorm.DB, notifier ChangeNotifier) *ResponseStore {
	return &ResponseStore{db: db, notifier: notifier}
}

// Create stores a response for owner and notifies observers once committed.
func (s *ResponseStore) Create(ctx context.Context, owner string, response *models.FormResponse) error {
	response.ID = ""
	response.Owner = owner
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now()
	}
	response.SubmittedAt = response.SubmittedAt.UTC()
	if err := s.db.WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	s.changed(owner)
	return nil
}

// Get returns one owned response.
func (s *ResponseStore) Get(ctx context.Context, owner, id string) (*models.FormResponse, error) {
	var response models.FormResponse
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		First(&response).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &response, nil
}

// List returns the owner's responses matching opts, newest first by default.
func (s *ResponseStore) List(ctx context.Context, owner string, opts ListOptions) ([]models.FormResponse, error) {
	query := s.db.WithContext(ctx).Where("owner = ?", owner)
	if opts.Filter.FormType != "" {
		query = query.Where("form_type = ?", opts.Filter.FormType)
	}
	if opts.Filter.PatientID != "" {
		query = query.Where("patient_id = ?", opts.Filter.PatientID)
	}
	if !opts.Filter.SubmittedAfter.IsZero() {
		query = query.Where("submitted_at > ?", opts.Filter.SubmittedAfter.UTC())
	}

	query, err := orderBy(query, opts.Sort, responseSortColumns, DefaultResponseSort)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	responses := []models.FormResponse{}
	if err := query.Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responses, nil
}

// Delete removes one owned response and notifies observers.
func (s *ResponseStore) Delete(ctx context.Context, owner, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Delete(&models.FormResponse{})
	if result.Error != nil {
		return fmt.Errorf("delete response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.changed(owner)
	return nil
}

func (s *ResponseStore) changed(owner string) {
	if s.notifier != nil {
		s.notifier.Changed(owner)
	}
}
