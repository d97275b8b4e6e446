package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// FormType names the questionnaire a response belongs to.
type FormType string

const (
	FormTypeHealthAssessment FormType = "health-assessment"
	FormTypeDailyCheckin     FormType = "daily-check-in"
)

// FormResponse is one submitted questionnaire. Responses holds the structured
// answer payload for its FormType.
type FormResponse struct {
	BaseModel
	Owner       string         `gorm:"size:36;index;not null" json:"owner"`
	PatientID   string         `gorm:"size:36;index;not null" json:"patientId"`
	FormType    FormType       `gorm:"size:50;index;not null" json:"formType"`
	Responses   datatypes.JSON `gorm:"not null" json:"responses"`
	SubmittedAt time.Time      `gorm:"index;not null" json:"submittedAt"`
}

// NewFormResponse marshals payload into a response stamped with submittedAt.
func NewFormResponse(patientID string, formType FormType, payload any, submittedAt time.Time) (*FormResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", formType, err)
	}
	return &FormResponse{
		PatientID:   patientID,
		FormType:    formType,
		Responses:   datatypes.JSON(raw),
		SubmittedAt: submittedAt,
	}, nil
}

// DecodeResponses unmarshals the payload into v.
func (r *FormResponse) DecodeResponses(v any) error {
	return json.Unmarshal(r.Responses, v)
}
