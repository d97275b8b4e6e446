package forms

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProfileForm binds the editable Patient fields.
type ProfileForm struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Email          string `json:"email" validate:"required,email"`
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medicalHistory"`
}

// NewProfileForm fills the form from initial, which may be nil.
func NewProfileForm(initial *models.Patient) *ProfileForm {
	if initial == nil {
		return &ProfileForm{}
	}
	return &ProfileForm{
		FirstName:      initial.FirstName,
		LastName:       initial.LastName,
		DateOfBirth:    initial.DateOfBirth,
		Email:          initial.Email,
		PhoneNumber:    initial.PhoneNumber,
		Address:        initial.Address,
		MedicalHistory: initial.MedicalHistory,
	}
}

// Set binds one input by its field name.
func (f *ProfileForm) Set(field, value string) error {
	switch field {
	case "firstName":
		f.FirstName = value
	case "lastName":
		f.LastName = value
	case "dateOfBirth":
		f.DateOfBirth = value
	case "email":
		f.Email = value
	case "phoneNumber":
		f.PhoneNumber = value
	case "address":
		f.Address = value
	case "medicalHistory":
		f.MedicalHistory = value
	default:
		return apperr.Field(field, "is not a profile field")
	}
	return nil
}

// Validate trims every field and rejects blank required fields, a malformed
// email or a date of birth not in YYYY-MM-DD form.
func (f *ProfileForm) Validate() error {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.DateOfBirth = strings.TrimSpace(f.DateOfBirth)
	f.Email = strings.TrimSpace(f.Email)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.Address = strings.TrimSpace(f.Address)
	f.MedicalHistory = strings.TrimSpace(f.MedicalHistory)

	if err := validate.Struct(f); err != nil {
		return fieldErrors("Please complete the required profile fields", err)
	}
	return nil
}

// Apply copies the full field set onto patient.
func (f *ProfileForm) Apply(patient *models.Patient) {
	patient.FirstName = f.FirstName
	patient.LastName = f.LastName
	patient.DateOfBirth = f.DateOfBirth
	patient.Email = f.Email
	patient.PhoneNumber = f.PhoneNumber
	patient.Address = f.Address
	patient.MedicalHistory = f.MedicalHistory
}

func fieldErrors(message string, err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Validation(message, nil)
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "is required"
		case "email":
			fields[e.Field()] = "must be a valid email address"
		case "datetime":
			fields[e.Field()] = "must be a date in YYYY-MM-DD format"
		default:
			fields[e.Field()] = "is invalid"
		}
	}
	return apperr.Validation(message, fields)
}
