package forms

import (
	"strconv"
	"strings"

	"patient-portal-server/internal/apperr"
)

// AssessmentPayload is the structured answer set of a health assessment,
// both as submitted and as stored.
type AssessmentPayload struct {
	PainLevel               string   `json:"painLevel"`
	PainLocation            []string `json:"painLocation"`
	PainDuration            string   `json:"painDuration"`
	CurrentMedications      string   `json:"currentMedications"`
	MedicationAllergies     string   `json:"medicationAllergies"`
	RecentMedicationChanges bool     `json:"recentMedicationChanges"`
}

// AssessmentForm accumulates health assessment answers keyed by field name.
// Multi-select fields are kept as option sets.
type AssessmentForm struct {
	answers map[string]string
	multi   map[string]*OptionSet
	flags   map[string]bool
}

// NewAssessmentForm returns an empty form.
func NewAssessmentForm() *AssessmentForm {
	f := &AssessmentForm{
		answers: make(map[string]string),
		multi:   make(map[string]*OptionSet),
		flags:   make(map[string]bool),
	}
	for _, q := range AssessmentQuestions {
		switch q.Type {
		case TypeCheckbox:
			f.multi[q.ID] = NewOptionSet(q.Options)
		case TypeBoolean:
			f.flags[q.ID] = false
		default:
			f.answers[q.ID] = ""
		}
	}
	return f
}

// AssessmentFormFromRequest binds a submitted body through Set and Toggle.
func AssessmentFormFromRequest(req AssessmentPayload) (*AssessmentForm, error) {
	f := NewAssessmentForm()
	values := map[string]string{
		FieldPainLevel:           req.PainLevel,
		FieldPainDuration:        req.PainDuration,
		FieldCurrentMedications:  req.CurrentMedications,
		FieldMedicationAllergies: req.MedicationAllergies,
	}
	for field, value := range values {
		if err := f.Set(field, value); err != nil {
			return nil, err
		}
	}
	for _, loc := range req.PainLocation {
		if err := f.Toggle(FieldPainLocation, loc, true); err != nil {
			return nil, apperr.Field(FieldPainLocation, "unknown pain location "+loc)
		}
	}
	if err := f.Set(FieldRecentMedicationChanges, strconv.FormatBool(req.RecentMedicationChanges)); err != nil {
		return nil, err
	}
	return f, nil
}

// Set records a single-valued answer. Boolean fields accept the usual
// checkbox spellings ("on", "true", "1").
func (f *AssessmentForm) Set(field, value string) error {
	if _, ok := f.multi[field]; ok {
		return apperr.Field(field, "is a multi-select field")
	}
	if _, ok := f.flags[field]; ok {
		checked, err := parseChecked(value)
		if err != nil {
			return apperr.Field(field, "must be true or false")
		}
		f.flags[field] = checked
		return nil
	}
	if _, ok := f.answers[field]; !ok {
		return apperr.Field(field, "is not a questionnaire field")
	}
	f.answers[field] = value
	return nil
}

// Toggle checks or unchecks one option of a multi-select field.
func (f *AssessmentForm) Toggle(field, option string, checked bool) error {
	set, ok := f.multi[field]
	if !ok {
		return apperr.Field(field, "is not a multi-select field")
	}
	return set.Toggle(option, checked)
}

// Answers is the raw answer mapping keyed by field name.
func (f *AssessmentForm) Answers() map[string]any {
	out := make(map[string]any, len(f.answers)+len(f.multi)+len(f.flags))
	for k, v := range f.answers {
		out[k] = v
	}
	for k, v := range f.multi {
		out[k] = v.Values()
	}
	for k, v := range f.flags {
		out[k] = v
	}
	return out
}

// Payload returns the current answers without validating them.
func (f *AssessmentForm) Payload() AssessmentPayload {
	return AssessmentPayload{
		PainLevel:               f.answers[FieldPainLevel],
		PainLocation:            f.multi[FieldPainLocation].Values(),
		PainDuration:            f.answers[FieldPainDuration],
		CurrentMedications:      f.answers[FieldCurrentMedications],
		MedicationAllergies:     f.answers[FieldMedicationAllergies],
		RecentMedicationChanges: f.flags[FieldRecentMedicationChanges],
	}
}

// Validate rejects blank required answers and values outside a select's
// options.
func (f *AssessmentForm) Validate() error {
	fields := map[string]string{}
	for _, q := range AssessmentQuestions {
		if q.Type != TypeSelect {
			continue
		}
		value := strings.TrimSpace(f.answers[q.ID])
		switch {
		case value == "" && q.Required:
			fields[q.ID] = "is required"
		case value != "" && !q.hasOption(value):
			fields[q.ID] = "is not one of the offered choices"
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("Please complete the required questions", fields)
	}
	return nil
}

// Submit validates and returns the payload. The form is left as is.
func (f *AssessmentForm) Submit() (AssessmentPayload, error) {
	if err := f.Validate(); err != nil {
		return AssessmentPayload{}, err
	}
	return f.Payload(), nil
}

func parseChecked(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true, nil
	case "", "off":
		return false, nil
	}
	return strconv.ParseBool(value)
}
