package forms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/models"
)

func validProfile() *ProfileForm {
	return &ProfileForm{
		FirstName:   "Ana",
		LastName:    "Lima",
		DateOfBirth: "1988-02-29",
		Email:       "ana@example.com",
	}
}

func TestProfileForm_RequiredFields(t *testing.T) {
	require.NoError(t, validProfile().Validate())

	for _, field := range []string{"firstName", "lastName", "dateOfBirth", "email"} {
		t.Run(field, func(t *testing.T) {
			f := validProfile()
			require.NoError(t, f.Set(field, "   "))

			err := f.Validate()
			require.Error(t, err)
			appErr := apperr.From(err)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, "is required", appErr.Fields[field])
			assert.Len(t, appErr.Fields, 1)
		})
	}
}

func TestProfileForm_Formats(t *testing.T) {
	f := validProfile()
	f.Email = "not-an-email"
	f.DateOfBirth = "12/04/1990"

	appErr := apperr.From(f.Validate())
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "dateOfBirth")
}

func TestProfileForm_InitialDataAndApply(t *testing.T) {
	assert.Equal(t, &ProfileForm{}, NewProfileForm(nil))

	existing := &models.Patient{FirstName: "Ana", LastName: "Lima", Email: "ana@example.com", Address: "1 Rua"}
	f := NewProfileForm(existing)
	assert.Equal(t, "1 Rua", f.Address)

	require.NoError(t, f.Set("medicalHistory", "asthma"))
	assert.Error(t, f.Set("ssn", "123"))

	var p models.Patient
	f.Apply(&p)
	assert.Equal(t, "asthma", p.MedicalHistory)
	assert.Equal(t, "Lima", p.LastName)
}

func TestAssessment_Payload(t *testing.T) {
	f := NewAssessmentForm()
	require.NoError(t, f.Set(FieldPainLevel, "5"))
	require.NoError(t, f.Set(FieldPainDuration, "1-3-days"))
	require.NoError(t, f.Set(FieldCurrentMedications, ""))

	payload, err := f.Submit()
	require.NoError(t, err)

	assert.Equal(t, "5", payload.PainLevel)
	assert.Equal(t, "1-3-days", payload.PainDuration)
	assert.Equal(t, "", payload.CurrentMedications)
	assert.Empty(t, payload.PainLocation)
	assert.False(t, payload.RecentMedicationChanges)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"painLevel": "5",
		"painLocation": [],
		"painDuration": "1-3-days",
		"currentMedications": "",
		"medicationAllergies": "",
		"recentMedicationChanges": false
	}`, string(raw))
}

func TestAssessment_RequiredAndEnumerated(t *testing.T) {
	f := NewAssessmentForm()
	appErr := apperr.From(f.Validate())
	require.NotNil(t, appErr)
	assert.Equal(t, "is required", appErr.Fields[FieldPainLevel])
	assert.Equal(t, "is required", appErr.Fields[FieldPainDuration])

	require.NoError(t, f.Set(FieldPainLevel, "11"))
	require.NoError(t, f.Set(FieldPainDuration, "forever"))
	appErr = apperr.From(f.Validate())
	assert.Contains(t, appErr.Fields, FieldPainLevel)
	assert.Contains(t, appErr.Fields, FieldPainDuration)

	assert.Error(t, f.Set(FieldPainLocation, "head"))
	assert.Error(t, f.Set("mood", "fine"))
	assert.Error(t, f.Toggle(FieldPainLevel, "5", true))
	assert.Error(t, f.Toggle(FieldPainLocation, "tail", true))
}

func TestAssessment_ToggleOnOffMatchesNeverToggled(t *testing.T) {
	untouched := NewAssessmentForm()

	toggled := NewAssessmentForm()
	require.NoError(t, toggled.Toggle(FieldPainLocation, "neck", true))
	require.NoError(t, toggled.Toggle(FieldPainLocation, "neck", false))

	assert.Equal(t, untouched.multi[FieldPainLocation].Encode(), toggled.multi[FieldPainLocation].Encode())
	assert.Equal(t, untouched.Payload(), toggled.Payload())
}

func TestAssessment_SelectionIsCatalogOrdered(t *testing.T) {
	f := NewAssessmentForm()
	require.NoError(t, f.Toggle(FieldPainLocation, "limbs", true))
	require.NoError(t, f.Toggle(FieldPainLocation, "head", true))
	require.NoError(t, f.Toggle(FieldPainLocation, "back", true))

	assert.Equal(t, []string{"head", "back", "limbs"}, f.Payload().PainLocation)
	assert.Equal(t, "Head, Back, Arms/Legs", f.multi[FieldPainLocation].Encode())
}

func TestAssessment_FromRequest(t *testing.T) {
	f, err := AssessmentFormFromRequest(AssessmentPayload{
		PainLevel:               "7",
		PainLocation:            []string{"chest", "head", "chest"},
		PainDuration:            "2-4-weeks",
		RecentMedicationChanges: true,
	})
	require.NoError(t, err)

	payload, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, []string{"head", "chest"}, payload.PainLocation)
	assert.True(t, payload.RecentMedicationChanges)

	answers := f.Answers()
	assert.Equal(t, "7", answers[FieldPainLevel])
	assert.Equal(t, true, answers[FieldRecentMedicationChanges])

	_, err = AssessmentFormFromRequest(AssessmentPayload{PainLocation: []string{"elbow"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAssessment_StoredPayloadBindsBack(t *testing.T) {
	stored := AssessmentPayload{
		PainLevel:           "3",
		PainLocation:        []string{"back", "limbs"},
		PainDuration:        "less-than-day",
		CurrentMedications:  "ibuprofen",
		MedicationAllergies: "none",
	}
	f, err := AssessmentFormFromRequest(stored)
	require.NoError(t, err)

	payload, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, stored, payload)
}

func TestAssessment_CheckboxSpellings(t *testing.T) {
	f := NewAssessmentForm()
	require.NoError(t, f.Set(FieldRecentMedicationChanges, "on"))
	assert.True(t, f.Payload().RecentMedicationChanges)
	require.NoError(t, f.Set(FieldRecentMedicationChanges, ""))
	assert.False(t, f.Payload().RecentMedicationChanges)
	assert.Error(t, f.Set(FieldRecentMedicationChanges, "maybe"))
}

func TestCheckin_EmptyMultiSelectRejected(t *testing.T) {
	a, err := NewCheckinAnswer("q3")
	require.NoError(t, err)

	_, err = a.Submit()
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, MsgSelectAtLeastOne, appErr.Fields["q3"])

	require.NoError(t, a.Toggle("Fever", true))
	require.NoError(t, a.Toggle("Fever", false))
	_, err = a.Submit()
	assert.Equal(t, MsgSelectAtLeastOne, apperr.From(err).Fields["q3"])
}

func TestCheckin_ToggleOnOffMatchesNeverToggled(t *testing.T) {
	never, err := NewCheckinAnswer("q3")
	require.NoError(t, err)
	require.NoError(t, never.Toggle("Headache", true))

	toggled, err := NewCheckinAnswer("q3")
	require.NoError(t, err)
	require.NoError(t, toggled.Toggle("Headache", true))
	require.NoError(t, toggled.Toggle("Nausea", true))
	require.NoError(t, toggled.Toggle("Nausea", false))

	assert.Equal(t, never.Encoded(), toggled.Encoded())
}

func TestCheckin_CheckboxPayload(t *testing.T) {
	a, err := CheckinAnswerFromRequest("q3", CheckinRequest{Options: []string{"Muscle pain", "Headache"}})
	require.NoError(t, err)

	payload, err := a.Submit()
	require.NoError(t, err)
	assert.Equal(t, "Headache, Muscle pain", payload.Answer)
	assert.Equal(t, []string{"Headache", "Muscle pain"}, payload.Options)

	_, err = CheckinAnswerFromRequest("q3", CheckinRequest{Options: []string{"Sneezing"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCheckin_TextAnswers(t *testing.T) {
	a, err := NewCheckinAnswer("q4")
	require.NoError(t, err)
	a.Set("  ")
	_, err = a.Submit()
	assert.Equal(t, MsgProvideResponse, apperr.From(err).Fields["q4"])

	a.Set("Better than yesterday")
	payload, err := a.Submit()
	require.NoError(t, err)
	assert.Equal(t, "Better than yesterday", payload.Answer)
	assert.Equal(t, "q4", payload.QuestionID)
}

func TestCheckin_RangeAndRadio(t *testing.T) {
	r, err := NewCheckinAnswer("q1")
	require.NoError(t, err)
	payload, err := r.Submit()
	require.NoError(t, err)
	assert.Equal(t, "5", payload.Answer, "range starts at its default")

	r.Set("11")
	_, err = r.Submit()
	assert.Error(t, err)

	radio, err := CheckinAnswerFromRequest("q2", CheckinRequest{Answer: "Maybe"})
	require.NoError(t, err)
	_, err = radio.Submit()
	assert.Error(t, err)

	assert.Error(t, radio.Toggle("Yes", true))

	_, err = NewCheckinAnswer("q9")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
