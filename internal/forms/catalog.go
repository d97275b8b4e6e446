package forms

import "strconv"

// QuestionType drives how a client renders a question.
type QuestionType string

const (
	TypeRange    QuestionType = "range"
	TypeRadio    QuestionType = "radio"
	TypeCheckbox QuestionType = "checkbox"
	TypeTextarea QuestionType = "textarea"
	TypeSelect   QuestionType = "select"
	TypeBoolean  QuestionType = "boolean"
)

// Question describes one field of a questionnaire.
type Question struct {
	ID       string       `json:"id"`
	Section  string       `json:"section,omitempty"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  []Option     `json:"options,omitempty"`
	Required bool         `json:"required"`
	Min      int          `json:"min,omitempty"`
	Max      int          `json:"max,omitempty"`
	Default  string       `json:"default,omitempty"`
}

func (q Question) hasOption(value string) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func painLevelOptions() []Option {
	options := make([]Option, 0, 11)
	for i := 0; i <= 10; i++ {
		label := strconv.Itoa(i)
		switch i {
		case 0:
			label += " - No pain"
		case 5:
			label += " - Moderate pain"
		case 10:
			label += " - Worst possible pain"
		}
		options = append(options, Option{Value: strconv.Itoa(i), Label: label})
	}
	return options
}

// Assessment field names.
const (
	FieldPainLevel               = "painLevel"
	FieldPainLocation            = "painLocation"
	FieldPainDuration            = "painDuration"
	FieldCurrentMedications      = "currentMedications"
	FieldMedicationAllergies     = "medicationAllergies"
	FieldRecentMedicationChanges = "recentMedicationChanges"
)

// AssessmentQuestions is the health assessment: a pain section and a
// medication section.
var AssessmentQuestions = []Question{
	{
		ID:       FieldPainLevel,
		Section:  "Pain Assessment",
		Text:     "On a scale of 0-10, how would you rate your pain today?",
		Type:     TypeSelect,
		Options:  painLevelOptions(),
		Required: true,
	},
	{
		ID:      FieldPainLocation,
		Section: "Pain Assessment",
		Text:    "Where are you experiencing pain? (Check all that apply)",
		Type:    TypeCheckbox,
		Options: []Option{
			{Value: "head", Label: "Head"},
			{Value: "neck", Label: "Neck"},
			{Value: "back", Label: "Back"},
			{Value: "chest", Label: "Chest"},
			{Value: "abdomen", Label: "Abdomen"},
			{Value: "limbs", Label: "Arms/Legs"},
		},
	},
	{
		ID:      FieldPainDuration,
		Section: "Pain Assessment",
		Text:    "How long have you been experiencing this pain?",
		Type:    TypeSelect,
		Options: []Option{
			{Value: "less-than-day", Label: "Less than a day"},
			{Value: "1-3-days", Label: "1-3 days"},
			{Value: "4-7-days", Label: "4-7 days"},
			{Value: "1-2-weeks", Label: "1-2 weeks"},
			{Value: "2-4-weeks", Label: "2-4 weeks"},
			{Value: "1-3-months", Label: "1-3 months"},
			{Value: "3-6-months", Label: "3-6 months"},
			{Value: "more-than-6-months", Label: "More than 6 months"},
		},
		Required: true,
	},
	{
		ID:      FieldCurrentMedications,
		Section: "Medication Information",
		Text:    "Please list all medications you are currently taking:",
		Type:    TypeTextarea,
	},
	{
		ID:      FieldMedicationAllergies,
		Section: "Medication Information",
		Text:    "Do you have any medication allergies? If yes, please list:",
		Type:    TypeTextarea,
	},
	{
		ID:      FieldRecentMedicationChanges,
		Section: "Medication Information",
		Text:    "Have you had any changes to your medication in the past 30 days?",
		Type:    TypeBoolean,
	},
}

// CheckinQuestions is the short daily check-in, answered one question at a time.
var CheckinQuestions = []Question{
	{
		ID:       "q1",
		Text:     "On a scale of 1-10, how would you rate your pain today?",
		Type:     TypeRange,
		Min:      1,
		Max:      10,
		Default:  "5",
		Required: true,
	},
	{
		ID:   "q2",
		Text: "Have you taken your prescribed medication today?",
		Type: TypeRadio,
		Options: []Option{
			{Value: "Yes", Label: "Yes"},
			{Value: "No", Label: "No"},
		},
		Required: true,
	},
	{
		ID:   "q3",
		Text: "Which symptoms are you experiencing today? (Select all that apply)",
		Type: TypeCheckbox,
		Options: []Option{
			{Value: "Headache", Label: "Headache"},
			{Value: "Fatigue", Label: "Fatigue"},
			{Value: "Fever", Label: "Fever"},
			{Value: "Nausea", Label: "Nausea"},
			{Value: "Muscle pain", Label: "Muscle pain"},
		},
		Required: true,
	},
	{
		ID:       "q4",
		Text:     "Please describe how you're feeling today:",
		Type:     TypeTextarea,
		Required: true,
	},
}

func findQuestion(questions []Question, id string) (Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
