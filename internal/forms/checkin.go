package forms

import (
	"strconv"
	"strings"

	"patient-portal-server/internal/apperr"
)

// Messages shown when a check-in answer is rejected.
const (
	MsgSelectAtLeastOne = "Please select at least one option"
	MsgProvideResponse  = "Please provide a response"
)

// CheckinPayload is one answered check-in question.
type CheckinPayload struct {
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	Answer       string   `json:"answer"`
	Options      []string `json:"options,omitempty"`
}

// CheckinRequest is the submitted body of one check-in answer. Checkbox
// questions use Options, every other type uses Answer.
type CheckinRequest struct {
	Answer  string   `json:"answer"`
	Options []string `json:"options"`
}

// CheckinAnswer collects the answer to a single check-in question.
type CheckinAnswer struct {
	question   Question
	value      string
	selections *OptionSet
}

// NewCheckinAnswer starts an answer for the question with id.
func NewCheckinAnswer(id string) (*CheckinAnswer, error) {
	q, ok := findQuestion(CheckinQuestions, id)
	if !ok {
		return nil, apperr.NotFound("Unknown question " + id)
	}
	a := &CheckinAnswer{question: q, value: q.Default}
	if q.Type == TypeCheckbox {
		a.selections = NewOptionSet(q.Options)
	}
	return a, nil
}

// CheckinAnswerFromRequest binds a submitted body.
func CheckinAnswerFromRequest(id string, req CheckinRequest) (*CheckinAnswer, error) {
	a, err := NewCheckinAnswer(id)
	if err != nil {
		return nil, err
	}
	if a.selections != nil {
		for _, opt := range req.Options {
			if err := a.Toggle(opt, true); err != nil {
				return nil, err
			}
		}
		return a, nil
	}
	if req.Answer != "" {
		a.Set(req.Answer)
	}
	return a, nil
}

// Question is the question being answered.
func (a *CheckinAnswer) Question() Question {
	return a.question
}

// Set records the answer of a non-checkbox question.
func (a *CheckinAnswer) Set(value string) {
	a.value = value
}

// Toggle checks or unchecks a checkbox option.
func (a *CheckinAnswer) Toggle(option string, checked bool) error {
	if a.selections == nil {
		return apperr.Field(a.question.ID, "is not a multi-select question")
	}
	if err := a.selections.Toggle(option, checked); err != nil {
		return apperr.Field(a.question.ID, "unknown option "+option)
	}
	return nil
}

// Encoded is the display form of the current answer.
func (a *CheckinAnswer) Encoded() string {
	if a.selections != nil {
		return a.selections.Encode()
	}
	return a.value
}

// Submit validates the answer and returns its payload.
func (a *CheckinAnswer) Submit() (CheckinPayload, error) {
	q := a.question
	payload := CheckinPayload{QuestionID: q.ID, QuestionText: q.Text}

	if a.selections != nil {
		if a.selections.Len() == 0 {
			return CheckinPayload{}, apperr.Field(q.ID, MsgSelectAtLeastOne)
		}
		payload.Answer = a.selections.Encode()
		payload.Options = a.selections.Values()
		return payload, nil
	}

	value := strings.TrimSpace(a.value)
	if value == "" {
		return CheckinPayload{}, apperr.Field(q.ID, MsgProvideResponse)
	}
	switch q.Type {
	case TypeRange:
		n, err := strconv.Atoi(value)
		if err != nil || n < q.Min || n > q.Max {
			return CheckinPayload{}, apperr.Field(q.ID, "must be a number from "+strconv.Itoa(q.Min)+" to "+strconv.Itoa(q.Max))
		}
	case TypeRadio:
		if !q.hasOption(value) {
			return CheckinPayload{}, apperr.Field(q.ID, "is not one of the offered choices")
		}
	}
	payload.Answer = value
	return payload, nil
}
