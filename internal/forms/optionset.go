package forms

import (
	"encoding/json"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"patient-portal-server/internal/apperr"
)

// Option is one enumerated choice of a select, radio or checkbox question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionSet is the answer to a multi-select question: a set of enumerated
// values that always lists in catalog order, so the same selection encodes
// the same way regardless of the order boxes were ticked.
type OptionSet struct {
	catalog  []Option
	selected mapset.Set[string]
}

// NewOptionSet creates an empty selection over catalog.
func NewOptionSet(catalog []Option) *OptionSet {
	return &OptionSet{catalog: catalog, selected: mapset.NewThreadUnsafeSet[string]()}
}

// Toggle checks or unchecks one option.
func (s *OptionSet) Toggle(value string, checked bool) error {
	if !s.known(value) {
		return apperr.Validation("Unknown option "+value, nil)
	}
	if checked {
		s.selected.Add(value)
	} else {
		s.selected.Remove(value)
	}
	return nil
}

// Contains reports whether value is checked.
func (s *OptionSet) Contains(value string) bool {
	return s.selected.Contains(value)
}

// Len is the number of checked options.
func (s *OptionSet) Len() int {
	return s.selected.Cardinality()
}

// Values lists the checked values in catalog order.
func (s *OptionSet) Values() []string {
	values := make([]string, 0, s.selected.Cardinality())
	for _, opt := range s.catalog {
		if s.selected.Contains(opt.Value) {
			values = append(values, opt.Value)
		}
	}
	return values
}

// Labels lists the checked labels in catalog order.
func (s *OptionSet) Labels() []string {
	labels := make([]string, 0, s.selected.Cardinality())
	for _, opt := range s.catalog {
		if s.selected.Contains(opt.Value) {
			labels = append(labels, opt.Label)
		}
	}
	return labels
}

// Encode is the comma-joined display form of the selection. It is for
// display only; the stored answer is the Values list.
func (s *OptionSet) Encode() string {
	return strings.Join(s.Labels(), ", ")
}

func (s *OptionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *OptionSet) known(value string) bool {
	for _, opt := range s.catalog {
		if opt.Value == value {
			return true
		}
	}
	return false
}
