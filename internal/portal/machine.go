package portal

import (
	"errors"
	"fmt"

	"patient-portal-server/internal/apperr"
)

// State is the view the portal is showing.
type State string

const (
	StateLoadingProfile State = "loading-profile"
	StateProfileMissing State = "profile-missing"
	StateEditingProfile State = "editing-profile"
	StateDashboard      State = "dashboard"
	StateQuestionnaire  State = "questionnaire"
	StateError          State = "error"
	StateSignedOut      State = "signed-out"
)

// Event drives a transition.
type Event string

const (
	EventProfileFound           Event = "profile-found"
	EventProfileMissing         Event = "profile-missing"
	EventEdit                   Event = "edit"
	EventCancel                 Event = "cancel"
	EventOpenQuestionnaire      Event = "open-questionnaire"
	EventProfileSaved           Event = "profile-saved"
	EventQuestionnaireSubmitted Event = "questionnaire-submitted"
	EventFailed                 Event = "failed"
	EventRetry                  Event = "retry"
	EventSignOut                Event = "sign-out"
)

// ErrInvalidTransition is wrapped by every rejected event.
var ErrInvalidTransition = errors.New("invalid transition")

// ParseNavigation accepts the events a user can trigger directly.
func ParseNavigation(s string) (Event, error) {
	switch e := Event(s); e {
	case EventEdit, EventCancel, EventOpenQuestionnaire:
		return e, nil
	}
	return "", apperr.Field("event", "must be one of edit, cancel, open-questionnaire")
}

// Machine is the root view state machine of one session.
type Machine struct {
	state      State
	hasProfile bool
}

// NewMachine starts in loading-profile.
func NewMachine() *Machine {
	return &Machine{state: StateLoadingProfile}
}

func (m *Machine) State() State {
	return m.state
}

// HasProfile reports whether a saved profile exists for the session.
func (m *Machine) HasProfile() bool {
	return m.hasProfile
}

// Fire applies ev and returns the resulting state. A missing profile passes
// through profile-missing straight into editing-profile.
func (m *Machine) Fire(ev Event) (State, error) {
	next, ok := m.next(ev)
	if !ok {
		return m.state, &apperr.Error{
			Kind:    apperr.KindConflict,
			Message: fmt.Sprintf("Cannot %s from %s", ev, m.state),
			Err:     ErrInvalidTransition,
		}
	}

	switch ev {
	case EventProfileFound, EventProfileSaved:
		m.hasProfile = true
	case EventProfileMissing:
		m.hasProfile = false
	}
	if next == StateProfileMissing {
		next = StateEditingProfile
	}
	m.state = next
	return next, nil
}

func (m *Machine) next(ev Event) (State, bool) {
	if m.state == StateSignedOut {
		return "", false
	}
	if ev == EventSignOut {
		return StateSignedOut, true
	}

	switch m.state {
	case StateLoadingProfile:
		switch ev {
		case EventProfileFound:
			return StateDashboard, true
		case EventProfileMissing:
			return StateProfileMissing, true
		case EventFailed:
			return StateError, true
		}
	case StateDashboard:
		switch ev {
		case EventEdit:
			return StateEditingProfile, true
		case EventOpenQuestionnaire:
			return StateQuestionnaire, true
		}
	case StateEditingProfile:
		switch ev {
		case EventProfileSaved:
			return StateDashboard, true
		case EventCancel:
			if m.hasProfile {
				return StateDashboard, true
			}
			return StateEditingProfile, true
		}
	case StateQuestionnaire:
		switch ev {
		case EventQuestionnaireSubmitted, EventCancel:
			return StateDashboard, true
		}
	case StateError:
		if ev == EventRetry {
			return StateLoadingProfile, true
		}
	}
	return "", false
}
