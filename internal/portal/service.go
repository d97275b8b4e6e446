// Package portal composes the signed-in experience: it loads the patient
// profile, drives the root view state machine and submits questionnaire
// answers, reporting every outcome through the notice board.
package portal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/forms"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/notice"
)

const (
	MsgProfileSaved      = "Profile saved successfully!"
	MsgResponseSubmitted = "Response submitted successfully!"
	MsgResponseDeleted   = "Response deleted successfully!"
)

// PatientRepository is the profile side of the data service.
type PatientRepository interface {
	First(ctx context.Context, owner string) (*models.Patient, error)
	Create(ctx context.Context, owner string, patient *models.Patient) error
	Update(ctx context.Context, owner string, patient *models.Patient) error
}

// ResponseRepository is the write side of the response data service.
type ResponseRepository interface {
	Create(ctx context.Context, owner string, response *models.FormResponse) error
	Delete(ctx context.Context, owner, id string) error
}

// Failure is the last error a session hit, as shown to the patient.
type Failure struct {
	Kind      apperr.Kind       `json:"kind"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable"`
}

// View is what the client renders for a session.
type View struct {
	State       State              `json:"state"`
	Profile     *models.Patient    `json:"profile,omitempty"`
	DisplayName string             `json:"displayName,omitempty"`
	Form        *forms.ProfileForm `json:"form,omitempty"`
	Notice      *notice.Notice     `json:"notice,omitempty"`
	Error       *Failure           `json:"error,omitempty"`
}

type session struct {
	mu      sync.Mutex
	machine *Machine
	profile *models.Patient
	failure *apperr.Error
}

// Service owns the portal sessions of every signed-in user.
type Service struct {
	patients  PatientRepository
	responses ResponseRepository
	board     *notice.Board
	lockout   *notice.Lockout
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates a Service.
func NewService(patients PatientRepository, responses ResponseRepository, board *notice.Board, lockout *notice.Lockout, log *zap.Logger) *Service {
	return &Service{
		patients:  patients,
		responses: responses,
		board:     board,
		lockout:   lockout,
		log:       log.Named("portal"),
		sessions:  make(map[string]*session),
	}
}

// Load starts a fresh session for owner and fetches the profile.
func (s *Service) Load(ctx context.Context, owner string) (View, error) {
	sess := &session{machine: NewMachine()}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.mu.Lock()
	s.sessions[owner] = sess
	s.mu.Unlock()

	err := s.fetchProfile(ctx, owner, sess)
	return s.view(owner, sess), err
}

// View returns the current view of an existing session.
func (s *Service) View(owner string) (View, bool) {
	sess := s.lookup(owner)
	if sess == nil {
		return View{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(owner, sess), true
}

// Retry leaves the error state and fetches the profile again.
func (s *Service) Retry(ctx context.Context, owner string) (View, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, err := sess.machine.Fire(EventRetry); err != nil {
		return s.view(owner, sess), err
	}
	sess.failure = nil
	err = s.fetchProfile(ctx, owner, sess)
	return s.view(owner, sess), err
}

// Navigate applies a user navigation event.
func (s *Service) Navigate(ctx context.Context, owner string, ev Event) (View, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if _, err := sess.machine.Fire(ev); err != nil {
		return s.view(owner, sess), err
	}
	sess.failure = nil
	return s.view(owner, sess), nil
}

// ProfileForm returns the profile form prefilled from the saved profile.
func (s *Service) ProfileForm(ctx context.Context, owner string) (*forms.ProfileForm, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := loadFailure(sess); err != nil {
		return nil, err
	}
	return forms.NewProfileForm(sess.profile), nil
}

// Profile returns the saved profile.
func (s *Service) Profile(ctx context.Context, owner string) (*models.Patient, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := loadFailure(sess); err != nil {
		return nil, err
	}
	if sess.profile == nil {
		return nil, apperr.NotFound("No profile has been saved yet")
	}
	return sess.profile, nil
}

// SaveProfile validates form and creates or updates the owner's profile.
// Nothing is written when validation fails.
func (s *Service) SaveProfile(ctx context.Context, owner string, form *forms.ProfileForm) (View, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := loadFailure(sess); err != nil {
		return s.view(owner, sess), err
	}
	switch sess.machine.State() {
	case StateEditingProfile, StateDashboard, StateQuestionnaire:
	default:
		_, err := sess.machine.Fire(EventProfileSaved)
		return s.view(owner, sess), err
	}

	if err := form.Validate(); err != nil {
		err = s.fail(owner, sess, "validate profile", err)
		v := s.view(owner, sess)
		v.Error = failureOf(apperr.From(err))
		return v, err
	}

	patient := &models.Patient{}
	if sess.profile != nil {
		*patient = *sess.profile
	}
	form.Apply(patient)

	if sess.profile == nil {
		err = s.patients.Create(ctx, owner, patient)
	} else {
		err = s.patients.Update(ctx, owner, patient)
	}
	if err != nil {
		return s.view(owner, sess), s.fail(owner, sess, "save profile", err)
	}

	sess.profile = patient
	sess.failure = nil
	if sess.machine.State() == StateEditingProfile {
		sess.machine.Fire(EventProfileSaved)
	}
	s.board.Success(owner, MsgProfileSaved)
	s.log.Info("profile saved", zap.String("owner", owner), zap.String("patientId", patient.ID))
	return s.view(owner, sess), nil
}

// SubmitAssessment validates and stores a health assessment.
func (s *Service) SubmitAssessment(ctx context.Context, owner string, form *forms.AssessmentForm) (*models.FormResponse, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := loadFailure(sess); err != nil {
		return nil, err
	}
	if sess.profile == nil {
		return nil, s.fail(owner, sess, "submit assessment", apperr.Conflict("Please complete your profile first"))
	}
	payload, err := form.Submit()
	if err != nil {
		return nil, s.fail(owner, sess, "validate assessment", err)
	}

	response, err := models.NewFormResponse(sess.profile.ID, models.FormTypeHealthAssessment, payload, time.Now())
	if err != nil {
		return nil, s.fail(owner, sess, "encode assessment", apperr.Internal("Could not encode the answers", err))
	}
	if err := s.responses.Create(ctx, owner, response); err != nil {
		return nil, s.fail(owner, sess, "submit assessment", err)
	}

	sess.failure = nil
	if sess.machine.State() == StateQuestionnaire {
		sess.machine.Fire(EventQuestionnaireSubmitted)
	}
	s.board.Success(owner, MsgResponseSubmitted)
	s.log.Info("assessment submitted", zap.String("owner", owner), zap.String("responseId", response.ID))
	return response, nil
}

// SubmitCheckin stores one daily check-in answer. The same question cannot
// be answered again until the resubmit lockout has passed.
func (s *Service) SubmitCheckin(ctx context.Context, owner string, answer *forms.CheckinAnswer) (*models.FormResponse, error) {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := loadFailure(sess); err != nil {
		return nil, err
	}
	if sess.profile == nil {
		return nil, s.fail(owner, sess, "submit check-in", apperr.Conflict("Please complete your profile first"))
	}

	key := owner + "/" + answer.Question().ID
	if !s.lockout.Acquire(key) {
		return nil, apperr.RateLimited("This question was just answered, please wait a moment")
	}

	payload, err := answer.Submit()
	if err != nil {
		s.lockout.Release(key)
		return nil, s.fail(owner, sess, "validate check-in", err)
	}
	response, err := models.NewFormResponse(sess.profile.ID, models.FormTypeDailyCheckin, payload, time.Now())
	if err != nil {
		s.lockout.Release(key)
		return nil, s.fail(owner, sess, "encode check-in", apperr.Internal("Could not encode the answer", err))
	}
	if err := s.responses.Create(ctx, owner, response); err != nil {
		s.lockout.Release(key)
		return nil, s.fail(owner, sess, "submit check-in", err)
	}

	sess.failure = nil
	s.board.Success(owner, MsgResponseSubmitted)
	s.log.Info("check-in submitted",
		zap.String("owner", owner),
		zap.String("questionId", payload.QuestionID),
		zap.String("responseId", response.ID))
	return response, nil
}

// DeleteResponse removes one of the owner's responses. Live lists drop it on
// their next delivery.
func (s *Service) DeleteResponse(ctx context.Context, owner, id string) error {
	sess, err := s.ensure(ctx, owner)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.responses.Delete(ctx, owner, id); err != nil {
		return s.fail(owner, sess, "delete response", err)
	}
	sess.failure = nil
	s.board.Success(owner, MsgResponseDeleted)
	s.log.Info("response deleted", zap.String("owner", owner), zap.String("responseId", id))
	return nil
}

// SignOut ends the owner's session and clears its notice.
func (s *Service) SignOut(owner string) View {
	s.mu.Lock()
	sess := s.sessions[owner]
	delete(s.sessions, owner)
	s.mu.Unlock()

	if sess != nil {
		sess.mu.Lock()
		sess.machine.Fire(EventSignOut)
		sess.mu.Unlock()
	}
	s.board.Dismiss(owner)
	s.log.Info("signed out", zap.String("owner", owner))
	return View{State: StateSignedOut}
}

// Sessions is the number of live sessions.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) lookup(owner string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[owner]
}

// ensure returns the owner's session, loading one first if none exists.
func (s *Service) ensure(ctx context.Context, owner string) (*session, error) {
	if sess := s.lookup(owner); sess != nil {
		return sess, nil
	}
	if _, err := s.Load(ctx, owner); err != nil {
		return nil, err
	}
	sess := s.lookup(owner)
	if sess == nil {
		return nil, apperr.Conflict("The session ended while loading")
	}
	return sess, nil
}

// fetchProfile runs the loading-profile step. The caller holds sess.mu.
func (s *Service) fetchProfile(ctx context.Context, owner string, sess *session) error {
	patient, err := s.patients.First(ctx, owner)
	switch {
	case err == nil:
		sess.profile = patient
		sess.machine.Fire(EventProfileFound)
		return nil
	case apperr.Is(err, apperr.KindNotFound):
		sess.profile = nil
		sess.machine.Fire(EventProfileMissing)
		return nil
	}
	sess.machine.Fire(EventFailed)
	err = s.fail(owner, sess, "load profile", err)
	sess.failure = apperr.From(err)
	return err
}

// loadFailure is the error a session in the error state keeps reporting
// until it is retried.
func loadFailure(sess *session) error {
	if sess.machine.State() != StateError {
		return nil
	}
	if sess.failure != nil {
		return sess.failure
	}
	return apperr.Unavailable("The profile could not be loaded, please retry", nil)
}

// fail logs err and posts an error notice. Backend failures stay on the
// session until the next success; rejected requests are only returned.
func (s *Service) fail(owner string, sess *session, op string, err error) error {
	appErr := apperr.From(err)

	fields := []zap.Field{
		zap.String("owner", owner),
		zap.String("op", op),
		zap.String("kind", string(appErr.Kind)),
	}
	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindNotFound:
		s.log.Info("request rejected", append(fields, zap.String("reason", appErr.Summary()))...)
	default:
		sess.failure = appErr
		s.log.Error("operation failed", append(fields, zap.Error(err))...)
	}

	s.board.Error(owner, appErr.Message)
	return appErr
}

func (s *Service) view(owner string, sess *session) View {
	v := View{State: sess.machine.State(), Profile: sess.profile}
	if sess.profile != nil {
		v.DisplayName = sess.profile.FullName()
	}
	if v.State == StateEditingProfile {
		v.Form = forms.NewProfileForm(sess.profile)
	}
	if n, ok := s.board.Current(owner); ok {
		v.Notice = &n
	}
	v.Error = failureOf(sess.failure)
	return v
}

func failureOf(e *apperr.Error) *Failure {
	if e == nil {
		return nil
	}
	return &Failure{Kind: e.Kind, Message: e.Message, Fields: e.Fields, Retryable: e.Retryable}
}
