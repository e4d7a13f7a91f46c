// Package workflow holds the application state of one profile-building session
// and the step transitions between discovery, input, processing and result.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/profile-architect/internal/document"
	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/types"
)

// Step is a position in the session workflow.
type Step string

const (
	StepDiscovery  Step = "discovery"
	StepInput      Step = "input"
	StepProcessing Step = "processing"
	StepResult     Step = "result"
)

// ErrWrongStep is returned when an action is not allowed in the current step.
var ErrWrongStep = errors.New("action not allowed in the current step")

// fallbackErrorMessage is recorded when generation fails without a stage message.
const fallbackErrorMessage = "An error occurred during generation."

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Step      Step                                  `json:"step"`
	Discovery types.DiscoveryAnswers                `json:"discovery"`
	Personal  types.PersonalDetails                 `json:"personal"`
	Profile   types.ProfileData                     `json:"profile"`
	Portrait  string                                `json:"portrait,omitempty"`
	Result    *types.GeneratedProfile               `json:"result"`
	Error     string                                `json:"error,omitempty"`
	Stages    map[generation.Stage]generation.State `json:"stages"`
}

// Session is the state of one user working through the workflow.
type Session struct {
	mu        sync.Mutex
	step      Step
	discovery types.DiscoveryAnswers
	personal  types.PersonalDetails
	profile   types.ProfileData
	portrait  string
	lastErr   string
	// run changes on Reset and BackToInput so a finishing submission can tell it was superseded.
	run uint64

	orch *generation.Orchestrator
}

// NewSession starts a session at the discovery step with default answers.
func NewSession(client llm.Client, opts ...generation.Option) *Session {
	return &Session{
		step:      StepDiscovery,
		discovery: types.DefaultDiscoveryAnswers(),
		orch:      generation.NewOrchestrator(client, document.NewStore(), opts...),
	}
}

// Orchestrator exposes the stage runner, mainly for event subscription.
func (s *Session) Orchestrator() *generation.Orchestrator {
	return s.orch
}

// Store exposes the document store for in-place edits.
func (s *Session) Store() *document.Store {
	return s.orch.Store()
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Error returns the message of the last failed generation, if any.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages := make(map[generation.Stage]generation.State, len(generation.Stages))
	for _, st := range generation.Stages {
		stages[st] = s.orch.State(st)
	}
	return Snapshot{
		Step:      s.step,
		Discovery: s.discovery,
		Personal:  s.personal,
		Profile:   s.profile,
		Portrait:  s.portrait,
		Result:    s.orch.Store().Current(),
		Error:     s.lastErr,
		Stages:    stages,
	}
}

// Inputs returns the answers and details the session currently holds.
func (s *Session) Inputs() (types.DiscoveryAnswers, types.PersonalDetails, types.ProfileData, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discovery, s.personal, s.profile, s.portrait
}

// SubmitDiscovery records the strategy answers and moves to the input step.
func (s *Session) SubmitDiscovery(answers types.DiscoveryAnswers) error {
	if err := answers.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepDiscovery {
		return fmt.Errorf("%w: cannot submit discovery during %s", ErrWrongStep, s.step)
	}
	s.discovery = answers
	s.step = StepInput
	return nil
}

// SubmitProfile records the personal details and source material, then runs generation.
// Success moves to the result step; failure returns to the input step with the error recorded.
func (s *Session) SubmitProfile(ctx context.Context, personal types.PersonalDetails, profile types.ProfileData, portrait string) (*types.GeneratedProfile, error) {
	if err := personal.Validate(); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.step != StepInput {
		step := s.step
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit profile during %s", ErrWrongStep, step)
	}
	s.personal = personal
	s.profile = profile
	s.portrait = portrait
	s.lastErr = ""
	s.step = StepProcessing
	run := s.run
	discovery := s.discovery
	s.mu.Unlock()

	doc, err := s.orch.Generate(ctx, discovery, personal, profile)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		// the session was reset or sent back while generating
		if err == nil {
			err = generation.ErrStaleResult
		}
		return nil, err
	}
	if err != nil {
		s.step = StepInput
		s.lastErr = userMessage(err)
		return nil, err
	}
	s.step = StepResult
	return doc, nil
}

// Refine rewrites the current profile. Failures leave the document and step untouched.
func (s *Session) Refine(ctx context.Context, instruction string) (*types.GeneratedProfile, error) {
	s.mu.Lock()
	if s.step != StepResult {
		step := s.step
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot refine during %s", ErrWrongStep, step)
	}
	personal, profile := s.personal, s.profile
	s.mu.Unlock()

	return s.orch.Refine(ctx, instruction, profile, personal)
}

// GenerateCoverLetter writes or replaces the cover letter of the current profile.
func (s *Session) GenerateCoverLetter(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.step != StepResult {
		step := s.step
		s.mu.Unlock()
		return "", fmt.Errorf("%w: cannot generate a cover letter during %s", ErrWrongStep, step)
	}
	discovery, personal := s.discovery, s.personal
	s.mu.Unlock()

	return s.orch.GenerateCoverLetter(ctx, discovery, personal)
}

// PatchSection edits the content of one section in place.
func (s *Session) PatchSection(index int, content string) (bool, error) {
	if err := s.requireStep(StepResult, "edit"); err != nil {
		return false, err
	}
	return s.Store().PatchSection(index, content), nil
}

// PatchSummary edits the executive summary in place.
func (s *Session) PatchSummary(content string) (bool, error) {
	if err := s.requireStep(StepResult, "edit"); err != nil {
		return false, err
	}
	return s.Store().PatchSummary(content), nil
}

// PatchPositioning edits the positioning line in place.
func (s *Session) PatchPositioning(content string) (bool, error) {
	if err := s.requireStep(StepResult, "edit"); err != nil {
		return false, err
	}
	return s.Store().PatchPositioning(content), nil
}

// BackToDiscovery returns from the input step to the discovery answers.
func (s *Session) BackToDiscovery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepInput {
		return fmt.Errorf("%w: cannot go back to discovery from %s", ErrWrongStep, s.step)
	}
	s.step = StepDiscovery
	return nil
}

// BackToInput leaves the result view to edit the inputs. The generated document is discarded
// and any in-flight refine or cover letter result will be dropped.
func (s *Session) BackToInput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepResult {
		return fmt.Errorf("%w: cannot go back to input from %s", ErrWrongStep, s.step)
	}
	s.step = StepInput
	s.lastErr = ""
	s.run++
	s.orch.Store().Reset()
	return nil
}

// Reset starts a new narrative: every input, the document and the error are cleared.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = StepDiscovery
	s.discovery = types.DefaultDiscoveryAnswers()
	s.personal = types.PersonalDetails{}
	s.profile = types.ProfileData{}
	s.portrait = ""
	s.lastErr = ""
	s.run++
	s.orch.Store().Reset()
}

func (s *Session) requireStep(step Step, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != step {
		return fmt.Errorf("%w: cannot %s during %s", ErrWrongStep, action, s.step)
	}
	return nil
}

// userMessage picks the text shown on the input step after a failed generation.
func userMessage(err error) string {
	var stageErr *generation.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Message
	}
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, generation.ErrStageBusy) {
		return err.Error()
	}
	return fallbackErrorMessage
}
