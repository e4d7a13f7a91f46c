// Package generation runs the three model stages (generate, refine, cover letter)
// and applies successful results to the document store.
package generation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/profile-architect/internal/composer"
	"github.com/jonathan/profile-architect/internal/document"
	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/logging"
	"github.com/jonathan/profile-architect/internal/schemas"
	"github.com/jonathan/profile-architect/internal/types"
)

// Stage names one of the independent model calls.
type Stage string

const (
	StageGenerate    Stage = "generate"
	StageRefine      Stage = "refine"
	StageCoverLetter Stage = "cover-letter"
)

// Stages lists every stage in workflow order.
var Stages = []Stage{StageGenerate, StageRefine, StageCoverLetter}

// State is the lifecycle position of a stage.
type State string

const (
	StateIdle     State = "idle"
	StateInFlight State = "in-flight"
	StateSuccess  State = "success"
	StateFailure  State = "failure"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 2 * time.Minute

// StageEvent is published on every stage transition.
type StageEvent struct {
	Stage   Stage     `json:"stage"`
	State   State     `json:"state"`
	Message string    `json:"message,omitempty"`
	Kind    string    `json:"kind,omitempty"`
	Stale   bool      `json:"stale,omitempty"`
	At      time.Time `json:"at"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout sets the per-call timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Orchestrator dispatches stage requests, one in flight per stage.
type Orchestrator struct {
	client  llm.Client
	store   *document.Store
	timeout time.Duration

	mu      sync.Mutex
	states  map[Stage]State
	subs    map[int]chan StageEvent
	nextSub int
}

// NewOrchestrator wires a client to a store.
func NewOrchestrator(client llm.Client, store *document.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:  client,
		store:   store,
		timeout: DefaultTimeout,
		states:  make(map[Stage]State, len(Stages)),
		subs:    make(map[int]chan StageEvent),
	}
	for _, s := range Stages {
		o.states[s] = StateIdle
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the document store results are applied to.
func (o *Orchestrator) Store() *document.Store {
	return o.store
}

// State returns the current state of a stage.
func (o *Orchestrator) State(stage Stage) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[stage]
}

// InFlight reports whether any stage is waiting on the model.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, st := range o.states {
		if st == StateInFlight {
			return true
		}
	}
	return false
}

// Subscribe returns a channel of stage events and a function that ends the subscription.
// Slow subscribers miss events rather than blocking a stage.
func (o *Orchestrator) Subscribe() (<-chan StageEvent, func()) {
	ch := make(chan StageEvent, 16)

	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
			close(ch)
		})
	}
}

// Generate builds the initial profile from the three input groups and installs it in the store.
func (o *Orchestrator) Generate(ctx context.Context, discovery types.DiscoveryAnswers, personal types.PersonalDetails, profile types.ProfileData) (*types.GeneratedProfile, error) {
	epoch := o.store.Epoch()
	if err := discovery.Validate(); err != nil {
		return nil, err
	}
	if err := personal.Validate(); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	req, err := composer.BuildGenerationRequest(discovery, personal, profile)
	if err != nil {
		return nil, err
	}

	if err := o.begin(StageGenerate); err != nil {
		return nil, err
	}

	doc, err := o.callProfile(ctx, StageGenerate, req)
	if err != nil {
		return nil, o.fail(ctx, StageGenerate, err)
	}
	if !o.store.ReplaceIf(epoch, doc) {
		return nil, o.discard(ctx, StageGenerate)
	}
	o.succeed(ctx, StageGenerate)
	return o.store.Current(), nil
}

// Refine rewrites the current profile according to a free-text instruction.
// On failure the current document is left exactly as it was.
func (o *Orchestrator) Refine(ctx context.Context, instruction string, profile types.ProfileData, personal types.PersonalDetails) (*types.GeneratedProfile, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, types.NewValidationError("instruction", "notblank", "refinement instruction must not be empty")
	}
	current, epoch := o.store.Snapshot()
	if current == nil {
		return nil, ErrNoDocument
	}

	req, err := composer.BuildRefinementRequest(current, instruction, profile, personal)
	if err != nil {
		return nil, err
	}

	if err := o.begin(StageRefine); err != nil {
		return nil, err
	}

	doc, err := o.callProfile(ctx, StageRefine, req)
	if err != nil {
		return nil, o.fail(ctx, StageRefine, err)
	}
	if !o.store.ReplaceIfKeepingLetter(epoch, doc) {
		return nil, o.discard(ctx, StageRefine)
	}
	o.succeed(ctx, StageRefine)
	return o.store.Current(), nil
}

// GenerateCoverLetter writes a cover letter for the current profile and attaches it,
// replacing any previous letter.
func (o *Orchestrator) GenerateCoverLetter(ctx context.Context, discovery types.DiscoveryAnswers, personal types.PersonalDetails) (string, error) {
	current, epoch := o.store.Snapshot()
	if current == nil {
		return "", ErrNoDocument
	}

	req, err := composer.BuildCoverLetterRequest(current, discovery, personal)
	if err != nil {
		return "", err
	}

	if err := o.begin(StageCoverLetter); err != nil {
		return "", err
	}

	letter, err := o.call(ctx, StageCoverLetter, req)
	if err != nil {
		return "", o.fail(ctx, StageCoverLetter, err)
	}
	if !o.store.SetCoverLetterIf(epoch, letter) {
		return "", o.discard(ctx, StageCoverLetter)
	}
	o.succeed(ctx, StageCoverLetter)
	return letter, nil
}

// call runs the model request detached from caller cancellation, bounded by the timeout.
func (o *Orchestrator) call(ctx context.Context, stage Stage, req *llm.Request) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	start := time.Now()
	text, err := o.client.Generate(callCtx, req)
	logging.Ctx(ctx).Debug().
		Str("stage", string(stage)).
		Str("model", o.client.GetModel(req.Tier)).
		Int("attachments", len(req.Blobs())).
		Dur("duration", time.Since(start)).
		Msg("model call returned")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (o *Orchestrator) callProfile(ctx context.Context, stage Stage, req *llm.Request) (*types.GeneratedProfile, error) {
	raw, err := o.call(ctx, stage, req)
	if err != nil {
		return nil, err
	}
	return schemas.ParseGeneratedProfile(raw)
}

// begin marks stage in flight. Callers capture the store epoch before composing the request.
func (o *Orchestrator) begin(stage Stage) error {
	o.mu.Lock()
	if o.states[stage] == StateInFlight {
		o.mu.Unlock()
		logging.Warn().Str("stage", string(stage)).Msg("rejected dispatch: stage busy")
		return ErrStageBusy
	}
	o.states[stage] = StateInFlight
	o.mu.Unlock()

	o.publish(StageEvent{Stage: stage, State: StateInFlight})
	logging.Info().Str("stage", string(stage)).Msg("stage dispatched")
	return nil
}

func (o *Orchestrator) succeed(ctx context.Context, stage Stage) {
	o.transition(stage, StateSuccess)
	o.publish(StageEvent{Stage: stage, State: StateSuccess})
	logging.Ctx(ctx).Info().Str("stage", string(stage)).Msg("stage succeeded")
}

func (o *Orchestrator) fail(ctx context.Context, stage Stage, cause error) error {
	stageErr := &StageError{Stage: stage, Message: failureMessage(stage), Cause: cause}
	kind := errorKind(cause)

	o.transition(stage, StateFailure)
	o.publish(StageEvent{Stage: stage, State: StateFailure, Message: stageErr.Message, Kind: kind})
	logging.Ctx(ctx).Error().Err(cause).Str("stage", string(stage)).Str("kind", kind).Msg("stage failed")
	return stageErr
}

func (o *Orchestrator) discard(ctx context.Context, stage Stage) error {
	o.transition(stage, StateIdle)
	o.publish(StageEvent{Stage: stage, State: StateIdle, Stale: true})
	logging.Ctx(ctx).Warn().Str("stage", string(stage)).Msg("discarded stale result")
	return ErrStaleResult
}

func (o *Orchestrator) transition(stage Stage, st State) {
	o.mu.Lock()
	o.states[stage] = st
	o.mu.Unlock()
}

func (o *Orchestrator) publish(ev StageEvent) {
	ev.At = time.Now()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subs {
		select {
		case ch <- ev:
		default:
			logging.Warn().Str("stage", string(ev.Stage)).Msg("subscriber full, event dropped")
		}
	}
}
