package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/template"
)

// memRunStore is an in-memory RunStore. Saved runs are copied so the
// status history can be inspected.
type memRunStore struct {
	mu        sync.Mutex
	lockOwner string
	runs      map[string]model.SeedRun
	history   map[string][]model.SeedRunStatus
	lastRun   string
	queue     []string
	outcomes  map[string]model.SurveyOutcome
	events    []model.ProgressEvent
}

func newMemRunStore() *memRunStore {
	return &memRunStore{
		runs:     map[string]model.SeedRun{},
		history:  map[string][]model.SeedRunStatus{},
		outcomes: map[string]model.SurveyOutcome{},
	}
}

func (m *memRunStore) AcquireLock(_ context.Context, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockOwner != "" {
		return false, nil
	}
	m.lockOwner = owner
	return true, nil
}

func (m *memRunStore) ReleaseLock(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockOwner == owner {
		m.lockOwner = ""
	}
	return nil
}

func (m *memRunStore) SaveRun(_ context.Context, run *model.SeedRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	m.history[run.ID] = append(m.history[run.ID], run.Status)
	return nil
}

func (m *memRunStore) LoadRun(_ context.Context, runID string) (*model.SeedRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}

func (m *memRunStore) SetLastRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRun = runID
	return nil
}

func (m *memRunStore) LastRunID(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastRun == "" {
		return "", ErrRunNotFound
	}
	return m.lastRun, nil
}

func (m *memRunStore) EnqueueRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, runID)
	return nil
}

func (m *memRunStore) SaveTemplateOutcome(_ context.Context, out model.SurveyOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[out.TemplateID] = out
	return nil
}

func (m *memRunStore) Publish(_ context.Context, e model.ProgressEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func newSeedRunService(t *testing.T, store RunStore, gw EntityGateway, templates ...model.SurveyTemplate) *SeedRunService {
	t.Helper()
	o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: true}, templates...)
	return NewSeedRunService(store, o, zerolog.Nop())
}

func TestSeedRunService_RunLifecycle(t *testing.T) {
	store := newMemRunStore()
	gw := newFakeGateway()
	svc := newSeedRunService(t, store, gw, survey("a", section(1, 2)), survey("b", section(1, 1)))

	run, err := svc.Run(context.Background(), nil, "ops")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != model.SeedRunCompleted || run.Outcome == nil || run.Outcome.SuccessCount != 2 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.StartedAt == nil || run.FinishedAt == nil || run.FinishedAt.Before(*run.StartedAt) {
		t.Fatalf("timestamps not set: %+v", run)
	}

	want := []model.SeedRunStatus{model.SeedRunRunning, model.SeedRunCompleted}
	got := store.history[run.ID]
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected status history %v, got %v", want, got)
	}

	last, err := svc.Last(context.Background())
	if err != nil || last.ID != run.ID || last.Status != model.SeedRunCompleted {
		t.Fatalf("Last: (%+v, %v)", last, err)
	}
	if _, ok := store.outcomes["a"]; !ok {
		t.Error("template outcome for a not stored")
	}
	if n := len(store.events); n != 1 || store.events[0].Kind != model.ProgressRunFinished || store.events[0].Message != string(model.SeedRunCompleted) {
		t.Errorf("expected one run_finished event, got %+v", store.events)
	}
	if store.lockOwner != "" {
		t.Errorf("lock still held by %q", store.lockOwner)
	}
}

func TestSeedRunService_LockHeld(t *testing.T) {
	store := newMemRunStore()
	store.lockOwner = "other-run"
	gw := newFakeGateway()
	svc := newSeedRunService(t, store, gw, survey("a", section(1, 1)))
	ctx := context.Background()

	if _, err := svc.Run(ctx, nil, "ops"); !errors.Is(err, ErrSeedInProgress) {
		t.Fatalf("Run: expected ErrSeedInProgress, got %v", err)
	}
	if _, err := svc.RunTemplate(ctx, "a"); !errors.Is(err, ErrSeedInProgress) {
		t.Fatalf("RunTemplate: expected ErrSeedInProgress, got %v", err)
	}
	if gw.calls() != 0 {
		t.Errorf("expected no gateway calls, got %d", gw.calls())
	}
	if len(store.runs) != 0 {
		t.Errorf("expected no run records, got %d", len(store.runs))
	}
	if store.lockOwner != "other-run" {
		t.Errorf("foreign lock released, owner now %q", store.lockOwner)
	}
}

func TestSeedRunService_EnqueueThenExecute(t *testing.T) {
	store := newMemRunStore()
	gw := newFakeGateway()
	svc := newSeedRunService(t, store, gw, survey("a", section(1, 1)))
	ctx := context.Background()

	run, err := svc.Enqueue(ctx, []string{"a"}, "ops")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if run.Status != model.SeedRunQueued || len(store.queue) != 1 || store.queue[0] != run.ID {
		t.Fatalf("run not queued: %+v, queue %v", run, store.queue)
	}

	store.lockOwner = "other-run"
	if err := svc.Execute(ctx, run.ID); !errors.Is(err, ErrSeedInProgress) {
		t.Fatalf("expected ErrSeedInProgress, got %v", err)
	}
	if got, _ := svc.Get(ctx, run.ID); got.Status != model.SeedRunQueued {
		t.Fatalf("contended run should stay queued, got %s", got.Status)
	}

	store.lockOwner = ""
	if err := svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, err := svc.Get(ctx, run.ID)
	if err != nil || got.Status != model.SeedRunCompleted {
		t.Fatalf("expected completed run, got (%+v, %v)", got, err)
	}
	calls := gw.calls()

	if err := svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("re-Execute: %v", err)
	}
	if gw.calls() != calls {
		t.Errorf("finished run was executed again")
	}
}

func TestSeedRunService_Lookups(t *testing.T) {
	store := newMemRunStore()
	svc := newSeedRunService(t, store, newFakeGateway(), survey("a", section(1, 1)))
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get: expected ErrRunNotFound, got %v", err)
	}
	if _, err := svc.Last(ctx); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Last: expected ErrRunNotFound, got %v", err)
	}
	if err := svc.Execute(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Execute: expected ErrRunNotFound, got %v", err)
	}
	if _, err := svc.Enqueue(ctx, []string{"nope"}, "ops"); !errors.Is(err, template.ErrTemplateNotFound) {
		t.Errorf("Enqueue: expected ErrTemplateNotFound, got %v", err)
	}
	if len(store.queue) != 0 {
		t.Errorf("unknown template queued: %v", store.queue)
	}
}

func TestSeedRunService_RunTemplateReleasesLockOnRejection(t *testing.T) {
	bad := survey("bad", section(1, 2))
	bad.TotalQuestions = 7
	store := newMemRunStore()
	svc := newSeedRunService(t, store, newFakeGateway(), bad)

	_, err := svc.RunTemplate(context.Background(), "bad")
	var verr *template.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.lockOwner != "" {
		t.Fatalf("lock still held by %q", store.lockOwner)
	}
}
