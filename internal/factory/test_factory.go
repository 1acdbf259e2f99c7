package factory

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/dicearena-go/internal/dependencies/mocks"
	"github.com/mcoot/dicearena-go/internal/storage/memory"
	"github.com/mcoot/dicearena-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockRandom   *mocks.MockRandom
	MockIDs      *mocks.MockIdentifier
	MockNotifier *mocks.MockNotifier

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Events are recorded by MockNotifier instead of going to the hub.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIdentifier()
	mockNotifier := mocks.NewMockNotifier()

	app := newWithDependencies(dependencies{
		players:   store,
		cooldowns: store,
		clock:     mockClock,
		random:    mockRandom,
		ids:       mockIDs,
		registry:  prometheus.NewRegistry(),
		notifier:  mockNotifier,
	}, Config{}.withDefaults(), testutil.NopLogger())

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		MockIDs:      mockIDs,
		MockNotifier: mockNotifier,
	}
}

// Start runs the executor in the background until Stop
func (t *TestApp) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_ = t.Executor.Run(ctx)
	}()
}

// Stop halts the executor and waits for it to exit
func (t *TestApp) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

// Advance moves the mock clock and waits until the timers it fired have
// run on the executor
func (t *TestApp) Advance(d time.Duration) error {
	t.MockClock.Advance(d)
	return t.Executor.Do(context.Background(), func() {})
}
