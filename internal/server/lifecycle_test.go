package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func(ctx context.Context) error
	order   *[]string
	name    string
	mu      *sync.Mutex
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	<-ctx.Done()
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.order != nil {
		m.mu.Lock()
		*m.order = append(*m.order, m.name)
		m.mu.Unlock()
	}
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	var mu sync.Mutex
	var order []string
	svc1 := &mockService{name: "svc1", order: &order, mu: &mu}
	svc2 := &mockService{name: "svc2", order: &order, mu: &mu}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, svc1, svc2)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
	assert.Equal(t, []string{"svc2", "svc1"}, order)
}

func TestLifecycleCleanExitStopsOthers(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	background := &mockService{}
	console := &mockService{startFn: func(context.Context) error { return nil }}
	lc.Add("background", background)
	lc.Add("console", console)

	err := lc.Run(context.Background())
	assert.NoError(t, err)
	assert.True(t, background.stopped.Load())
	assert.True(t, console.stopped.Load())
}

func TestLifecycleReturnsServiceError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	lc.Add("failing", &mockService{startFn: func(context.Context) error { return boom }})

	err := lc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service failing")
}

func TestFuncServiceAndCloser(t *testing.T) {
	started := false
	stopped := false
	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() { stopped = true },
	}
	assert.NoError(t, svc.Start(context.Background()))
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)

	(&FuncService{StartFn: func(context.Context) error { return nil }}).Stop()

	closed := false
	c := Closer(func() { closed = true })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, c.Start(ctx))
	c.Stop()
	assert.True(t, closed)
}
