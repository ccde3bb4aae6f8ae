package jobqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/directory"
)

type countingSyncer struct {
	mu       sync.Mutex
	triggers []string
	started  chan struct{}
	done     chan struct{}
	block    bool
}

func newCountingSyncer() *countingSyncer {
	return &countingSyncer{started: make(chan struct{}, 16), done: make(chan struct{}, 16)}
}

func (s *countingSyncer) Run(ctx context.Context, trigger string) (*directory.Summary, error) {
	s.mu.Lock()
	s.triggers = append(s.triggers, trigger)
	block := s.block
	s.mu.Unlock()
	signal(s.started)
	if block {
		<-ctx.Done()
		signal(s.done)
		return nil, ctx.Err()
	}
	signal(s.done)
	return &directory.Summary{Trigger: trigger, State: directory.StateDone}, nil
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *countingSyncer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.triggers...)
}

func waitRun(t *testing.T, s *countingSyncer) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync did not run")
	}
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(newCountingSyncer(), 0, 0)

	assert.False(t, m.IsRunning())
	m.Stop()
	assert.False(t, m.IsRunning())
}

func TestManager_ManualTrigger(t *testing.T) {
	s := newCountingSyncer()
	m := NewManager(s, 0, time.Second)
	m.Start()
	defer m.Stop()

	assert.True(t, m.IsRunning())
	assert.True(t, m.TriggerSync())
	waitRun(t, s)
	assert.Equal(t, []string{TriggerManual}, s.seen())
}

func TestManager_ScheduledSync(t *testing.T) {
	s := newCountingSyncer()
	m := NewManager(s, 20*time.Millisecond, time.Second)
	m.Start()
	defer m.Stop()

	waitRun(t, s)
	assert.Contains(t, s.seen(), TriggerSchedule)
}

func TestManager_TriggerQueuesAtMostOne(t *testing.T) {
	m := NewManager(newCountingSyncer(), 0, time.Second)

	assert.True(t, m.TriggerSync())
	assert.False(t, m.TriggerSync(), "second trigger is rejected while one is queued")
}

func TestManager_StopCancelsRunningSync(t *testing.T) {
	s := newCountingSyncer()
	s.block = true
	m := NewManager(s, 0, time.Minute)
	m.Start()

	assert.True(t, m.TriggerSync())
	<-s.started
	m.Stop()

	waitRun(t, s)
	assert.False(t, m.IsRunning())
}

func TestManager_Restart(t *testing.T) {
	s := newCountingSyncer()
	m := NewManager(s, 0, time.Second)

	m.Start()
	m.Stop()
	m.Start()
	defer m.Stop()

	assert.True(t, m.TriggerSync())
	waitRun(t, s)
}
