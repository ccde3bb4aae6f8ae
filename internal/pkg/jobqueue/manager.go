package jobqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/directory"
)

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// SyncRunner runs one directory sync.
type SyncRunner interface {
	Run(ctx context.Context, trigger string) (*directory.Summary, error)
}

// Manager runs background tasks: the periodic directory sync and manually
// queued sync requests. At most one sync runs at a time in this process.
type Manager struct {
	syncer       SyncRunner
	syncInterval time.Duration
	syncTimeout  time.Duration

	syncTicker *time.Ticker
	requests   chan string
	stopCh     chan struct{}
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewManager creates a manager. A zero interval disables the schedule;
// manual triggers still work while the manager runs.
func NewManager(syncer SyncRunner, interval, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Manager{
		syncer:       syncer,
		syncInterval: interval,
		syncTimeout:  timeout,
		requests:     make(chan string, 1),
		stopCh:       make(chan struct{}),
	}
}

// Start starts the background workers.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.stopCh = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	log.Info("[JobQueue Manager] Starting background tasks")

	var tick <-chan time.Time
	if m.syncInterval > 0 {
		m.syncTicker = time.NewTicker(m.syncInterval)
		tick = m.syncTicker.C
		log.Infof("[JobQueue Manager] Directory sync scheduled every %s", m.syncInterval)
	} else {
		log.Info("[JobQueue Manager] Scheduled directory sync disabled")
	}

	m.wg.Add(1)
	go m.syncWorker(ctx, tick, m.stopCh)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the workers and cancels a sync in progress.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping background tasks...")
	if m.syncTicker != nil {
		m.syncTicker.Stop()
	}
	close(m.stopCh)
	m.cancel()
	m.running = false

	m.wg.Wait()
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning reports whether the workers are started.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// TriggerSync queues a manual sync. It returns false when one is already queued.
func (m *Manager) TriggerSync() bool {
	select {
	case m.requests <- TriggerManual:
		return true
	default:
		return false
	}
}

func (m *Manager) syncWorker(ctx context.Context, tick <-chan time.Time, stopCh chan struct{}) {
	defer m.wg.Done()

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Directory sync worker stopping")
			return
		case <-tick:
			m.runSync(ctx, TriggerSchedule)
		case trigger := <-m.requests:
			m.runSync(ctx, trigger)
		}
	}
}

func (m *Manager) runSync(parent context.Context, trigger string) {
	ctx, cancel := context.WithTimeout(parent, m.syncTimeout)
	defer cancel()

	_, err := m.syncer.Run(ctx, trigger)
	switch {
	case errors.Is(err, directory.ErrSyncInProgress):
		log.Infof("[JobQueue Manager] Skipping %s directory sync, another run holds the lock", trigger)
	case err != nil:
		log.Errorf("[JobQueue Manager] Directory sync (%s) aborted: %v", trigger, err)
	}
}
