package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/prom"
)

const lockName = "directory-sync"

// ErrSyncInProgress is returned when another run holds the sync lock.
var ErrSyncInProgress = errors.New("directory sync already running")

// State is the position of the sync state machine.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateAborted    State = "aborted"
)

// Locker provides cross-process mutual exclusion for sync runs.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
}

// Notifier receives the aggregate alert of each run.
type Notifier interface {
	SyncAlert(ctx context.Context, alert *models.SyncAlert) error
}

// Summary reports what one run did.
type Summary struct {
	RunID         string    `json:"run_id"`
	Trigger       string    `json:"trigger"`
	State         State     `json:"state"`
	Pages         int       `json:"pages"`
	Synced        int       `json:"synced"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Failed        int       `json:"failed"`
	// Discrepancies counts records first opened during this run.
	Discrepancies int       `json:"discrepancies"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Service mirrors the remote directory and flags access without payment.
type Service struct {
	cfg       *Config
	client    UserLister
	directory repository.DirectoryRepository
	txs       repository.TransactionRepository
	alerts    repository.SyncAlertRepository
	notifier  Notifier
	locker    Locker
	now       func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	state   State
	page    int
}

// NewService creates a sync service. notifier may be nil.
func NewService(cfg *Config, client UserLister, repos *repository.Repositories, notifier Notifier) *Service {
	return &Service{
		cfg:       cfg,
		client:    client,
		directory: repos.Directory,
		txs:       repos.Transaction,
		alerts:    repos.SyncAlert,
		notifier:  notifier,
		now:       time.Now,
		state:     StateIdle,
	}
}

// WithLocker enables the shared run lock.
func (s *Service) WithLocker(l Locker) *Service {
	s.locker = l
	return s
}

// WithClock replaces the clock used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// State returns the current state and, while fetching or processing, the page.
func (s *Service) State() (State, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.page
}

func (s *Service) setState(st State, page int) {
	s.mu.Lock()
	s.state = st
	s.page = page
	s.mu.Unlock()
}

// Run performs one full sync. Partial results are kept when the run aborts;
// the returned summary is non-nil whenever the run started.
func (s *Service) Run(ctx context.Context, trigger string) (*Summary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, lockName, s.cfg.LockTTL)
		switch {
		case err != nil:
			log.Warnf("[DirectorySync] Run lock unavailable, continuing without it: %v", err)
		case !acquired:
			return nil, ErrSyncInProgress
		default:
			defer release()
		}
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now().UTC(),
	}
	log.Infof("[DirectorySync] Run %s started (trigger=%s)", summary.RunID, trigger)

	runErr := s.fetchAll(ctx, summary)

	summary.FinishedAt = s.now().UTC()
	if runErr != nil {
		summary.State = StateAborted
		summary.Error = runErr.Error()
	} else {
		summary.State = StateDone
	}
	s.setState(summary.State, 0)
	s.emitAlert(ctx, summary)

	return summary, runErr
}

func (s *Service) fetchAll(ctx context.Context, summary *Summary) error {
	for page := 1; ; page++ {
		if page > s.cfg.MaxPages {
			log.Warnf("[DirectorySync] Run %s stopped at page limit %d", summary.RunID, s.cfg.MaxPages)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.setState(StateFetching, page)
		users, err := s.client.ListUsers(ctx, page, s.cfg.PageSize)
		if errors.Is(err, ErrNoMorePages) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", page, err)
		}
		summary.Pages++

		s.setState(StateProcessing, page)
		s.processPage(ctx, users, summary)

		if len(users) < s.cfg.PageSize {
			return nil
		}
	}
}

type userResult struct {
	failed      bool
	created     bool
	discrepancy bool
}

func (s *Service) processPage(ctx context.Context, users []RemoteUser, summary *Summary) {
	results := make([]userResult, len(users))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i := range users {
		i := i
		g.Go(func() error {
			results[i] = s.processUser(ctx, users[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.failed {
			summary.Failed++
			continue
		}
		summary.Synced++
		if r.created {
			summary.Created++
		} else {
			summary.Updated++
		}
		if r.discrepancy {
			summary.Discrepancies++
		}
	}
}

func (s *Service) processUser(ctx context.Context, u RemoteUser) userResult {
	if u.ID == "" || u.Email == "" {
		log.Warnf("[DirectorySync] Skipping user without id or email (id=%q)", u.ID)
		return userResult{failed: true}
	}

	paid, err := s.txs.HasApprovedForEmail(ctx, u.Email)
	if err != nil {
		log.Errorf("[DirectorySync] Payment lookup failed for user %s: %v", u.ID, err)
		return userResult{failed: true}
	}

	groups, _ := json.Marshal(u.Groups)
	access := models.AccessStatusNoAccess
	if len(u.Groups) > 0 {
		access = models.AccessStatusActive
	}
	now := s.now().UTC()

	created, err := s.directory.UpsertMirrorEntry(ctx, &models.DirectoryMirrorEntry{
		RemoteUserID:     u.ID,
		Email:            u.Email,
		DisplayName:      u.Name,
		Groups:           datatypes.JSON(groups),
		PaymentConfirmed: paid,
		AccessStatus:     access,
		LastSyncedAt:     now,
	})
	if err != nil {
		log.Errorf("[DirectorySync] Mirror upsert failed for user %s: %v", u.ID, err)
		return userResult{failed: true}
	}

	res := userResult{created: created}
	if paid || !s.grantsAccess(u.Groups) {
		return res
	}

	fresh, err := s.directory.UpsertDiscrepancy(ctx, &models.Discrepancy{
		Email:           u.Email,
		RemoteUserID:    u.ID,
		DiscrepancyType: models.DiscrepancyAccessWithoutPayment,
		DetectedGroups:  datatypes.JSON(groups),
		DetectedAt:      now,
	})
	if err != nil {
		log.Errorf("[DirectorySync] Discrepancy upsert failed for user %s: %v", u.ID, err)
		return userResult{failed: true}
	}
	// Re-detections refresh the existing record and are not counted again.
	res.discrepancy = fresh
	return res
}

// grantsAccess reports whether any group name contains a configured access
// marker, ignoring case.
func (s *Service) grantsAccess(groups []string) bool {
	for _, g := range groups {
		lg := strings.ToLower(g)
		for _, marker := range s.cfg.AccessGroups {
			if m := strings.ToLower(strings.TrimSpace(marker)); m != "" && strings.Contains(lg, m) {
				return true
			}
		}
	}
	return false
}

func (s *Service) emitAlert(ctx context.Context, summary *Summary) {
	severity := models.SyncAlertSeverityInfo
	outcome := models.SyncOutcomeDone
	switch {
	case summary.State == StateAborted:
		severity = models.SyncAlertSeverityError
		outcome = models.SyncOutcomeAborted
	case summary.Failed > 0 || summary.Discrepancies > 0:
		severity = models.SyncAlertSeverityWarning
	}

	alert := &models.SyncAlert{
		RunID:         summary.RunID,
		Kind:          models.SyncAlertKindDirectory,
		Severity:      severity,
		Outcome:       outcome,
		Pages:         summary.Pages,
		Synced:        summary.Synced,
		Created:       summary.Created,
		Updated:       summary.Updated,
		Failed:        summary.Failed,
		Discrepancies: summary.Discrepancies,
		Error:         summary.Error,
	}

	// The alert must survive a cancelled run context.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.alerts.Create(actx, alert); err != nil {
		log.Errorf("[DirectorySync] Failed to store sync alert for run %s: %v", summary.RunID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.SyncAlert(actx, alert); err != nil {
			log.Warnf("[DirectorySync] Failed to publish sync alert for run %s: %v", summary.RunID, err)
		}
	}
	prom.RecordSyncRun(outcome, summary.Discrepancies)

	log.Infof("[DirectorySync] Run %s %s: pages=%d synced=%d created=%d updated=%d failed=%d discrepancies=%d",
		summary.RunID, outcome, summary.Pages, summary.Synced, summary.Created, summary.Updated, summary.Failed, summary.Discrepancies)
}
