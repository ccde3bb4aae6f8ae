package directory

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
)

type memDirectory struct {
	mu            sync.Mutex
	mirror        map[string]models.DirectoryMirrorEntry
	discrepancies map[string]models.Discrepancy
	failEmail     string
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		mirror:        map[string]models.DirectoryMirrorEntry{},
		discrepancies: map[string]models.Discrepancy{},
	}
}

func (m *memDirectory) UpsertMirrorEntry(_ context.Context, e *models.DirectoryMirrorEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Email == m.failEmail {
		return false, errTest
	}
	_, exists := m.mirror[e.RemoteUserID]
	m.mirror[e.RemoteUserID] = *e
	return !exists, nil
}

func (m *memDirectory) UpsertDiscrepancy(_ context.Context, d *models.Discrepancy) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, exists := m.discrepancies[d.Email]
	row := *d
	if exists {
		row.ID = existing.ID
		row.Resolution = existing.Resolution
		row.ResolvedAt = existing.ResolvedAt
	} else {
		row.ID = uint(len(m.discrepancies) + 1)
	}
	m.discrepancies[d.Email] = row
	return !exists, nil
}

func (m *memDirectory) ResolveDiscrepancy(_ context.Context, email, resolution string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.discrepancies[email]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Resolution = &resolution
	row.ResolvedAt = &at
	m.discrepancies[email] = row
	return nil
}

func (m *memDirectory) ListDiscrepancies(_ context.Context, openOnly bool, offset, limit int) ([]models.Discrepancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Discrepancy
	for _, d := range m.discrepancies {
		if openOnly && !d.IsOpen() {
			continue
		}
		out = append(out, d)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type paidEmails map[string]bool

func (p paidEmails) Upsert(context.Context, *models.Transaction) (*repository.StoredTransaction, error) {
	return nil, errTest
}

func (p paidEmails) GetByExternalID(context.Context, string) (*models.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (p paidEmails) HasApprovedForEmail(_ context.Context, email string) (bool, error) {
	return p[email], nil
}

type memAlerts struct {
	mu     sync.Mutex
	alerts []models.SyncAlert
}

func (m *memAlerts) Create(_ context.Context, a *models.SyncAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *memAlerts) Latest(_ context.Context, kind string, limit int) ([]models.SyncAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SyncAlert
	for i := len(m.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.alerts[i].Kind == kind {
			out = append(out, m.alerts[i])
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []models.SyncAlert
}

func (n *recordingNotifier) SyncAlert(_ context.Context, a *models.SyncAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, *a)
	return nil
}

type stubLocker struct {
	acquired bool
	err      error
	released int
}

func (l *stubLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	if l.err != nil || !l.acquired {
		return nil, false, l.err
	}
	return func() { l.released++ }, true, nil
}
