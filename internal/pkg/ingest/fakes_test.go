package ingest

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
)

type memTransactions struct {
	mu   sync.Mutex
	rows map[string]*models.Transaction
	next uint
	err  error
}

func newMemTransactions() *memTransactions {
	return &memTransactions{rows: map[string]*models.Transaction{}}
}

func (m *memTransactions) Upsert(_ context.Context, tx *models.Transaction) (*repository.StoredTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	existing, ok := m.rows[tx.ExternalID]
	if !ok {
		m.next++
		row := *tx
		row.ID = m.next
		m.rows[tx.ExternalID] = &row
		out := row
		return &repository.StoredTransaction{Transaction: &out, Created: true, StatusChanged: true}, nil
	}

	changed := existing.Status != tx.Status
	id := existing.ID
	*existing = *tx
	existing.ID = id
	out := *existing
	return &repository.StoredTransaction{Transaction: &out, StatusChanged: changed}, nil
}

func (m *memTransactions) GetByExternalID(_ context.Context, externalID string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[externalID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *row
	return &out, nil
}

func (m *memTransactions) HasApprovedForEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.CustomerEmail == email && row.IsApproved() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTransactions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memEvents struct {
	mu     sync.Mutex
	events []models.IntegrationEvent
	err    error
}

func (m *memEvents) Create(_ context.Context, event *models.IntegrationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	event.ID = uint(len(m.events) + 1)
	m.events = append(m.events, *event)
	return nil
}

func (m *memEvents) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type auditCall struct {
	kind   string
	source string
	stage  string
}

type fakeAuditor struct {
	mu    sync.Mutex
	calls []auditCall
}

func (f *fakeAuditor) AuthFailure(_ context.Context, source, _, _ string) {
	f.add(auditCall{kind: models.SecurityEventAuthFailure, source: source})
}

func (f *fakeAuditor) SignatureUnconfigured(_ context.Context, source, _ string) {
	f.add(auditCall{kind: models.SecurityEventSignatureUnconfigured, source: source})
}

func (f *fakeAuditor) ProcessingError(_ context.Context, source, _, stage string, _ error, _ map[string]interface{}) {
	f.add(auditCall{kind: models.SecurityEventProcessingError, source: source, stage: stage})
}

func (f *fakeAuditor) add(c auditCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeAuditor) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.kind)
	}
	return out
}

var errBoom = errors.New("boom")
