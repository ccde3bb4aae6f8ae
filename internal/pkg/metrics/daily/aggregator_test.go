package daily

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

type metricKey struct {
	name, category string
	day            time.Time
}

// memMetrics mirrors the database upsert: each Increment is atomic.
type memMetrics struct {
	mu     sync.Mutex
	values map[metricKey]int64
}

func newMemMetrics() *memMetrics {
	return &memMetrics{values: map[metricKey]int64{}}
}

func (m *memMetrics) Increment(_ context.Context, name, category string, day time.Time, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[metricKey{name, category, day}] += delta
	return nil
}

func (m *memMetrics) ListRange(_ context.Context, from, to time.Time) ([]models.DailyMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DailyMetric
	for k, v := range m.values {
		if k.day.Before(from) || k.day.After(to) {
			continue
		}
		out = append(out, models.DailyMetric{MetricName: k.name, Category: k.category, ReferenceDate: k.day, Value: v})
	}
	return out, nil
}

func TestRecordApprovedSale_ConcurrentIncrementsAreAdditive(t *testing.T) {
	store := newMemMetrics()
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	agg := NewAggregator(store, time.UTC).WithClock(func() time.Time { return now })

	amounts := []int64{1990, 4990, 100, 29700, 1, 5000, 250, 9999}
	var want int64
	var wg sync.WaitGroup
	for i, amount := range amounts {
		want += amount
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			tx := &models.Transaction{ExternalID: string(rune('a' + i)), Source: models.SourceHotmart, Status: models.TransactionStatusApproved, Amount: amount}
			assert.NoError(t, agg.RecordApprovedSale(context.Background(), tx))
		}(i, amount)
	}
	wg.Wait()

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, store.values[metricKey{models.MetricRevenue, models.SourceHotmart, day}])
	assert.Equal(t, int64(len(amounts)), store.values[metricKey{models.MetricSalesCount, models.SourceHotmart, day}])
}

func TestRecordApprovedSale_SkipsNonApproved(t *testing.T) {
	store := newMemMetrics()
	agg := NewAggregator(store, time.UTC)

	require.NoError(t, agg.RecordApprovedSale(context.Background(), &models.Transaction{Status: models.TransactionStatusRefunded, Amount: 100}))
	require.NoError(t, agg.RecordApprovedSale(context.Background(), nil))
	assert.Empty(t, store.values)
}

func TestDay_UsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	agg := NewAggregator(newMemMetrics(), loc)

	// 01:30 UTC is still the previous evening at UTC-3.
	got := agg.Day(time.Date(2024, 6, 2, 1, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestRange(t *testing.T) {
	store := newMemMetrics()
	agg := NewAggregator(store, time.UTC)
	ctx := context.Background()

	d1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Increment(ctx, models.MetricRevenue, "asaas", d1, 500))
	require.NoError(t, store.Increment(ctx, models.MetricSalesCount, "asaas", d1, 2))
	require.NoError(t, store.Increment(ctx, models.MetricRevenue, "hotmart", d1, 1000))
	require.NoError(t, store.Increment(ctx, models.MetricSalesCount, "hotmart", d1, 1))
	require.NoError(t, store.Increment(ctx, models.MetricRevenue, "hotmart", d2, 70))

	out, err := agg.Range(ctx, d2.Add(5*time.Hour), d1)
	require.NoError(t, err)
	assert.Equal(t, []Summary{
		{Date: "2024-06-01", Source: "asaas", Revenue: 500, SalesCount: 2},
		{Date: "2024-06-01", Source: "hotmart", Revenue: 1000, SalesCount: 1},
		{Date: "2024-06-02", Source: "hotmart", Revenue: 70},
	}, out)
}
