// Package daily maintains per-day revenue and sales counters per source.
package daily

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

const (
	defaultTimezone = "America/Sao_Paulo"
	dateLayout      = "2006-01-02"
)

// Aggregator turns approved sales into atomic counter increments.
type Aggregator struct {
	metrics  repository.MetricRepository
	location *time.Location
	now      func() time.Time
}

// NewAggregator creates an aggregator that buckets days in loc.
func NewAggregator(metrics repository.MetricRepository, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{metrics: metrics, location: loc, now: time.Now}
}

// LoadLocation reads METRICS_TIMEZONE, falling back to UTC when the zone
// database does not know it.
func LoadLocation() *time.Location {
	name := env.GetEnv("METRICS_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("[Metrics] Unknown timezone %q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// WithClock replaces the clock used to pick the reference day.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Day returns the calendar day of t in the aggregator's zone, as a UTC
// midnight value suitable for a DATE column.
func (a *Aggregator) Day(t time.Time) time.Time {
	local := t.In(a.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordApprovedSale adds the sale amount to revenue and one to sales_count,
// both under the transaction's source for today.
func (a *Aggregator) RecordApprovedSale(ctx context.Context, tx *models.Transaction) error {
	if tx == nil || !tx.IsApproved() {
		return nil
	}
	day := a.Day(a.now())
	if err := a.metrics.Increment(ctx, models.MetricRevenue, tx.Source, day, tx.Amount); err != nil {
		return fmt.Errorf("increment revenue: %w", err)
	}
	if err := a.metrics.Increment(ctx, models.MetricSalesCount, tx.Source, day, 1); err != nil {
		return fmt.Errorf("increment sales count: %w", err)
	}
	return nil
}

// Summary is one day's counters for one source.
type Summary struct {
	Date       string `json:"date"`
	Source     string `json:"source"`
	Revenue    int64  `json:"revenue"`
	SalesCount int64  `json:"sales_count"`
}

// calendarDay keeps the date fields of t as they are, without zone conversion.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Range returns per-day, per-source summaries for the inclusive range of
// calendar days. from and to are taken as dates; use Day to turn an instant
// into the aggregator's date first.
func (a *Aggregator) Range(ctx context.Context, from, to time.Time) ([]Summary, error) {
	from, to = calendarDay(from), calendarDay(to)
	if to.Before(from) {
		from, to = to, from
	}
	rows, err := a.metrics.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily metrics: %w", err)
	}

	type key struct{ date, source string }
	byKey := make(map[key]*Summary)
	for _, row := range rows {
		k := key{row.ReferenceDate.Format(dateLayout), row.Category}
		s, ok := byKey[k]
		if !ok {
			s = &Summary{Date: k.date, Source: k.source}
			byKey[k] = s
		}
		switch row.MetricName {
		case models.MetricRevenue:
			s.Revenue += row.Value
		case models.MetricSalesCount:
			s.SalesCount += row.Value
		}
	}

	out := make([]Summary, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Source < out[j].Source
	})
	return out, nil
}
