// Package commission computes and records affiliate commissions for approved
// sales. A commission exists at most once per (affiliate, transaction) pair.
package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/app/repository"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/metrics/prom"
)

var hundred = decimal.NewFromInt(100)

// Engine records commissions through an AffiliateRepository.
type Engine struct {
	affiliates repository.AffiliateRepository
}

// NewEngine creates a commission engine.
func NewEngine(affiliates repository.AffiliateRepository) *Engine {
	return &Engine{affiliates: affiliates}
}

// Calculate returns amount * percentage / 100 in minor units, rounded half
// away from zero.
func Calculate(amount int64, percentage decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(percentage).Div(hundred).Round(0).IntPart()
}

// ComputeAndRecord records the commission owed for tx. It returns nil without
// error when nothing is owed: the transaction is not approved, carries no
// code, matches no active affiliate, or was already commissioned.
func (e *Engine) ComputeAndRecord(ctx context.Context, tx *models.Transaction) (*models.Commission, error) {
	if tx == nil || !tx.IsApproved() || !tx.HasAffiliateCode() {
		return nil, nil
	}

	affiliate, err := e.findAffiliate(ctx, *tx.AffiliateCode)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		log.Debugf("[Commission] No affiliate for code %s on transaction %s", *tx.AffiliateCode, tx.ExternalID)
		return nil, nil
	}
	if !affiliate.Active {
		log.Infof("[Commission] Affiliate %d is inactive, skipping transaction %s", affiliate.ID, tx.ExternalID)
		return nil, nil
	}

	commission := &models.Commission{
		AffiliateID:           affiliate.ID,
		TransactionExternalID: tx.ExternalID,
		Amount:                Calculate(tx.Amount, affiliate.CommissionPercentage),
		Status:                models.CommissionStatusPending,
	}

	created, err := e.affiliates.RecordCommission(ctx, commission)
	if err != nil {
		return nil, fmt.Errorf("record commission for %s: %w", tx.ExternalID, err)
	}
	if !created {
		log.Infof("[Commission] Commission for affiliate %d and transaction %s already exists", affiliate.ID, tx.ExternalID)
		return nil, nil
	}

	prom.CommissionsRecorded.Inc()
	log.Infof("[Commission] Recorded %d for affiliate %d on transaction %s", commission.Amount, affiliate.ID, tx.ExternalID)
	return commission, nil
}

// findAffiliate tries the coupon code first, then the platform affiliate id.
func (e *Engine) findAffiliate(ctx context.Context, code string) (*models.Affiliate, error) {
	a, err := e.affiliates.FindByCouponCode(ctx, code)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find affiliate by coupon: %w", err)
	}

	a, err = e.affiliates.FindByPlatformAffiliateID(ctx, code)
	if err == nil {
		return a, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("find affiliate by platform id: %w", err)
}
