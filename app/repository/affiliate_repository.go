package repository

import (
	"context"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type affiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates an affiliate repository backed by GORM.
func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

func (r *affiliateRepository) FindByCouponCode(ctx context.Context, code string) (*models.Affiliate, error) {
	var a models.Affiliate
	if err := r.db.WithContext(ctx).Where("coupon_code = ?", code).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *affiliateRepository) FindByPlatformAffiliateID(ctx context.Context, platformID string) (*models.Affiliate, error) {
	var a models.Affiliate
	if err := r.db.WithContext(ctx).Where("platform_affiliate_id = ?", platformID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// RecordCommission inserts the commission unless the (affiliate, transaction)
// pair already exists, and bumps the affiliate totals only for a fresh row.
// It reports whether a row was created.
func (r *affiliateRepository) RecordCommission(ctx context.Context, commission *models.Commission) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "affiliate_id"},
				{Name: "transaction_external_id"},
			},
			DoNothing: true,
		}).Create(commission)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&models.Affiliate{}).
			Where("id = ?", commission.AffiliateID).
			Updates(map[string]interface{}{
				"total_sales":      gorm.Expr("total_sales + ?", 1),
				"total_commission": gorm.Expr("total_commission + ?", commission.Amount),
			}).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
