package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliate earns a commission on approved sales carrying its coupon code or
// its platform-specific affiliate identifier.
type Affiliate struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	Email                string          `gorm:"type:varchar(191);index" json:"email"`
	CouponCode           *string         `gorm:"type:varchar(191);default:null;index:ux_affiliates_coupon_code,unique" json:"coupon_code,omitempty"`
	PlatformAffiliateID  *string         `gorm:"type:varchar(191);default:null;index" json:"platform_affiliate_id,omitempty"`
	CommissionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_percentage"`
	TotalSales           int64           `gorm:"not null;default:0" json:"total_sales"`
	TotalCommission      int64           `gorm:"not null;default:0" json:"total_commission"`
	Active               bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

const (
	CommissionStatusPending = "pending"
	CommissionStatusPaid    = "paid"
)

// Commission exists at most once per (affiliate, transaction) pair.
type Commission struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	AffiliateID           uint      `gorm:"not null;index:ux_commissions_affiliate_transaction,unique,priority:1" json:"affiliate_id"`
	TransactionExternalID string    `gorm:"type:varchar(191);not null;index:ux_commissions_affiliate_transaction,unique,priority:2" json:"transaction_external_id"`
	Amount                int64     `gorm:"not null" json:"amount"`
	Status                string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
}
