package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SourceHotmart = "hotmart"
	SourceAsaas   = "asaas"
	SourceRelay   = "relay"
	SourceUnknown = "unknown"
)

const (
	TransactionTypeSale    = "sale"
	TransactionTypePayment = "payment"
	TransactionTypeEvent   = "event"
)

const (
	TransactionStatusPending    = "pending"
	TransactionStatusApproved   = "approved"
	TransactionStatusRefunded   = "refunded"
	TransactionStatusChargeback = "chargeback"
	TransactionStatusCanceled   = "canceled"
	TransactionStatusOverdue    = "overdue"
)

const DefaultCurrency = "BRL"

// Transaction is the canonical record every inbound payment event is
// normalized into. ExternalID is unique per logical transaction; re-delivery
// of the same event updates the same row.
type Transaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ExternalID      string         `gorm:"type:varchar(191);not null;index:ux_transactions_external_id,unique" json:"external_id"`
	Source          string         `gorm:"type:varchar(20);not null;index" json:"source"`
	TransactionType string         `gorm:"type:varchar(20);not null;default:'event'" json:"transaction_type"`
	Amount          int64          `gorm:"not null;default:0" json:"amount"`
	Currency        string         `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	Status          string         `gorm:"type:varchar(20);not null;default:'pending';index:idx_transactions_email_status,priority:2" json:"status"`
	CustomerName    string         `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail   string         `gorm:"type:varchar(191);index:idx_transactions_email_status,priority:1" json:"customer_email"`
	ProductName     string         `gorm:"type:varchar(255)" json:"product_name"`
	ProductID       string         `gorm:"type:varchar(191)" json:"product_id"`
	AffiliateCode   *string        `gorm:"type:varchar(191);default:null;index" json:"affiliate_code,omitempty"`
	Metadata        datatypes.JSON `gorm:"type:json" json:"metadata"`
	CNPJOrigem      string         `gorm:"column:cnpj_origem;type:varchar(20)" json:"cnpj_origem"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsApproved reports whether the transaction carries the only status that
// triggers commission and metric side effects.
func (t *Transaction) IsApproved() bool {
	return t.Status == TransactionStatusApproved
}

// HasAffiliateCode reports whether a non-blank coupon/referral code is present.
func (t *Transaction) HasAffiliateCode() bool {
	return t.AffiliateCode != nil && *t.AffiliateCode != ""
}
