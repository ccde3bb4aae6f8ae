package repository

import (
	"context"
	"strings"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository backed by GORM.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Upsert inserts the transaction or updates the row with the same external_id.
// Both steps are single statements: the insert relies on the unique key, and
// the status update is guarded by "status <> new" so that only one of several
// concurrent deliveries observes the transition.
func (r *transactionRepository) Upsert(ctx context.Context, tx *models.Transaction) (*StoredTransaction, error) {
	db := r.db.WithContext(ctx)

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(tx)
	if res.Error != nil {
		return nil, res.Error
	}

	out := &StoredTransaction{}
	if res.RowsAffected > 0 {
		out.Created = true
		out.StatusChanged = true
	} else {
		fields := transactionUpdateFields(tx)
		fields["status"] = tx.Status
		upd := db.Model(&models.Transaction{}).
			Where("external_id = ? AND status <> ?", tx.ExternalID, tx.Status).
			Updates(fields)
		if upd.Error != nil {
			return nil, upd.Error
		}
		if upd.RowsAffected > 0 {
			out.StatusChanged = true
		} else if err := db.Model(&models.Transaction{}).
			Where("external_id = ?", tx.ExternalID).
			Updates(transactionUpdateFields(tx)).Error; err != nil {
			return nil, err
		}
	}

	var stored models.Transaction
	if err := db.Where("external_id = ?", tx.ExternalID).First(&stored).Error; err != nil {
		return nil, err
	}
	out.Transaction = &stored
	return out, nil
}

// transactionUpdateFields lists every mutable column except status. A map is
// used so zero values (amount 0, empty strings) are written too.
func transactionUpdateFields(tx *models.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"source":           tx.Source,
		"transaction_type": tx.TransactionType,
		"amount":           tx.Amount,
		"currency":         tx.Currency,
		"customer_name":    tx.CustomerName,
		"customer_email":   tx.CustomerEmail,
		"product_name":     tx.ProductName,
		"product_id":       tx.ProductID,
		"affiliate_code":   tx.AffiliateCode,
		"metadata":         tx.Metadata,
		"cnpj_origem":      tx.CNPJOrigem,
	}
}

func (r *transactionRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) HasApprovedForEmail(ctx context.Context, email string) (bool, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("customer_email = ? AND status = ?", e, models.TransactionStatusApproved).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}
