package ingest

import "github.com/ManuelReschke/IntegrationHub/app/models"

// Status tables are case-sensitive; historical spellings are listed
// explicitly. Anything unmapped resolves to pending.

var hotmartEventStatus = map[string]string{
	"PURCHASE_APPROVED":       models.TransactionStatusApproved,
	"PURCHASE_COMPLETE":       models.TransactionStatusApproved,
	"PURCHASE_COMPLETED":      models.TransactionStatusApproved,
	"PURCHASE_CANCELED":       models.TransactionStatusCanceled,
	"PURCHASE_CANCELLED":      models.TransactionStatusCanceled,
	"PURCHASE_EXPIRED":        models.TransactionStatusCanceled,
	"PURCHASE_REFUNDED":       models.TransactionStatusRefunded,
	"PURCHASE_CHARGEBACK":     models.TransactionStatusChargeback,
	"PURCHASE_PROTEST":        models.TransactionStatusChargeback,
	"PURCHASE_DELAYED":        models.TransactionStatusOverdue,
	"PURCHASE_BILLET_PRINTED": models.TransactionStatusPending,
}

var hotmartPurchaseStatus = map[string]string{
	"APPROVED":        models.TransactionStatusApproved,
	"COMPLETE":        models.TransactionStatusApproved,
	"COMPLETED":       models.TransactionStatusApproved,
	"CANCELED":        models.TransactionStatusCanceled,
	"CANCELLED":       models.TransactionStatusCanceled,
	"EXPIRED":         models.TransactionStatusCanceled,
	"REFUNDED":        models.TransactionStatusRefunded,
	"CHARGEBACK":      models.TransactionStatusChargeback,
	"DISPUTE":         models.TransactionStatusChargeback,
	"PROTESTED":       models.TransactionStatusChargeback,
	"DELAYED":         models.TransactionStatusOverdue,
	"BILLET_PRINTED":  models.TransactionStatusPending,
	"PRINTED_BILLET":  models.TransactionStatusPending,
	"WAITING_PAYMENT": models.TransactionStatusPending,
	"STARTED":         models.TransactionStatusPending,
}

var asaasEventStatus = map[string]string{
	"PAYMENT_CREATED":                      models.TransactionStatusPending,
	"PAYMENT_AWAITING_RISK_ANALYSIS":       models.TransactionStatusPending,
	"PAYMENT_RESTORED":                     models.TransactionStatusPending,
	"PAYMENT_RECEIVED_IN_CASH_UNDONE":      models.TransactionStatusPending,
	"PAYMENT_RECEIVED":                     models.TransactionStatusApproved,
	"PAYMENT_CONFIRMED":                    models.TransactionStatusApproved,
	"PAYMENT_RECEIVED_IN_CASH":             models.TransactionStatusApproved,
	"PAYMENT_OVERDUE":                      models.TransactionStatusOverdue,
	"PAYMENT_REFUNDED":                     models.TransactionStatusRefunded,
	"PAYMENT_PARTIALLY_REFUNDED":           models.TransactionStatusRefunded,
	"PAYMENT_REFUND_IN_PROGRESS":           models.TransactionStatusRefunded,
	"PAYMENT_CHARGEBACK_REQUESTED":         models.TransactionStatusChargeback,
	"PAYMENT_CHARGEBACK_DISPUTE":           models.TransactionStatusChargeback,
	"PAYMENT_AWAITING_CHARGEBACK_REVERSAL": models.TransactionStatusChargeback,
	"PAYMENT_DELETED":                      models.TransactionStatusCanceled,
}

var asaasPaymentStatus = map[string]string{
	"PENDING":                      models.TransactionStatusPending,
	"AWAITING_RISK_ANALYSIS":       models.TransactionStatusPending,
	"RECEIVED":                     models.TransactionStatusApproved,
	"CONFIRMED":                    models.TransactionStatusApproved,
	"RECEIVED_IN_CASH":             models.TransactionStatusApproved,
	"DUNNING_RECEIVED":             models.TransactionStatusApproved,
	"OVERDUE":                      models.TransactionStatusOverdue,
	"DUNNING_REQUESTED":            models.TransactionStatusOverdue,
	"REFUNDED":                     models.TransactionStatusRefunded,
	"REFUND_REQUESTED":             models.TransactionStatusRefunded,
	"REFUND_IN_PROGRESS":           models.TransactionStatusRefunded,
	"CHARGEBACK_REQUESTED":         models.TransactionStatusChargeback,
	"CHARGEBACK_DISPUTE":           models.TransactionStatusChargeback,
	"AWAITING_CHARGEBACK_REVERSAL": models.TransactionStatusChargeback,
}

var relayStatus = map[string]string{
	"approved":        models.TransactionStatusApproved,
	"APPROVED":        models.TransactionStatusApproved,
	"Approved":        models.TransactionStatusApproved,
	"paid":            models.TransactionStatusApproved,
	"PAID":            models.TransactionStatusApproved,
	"pago":            models.TransactionStatusApproved,
	"aprovado":        models.TransactionStatusApproved,
	"completed":       models.TransactionStatusApproved,
	"complete":        models.TransactionStatusApproved,
	"succeeded":       models.TransactionStatusApproved,
	"pending":         models.TransactionStatusPending,
	"PENDING":         models.TransactionStatusPending,
	"waiting_payment": models.TransactionStatusPending,
	"pendente":        models.TransactionStatusPending,
	"refunded":        models.TransactionStatusRefunded,
	"REFUNDED":        models.TransactionStatusRefunded,
	"reembolsado":     models.TransactionStatusRefunded,
	"chargeback":      models.TransactionStatusChargeback,
	"CHARGEBACK":      models.TransactionStatusChargeback,
	"canceled":        models.TransactionStatusCanceled,
	"cancelled":       models.TransactionStatusCanceled,
	"CANCELED":        models.TransactionStatusCanceled,
	"cancelado":       models.TransactionStatusCanceled,
	"expired":         models.TransactionStatusCanceled,
	"overdue":         models.TransactionStatusOverdue,
	"OVERDUE":         models.TransactionStatusOverdue,
	"vencido":         models.TransactionStatusOverdue,
}

// lookupStatus returns the first mapped value among candidates, in order.
func lookupStatus(table map[string]string, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if s, ok := table[c]; ok {
			return s, true
		}
	}
	return "", false
}

// HotmartStatus maps the event name first, then the purchase status.
func HotmartStatus(event, purchaseStatus string) string {
	if s, ok := lookupStatus(hotmartEventStatus, event); ok {
		return s
	}
	if s, ok := lookupStatus(hotmartPurchaseStatus, purchaseStatus); ok {
		return s
	}
	return models.TransactionStatusPending
}

// AsaasStatus maps the event name first, then the payment status.
func AsaasStatus(event, paymentStatus string) string {
	if s, ok := lookupStatus(asaasEventStatus, event); ok {
		return s
	}
	if s, ok := lookupStatus(asaasPaymentStatus, paymentStatus); ok {
		return s
	}
	return models.TransactionStatusPending
}

// RelayStatus maps the explicit status first, then the event name.
func RelayStatus(status, event string) string {
	if s, ok := lookupStatus(relayStatus, status, event); ok {
		return s
	}
	return models.TransactionStatusPending
}
