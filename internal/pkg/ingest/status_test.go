package ingest

import (
	"testing"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

func TestHotmartStatus(t *testing.T) {
	tests := []struct {
		event, purchase string
		want            string
	}{
		{event: "PURCHASE_APPROVED", want: models.TransactionStatusApproved},
		{event: "PURCHASE_COMPLETE", want: models.TransactionStatusApproved},
		{event: "PURCHASE_CANCELLED", want: models.TransactionStatusCanceled},
		{event: "PURCHASE_REFUNDED", want: models.TransactionStatusRefunded},
		{event: "PURCHASE_CHARGEBACK", want: models.TransactionStatusChargeback},
		{event: "PURCHASE_DELAYED", want: models.TransactionStatusOverdue},
		{event: "SOMETHING_NEW", purchase: "APPROVED", want: models.TransactionStatusApproved},
		{event: "SOMETHING_NEW", purchase: "approved", want: models.TransactionStatusPending},
		{event: "", purchase: "", want: models.TransactionStatusPending},
	}

	for _, tt := range tests {
		if got := HotmartStatus(tt.event, tt.purchase); got != tt.want {
			t.Fatalf("HotmartStatus(%q, %q) = %q, want %q", tt.event, tt.purchase, got, tt.want)
		}
	}
}

func TestAsaasStatus(t *testing.T) {
	tests := []struct {
		event, payment string
		want           string
	}{
		{event: "PAYMENT_RECEIVED", want: models.TransactionStatusApproved},
		{event: "PAYMENT_CONFIRMED", want: models.TransactionStatusApproved},
		{event: "PAYMENT_OVERDUE", want: models.TransactionStatusOverdue},
		{event: "PAYMENT_REFUNDED", want: models.TransactionStatusRefunded},
		{event: "PAYMENT_DELETED", want: models.TransactionStatusCanceled},
		{event: "PAYMENT_UPDATED", payment: "RECEIVED", want: models.TransactionStatusApproved},
		{event: "PAYMENT_UPDATED", payment: "WHATEVER", want: models.TransactionStatusPending},
	}

	for _, tt := range tests {
		if got := AsaasStatus(tt.event, tt.payment); got != tt.want {
			t.Fatalf("AsaasStatus(%q, %q) = %q, want %q", tt.event, tt.payment, got, tt.want)
		}
	}
}

func TestRelayStatus(t *testing.T) {
	if got := RelayStatus("paid", ""); got != models.TransactionStatusApproved {
		t.Fatalf("expected paid to map to approved, got %q", got)
	}
	if got := RelayStatus("", "refunded"); got != models.TransactionStatusRefunded {
		t.Fatalf("expected event fallback to map to refunded, got %q", got)
	}
	if got := RelayStatus("Paid", ""); got != models.TransactionStatusPending {
		t.Fatalf("expected unmapped spelling to fall back to pending, got %q", got)
	}
}
