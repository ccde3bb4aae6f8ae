package ingest

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

const asaasCouponPrefix = "coupon:"

type asaasPayload struct {
	ID      string        `json:"id"`
	Event   string        `json:"event"`
	Payment *asaasPayment `json:"payment"`
}

type asaasPayment struct {
	ID                flexString      `json:"id"`
	Customer          json.RawMessage `json:"customer"`
	CustomerName      string          `json:"customerName"`
	CustomerEmail     string          `json:"customerEmail"`
	Subscription      string          `json:"subscription"`
	Value             flexAmount      `json:"value"`
	Status            string          `json:"status"`
	Description       string          `json:"description"`
	ExternalReference string          `json:"externalReference"`
	BillingType       string          `json:"billingType"`
	Discount          *struct {
		CouponCode string `json:"couponCode"`
	} `json:"discount"`
}

// asaasCustomer is the expanded form; the platform usually sends only the id.
type asaasCustomer struct {
	ID      flexString `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	CpfCnpj string     `json:"cpfCnpj"`
}

func decodeAsaasCustomer(raw json.RawMessage) asaasCustomer {
	var c asaasCustomer
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		_ = json.Unmarshal(trimmed, &c)
	default:
		_ = c.ID.UnmarshalJSON(trimmed)
	}
	return c
}

// ParseAsaas normalizes a platform-B payment notification. Events not
// prefixed PAYMENT_ are acknowledged and ignored.
//
// Defaults: missing payment object -> synthetic id with zero amount,
// missing value -> 0 BRL, coupon absent -> nil code.
func ParseAsaas(body []byte, receivedAt time.Time) (*Parsed, error) {
	var p asaasPayload
	if err := decodeStrict(body, &p); err != nil {
		return nil, err
	}

	parsed := &Parsed{EventType: p.Event}
	if p.Event != "" && !strings.HasPrefix(p.Event, "PAYMENT_") {
		return parsed, ErrIgnoredEvent
	}

	tx := &models.Transaction{
		Source:          models.SourceAsaas,
		TransactionType: models.TransactionTypePayment,
		Currency:        models.DefaultCurrency,
	}

	var paymentStatus string
	var value flexAmount
	if pay := p.Payment; pay != nil {
		customer := decodeAsaasCustomer(pay.Customer)

		tx.ExternalID = pay.ID.String()
		value = pay.Value
		tx.CustomerName = firstNonEmpty(pay.CustomerName, customer.Name)
		tx.CustomerEmail = normalizeEmail(firstNonEmpty(pay.CustomerEmail, customer.Email))
		tx.ProductName = pay.Description
		tx.ProductID = firstNonEmpty(pay.Subscription, referenceWithoutCoupon(pay.ExternalReference))

		var coupon string
		if pay.Discount != nil {
			coupon = pay.Discount.CouponCode
		}
		if coupon == "" && strings.HasPrefix(strings.ToLower(pay.ExternalReference), asaasCouponPrefix) {
			coupon = pay.ExternalReference[len(asaasCouponPrefix):]
		}
		tx.AffiliateCode = optionalString(coupon)

		paymentStatus = pay.Status
	}

	if tx.ExternalID == "" {
		tx.ExternalID = syntheticExternalID(models.SourceAsaas, receivedAt)
	}
	tx.ExternalID = boundedExternalID(models.SourceAsaas, tx.ExternalID)
	tx.Amount = minorUnitsOrWarn(value, models.SourceAsaas, tx.ExternalID)
	tx.Status = AsaasStatus(p.Event, paymentStatus)
	tx.Metadata = rawMetadata(body)

	parsed.Transaction = tx
	return parsed, nil
}

func referenceWithoutCoupon(ref string) string {
	if strings.HasPrefix(strings.ToLower(ref), asaasCouponPrefix) {
		return ""
	}
	return ref
}
