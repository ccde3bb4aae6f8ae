package ingest

import (
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

// relayPayload is the flat shape sent by automation relays. Every field has
// an alternate spelling; the first non-blank one wins.
type relayPayload struct {
	ID            flexString `json:"id"`
	TransactionID flexString `json:"transaction_id"`
	ExternalID    flexString `json:"external_id"`
	Amount        flexAmount `json:"amount"`
	Value         flexAmount `json:"value"`
	Currency      flexString `json:"currency"`
	Status        flexString `json:"status"`
	Event         flexString `json:"event"`
	Type          flexString `json:"type"`
	CustomerName  flexString `json:"customer_name"`
	Name          flexString `json:"name"`
	CustomerEmail flexString `json:"customer_email"`
	Email         flexString `json:"email"`
	ProductName   flexString `json:"product_name"`
	Product       flexString `json:"product"`
	ProductID     flexString `json:"product_id"`
	Coupon        flexString `json:"coupon"`
	AffiliateCode flexString `json:"affiliate_code"`
	Ref           flexString `json:"ref"`
	CNPJ          flexString `json:"cnpj"`
}

// ParseRelay normalizes relay traffic. It is also the catch-all parser for
// unrecognized sources, in which case the source tag stays as given.
//
// Defaults: missing id -> synthetic id, missing amount -> 0, missing
// currency -> BRL, unmapped status -> pending.
func ParseRelay(source string, body []byte, receivedAt time.Time) (*Parsed, error) {
	if source == "" {
		source = models.SourceUnknown
	}

	var p relayPayload
	if err := decodeStrict(body, &p); err != nil {
		return nil, err
	}

	eventType := firstNonEmpty(p.Event.String(), p.Type.String())
	amount := p.Amount
	if amount == "" {
		amount = p.Value
	}

	tx := &models.Transaction{
		Source:          source,
		TransactionType: models.TransactionTypeEvent,
		ExternalID:      firstNonEmpty(p.ID.String(), p.TransactionID.String(), p.ExternalID.String()),
		Currency:        currencyOrDefault(p.Currency.String()),
		Status:          RelayStatus(p.Status.String(), eventType),
		CustomerName:    firstNonEmpty(p.CustomerName.String(), p.Name.String()),
		CustomerEmail:   normalizeEmail(firstNonEmpty(p.CustomerEmail.String(), p.Email.String())),
		ProductName:     firstNonEmpty(p.ProductName.String(), p.Product.String()),
		ProductID:       p.ProductID.String(),
		AffiliateCode:   optionalString(firstNonEmpty(p.Coupon.String(), p.AffiliateCode.String(), p.Ref.String())),
		CNPJOrigem:      digitsOnly(p.CNPJ.String()),
	}
	if tx.ExternalID == "" {
		tx.ExternalID = syntheticExternalID(source, receivedAt)
	}
	tx.ExternalID = boundedExternalID(source, tx.ExternalID)
	tx.Amount = minorUnitsOrWarn(amount, source, tx.ExternalID)
	tx.Metadata = rawMetadata(body)

	return &Parsed{EventType: eventType, Transaction: tx}, nil
}
