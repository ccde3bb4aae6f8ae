package ingest

import (
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

var hotmartIgnoredEvents = map[string]bool{
	"PURCHASE_OUT_OF_SHOPPING_CART": true,
	"CLUB_FIRST_ACCESS":             true,
	"CLUB_MODULE_COMPLETED":         true,
}

type hotmartPayload struct {
	ID     flexString   `json:"id"`
	Event  string       `json:"event"`
	Hottok string       `json:"hottok"`
	Data   *hotmartData `json:"data"`
}

type hotmartData struct {
	Product *struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	} `json:"product"`
	Buyer *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"buyer"`
	Producer *struct {
		Name     string `json:"name"`
		Document string `json:"document"`
	} `json:"producer"`
	Affiliates []struct {
		AffiliateCode string `json:"affiliate_code"`
		Name          string `json:"name"`
	} `json:"affiliates"`
	Purchase *struct {
		Transaction flexString `json:"transaction"`
		Status      string     `json:"status"`
		Price       *struct {
			Value         flexAmount `json:"value"`
			CurrencyValue string     `json:"currency_value"`
		} `json:"price"`
		Offer *struct {
			Code       string `json:"code"`
			CouponCode string `json:"coupon_code"`
		} `json:"offer"`
		PaymentType string `json:"payment_type"`
	} `json:"purchase"`
}

// ParseHotmart normalizes a platform-A sale notification.
//
// Defaults: missing transaction id -> synthetic id, missing price -> 0 BRL,
// missing buyer/product -> empty strings, no affiliate or coupon -> nil code.
func ParseHotmart(body []byte, receivedAt time.Time) (*Parsed, error) {
	var p hotmartPayload
	if err := decodeStrict(body, &p); err != nil {
		return nil, err
	}

	parsed := &Parsed{EventType: p.Event}
	if hotmartIgnoredEvents[p.Event] {
		return parsed, ErrIgnoredEvent
	}

	tx := &models.Transaction{
		Source:          models.SourceHotmart,
		TransactionType: models.TransactionTypeSale,
		Currency:        models.DefaultCurrency,
	}

	var purchaseStatus, offerCode, couponCode, affiliateCode string
	var price flexAmount
	if d := p.Data; d != nil {
		if d.Product != nil {
			tx.ProductID = d.Product.ID.String()
			tx.ProductName = d.Product.Name
		}
		if d.Buyer != nil {
			tx.CustomerName = d.Buyer.Name
			tx.CustomerEmail = normalizeEmail(d.Buyer.Email)
		}
		if d.Producer != nil {
			tx.CNPJOrigem = digitsOnly(d.Producer.Document)
		}
		if len(d.Affiliates) > 0 {
			affiliateCode = d.Affiliates[0].AffiliateCode
		}
		if pu := d.Purchase; pu != nil {
			tx.ExternalID = pu.Transaction.String()
			purchaseStatus = pu.Status
			if pu.Price != nil {
				price = pu.Price.Value
				tx.Currency = currencyOrDefault(pu.Price.CurrencyValue)
			}
			if pu.Offer != nil {
				offerCode = pu.Offer.Code
				couponCode = pu.Offer.CouponCode
			}
		}
	}

	if tx.ExternalID == "" {
		tx.ExternalID = syntheticExternalID(models.SourceHotmart, receivedAt)
	}
	tx.ExternalID = boundedExternalID(models.SourceHotmart, tx.ExternalID)
	tx.Amount = minorUnitsOrWarn(price, models.SourceHotmart, tx.ExternalID)
	tx.Status = HotmartStatus(p.Event, purchaseStatus)
	tx.AffiliateCode = optionalString(firstNonEmpty(affiliateCode, couponCode, offerCode))
	tx.Metadata = rawMetadata(body)

	parsed.Transaction = tx
	return parsed, nil
}
