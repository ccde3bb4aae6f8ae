package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

// Parse normalizes a payload from source into a canonical transaction. When
// the event is acknowledged but not acted on, the returned Parsed still
// carries the event type and the error is ErrIgnoredEvent.
func Parse(source string, body []byte, receivedAt time.Time) (*Parsed, error) {
	switch source {
	case models.SourceHotmart:
		return ParseHotmart(body, receivedAt)
	case models.SourceAsaas:
		return ParseAsaas(body, receivedAt)
	default:
		return ParseRelay(source, body, receivedAt)
	}
}

// decodeStrict decodes a JSON object with UseNumber so no amount passes
// through float64.
func decodeStrict(body []byte, v interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: body is not a JSON object", ErrInvalidPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// rawMetadata keeps the original event as received. decodeStrict has
// already confirmed body is a JSON object.
func rawMetadata(body []byte) datatypes.JSON {
	trimmed := bytes.TrimSpace(body)
	return datatypes.JSON(append([]byte(nil), trimmed...))
}

// maxExternalIDLength matches the width of the external_id and source_id columns.
const maxExternalIDLength = 191

// boundedExternalID replaces identifiers too long for the column with a
// stable digest, so redeliveries of the same event still hit the same row.
func boundedExternalID(source, id string) string {
	if len(id) <= maxExternalIDLength {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	hashed := source + "_sha256_" + hex.EncodeToString(sum[:])
	log.Warnf("[Webhook] %s external id is %d bytes, stored as %s", source, len(id), hashed)
	return hashed
}

// minorUnitsOrWarn converts amount and logs when the upstream value cannot be
// read, so a zero amount is never stored silently.
func minorUnitsOrWarn(amount flexAmount, source, externalID string) int64 {
	v, err := amount.MinorUnits()
	if err != nil {
		log.Warnf("[Webhook] Unreadable amount %q on %s transaction %s, storing 0: %v", string(amount), source, externalID, err)
		return 0
	}
	return v
}

func currencyOrDefault(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return models.DefaultCurrency
	}
	return c
}
