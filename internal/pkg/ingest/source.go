package ingest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

var sourceAliases = map[string]string{
	models.SourceHotmart: models.SourceHotmart,
	models.SourceAsaas:   models.SourceAsaas,
	models.SourceRelay:   models.SourceRelay,
	"zapier":             models.SourceRelay,
	"make":               models.SourceRelay,
	"n8n":                models.SourceRelay,
}

// NormalizeSource maps an explicit source name to its id, or "" if unknown.
func NormalizeSource(name string) string {
	return sourceAliases[strings.ToLower(strings.TrimSpace(name))]
}

// Detect classifies a request. Resolution order: explicit query parameter,
// explicit source header, presence of a source auth header, body shape.
// Detection never rejects; unmatched traffic is models.SourceUnknown.
func Detect(sourceParam string, headers Headers, body []byte) string {
	if s := NormalizeSource(sourceParam); s != "" {
		return s
	}
	if s := NormalizeSource(headers.Get(HeaderSource)); s != "" {
		return s
	}

	switch {
	case headers.Get(HeaderHotmartToken) != "":
		return models.SourceHotmart
	case headers.Get(HeaderAsaasToken) != "":
		return models.SourceAsaas
	case headers.Get(HeaderRelayToken) != "":
		return models.SourceRelay
	}

	return detectFromBody(body)
}

type shapeProbe struct {
	Event   string          `json:"event"`
	Hottok  json.RawMessage `json:"hottok"`
	Payment json.RawMessage `json:"payment"`
	Data    *struct {
		Producer   json.RawMessage `json:"producer"`
		Affiliates json.RawMessage `json:"affiliates"`
		Purchase   json.RawMessage `json:"purchase"`
	} `json:"data"`
}

func detectFromBody(body []byte) string {
	var probe shapeProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		return models.SourceUnknown
	}

	if isObject(probe.Payment) && strings.HasPrefix(probe.Event, "PAYMENT_") {
		return models.SourceAsaas
	}
	if len(probe.Hottok) > 0 {
		return models.SourceHotmart
	}
	if probe.Data != nil && (isObject(probe.Data.Producer) || len(probe.Data.Affiliates) > 0 || isObject(probe.Data.Purchase)) {
		return models.SourceHotmart
	}
	return models.SourceUnknown
}

func isObject(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}
