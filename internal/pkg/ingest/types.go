package ingest

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

var (
	// ErrInvalidSignature is returned when a request fails authentication.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidPayload is returned when the body is not a JSON object.
	ErrInvalidPayload = errors.New("invalid webhook payload")
	// ErrIgnoredEvent marks event types the pipeline acknowledges but does not act on.
	ErrIgnoredEvent = errors.New("event ignored")
)

// Headers is a case-insensitive view of request headers.
type Headers map[string]string

// NewHeaders builds Headers from a multi-value header map, keeping the first value.
func NewHeaders(in map[string][]string) Headers {
	h := make(Headers, len(in))
	for k, v := range in {
		if len(v) > 0 {
			h[strings.ToLower(k)] = v[0]
		}
	}
	return h
}

// Get returns the trimmed header value or "".
func (h Headers) Get(key string) string {
	return strings.TrimSpace(h[strings.ToLower(key)])
}

// Request is the transport-independent view of one inbound webhook call.
type Request struct {
	SourceParam string
	Headers     Headers
	Body        []byte
	ClientIP    string
}

// Parsed is the outcome of a source parser.
type Parsed struct {
	EventType   string
	Transaction *models.Transaction
}

// Outcome describes what the pipeline did with one request.
type Outcome struct {
	Source        string
	EventType     string
	Transaction   *models.Transaction
	Ignored       bool
	Created       bool
	StatusChanged bool
}

// flexString accepts any JSON scalar and keeps its text. Objects, arrays and
// null decode to "" instead of failing the whole payload.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "" || s == "null" || strings.HasPrefix(s, "{") || strings.HasPrefix(s, "["):
		*f = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(strings.TrimSpace(v))
	default:
		*f = flexString(s)
	}
	return nil
}

func (f flexString) String() string {
	return string(f)
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// normalizeEmail trims and lower-cases; email is the join key to student records.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optionalString(v string) *string {
	t := strings.TrimSpace(v)
	if t == "" {
		return nil
	}
	return &t
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// syntheticExternalID is used when the upstream payload carries no identifier.
func syntheticExternalID(source string, now time.Time) string {
	return source + "_" + formatInt(now.UnixMilli())
}
