package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

type memStore struct {
	events []*models.SecurityEvent
	err    error
}

func (m *memStore) Create(_ context.Context, e *models.SecurityEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func bufferSink() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l, buf
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", RedactEmail("joana.silva@example.com"))
	assert.Equal(t, "***", RedactEmail("not-an-email"))
	assert.Equal(t, "", RedactEmail(""))
}

func TestRedactString(t *testing.T) {
	in := "buyer maria@example.com cpf 123.456.789-09 failed"
	out := RedactString(in)

	assert.NotContains(t, out, "maria@example.com")
	assert.NotContains(t, out, "123.456.789-09")
	assert.Contains(t, out, "m***@example.com")
	assert.Contains(t, out, "***09")
}

func TestRedactFields(t *testing.T) {
	out := RedactFields(map[string]interface{}{
		"customer_email": "ana@example.com",
		"customer_name":  "Ana Souza",
		"amount":         1990,
		"nested":         map[string]interface{}{"hottok": "secret-token"},
		"note":           "contact ana@example.com",
	})

	assert.Equal(t, "a***@example.com", out["customer_email"])
	assert.Equal(t, "***", out["customer_name"])
	assert.Equal(t, 1990, out["amount"])
	assert.Equal(t, "***", out["nested"].(map[string]interface{})["hottok"])
	assert.Equal(t, "contact a***@example.com", out["note"])
}

func TestLogger_ProcessingErrorIsRedactedAndPersisted(t *testing.T) {
	store := &memStore{}
	sink, buf := bufferSink()
	l := NewLogger(store).WithSink(sink)

	l.ProcessingError(context.Background(), models.SourceAsaas, "10.0.0.1", "parse",
		errors.New("bad payload for bob@example.com"), map[string]interface{}{"customer_email": "bob@example.com"})

	require.Len(t, store.events, 1)
	ev := store.events[0]
	assert.Equal(t, models.SecurityEventProcessingError, ev.EventType)
	assert.Equal(t, models.SourceAsaas, ev.Source)
	assert.NotContains(t, string(ev.Details), "bob@example.com")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.NotContains(t, buf.String(), "bob@example.com")
}

func TestLogger_StoreFailureIsSwallowed(t *testing.T) {
	sink, _ := bufferSink()
	l := NewLogger(&memStore{err: errors.New("db down")}).WithSink(sink)

	assert.NotPanics(t, func() {
		l.AuthFailure(context.Background(), models.SourceHotmart, "10.0.0.2", "missing header")
	})
}

func TestLogger_NilStore(t *testing.T) {
	sink, buf := bufferSink()
	l := NewLogger(nil).WithSink(sink)

	l.SignatureUnconfigured(context.Background(), models.SourceRelay, "10.0.0.3")
	assert.Contains(t, buf.String(), models.SecurityEventSignatureUnconfigured)
}
