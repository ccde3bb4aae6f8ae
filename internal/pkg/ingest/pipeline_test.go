package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

type pipelineFixture struct {
	pipeline *Pipeline
	txs      *memTransactions
	events   *memEvents
	audit    *fakeAuditor
	hookRuns *int32
}

func newFixture(secrets map[string]string, policy SignaturePolicy, extra ...Hook) *pipelineFixture {
	f := &pipelineFixture{
		txs:      newMemTransactions(),
		events:   &memEvents{},
		audit:    &fakeAuditor{},
		hookRuns: new(int32),
	}
	counter := NewHook("counter", func(ctx context.Context, tx *models.Transaction) error {
		atomic.AddInt32(f.hookRuns, 1)
		return nil
	})
	hooks := append(extra, counter)
	f.pipeline = NewPipeline(NewVerifier(secrets, policy), f.events, f.txs, f.audit, hooks...).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func hotmartRequest(token string) Request {
	h := Headers{}
	if token != "" {
		h["x-hotmart-hottok"] = token
	}
	return Request{Headers: h, Body: []byte(hotmartApproved), ClientIP: "203.0.113.7"}
}

func TestPipeline_IdempotentIngestion(t *testing.T) {
	f := newFixture(map[string]string{models.SourceHotmart: "secret"}, PolicyFailOpen)
	ctx := context.Background()

	first, err := f.pipeline.Process(ctx, hotmartRequest("secret"))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.StatusChanged)

	second, err := f.pipeline.Process(ctx, hotmartRequest("secret"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.False(t, second.StatusChanged)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)

	assert.Equal(t, 1, f.txs.count())
	assert.Equal(t, 2, f.events.count(), "every accepted delivery is logged")
	assert.Equal(t, int32(1), atomic.LoadInt32(f.hookRuns), "side effects run once per transition")
}

func TestPipeline_ConcurrentDeliveriesRunHooksOnce(t *testing.T) {
	f := newFixture(map[string]string{models.SourceHotmart: "secret"}, PolicyFailOpen)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pipeline.Process(context.Background(), hotmartRequest("secret"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.txs.count())
	assert.Equal(t, int32(1), atomic.LoadInt32(f.hookRuns))
}

func TestPipeline_InvalidSignature(t *testing.T) {
	f := newFixture(map[string]string{models.SourceHotmart: "secret"}, PolicyFailOpen)

	for _, token := range []string{"wrong", ""} {
		out, err := f.pipeline.Process(context.Background(), hotmartRequest(token))
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Nil(t, out)
	}

	assert.Equal(t, 0, f.txs.count())
	assert.Equal(t, 0, f.events.count())
	assert.Equal(t, []string{models.SecurityEventAuthFailure, models.SecurityEventAuthFailure}, f.audit.kinds())
	assert.Equal(t, int32(0), atomic.LoadInt32(f.hookRuns))
}

func TestPipeline_FailOpenWhenUnconfigured(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailOpen)

	out, err := f.pipeline.Process(context.Background(), hotmartRequest(""))
	require.NoError(t, err)
	assert.Equal(t, "HP1234", out.Transaction.ExternalID)
	assert.Equal(t, 1, f.txs.count())
	assert.Contains(t, f.audit.kinds(), models.SecurityEventSignatureUnconfigured)
}

func TestPipeline_FailClosedWhenUnconfigured(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailClosed)

	_, err := f.pipeline.Process(context.Background(), hotmartRequest(""))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, 0, f.txs.count())
}

func TestPipeline_UnknownSourceFallback(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailOpen)

	out, err := f.pipeline.Process(context.Background(), Request{
		Headers: Headers{},
		Body:    []byte(`{"customer_email":"x@y.com","amount":"5.00","status":"approved"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceUnknown, out.Source)
	assert.Equal(t, models.SourceUnknown, out.Transaction.Source)
	assert.Equal(t, models.TransactionTypeEvent, out.Transaction.TransactionType)
	assert.Equal(t, "unknown_1710504000000", out.Transaction.ExternalID)
	assert.Equal(t, int64(500), out.Transaction.Amount)
}

func TestPipeline_UnknownSourceRequiresRelaySecret(t *testing.T) {
	f := newFixture(map[string]string{models.SourceRelay: "relay-secret"}, PolicyFailOpen)
	body := []byte(`{"customer_email":"x@y.com","amount":"5.00","status":"approved"}`)

	out, err := f.pipeline.Process(context.Background(), Request{Headers: Headers{}, Body: body})
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Nil(t, out)
	assert.Equal(t, 0, f.txs.count())
	assert.Equal(t, 0, f.events.count())
	assert.Equal(t, []string{models.SecurityEventAuthFailure}, f.audit.kinds())

	out, err = f.pipeline.Process(context.Background(), Request{
		Headers: Headers{"x-webhook-token": "relay-secret"},
		Body:    body,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceRelay, out.Source)
	assert.Equal(t, 1, f.txs.count())
}

func TestPipeline_IgnoredEventIsRecorded(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailOpen)

	out, err := f.pipeline.Process(context.Background(), Request{
		SourceParam: "hotmart",
		Headers:     Headers{},
		Body:        []byte(`{"event":"PURCHASE_OUT_OF_SHOPPING_CART","data":{}}`),
	})
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Equal(t, 1, f.events.count())
	assert.Equal(t, 0, f.txs.count())
}

func TestPipeline_InvalidPayloadIsRecordedAndAudited(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailOpen)

	_, err := f.pipeline.Process(context.Background(), Request{SourceParam: "asaas", Headers: Headers{}, Body: []byte(`{oops`)})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, 1, f.events.count())
	assert.Equal(t, 0, f.txs.count())
	assert.Contains(t, f.audit.kinds(), models.SecurityEventProcessingError)
}

func TestPipeline_StoreFailure(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailOpen)
	f.txs.err = errBoom

	_, err := f.pipeline.Process(context.Background(), hotmartRequest(""))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, f.events.count())
}

func TestPipeline_HookFailuresAreIsolated(t *testing.T) {
	panicking := NewHook("panics", func(ctx context.Context, tx *models.Transaction) error {
		panic("nil map")
	})
	failing := NewHook("fails", func(ctx context.Context, tx *models.Transaction) error {
		return errBoom
	})
	f := newFixture(map[string]string{}, PolicyFailOpen, panicking, failing)

	out, err := f.pipeline.Process(context.Background(), hotmartRequest(""))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusApproved, out.Transaction.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.hookRuns), "later hooks still run")
	assert.Equal(t, 1, f.txs.count())
}

func TestPipeline_NonApprovedSkipsHooks(t *testing.T) {
	f := newFixture(map[string]string{}, PolicyFailOpen)

	_, err := f.pipeline.Process(context.Background(), Request{
		SourceParam: "asaas",
		Headers:     Headers{},
		Body:        []byte(`{"event":"PAYMENT_CREATED","payment":{"id":"pay_9","value":10}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(f.hookRuns))

	_, err = f.pipeline.Process(context.Background(), Request{
		SourceParam: "asaas",
		Headers:     Headers{},
		Body:        []byte(`{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_9","value":10}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.hookRuns), "transition to approved triggers hooks")
}
