package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/IntegrationHub/app/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		headers Headers
		body    string
		want    string
	}{
		{"query wins over header", "asaas", Headers{"x-webhook-source": "hotmart"}, `{}`, models.SourceAsaas},
		{"source header", "", Headers{"x-webhook-source": "Hotmart"}, `{}`, models.SourceHotmart},
		{"relay alias", "zapier", nil, `{}`, models.SourceRelay},
		{"unknown query value falls through", "stripe", Headers{"asaas-access-token": "x"}, `{}`, models.SourceAsaas},
		{"hotmart auth header", "", Headers{"x-hotmart-hottok": "x"}, `{}`, models.SourceHotmart},
		{"relay auth header", "", Headers{"x-webhook-token": "x"}, `{}`, models.SourceRelay},
		{"asaas body", "", nil, `{"event":"PAYMENT_RECEIVED","payment":{"id":"pay_1"}}`, models.SourceAsaas},
		{"asaas body without payment prefix", "", nil, `{"event":"SUBSCRIPTION_CREATED","payment":{"id":"pay_1"}}`, models.SourceUnknown},
		{"hotmart hottok body", "", nil, `{"hottok":"abc","event":"PURCHASE_APPROVED"}`, models.SourceHotmart},
		{"hotmart purchase body", "", nil, `{"event":"PURCHASE_APPROVED","data":{"purchase":{"transaction":"HP1"}}}`, models.SourceHotmart},
		{"flat body", "", nil, `{"id":"x","amount":"10.00"}`, models.SourceUnknown},
		{"garbage body", "", nil, `not json`, models.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.param, tt.headers, []byte(tt.body)))
		})
	}
}
