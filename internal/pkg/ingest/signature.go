package ingest

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

const (
	HeaderHotmartToken = "X-HOTMART-HOTTOK"
	HeaderAsaasToken   = "asaas-access-token"
	HeaderRelayToken   = "X-Webhook-Token"
	HeaderSource       = "X-Webhook-Source"
)

// SignaturePolicy decides what happens when a source has no secret configured.
type SignaturePolicy string

const (
	PolicyFailOpen   SignaturePolicy = "fail_open"
	PolicyFailClosed SignaturePolicy = "fail_closed"
)

// Verification is the result of checking one request.
type Verification struct {
	Valid        bool
	Unconfigured bool
	Reason       string
}

// Verifier authenticates webhook requests with per-source shared secrets.
type Verifier struct {
	secrets map[string]string
	policy  SignaturePolicy
}

// NewVerifier creates a verifier. Keys of secrets are source ids; empty
// values count as unconfigured.
func NewVerifier(secrets map[string]string, policy SignaturePolicy) *Verifier {
	cp := make(map[string]string, len(secrets))
	for k, v := range secrets {
		cp[k] = v
	}
	if policy != PolicyFailClosed {
		policy = PolicyFailOpen
	}
	return &Verifier{secrets: cp, policy: policy}
}

// NewVerifierFromEnv reads the per-source secrets and the signature policy.
func NewVerifierFromEnv() *Verifier {
	return NewVerifier(map[string]string{
		models.SourceHotmart: env.GetEnv("HOTMART_WEBHOOK_TOKEN", ""),
		models.SourceAsaas:   env.GetEnv("ASAAS_WEBHOOK_TOKEN", ""),
		models.SourceRelay:   env.GetEnv("RELAY_WEBHOOK_TOKEN", ""),
	}, SignaturePolicy(env.GetEnv("WEBHOOK_SIGNATURE_POLICY", string(PolicyFailOpen))))
}

// credentialSource maps a detected source to the source whose secret applies.
// Unknown traffic goes through the relay parser and so uses the relay secret.
func credentialSource(source string) string {
	switch source {
	case models.SourceHotmart, models.SourceAsaas:
		return source
	default:
		return models.SourceRelay
	}
}

// SignatureHeader returns the header carrying the shared secret for source.
func SignatureHeader(source string) string {
	switch credentialSource(source) {
	case models.SourceHotmart:
		return HeaderHotmartToken
	case models.SourceAsaas:
		return HeaderAsaasToken
	default:
		return HeaderRelayToken
	}
}

// Verify checks the source's auth header against its configured secret.
func (v *Verifier) Verify(source string, headers Headers) Verification {
	secret := v.secrets[credentialSource(source)]
	if secret == "" {
		if v.policy == PolicyFailClosed {
			return Verification{Valid: false, Unconfigured: true, Reason: "secret not configured"}
		}
		log.Warnf("[Signature] No secret configured for source %s, accepting unauthenticated request", source)
		return Verification{Valid: true, Unconfigured: true}
	}

	provided := headers.Get(SignatureHeader(source))
	if provided == "" {
		return Verification{Valid: false, Reason: "missing " + SignatureHeader(source) + " header"}
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
		return Verification{Valid: false, Reason: "token mismatch"}
	}
	return Verification{Valid: true}
}
