package api

import (
	"time"

	"github.com/mattjoyce/hookwatch/internal/ledger"
)

// WebhookView is the read-back form of a ledger record.
type WebhookView struct {
	Seq         int64     `json:"seq"`
	Epoch       string    `json:"epoch"`
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Category    string    `json:"type"`
	Signature   string    `json:"signature_status"`
	Fingerprint string    `json:"fingerprint"`
	Data        any       `json:"data"`
}

func newWebhookView(r ledger.Record) WebhookView {
	return WebhookView{
		Seq:         r.Seq,
		Epoch:       r.Epoch,
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		Category:    r.Category,
		Signature:   string(r.Signature),
		Fingerprint: r.Fingerprint,
		Data:        r.Payload,
	}
}

// WebhookListResponse is returned by GET /api/webhooks.
type WebhookListResponse struct {
	Count    int           `json:"count"`
	Total    int64         `json:"total"`
	Webhooks []WebhookView `json:"webhooks"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status           string `json:"status"`
	WebhooksReceived int    `json:"webhooks_received"`
	WebhooksTotal    int64  `json:"webhooks_total"`
	LedgerCapacity   int    `json:"ledger_capacity"`
	LedgerEpoch      string `json:"ledger_epoch"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	VerifyTokenSet   bool   `json:"verify_token_set"`
	AppSecretSet     bool   `json:"app_secret_set"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}
