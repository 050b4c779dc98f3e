package webhook

import (
	"github.com/mattjoyce/hookwatch/internal/ledger"
)

//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks github.com/mattjoyce/hookwatch/internal/webhook Recorder

// Recorder stores classified deliveries.
type Recorder interface {
	Append(rec ledger.Record) ledger.Record
}

// Config holds the endpoint settings. It is read-only once the Handler is built.
type Config struct {
	// VerifyToken is the shared token echoed back by the handshake.
	VerifyToken string

	// AppSecret is the HMAC key for X-Hub-Signature-256. Empty disables
	// signature enforcement.
	AppSecret string

	// MaxBodySize is the largest body that is parsed and stored (default: 1MB)
	MaxBodySize int64
}

// AckResponse is the body returned for every delivery.
type AckResponse struct {
	Status string `json:"status"`
}

// Default values and protocol constants.
const (
	DefaultMaxBodySize = 1048576 // 1 MB

	Path            = "/webhook"
	SignatureHeader = "X-Hub-Signature-256"
	SignaturePrefix = "sha256="
	SubscribeMode   = "subscribe"

	VerificationFailed = "Verification failed"
)
