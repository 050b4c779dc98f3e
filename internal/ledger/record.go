package ledger

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// SignatureStatus records the outcome of the HMAC check for a delivery.
type SignatureStatus string

const (
	Verified   SignatureStatus = "verified"
	Unverified SignatureStatus = "unverified"
)

// StatusFor maps a verification result to its SignatureStatus.
func StatusFor(ok bool) SignatureStatus {
	if ok {
		return Verified
	}
	return Unverified
}

// Record is a single received webhook delivery. Records are treated as
// immutable once built; the ledger never touches Payload.
type Record struct {
	// Seq is assigned by the ledger on Append and increases monotonically.
	Seq int64 `json:"seq"`
	// Epoch is the identity of the ledger that assigned Seq.
	Epoch string `json:"epoch"`

	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Category    string          `json:"category"`
	Signature   SignatureStatus `json:"signature_status"`
	Fingerprint string          `json:"fingerprint"`
	Payload     any             `json:"payload"`
}

// NewRecord builds a record captured at now (truncated to the second, UTC).
// The fingerprint is a BLAKE3 digest of the raw bytes, which makes platform
// redeliveries of the same body easy to spot.
func NewRecord(now time.Time, category string, status SignatureStatus, raw []byte, payload any) Record {
	sum := blake3.Sum256(raw)
	return Record{
		ID:          uuid.NewString(),
		Timestamp:   now.UTC().Truncate(time.Second),
		Category:    category,
		Signature:   status,
		Fingerprint: hex.EncodeToString(sum[:]),
		Payload:     payload,
	}
}
