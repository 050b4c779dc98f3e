package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Verify reports whether signature is a valid HMAC-SHA256 of payload under
// secret. payload must be the raw request bytes.
//
// An empty secret disables verification and Verify returns true. The
// signature may carry a "sha256=" prefix; the remainder is compared as a hex
// string in constant time. Malformed signatures simply fail.
func Verify(payload []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}

	expected := Sign(payload, secret)
	actual := strings.TrimPrefix(signature, SignaturePrefix)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed by secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue formats a hex digest the way the platform sends it.
func SignatureHeaderValue(hexSig string) string {
	return SignaturePrefix + hexSig
}
