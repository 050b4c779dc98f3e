// Package webhook implements the Meta (Instagram / Facebook Page) webhook
// callback protocol: the subscription handshake and signed event delivery.
//
// # Security Model
//
//   - HMAC-SHA256 signatures verified over the raw request bytes, before any
//     JSON decoding, with a constant-time comparison
//   - An empty app secret disables signature enforcement and every delivery
//     is recorded as verified
//   - Signature mismatches are not rejected: the delivery is recorded as
//     unverified and still acknowledged
//   - Request logging excludes payloads
//
// # Request Flow
//
// Handshake:
//
//	GET /webhook?hub.mode=subscribe&hub.verify_token=<token>&hub.challenge=<value>
//
// responds 200 with <value> when the token matches, 403 otherwise.
//
// Ingest:
//
//  1. POST arrives at /webhook
//  2. Raw body read (bounded by MaxBodySize)
//  3. X-Hub-Signature-256 checked against the app secret
//  4. Body decoded as JSON; malformed bodies are not stored
//  5. Delivery classified and appended to the Recorder
//  6. 200 {"status":"ok"} returned regardless of steps 3-5
//
// The platform owns redelivery, so nothing after the read ever changes the
// acknowledgment.
//
// # Example Usage
//
//	l := ledger.New(50)
//	h := webhook.New(webhook.Config{
//		VerifyToken: os.Getenv("VERIFY_TOKEN"),
//		AppSecret:   os.Getenv("APP_SECRET"),
//	}, l, logger)
//
//	r := chi.NewRouter()
//	h.Routes(r)
package webhook
