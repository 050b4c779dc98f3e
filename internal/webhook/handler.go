package webhook

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/hookwatch/internal/ledger"
)

// ParseOutcome describes what happened to a delivery body.
type ParseOutcome string

const (
	ParseOK         ParseOutcome = "parsed"
	ParseMalformed  ParseOutcome = "malformed"
	ParseTooLarge   ParseOutcome = "too_large"
	ParseReadFailed ParseOutcome = "read_failed"
)

// ErrBodyTooLarge is reported when a body exceeds Config.MaxBodySize.
var ErrBodyTooLarge = errors.New("payload too large")

var errInvalidUTF8 = errors.New("decode payload: invalid UTF-8")

// HandshakeResult is the outcome of a subscription verification request.
type HandshakeResult struct {
	OK     bool
	Status int
	Body   string
}

// IngestResult is the outcome of a delivery. The acknowledgment sent to the
// platform does not depend on it.
type IngestResult struct {
	SignatureOK bool
	Outcome     ParseOutcome
	// Err is set for every outcome other than ParseOK.
	Err error
	// Record is the stored record when Outcome is ParseOK.
	Record *ledger.Record
}

// Stored reports whether the delivery made it into the recorder.
func (r IngestResult) Stored() bool {
	return r.Record != nil
}

// Handler serves the handshake and ingest operations.
type Handler struct {
	config   Config
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Handler that appends deliveries to recorder.
func New(config Config, recorder Recorder, logger *slog.Logger) *Handler {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	return &Handler{
		config:   config,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Routes registers the webhook endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get(Path, h.handleHandshake)
	r.Post(Path, h.handleIngest)
}

// Handshake checks a subscription verification request. It has no side effects.
func (h *Handler) Handshake(mode, token, challenge string) HandshakeResult {
	if mode == SubscribeMode && subtle.ConstantTimeCompare([]byte(token), []byte(h.config.VerifyToken)) == 1 {
		return HandshakeResult{OK: true, Status: http.StatusOK, Body: challenge}
	}
	return handshakeFailed
}

var handshakeFailed = HandshakeResult{Status: http.StatusForbidden, Body: VerificationFailed}

// Ingest verifies, classifies and records a delivery. payload must be the raw
// request body; it is decoded here, after the signature check.
func (h *Handler) Ingest(payload []byte, signature string) IngestResult {
	result := IngestResult{
		SignatureOK: Verify(payload, signature, h.config.AppSecret),
	}

	body, err := decodePayload(payload)
	if err != nil {
		result.Outcome = ParseMalformed
		result.Err = err
		return result
	}

	rec := ledger.NewRecord(h.now(), Classify(body), ledger.StatusFor(result.SignatureOK), payload, body)
	stored := h.recorder.Append(rec)

	result.Outcome = ParseOK
	result.Record = &stored
	return result
}

// decodePayload decodes exactly one JSON value. Numbers are kept as
// json.Number so they read back as sent. Invalid UTF-8 is rejected rather
// than replaced with U+FFFD.
func decodePayload(payload []byte) (any, error) {
	if !utf8.Valid(payload) {
		return nil, errInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode payload: trailing data after JSON value")
	}
	return body, nil
}

func (h *Handler) handleHandshake(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")

	// An absent hub.verify_token never matches, not even an empty token.
	result := handshakeFailed
	if _, sent := q["hub.verify_token"]; sent {
		result = h.Handshake(mode, q.Get("hub.verify_token"), q.Get("hub.challenge"))
	}
	if result.OK {
		h.logger.Info("webhook verified", "mode", mode)
	} else {
		h.logger.Warn("webhook verification failed",
			"mode", mode,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(result.Status)
	_, _ = io.WriteString(w, result.Body)
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	result := h.ingestRequest(r)

	attrs := []any{
		"signature_ok", result.SignatureOK,
		"outcome", result.Outcome,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if result.Stored() {
		h.logger.Info("webhook received",
			append(attrs, "category", result.Record.Category, "seq", result.Record.Seq)...)
	} else {
		h.logger.Warn("webhook not stored", append(attrs, "error", result.Err)...)
	}

	// Always acknowledge; rejecting would trigger platform redelivery.
	respondJSON(w, http.StatusOK, AckResponse{Status: "ok"})
}

func (h *Handler) ingestRequest(r *http.Request) IngestResult {
	limit := h.config.MaxBodySize
	if limit < math.MaxInt64 {
		limit++
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return IngestResult{Outcome: ParseReadFailed, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(payload)) > h.config.MaxBodySize {
		return IngestResult{Outcome: ParseTooLarge, Err: ErrBodyTooLarge}
	}
	return h.Ingest(payload, r.Header.Get(SignatureHeader))
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
