package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mattjoyce/hookwatch/internal/ledger"
)

// EventType is the SSE event name used for stored webhooks.
const EventType = "webhook.received"

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before replaying so nothing appended in between is lost.
	ch, cancel := s.ledger.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	lastSeq := parseLastEventID(r.Header.Get("Last-Event-ID"), s.ledger.Epoch())
	// Send buffered records first for late clients.
	for _, rec := range s.ledger.SnapshotSince(lastSeq) {
		if err := writeSSE(w, rec); err != nil {
			return
		}
		lastSeq = rec.Seq
	}
	flusher.Flush()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			if rec.Seq <= lastSeq {
				continue // already replayed
			}
			if err := writeSSE(w, rec); err != nil {
				return
			}
			lastSeq = rec.Seq
			flusher.Flush()
		case <-keepAlive.C:
			// SSE comment line as keep-alive.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// parseLastEventID returns the sequence to resume after. IDs have the form
// "<epoch>:<seq>"; an ID from another epoch (a restarted receiver) resumes
// from the start. A bare "<seq>" is taken as the current epoch.
func parseLastEventID(v, epoch string) int64 {
	if v == "" {
		return 0
	}
	if from, seq, ok := strings.Cut(v, ":"); ok {
		if from != epoch {
			return 0
		}
		v = seq
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatEventID builds the SSE id for a record: "<epoch>:<seq>", or just the
// sequence when the epoch is unknown.
func FormatEventID(epoch string, seq int64) string {
	if epoch == "" {
		return strconv.FormatInt(seq, 10)
	}
	return epoch + ":" + strconv.FormatInt(seq, 10)
}

func writeSSE(w http.ResponseWriter, rec ledger.Record) error {
	data, err := json.Marshal(newWebhookView(rec))
	if err != nil {
		return err
	}
	// json.Marshal output is single-line, so one data: line suffices.
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", FormatEventID(rec.Epoch, rec.Seq), EventType, data)
	return err
}
