package watch

import (
	"bufio"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hookwatch/internal/api"
)

func view(seq int64, category string) api.WebhookView {
	return api.WebhookView{
		Seq:       seq,
		Category:  category,
		Signature: "verified",
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Data:      map[string]any{"object": "instagram"},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestUpdate_WebhookMsgPrependsAndDedupes(t *testing.T) {
	m := *New("http://localhost")
	m = update(t, m, webhookMsg(view(1, "Instagram")))
	m = update(t, m, webhookMsg(view(2, "Facebook Page")))
	m = update(t, m, webhookMsg(view(2, "Facebook Page")))

	require.Len(t, m.webhooks, 2)
	assert.Equal(t, "Facebook Page", m.webhooks[0].Category)
	assert.Equal(t, int64(2), m.lastSeq)
	assert.True(t, m.health.Connected)
}

func TestUpdate_HistoryIsBounded(t *testing.T) {
	m := *New("http://localhost")
	for i := 1; i <= maxWebhooks+5; i++ {
		m = update(t, m, webhookMsg(view(int64(i), fmt.Sprintf("c%d", i))))
	}
	assert.Len(t, m.webhooks, maxWebhooks)
	assert.Equal(t, fmt.Sprintf("c%d", maxWebhooks+5), m.webhooks[0].Category)
}

func TestUpdate_SelectionFollowsDelivery(t *testing.T) {
	m := *New("http://localhost")
	m = update(t, m, webhookMsg(view(1, "first")))
	m = update(t, m, webhookMsg(view(2, "second")))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "first", m.webhooks[m.selected].Category)

	m = update(t, m, webhookMsg(view(3, "third")))
	assert.Equal(t, "first", m.webhooks[m.selected].Category)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.selected)
}

func epochView(epoch string, seq int64, category string) api.WebhookView {
	v := view(seq, category)
	v.Epoch = epoch
	return v
}

func TestUpdate_ReceiverRestartResetsHistory(t *testing.T) {
	m := *New("http://localhost")
	for i := int64(1); i <= 30; i++ {
		m = update(t, m, webhookMsg(epochView("run-1", i, "old")))
	}
	require.Equal(t, int64(30), m.lastSeq)
	assert.Equal(t, api.FormatEventID("run-1", 30), m.lastEventID())

	m = update(t, m, webhookMsg(epochView("run-2", 1, "new")))

	require.Len(t, m.webhooks, 1)
	assert.Equal(t, "new", m.webhooks[0].Category)
	assert.Equal(t, int64(1), m.lastSeq)
	assert.Equal(t, "run-2", m.epoch)
	assert.Equal(t, 0, m.selected)
}

func TestUpdate_HealthEpochChangeResetsHistory(t *testing.T) {
	m := *New("http://localhost")
	m = update(t, m, webhookMsg(epochView("run-1", 1, "a")))
	m = update(t, m, webhookMsg(epochView("run-1", 2, "b")))

	m = update(t, m, healthMsg(api.HealthResponse{Status: "healthy", WebhooksTotal: 5, LedgerEpoch: "run-1"}))
	assert.Len(t, m.webhooks, 2, "same epoch keeps history")

	m = update(t, m, healthMsg(api.HealthResponse{Status: "healthy", WebhooksTotal: 5, LedgerEpoch: "run-2"}))
	assert.Empty(t, m.webhooks)
	assert.Equal(t, int64(0), m.lastSeq)
	assert.Equal(t, "run-2", m.epoch)
	assert.Empty(t, m.lastEventID(), "reconnect replays the new ledger from the start")

	// The replayed first record of the new ledger is shown.
	m = update(t, m, webhookMsg(epochView("run-2", 1, "c")))
	require.Len(t, m.webhooks, 1)
	assert.Equal(t, "c", m.webhooks[0].Category)
}

func TestUpdate_HealthTotalBelowLastSeqResetsHistory(t *testing.T) {
	m := *New("http://localhost")
	for i := int64(1); i <= 30; i++ {
		m = update(t, m, webhookMsg(view(i, "old")))
	}

	m = update(t, m, healthMsg(api.HealthResponse{Status: "healthy", WebhooksTotal: 2}))
	assert.Empty(t, m.webhooks)
	assert.Equal(t, int64(0), m.lastSeq)

	m = update(t, m, webhookMsg(view(1, "new")))
	require.Len(t, m.webhooks, 1)
	assert.Equal(t, "new", m.webhooks[0].Category)
}

func TestUpdate_HealthAndDisconnect(t *testing.T) {
	m := *New("http://localhost")
	m = update(t, m, healthMsg(api.HealthResponse{Status: "healthy", WebhooksReceived: 3, LedgerCapacity: 50, AppSecretSet: true}))
	assert.True(t, m.health.Connected)
	assert.Equal(t, 3, m.health.WebhooksReceived)

	m = update(t, m, sseDisconnectedMsg{})
	assert.False(t, m.health.Connected)
	assert.NotEmpty(t, m.lastError)
}

func TestView(t *testing.T) {
	m := *New("http://localhost")
	assert.Contains(t, m.View(), "Connecting")

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "Waiting for deliveries")

	m = update(t, m, webhookMsg(view(1, "Instagram - Messages")))
	out := m.View()
	assert.Contains(t, out, "Instagram - Messages")
	assert.Contains(t, out, "PAYLOAD")
	assert.Contains(t, out, "HOOKWATCH")
}

func TestParseSSE(t *testing.T) {
	stream := strings.Join([]string{
		": keep-alive",
		"",
		"id: 1",
		"event: webhook.received",
		`data: {"seq":1,"type":"Instagram","signature_status":"verified"}`,
		"",
		"id: 2",
		"event: something.else",
		`data: {"seq":2}`,
		"",
		"id: 3",
		"event: webhook.received",
		"data: not-json",
		"",
		"id: 4",
		"event: webhook.received",
		`data: {"seq":4,"type":"Facebook Page"}`,
		"",
	}, "\n")

	var got []api.WebhookView
	for v := range parseSSE(bufio.NewScanner(strings.NewReader(stream))) {
		got = append(got, v)
	}

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, "Instagram", got[0].Category)
	assert.Equal(t, "Facebook Page", got[1].Category)
}

func TestSpinnerDecay(t *testing.T) {
	start := time.Now()
	var s Spinner
	s.OnEvent(start)
	s.Decay(start.Add(3 * time.Second))
	assert.Equal(t, 4, s.dots)
	s.Decay(start.Add(11 * time.Second))
	assert.Equal(t, 0, s.dots)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "2m 5s", formatDuration(125*time.Second))
	assert.Equal(t, "1h 1m", formatDuration(61*time.Minute))
}
