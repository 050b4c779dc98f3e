package watch

import (
	"bufio"
	"encoding/json"
	"iter"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/hookwatch/internal/api"
)

// --- Message types ---

type webhookMsg api.WebhookView

type healthMsg api.HealthResponse

type tickMsg time.Time

type errMsg error

type sseDisconnectedMsg struct{}
type reconnectMsg struct{}

// --- Commands ---

// subscribeToEvents connects to the SSE /events endpoint and feeds webhooks
// into ch, resuming after lastEventID when set. Returns sseDisconnectedMsg
// when the connection drops.
func subscribeToEvents(baseURL, lastEventID string, ch chan<- api.WebhookView) tea.Cmd {
	return func() tea.Msg {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/events", nil)
		if err != nil {
			return errMsg(err)
		}
		if lastEventID != "" {
			req.Header.Set("Last-Event-ID", lastEventID)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return sseDisconnectedMsg{}
		}
		defer resp.Body.Close()

		for view := range parseSSE(bufio.NewScanner(resp.Body)) {
			ch <- view
		}
		return sseDisconnectedMsg{}
	}
}

// parseSSE yields every webhook.received event read from sc.
func parseSSE(sc *bufio.Scanner) iter.Seq[api.WebhookView] {
	return func(yield func(api.WebhookView) bool) {
		var typ, data string
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if data != "" && (typ == "" || typ == api.EventType) {
					var view api.WebhookView
					if err := json.Unmarshal([]byte(data), &view); err == nil {
						if !yield(view) {
							return
						}
					}
				}
				typ, data = "", ""
			case strings.HasPrefix(line, "event: "):
				typ = line[7:]
			case strings.HasPrefix(line, "data: "):
				data = line[6:]
			}
		}
	}
}

// receiveNextWebhook waits for the next webhook from the channel.
func receiveNextWebhook(ch <-chan api.WebhookView) tea.Cmd {
	return func() tea.Msg {
		return webhookMsg(<-ch)
	}
}

// fetchHealth queries the /health endpoint.
func fetchHealth(baseURL string) tea.Msg {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return errMsg(err)
	}
	defer resp.Body.Close()

	var h api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return errMsg(err)
	}
	return healthMsg(h)
}
