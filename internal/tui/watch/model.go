package watch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/hookwatch/internal/api"
)

// maxWebhooks bounds the local history, matching the server default.
const maxWebhooks = 50

// Model is the main BubbleTea model for the watch TUI.
type Model struct {
	baseURL string

	width  int
	height int

	health   HealthState
	webhooks []api.WebhookView // newest first
	epoch    string            // ledger epoch lastSeq belongs to
	lastSeq  int64
	selected int

	ticker  Ticker
	spinner Spinner
	theme   Theme
	detail  viewport.Model

	incoming chan api.WebhookView

	lastError string
	now       func() time.Time
}

// New creates a watch model for the receiver at baseURL.
func New(baseURL string) *Model {
	return &Model{
		baseURL:  baseURL,
		webhooks: make([]api.WebhookView, 0),
		incoming: make(chan api.WebhookView, 100),
		ticker:   NewTicker(),
		theme:    NewDefaultTheme(),
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		subscribeToEvents(m.baseURL, m.lastEventID(), m.incoming),
		receiveNextWebhook(m.incoming),
		func() tea.Msg { return fetchHealth(m.baseURL) },
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refreshDetail()
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.webhooks)-1 {
				m.selected++
				m.refreshDetail()
			}
			return m, nil
		}
		// Remaining keys scroll the payload (pgup/pgdown etc).
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = max(10, m.width-8)
		m.detail.Height = max(3, m.height-listRows-14)
		m.refreshDetail()

	case tickMsg:
		m.ticker.Tick()
		m.spinner.Decay(m.now())
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case webhookMsg:
		m.addWebhook(api.WebhookView(msg))
		m.health.Connected = true
		m.lastError = ""
		return m, receiveNextWebhook(m.incoming)

	case healthMsg:
		if m.restarted(api.HealthResponse(msg)) {
			m.resetHistory()
		}
		if msg.LedgerEpoch != "" {
			m.epoch = msg.LedgerEpoch
		}
		m.health.Status = msg.Status
		m.health.WebhooksReceived = msg.WebhooksReceived
		m.health.WebhooksTotal = msg.WebhooksTotal
		m.health.LedgerCapacity = msg.LedgerCapacity
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.AppSecretSet = msg.AppSecretSet
		m.health.Connected = true
		m.lastError = ""
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.baseURL)
		})

	case sseDisconnectedMsg:
		m.health.Connected = false
		m.lastError = "stream disconnected, reconnecting..."
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return reconnectMsg{}
		})

	case reconnectMsg:
		// Resume after the last seen record so nothing is shown twice.
		return m, subscribeToEvents(m.baseURL, m.lastEventID(), m.incoming)

	case errMsg:
		m.lastError = msg.Error()
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.baseURL)
		})
	}

	return m, nil
}

func (m *Model) addWebhook(w api.WebhookView) {
	if w.Epoch != m.epoch {
		// Sequences from a new ledger restart at 1.
		if m.epoch != "" {
			m.resetHistory()
		}
		m.epoch = w.Epoch
	}
	if w.Seq <= m.lastSeq {
		return
	}
	m.lastSeq = w.Seq

	m.webhooks = append([]api.WebhookView{w}, m.webhooks...)
	if len(m.webhooks) > maxWebhooks {
		m.webhooks = m.webhooks[:maxWebhooks]
	}
	// Keep the same delivery selected unless the newest one was selected.
	if m.selected > 0 {
		m.selected = min(m.selected+1, len(m.webhooks)-1)
	}
	m.spinner.OnEvent(m.now())
	m.refreshDetail()
}

// restarted reports whether h comes from a different receiver process than
// the records on screen.
func (m *Model) restarted(h api.HealthResponse) bool {
	if h.LedgerEpoch != "" && m.epoch != "" {
		return h.LedgerEpoch != m.epoch
	}
	return h.WebhooksTotal < m.lastSeq
}

func (m *Model) resetHistory() {
	m.webhooks = make([]api.WebhookView, 0)
	m.lastSeq = 0
	m.selected = 0
	m.refreshDetail()
}

func (m *Model) lastEventID() string {
	if m.lastSeq == 0 {
		return ""
	}
	return api.FormatEventID(m.epoch, m.lastSeq)
}

func (m *Model) refreshDetail() {
	if len(m.webhooks) == 0 {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(prettyPayload(m.webhooks[m.selected]))
}

func (m Model) View() string {
	if m.width == 0 {
		return "Connecting to hookwatch..."
	}

	header := renderHeader(m.health, m.ticker, m.spinner, m.theme, m.width, m.now())
	list := renderWebhookList(m.webhooks, m.selected, m.theme, m.width)
	detail := m.theme.Border.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, m.theme.Title.Render("PAYLOAD"), m.detail.View()),
	)

	parts := []string{header, list, detail}
	if m.lastError != "" {
		parts = append(parts, m.theme.Failed.Render(fmt.Sprintf(" ⚠ %s", m.lastError)))
	}
	parts = append(parts, lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(" [q] Quit • [↑/↓] Select • [pgup/pgdn] Scroll payload"))

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

// Run starts the watch TUI against baseURL and blocks until it exits.
func Run(baseURL string) error {
	_, err := tea.NewProgram(New(baseURL)).Run()
	return err
}
