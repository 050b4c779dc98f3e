package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/hookwatch/internal/api"
)

const listRows = 10

func renderWebhookList(webhooks []api.WebhookView, selected int, theme Theme, width int) string {
	innerWidth := width - 4

	if len(webhooks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("RECENT WEBHOOKS"),
			theme.Dim.Render("  Waiting for deliveries..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	// Keep the selection inside the visible window.
	first := max(0, selected-listRows+1)
	var lines []string
	for i := first; i < len(webhooks) && i < first+listRows; i++ {
		lines = append(lines, formatWebhook(webhooks[i], i == selected, theme))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(fmt.Sprintf("RECENT WEBHOOKS (%d)", len(webhooks))),
		lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n")),
	)
	return theme.Border.Width(innerWidth).Render(content)
}

func formatWebhook(w api.WebhookView, selected bool, theme Theme) string {
	ts := theme.Dim.Render(w.Timestamp.Format("15:04:05"))

	status := theme.Verified.Render("verified  ")
	if w.Signature != "verified" {
		status = theme.Unverified.Render("unverified")
	}

	category := fmt.Sprintf("%-32s", w.Category)
	marker := "  "
	if selected {
		category = theme.Selected.Render(category)
		marker = theme.Selected.Render("▸ ")
	}

	fp := w.Fingerprint
	if len(fp) > 8 {
		fp = fp[:8]
	}
	return fmt.Sprintf("%s%s %s %s %s", marker, ts, category, status, theme.Dim.Render(fp))
}

// prettyPayload renders a payload for the detail viewport.
func prettyPayload(w api.WebhookView) string {
	out, err := json.MarshalIndent(w.Data, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(out)
}
