package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks receiver health from /health polling.
type HealthState struct {
	Status           string
	WebhooksReceived int
	WebhooksTotal    int64
	LedgerCapacity   int
	UptimeSeconds    int64
	AppSecretSet     bool
	Connected        bool
}

func renderHeader(health HealthState, ticker Ticker, spinner Spinner, theme Theme, width int, now time.Time) string {
	innerWidth := width - 4

	statusText := theme.Verified.Render("HEALTHY")
	if !health.Connected {
		statusText = theme.Failed.Render("CONNECTING")
	} else if health.Status != "healthy" && health.Status != "" {
		statusText = theme.Failed.Render("DEGRADED")
	}

	secret := theme.Verified.Render("signatures enforced")
	if !health.AppSecretSet {
		secret = theme.Unverified.Render("APP_SECRET not set")
	}

	lastEventStr := "never"
	if !spinner.LastEvent().IsZero() {
		lastEventStr = fmt.Sprintf("%s ago", now.Sub(spinner.LastEvent()).Round(time.Second))
	}

	titleText := fmt.Sprintf(" HOOKWATCH %s", theme.Highlight.Render(ticker.Current()))
	clock := theme.Dim.Render(now.Format("15:04:05"))
	pad := max(1, innerWidth-lipgloss.Width(titleText)-lipgloss.Width(clock)-4)
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	statsLine := fmt.Sprintf(" %s  up %s  stored %d/%d  total %d  %s",
		statusText,
		formatDuration(time.Duration(health.UptimeSeconds)*time.Second),
		health.WebhooksReceived, health.LedgerCapacity,
		health.WebhooksTotal,
		secret,
	)

	activityLine := fmt.Sprintf(" Last webhook: %s %s", lastEventStr, spinner.Render(theme))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, statsLine, activityLine)
	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
