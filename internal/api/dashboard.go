package api

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/mattjoyce/hookwatch/internal/webhook"
)

// TimestampLayout is how record timestamps are displayed.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

type scope struct {
	Name     string
	Level    string
	Required bool
	Purpose  string
}

var instagramScopes = []scope{
	{Name: "instagram_basic", Level: "REQUIRED", Required: true, Purpose: "Base Instagram access, enables mentions webhooks"},
	{Name: "instagram_manage_messages", Level: "REQUIRED", Required: true, Purpose: "Required for message/DM webhooks"},
	{Name: "instagram_manage_comments", Level: "REQUIRED", Required: true, Purpose: "Required for comment webhooks"},
	{Name: "instagram_content_publish", Level: "OPTIONAL", Purpose: "For content publishing"},
	{Name: "instagram_manage_insights", Level: "OPTIONAL", Purpose: "For analytics"},
	{Name: "pages_show_list", Level: "REQUIRED", Required: true, Purpose: "To list Facebook Pages"},
	{Name: "pages_read_engagement", Level: "HELPFUL", Purpose: "Additional engagement data"},
}

type dashboardItem struct {
	Timestamp string
	Category  string
	Status    string
	Payload   string
}

type dashboardData struct {
	WebhookURL   string
	VerifyToken  string
	AppSecretSet bool
	Scopes       []scope
	Count        int
	Shown        int
	Webhooks     []dashboardItem
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Instagram Webhook Inspector</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; }
        h1 { color: #333; }
        .info-box { background: #e3f2fd; padding: 15px; border-radius: 5px; margin: 20px 0; }
        .webhook { background: #f9f9f9; padding: 15px; margin: 10px 0; border-left: 4px solid #4CAF50; border-radius: 4px; }
        .webhook-header { font-weight: bold; color: #333; margin-bottom: 10px; }
        pre { background: #263238; color: #aed581; padding: 15px; border-radius: 4px; overflow-x: auto; }
        .scopes { background: #fff3cd; padding: 15px; border-radius: 5px; margin: 20px 0; }
        .scope-item { margin: 5px 0; }
        .required { color: #d32f2f; font-weight: bold; }
        .optional { color: #f57c00; }
        .status { display: inline-block; padding: 3px 8px; border-radius: 3px; font-size: 12px; }
        .status-verified { background: #4CAF50; color: white; }
        .status-unverified { background: #ff9800; color: white; }
    </style>
    <script>setTimeout(function(){ location.reload(); }, 5000);</script>
</head>
<body>
<div class="container">
    <h1>Instagram Webhook Inspector</h1>

    <div class="info-box">
        <h3>Configuration</h3>
        <p><strong>Webhook URL:</strong> {{.WebhookURL}}</p>
        <p><strong>Verify Token:</strong> {{.VerifyToken}}</p>
        <p><strong>App Secret Configured:</strong> {{if .AppSecretSet}}Yes &#10003;{{else}}No (set APP_SECRET env var){{end}}</p>
    </div>

    <div class="scopes">
        <h3>Required Scopes for Instagram Webhooks</h3>
        {{range .Scopes}}<div class="scope-item"><span class="{{if .Required}}required{{else}}optional{{end}}">{{.Level}}:</span> <code>{{.Name}}</code> - {{.Purpose}}</div>
        {{end}}
    </div>

    <h2>Recent Webhooks ({{.Count}})</h2>
    <p style="color: #666;">Showing the latest {{.Shown}}. Auto-refreshes every 5 seconds.</p>
    {{range .Webhooks}}
    <div class="webhook">
        <div class="webhook-header">
            {{.Timestamp}} - {{.Category}}
            <span class="status status-{{.Status}}">{{.Status}}</span>
        </div>
        <pre>{{.Payload}}</pre>
    </div>
    {{else}}
    <p style="color: #999;">No webhooks received yet. Send a test webhook from the Meta App Dashboard.</p>
    {{end}}
</div>
</body>
</html>
`))

// handleDashboard handles GET /, rendering the most recent records.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	records := s.ledger.Snapshot(s.config.DashboardLimit)

	items := make([]dashboardItem, 0, len(records))
	for _, rec := range records {
		pretty, err := json.MarshalIndent(rec.Payload, "", "  ")
		if err != nil {
			pretty = []byte(err.Error())
		}
		items = append(items, dashboardItem{
			Timestamp: rec.Timestamp.Format(TimestampLayout),
			Category:  rec.Category,
			Status:    string(rec.Signature),
			Payload:   string(pretty),
		})
	}

	data := dashboardData{
		WebhookURL:   s.webhookURL(r),
		VerifyToken:  s.config.VerifyToken,
		AppSecretSet: s.config.Flags.AppSecretSet,
		Scopes:       instagramScopes,
		Count:        s.ledger.Len(),
		Shown:        len(items),
		Webhooks:     items,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render dashboard", "error", err)
	}
}

// webhookURL is the public callback URL to register with the platform.
func (s *Server) webhookURL(r *http.Request) string {
	if s.config.PublicURL != "" {
		return strings.TrimRight(s.config.PublicURL, "/") + webhook.Path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + webhook.Path
}
