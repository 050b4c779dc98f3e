package config

// Config represents the complete hookwatch configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Webhook WebhookConfig `yaml:"webhook"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener and dashboard settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	// PublicURL overrides the webhook URL shown on the dashboard, for
	// deployments behind a tunnel or proxy.
	PublicURL      string `yaml:"public_url,omitempty"`
	DashboardLimit int    `yaml:"dashboard_limit"`
}

// WebhookConfig defines the callback protocol secrets.
type WebhookConfig struct {
	VerifyToken string `yaml:"verify_token"`
	// AppSecret is the HMAC key; empty disables signature enforcement.
	AppSecret   string `yaml:"app_secret"`
	MaxBodySize string `yaml:"max_body_size"` // e.g. "1MB", "524288"
}

// LedgerConfig defines the in-memory history.
type LedgerConfig struct {
	Capacity int `yaml:"capacity"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// Flags are the configuration facts exposed to read-only collaborators.
type Flags struct {
	VerifyTokenSet bool `json:"verify_token_set"`
	AppSecretSet   bool `json:"app_secret_set"`
}

// Flags reports which secrets are configured.
func (c *Config) Flags() Flags {
	return Flags{
		VerifyTokenSet: c.Webhook.VerifyToken != "",
		AppSecretSet:   c.Webhook.AppSecret != "",
	}
}

// Default values.
const (
	DefaultListen         = "0.0.0.0:5000"
	DefaultVerifyToken    = "my_verify_token_12345"
	DefaultMaxBodySize    = "1MB"
	DefaultCapacity       = 50
	DefaultDashboardLimit = 20
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:         DefaultListen,
			DashboardLimit: DefaultDashboardLimit,
		},
		Webhook: WebhookConfig{
			VerifyToken: DefaultVerifyToken,
			MaxBodySize: DefaultMaxBodySize,
		},
		Ledger: LedgerConfig{
			Capacity: DefaultCapacity,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
