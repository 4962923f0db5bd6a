// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; when set, orders persist in Postgres instead of the orders file.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// OrdersFile is the JSON order store path used when DATABASE_URL is empty (default orders.json).
	OrdersFile string `mapstructure:"ORDERS_FILE"`
	// TelegramBotToken is the Bot API token used for admin broadcasts and replies.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	// TelegramAPIBaseURL overrides the Bot API base URL (default https://api.telegram.org). For tests and proxies.
	TelegramAPIBaseURL string `mapstructure:"TELEGRAM_API_BASE_URL"`
	// AdminChatIDs is a comma-separated list of chat IDs that receive order broadcasts and may issue /done.
	AdminChatIDs string `mapstructure:"ADMIN_CHAT_IDS"`
	// AdminPolicyRego optionally replaces the built-in admin authorization policy; must define data.deltamarket.adminauth.allow.
	AdminPolicyRego string `mapstructure:"ADMIN_POLICY_REGO"`
	// MailAPIKey is the bearer key for the HTTP mail API used for code and receipt email.
	MailAPIKey string `mapstructure:"MAIL_API_KEY"`
	// MailAPIURL is the mail API endpoint URL.
	MailAPIURL string `mapstructure:"MAIL_API_URL"`
	// MailFrom is the sender address on outgoing email.
	MailFrom string `mapstructure:"MAIL_FROM"`
	// OTPTTL is the one-time code validity window (e.g. "5m").
	OTPTTL string `mapstructure:"OTP_TTL"`
	// AdminAPISecret signs admin API bearer tokens (HS256). Required for the admin HTTP endpoints.
	AdminAPISecret string `mapstructure:"ADMIN_API_SECRET"`
	// AdminTokenTTL is the admin API token lifetime (e.g. "24h").
	AdminTokenTTL string `mapstructure:"ADMIN_TOKEN_TTL"`
	// OTPReturnToClient when true enables dev OTP mode: the issued code is echoed in the HTTP
	// response instead of relying on email delivery. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production"). Used with
	// OTPReturnToClient to refuse dev OTP mode in production.
	Env string `mapstructure:"APP_ENV"`
	// CORSAllowedOrigins is a comma-separated CORS allow-list for the order form origin; "*" allows any.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// OTLPEndpoint is the OTLP collector endpoint for traces/metrics/logs; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP transport.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, the server emits order events to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for order events (default deltamarket-events).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ORDERS_FILE", "orders.json")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_API_BASE_URL", "https://api.telegram.org")
	v.SetDefault("ADMIN_CHAT_IDS", "")
	v.SetDefault("ADMIN_POLICY_REGO", "")
	v.SetDefault("MAIL_API_KEY", "")
	v.SetDefault("MAIL_API_URL", "")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("ADMIN_API_SECRET", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("ADMIN_TOKEN_TTL", "24h")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "deltamarket-events")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "deltamarket-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.OrdersFile == "" && cfg.DatabaseURL == "" {
		return nil, errors.New("config: one of ORDERS_FILE or DATABASE_URL must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	return &cfg, nil
}

// OTPValidity parses OTPTTL as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) OTPValidity() time.Duration {
	d, err := time.ParseDuration(c.OTPTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// AdminTokenValidity parses AdminTokenTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) AdminTokenValidity() time.Duration {
	d, err := time.ParseDuration(c.AdminTokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// AdminChatIDList returns the admin chat IDs from the comma-separated config.
// These chats receive new-order broadcasts and may drive order completion.
func (c *Config) AdminChatIDList() []string {
	if c == nil {
		return nil
	}
	return splitCommaList(c.AdminChatIDs)
}

// CORSAllowedOriginsList returns the CORS allow-list from the comma-separated config.
func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitCommaList(c.CORSAllowedOrigins)
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitCommaList(c.TelemetryKafkaBrokers)
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
