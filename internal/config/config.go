package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DedupNone     = "none"
	DedupDynamoDB = "dynamodb"
	DedupRedis    = "redis"

	WebhookPath = "/mercadopago-webhook"
)

var defaultAllowedOrigins = []string{
	"https://acaiemcasasite.onrender.com",
	"https://edienayteste.onrender.com",
	"http://localhost:3000",
	"http://127.0.0.1:5500",
}

// Config is built once at startup and handed to every component by value
// or pointer. Nothing reads the environment after Load.
type Config struct {
	Environment    string
	Port           string
	AccessToken    string
	BackendURL     string
	FrontendURL    string
	AllowedOrigins []string

	MercadoPagoBaseURL string
	GatewayTimeout     time.Duration
	WebhookSecret      string

	OrderLabel        string
	EnforceOrderTotal bool

	SNSTopicARN       string
	DedupBackend      string
	DynamoDBTableName string
	RedisURL          string

	OTelEndpoint string
}

var ErrMissingAccessToken = errors.New("MERCADOPAGO_ACCESS_TOKEN is not set")

func Load() (*Config, error) {
	cfg := &Config{
		Environment:        getEnv("APP_ENV", getEnv("ENV", getEnv("NODE_ENV", "development"))),
		Port:               getEnv("PORT", "3000"),
		AccessToken:        strings.TrimSpace(os.Getenv("MERCADOPAGO_ACCESS_TOKEN")),
		BackendURL:         strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		FrontendURL:        strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),
		MercadoPagoBaseURL: strings.TrimRight(getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"), "/"),
		WebhookSecret:      os.Getenv("MERCADOPAGO_WEBHOOK_SECRET"),
		OrderLabel:         getEnv("ORDER_LABEL", "Pedido Açaí em Casa"),
		SNSTopicARN:        os.Getenv("AWS_SNS_TOPIC_ARN"),
		DedupBackend:       strings.ToLower(getEnv("DEDUP_BACKEND", DedupNone)),
		DynamoDBTableName:  getEnv("DYNAMODB_TABLE_NAME", "WebhookNotifications"),
		RedisURL:           getEnv("REDIS_URL", "localhost:6379"),
		OTelEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	timeout, err := time.ParseDuration(getEnv("GATEWAY_TIMEOUT", "8s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT: must be positive, got %s", timeout)
	}
	cfg.GatewayTimeout = timeout

	if raw, ok := os.LookupEnv("ENFORCE_ORDER_TOTAL"); ok && raw != "" {
		enforce, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ENFORCE_ORDER_TOTAL: %w", err)
		}
		cfg.EnforceOrderTotal = enforce
	}

	switch cfg.DedupBackend {
	case DedupNone, DedupDynamoDB, DedupRedis:
	default:
		return nil, fmt.Errorf("invalid DEDUP_BACKEND %q: want none, dynamodb or redis", cfg.DedupBackend)
	}

	cfg.AllowedOrigins = allowedOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), cfg.FrontendURL)

	return cfg, nil
}

func (c *Config) Development() bool {
	return c.Environment == "development"
}

// NotificationURL is where Mercado Pago should push payment updates.
// It is empty when BACKEND_URL is not configured.
func (c *Config) NotificationURL() string {
	if c.BackendURL == "" {
		return ""
	}
	return c.BackendURL + WebhookPath
}

// MaskedToken keeps enough of the access token to tell test from production credentials.
func (c *Config) MaskedToken() string {
	if len(c.AccessToken) <= 10 {
		return "***"
	}
	return c.AccessToken[:10] + "..."
}

func allowedOrigins(raw, frontendURL string) []string {
	origins := defaultAllowedOrigins
	if raw != "" {
		origins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
				origins = append(origins, o)
			}
		}
	}

	out := make([]string, 0, len(origins)+1)
	out = append(out, origins...)
	if frontendURL != "" && !contains(out, frontendURL) {
		out = append(out, frontendURL)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
