package config

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenleaf-garden/storefront/internal/domain"
	pkgconfig "github.com/greenleaf-garden/storefront/pkg/config"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Provider modes for the payment and mailing-list collaborators.
const (
	ProviderMock   = "mock"
	ProviderRemote = "remote"
	ProviderNone   = "none"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"dev"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Storage
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CartTTLHours  int    `env:"CART_TTL_HOURS" envDefault:"168"`
	CatalogPath   string `env:"CATALOG_PATH"`

	// Checkout pricing
	Currency    string          `env:"CURRENCY" envDefault:"USD"`
	DeliveryFee decimal.Decimal `env:"DELIVERY_FEE" envDefault:"5.00"`
	TaxRate     decimal.Decimal `env:"TAX_RATE" envDefault:"0.08"`
	PromoCodes  PromoCodes      `env:"PROMO_CODES"`

	// Kafka. Empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Payment provider
	PaymentProvider   string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	PaymentGatewayURL string `env:"PAYMENT_GATEWAY_URL"`
	PaymentGatewayKey string `env:"PAYMENT_GATEWAY_KEY"`

	// Mailing-list provider
	MailingProvider string `env:"MAILING_PROVIDER" envDefault:"mock"`
	MailingAPIURL   string `env:"MAILING_API_URL"`
	MailingAPIKey   string `env:"MAILING_API_KEY"`
	MailingListID   string `env:"MAILING_LIST_ID" envDefault:"garden-news"`

	// Rate limiting on mutating routes
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// HTTP edge
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environ); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StoreBackend != StoreMemory && c.StoreBackend != StoreRedis {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreRedis, c.StoreBackend)
	}
	if c.CartTTLHours < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTLHours)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	c.Currency = strings.ToUpper(c.Currency)

	if c.DeliveryFee.IsNegative() {
		return fmt.Errorf("DELIVERY_FEE must not be negative, got %s", c.DeliveryFee)
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be between 0 and 1, got %s", c.TaxRate)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if err := validateProvider("PAYMENT_PROVIDER", c.PaymentProvider, c.PaymentGatewayURL); err != nil {
		return err
	}
	if err := validateProvider("MAILING_PROVIDER", c.MailingProvider, c.MailingAPIURL); err != nil {
		return err
	}

	for _, cidr := range c.PprofAllowedCIDRs {
		if _, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err != nil {
			return fmt.Errorf("PPROF_ALLOWED_CIDRS: %w", err)
		}
	}
	return nil
}

func validateProvider(name, mode, url string) error {
	switch mode {
	case ProviderMock, ProviderNone:
		return nil
	case ProviderRemote:
		if url == "" {
			return fmt.Errorf("%s=remote requires a URL", name)
		}
		return nil
	default:
		return fmt.Errorf("%s must be one of mock, remote, none; got %q", name, mode)
	}
}

// CartTTL returns the cart expiry as a duration.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// Pricing returns the checkout settings.
func (c *Config) Pricing() domain.Pricing {
	return domain.Pricing{DeliveryFee: c.DeliveryFee, TaxRate: c.TaxRate}
}

// EventsEnabled reports whether Kafka brokers are configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// PromoCodes maps an upper-cased promo code to its percentage off.
type PromoCodes map[string]decimal.Decimal

// UnmarshalText parses "CODE:percent,CODE:percent". Percentages must be in
// (0, 100].
func (p *PromoCodes) UnmarshalText(text []byte) error {
	codes := make(PromoCodes)
	for _, entry := range strings.Split(string(text), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, pct, ok := strings.Cut(entry, ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !ok || code == "" {
			return fmt.Errorf("promo code %q: want CODE:percent", entry)
		}
		percent, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return fmt.Errorf("promo code %s: %w", code, err)
		}
		if !percent.IsPositive() || percent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("promo code %s: percent must be in (0, 100], got %s", code, percent)
		}
		codes[code] = percent
	}
	*p = codes
	return nil
}

// Lookup resolves a promo code case-insensitively.
func (p PromoCodes) Lookup(code string) (*domain.Discount, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	percent, ok := p[code]
	if !ok {
		return nil, false
	}
	return &domain.Discount{Code: code, Percent: percent}, true
}

// Codes returns the configured codes in sorted order, for logging.
func (p PromoCodes) Codes() []string {
	out := make([]string, 0, len(p))
	for code := range p {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
