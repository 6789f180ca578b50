package billing

import "time"

// Config holds processor credentials and reconciliation settings.
type Config struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	PlansFile     string `env:"BILLING_PLANS_FILE"`
	BaseURL       string `env:"APP_BASE_URL" envDefault:"http://localhost:3001"`

	LegacyLookup   bool          `env:"BILLING_LEGACY_LOOKUP" envDefault:"true"`
	LookupWindow   time.Duration `env:"BILLING_LOOKUP_WINDOW" envDefault:"720h"`
	LookupLimit    int           `env:"BILLING_LOOKUP_LIMIT" envDefault:"100"`
	EntitlementTTL time.Duration `env:"BILLING_ENTITLEMENT_TTL" envDefault:"1m"`
	PriceCacheSize int           `env:"BILLING_PRICE_CACHE_SIZE" envDefault:"128"`
	PriceCacheTTL  time.Duration `env:"BILLING_PRICE_CACHE_TTL" envDefault:"1h"`
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3001"
	}
	if c.LookupWindow <= 0 {
		c.LookupWindow = 30 * 24 * time.Hour
	}
	if c.LookupLimit <= 0 {
		c.LookupLimit = 100
	}
	if c.PriceCacheSize <= 0 {
		c.PriceCacheSize = 128
	}
	return c
}
