package api

// Config holds the HTTP surface switches.
type Config struct {
	BaseURL      string `env:"APP_BASE_URL" envDefault:"http://localhost:3001"`
	RequireAuth  bool   `env:"OPTIMIZE_REQUIRE_AUTH" envDefault:"false"`
	EnforceQuota bool   `env:"OPTIMIZE_ENFORCE_QUOTA" envDefault:"false"`
}

const defaultBaseURL = "http://localhost:3001"
