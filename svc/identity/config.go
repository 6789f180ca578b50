package identity

import "time"

// Config holds the auth backend settings.
type Config struct {
	URL         string        `env:"SUPABASE_URL"`
	AnonKey     string        `env:"SUPABASE_ANON_KEY"`
	JWTSecret   string        `env:"SUPABASE_JWT_SECRET"`
	Audience    string        `env:"SUPABASE_JWT_AUDIENCE" envDefault:"authenticated"`
	RedirectURL string        `env:"SUPABASE_REDIRECT_URL"`
	Timeout     time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`
}

const (
	defaultAudience = "authenticated"
	defaultTimeout  = 10 * time.Second
)

// Configured reports whether the REST proxy can be used.
func (c Config) Configured() bool {
	return c.URL != "" && c.AnonKey != ""
}
