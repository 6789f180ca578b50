package optimizer

import "time"

// Config configures the chat completion client.
type Config struct {
	APIKey      string        `env:"DEEPSEEK_API_KEY"`
	BaseURL     string        `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	Model       string        `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`
	Timeout     time.Duration `env:"DEEPSEEK_TIMEOUT" envDefault:"30s"`
	Temperature float64       `env:"DEEPSEEK_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int           `env:"DEEPSEEK_MAX_TOKENS" envDefault:"1500"`
}

// placeholderAPIKey is the value shipped in example env files.
const placeholderAPIKey = "your_deepseek_api_key_here"

const (
	defaultBaseURL   = "https://api.deepseek.com/v1"
	defaultModel     = "deepseek-chat"
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 1500
)

// Configured reports whether cfg carries a usable API key.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.APIKey != placeholderAPIKey
}
