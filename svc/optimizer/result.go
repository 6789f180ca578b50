package optimizer

// Scores rates a prompt from 1 to 10 on three axes.
type Scores struct {
	Clarity       float64 `json:"clarity"`
	Specificity   float64 `json:"specificity"`
	Effectiveness float64 `json:"effectiveness"`
}

// Analysis explains what was changed and why.
type Analysis struct {
	Improvements string   `json:"improvements"`
	Issues       []string `json:"issues"`
}

// Alternative is another suggested prompt.
type Alternative struct {
	Prompt string `json:"prompt"`
	Reason string `json:"reason"`
}

// Result is the outcome of an optimization.
type Result struct {
	OptimizedPrompt string        `json:"optimizedPrompt"`
	Scores          Scores        `json:"scores"`
	Analysis        Analysis      `json:"analysis"`
	Alternatives    []Alternative `json:"alternatives"`
	// Degraded is set when the result comes from the built-in templates
	// instead of the provider.
	Degraded bool `json:"degraded"`
}
