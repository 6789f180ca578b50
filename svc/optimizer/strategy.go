package optimizer

import (
	"errors"

	"github.com/dmitrymomot/promptkit/pkg/validator"
)

// MaxPromptLength is the longest accepted prompt, in characters.
const MaxPromptLength = 2000

// Strategy selects the optimization focus.
type Strategy string

const (
	Comprehensive Strategy = "comprehensive"
	Clarity       Strategy = "clarity"
	Specificity   Strategy = "specificity"
	Creativity    Strategy = "creativity"
)

// DefaultStrategy is used when the caller names none.
const DefaultStrategy = Comprehensive

// Strategies lists every strategy in presentation order.
func Strategies() []Strategy {
	return []Strategy{Comprehensive, Clarity, Specificity, Creativity}
}

// ParseStrategy maps a request value to a Strategy. An empty value selects
// DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return DefaultStrategy, nil
	}
	if err := validator.Apply(validator.InList("strategy", Strategy(s), Strategies())); err != nil {
		return "", ErrInvalidStrategy
	}
	return Strategy(s), nil
}

// Validate checks a prompt and strategy before any provider call. A missing
// prompt is reported before an oversized one, and both before the strategy.
func Validate(prompt, strategy string) (Strategy, error) {
	err := validator.Apply(
		validator.Required("prompt", prompt),
		validator.MaxRunes("prompt", prompt, MaxPromptLength),
	)
	switch {
	case errors.Is(err, validator.ErrFieldRequired):
		return "", ErrMissingPrompt
	case errors.Is(err, validator.ErrInvalidLength):
		return "", ErrPromptTooLong
	}
	return ParseStrategy(strategy)
}

var systemPrompts = map[Strategy]string{
	Comprehensive: `You are a professional prompt optimization expert, skilled in utilizing Deepseek-V3's powerful reasoning capabilities. Please analyze the user-provided prompt and optimize it comprehensively from the following aspects:
1. Clarity: Ensure instructions are clear and easy to understand
2. Specificity: Add necessary details and constraints
3. Structure: Optimize language structure and logical order
4. Effectiveness: Improve the likelihood of achieving desired results
5. Reasoning guidance: Use chain-of-thought to guide better reasoning processes

Please fully utilize your reasoning capabilities and return the optimized prompt along with a detailed analysis report.`,

	Clarity: `You are a prompt optimization expert focused on language clarity, with Deepseek-V3's powerful language understanding capabilities. Please focus on:
1. Eliminating ambiguous expressions
2. Simplifying complex sentence structures
3. Using more accurate vocabulary
4. Ensuring instructions are easy to understand
5. Providing clear logical chains

Please use your deep reasoning abilities to return an optimized prompt and explain the improvements.`,

	Specificity: `You are an optimization expert focused on prompt specificity, capable of in-depth detail analysis. Please focus on:
1. Adding specific requirements and constraints
2. Clarifying output format and structure
3. Providing clear examples or references
4. Detailing each step of the task
5. Establishing clear success criteria

Please use Deepseek-V3's powerful analytical capabilities to return a more specific prompt and explain the added specific requirements.`,

	Creativity: `You are a prompt optimization expert focused on inspiring creativity, with Deepseek-V3's innovative thinking capabilities. Please focus on:
1. Encouraging multi-perspective thinking
2. Inspiring innovative thinking
3. Guiding divergent thinking
4. Promoting original expression
5. Building creative thinking frameworks

Please use your creative reasoning abilities to return prompts that can inspire more creativity and explain optimization strategies.`,
}

const outputInstruction = `

Please strictly return the result in the following JSON format, without any markdown markers or code block markers:
{
  "optimizedPrompt": "Optimized prompt",
  "scores": {
    "clarity": score(1-10),
    "specificity": score(1-10),
    "effectiveness": score(1-10)
  },
  "analysis": {
    "improvements": "Improvement description",
    "issues": ["List of original prompt issues"]
  },
  "alternatives": [
    {
      "prompt": "Alternative suggested prompt",
      "reason": "Recommendation reason"
    }
  ]
}

Important: Please return the JSON object directly, without using ` + "```json" + ` markers or any other formatting markers.`

// SystemPrompt returns the full system message sent for s.
func (s Strategy) SystemPrompt() string {
	return systemPrompts[s] + outputInstruction
}

func userMessage(prompt string) string {
	return "Please optimize this prompt: " + prompt
}
