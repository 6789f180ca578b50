package optimizer

import "errors"

var (
	ErrMissingPrompt   = errors.New("optimizer: missing prompt")
	ErrPromptTooLong   = errors.New("optimizer: prompt too long")
	ErrInvalidStrategy = errors.New("optimizer: invalid strategy")

	ErrAPIKeyRequired        = errors.New("optimizer: API key is required")
	ErrNotConfigured         = errors.New("optimizer: provider not configured")
	ErrRequestFailed         = errors.New("optimizer: provider request failed")
	ErrUpstreamStatus        = errors.New("optimizer: provider returned an error status")
	ErrRateLimitExceeded     = errors.New("optimizer: provider rate limit exceeded")
	ErrContextLengthExceeded = errors.New("optimizer: prompt exceeds provider context length")
	ErrEmptyReply            = errors.New("optimizer: provider returned no choices")
	ErrMalformedReply        = errors.New("optimizer: provider reply is not a valid result")
)
