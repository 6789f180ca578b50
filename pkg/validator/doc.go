// Package validator builds declarative input checks out of small Rule
// values.
//
// Each rule pairs a Check with the ValidationError reported when the check
// fails. Apply evaluates every rule and returns the failures as
// ValidationErrors, which implements error. Every ValidationError carries a
// sentinel (ErrFieldRequired, ErrInvalidLength, ErrInvalidValue), so callers
// map failures onto their own errors with errors.Is:
//
//	err := validator.Apply(
//		validator.Required("prompt", prompt),
//		validator.MaxRunes("prompt", prompt, 2000),
//	)
//	if errors.Is(err, validator.ErrFieldRequired) {
//		// ...
//	}
//
// Rules hold no global state and are safe for concurrent use.
package validator
