package optimizer

import (
	"encoding/json"
	"errors"
	"strings"
)

// parseReply decodes a model reply into a Result. Bare JSON and JSON inside
// a markdown code fence are accepted.
func parseReply(content string) (Result, error) {
	body := stripFence(strings.TrimSpace(content))
	if body == "" {
		return Result{}, ErrMalformedReply
	}

	var res Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return Result{}, errors.Join(ErrMalformedReply, err)
	}
	if strings.TrimSpace(res.OptimizedPrompt) == "" {
		return Result{}, errors.Join(ErrMalformedReply, errors.New("empty optimizedPrompt"))
	}
	if res.Analysis.Issues == nil {
		res.Analysis.Issues = []string{}
	}
	if res.Alternatives == nil {
		res.Alternatives = []Alternative{}
	}
	res.Degraded = false
	return res, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string, e.g. "json"
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
