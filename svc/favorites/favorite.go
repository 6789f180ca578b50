package favorites

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Favorite is a saved optimization result. JSON field names follow the
// table columns.
type Favorite struct {
	ID              uuid.UUID       `json:"id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	OriginalPrompt  string          `json:"original_prompt"`
	OptimizedPrompt string          `json:"optimized_prompt"`
	Strategy        string          `json:"strategy"`
	Scores          json.RawMessage `json:"scores"`
	Analysis        json.RawMessage `json:"analysis"`
	Alternatives    json.RawMessage `json:"alternatives"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewFavorite is the client payload of Service.Add.
type NewFavorite struct {
	Title           string          `json:"title"`
	OriginalPrompt  string          `json:"originalPrompt"`
	OptimizedPrompt string          `json:"optimizedPrompt"`
	Strategy        string          `json:"strategy"`
	Scores          json.RawMessage `json:"scores"`
	Analysis        json.RawMessage `json:"analysis"`
	Alternatives    json.RawMessage `json:"alternatives"`
}

func orDefault(raw json.RawMessage, def string) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(def)
	}
	return raw
}
