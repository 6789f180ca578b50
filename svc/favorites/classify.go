package favorites

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the outcome a backend failure is classified as.
type Kind int

const (
	KindStore Kind = iota
	KindSchemaNotProvisioned
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindSchemaNotProvisioned:
		return "schema_not_provisioned"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

// Signal describes a backend failure as reported upstream.
type Signal struct {
	Status  int
	Code    string
	Message string
	// NoRows is set when a single-row query matched nothing.
	NoRows bool
	// Empty is set for an error that carries no status, code or message.
	Empty bool
}

const (
	codeNoSingleRow    = "PGRST116"
	codeUndefinedTable = "42P01"
)

var schemaMessageHints = []string{"relation", "does not exist", "table", "not found"}

// Classify is the single decision table for backend failures.
//
//	no rows                                  -> KindNotFound
//	status 404, code PGRST116 or 42P01       -> KindSchemaNotProvisioned
//	any other code                           -> KindStore
//	message mentions relation, does not
//	exist, table or not found                -> KindSchemaNotProvisioned
//	empty error                              -> KindSchemaNotProvisioned
//	anything else                            -> KindStore
func Classify(s Signal) Kind {
	if s.NoRows {
		return KindNotFound
	}
	if s.Empty {
		return KindSchemaNotProvisioned
	}
	if s.Status == http.StatusNotFound || s.Code == codeNoSingleRow || s.Code == codeUndefinedTable {
		return KindSchemaNotProvisioned
	}
	if s.Code != "" {
		return KindStore
	}
	msg := strings.ToLower(s.Message)
	for _, hint := range schemaMessageHints {
		if strings.Contains(msg, hint) {
			return KindSchemaNotProvisioned
		}
	}
	return KindStore
}

// SignalOf extracts a Signal from a pgx error.
func SignalOf(err error) Signal {
	if errors.Is(err, pgx.ErrNoRows) {
		return Signal{NoRows: true}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return Signal{Code: pgErr.Code, Message: pgErr.Message}
	}
	msg := strings.TrimSpace(err.Error())
	return Signal{Message: msg, Empty: msg == ""}
}

// wrap converts a backend error into a package error. nil stays nil.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	switch Classify(SignalOf(err)) {
	case KindNotFound:
		return ErrNotFound
	case KindSchemaNotProvisioned:
		return errors.Join(ErrSchemaNotProvisioned, err)
	default:
		return errors.Join(ErrStore, err)
	}
}
