// Package favorites stores optimization results a user chose to keep.
//
// Every operation is scoped to a user id. Store has a PostgreSQL
// implementation (PGStore) and an in-process one (MemoryStore). A missing
// favorites table is reported as ErrSchemaNotProvisioned so callers can
// present "feature unavailable" instead of failing: Classify maps raw backend
// signals onto that outcome.
package favorites
