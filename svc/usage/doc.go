// Package usage counts optimizations per user and monthly window.
//
// A window is identified by its start instant. For subscribers it is the
// monthly window of the subscription period (see WindowStart), otherwise the
// calendar month. A new window simply starts a new counter, so no reset job
// is needed. Reserve checks the limit and increments in one step. PGMeter
// stores counters in usage_counters; MemoryMeter keeps them in process.
package usage
