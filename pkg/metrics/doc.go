// Package metrics defines the Prometheus collectors of the service and the
// HTTP instrumentation middleware. All Observe methods are safe on a nil
// *Metrics so that components can run without instrumentation in tests.
package metrics
