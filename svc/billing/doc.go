// Package billing reconciles a user's entitlement with the Stripe payment
// processor.
//
// The Processor interface is the only place that talks to Stripe. Service
// builds the application flows on top of it:
//
//   - customer resolution through a durable user to customer mapping, with a
//     bounded metadata scan kept as a migration fallback;
//   - checkout and billing portal sessions;
//   - subscription lookup mapped to a plan and a monthly quota;
//   - signed webhook handling that persists subscription state and is
//     idempotent per event id.
//
// A Service created without a processor answers every processor-backed call
// with ErrNotConfigured.
package billing
