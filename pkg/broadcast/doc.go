// Package broadcast fans typed messages out to in-process subscribers.
//
// Delivery never blocks the publisher: a subscriber whose buffer is full
// misses the message. Subscriptions end when their context is cancelled,
// when Close is called on them, or when the broadcaster is closed.
package broadcast
