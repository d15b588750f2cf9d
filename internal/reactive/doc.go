// Package reactive provides the observe-and-react primitives the store graph
// is built on.
//
// A Value holds one piece of state. Observers registered with Observe are
// called after every Set that changes the value; a Set with an equal value is
// a no-op and notifies nobody. Observers run outside the value's lock, in
// registration order, and see changes in the order they were committed.
// Without contention they run synchronously in the setter's goroutine; a
// change committed while another goroutine is notifying is delivered by that
// goroutine, and so is a change an observer makes to the value it observes.
// Reactions with I/O are expected to hand their work to a Group so the setter
// never blocks.
//
// Disposers returned from Observe are idempotent. Reactions collects them so a
// store can unregister everything it registered in one call.
package reactive
