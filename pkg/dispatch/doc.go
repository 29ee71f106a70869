// Package dispatch batches named actions raised within one scheduling tick
// into a single flush.
//
// A Queue keeps the most recent action for each name and runs the batch in
// the order names were first enqueued. At most one flush is outstanding at a
// time no matter how many goroutines call Enqueue. Failed or panicking
// actions are logged and skipped so the rest of the batch still runs.
//
// Flushes are deferred through a Scheduler. Loop is a serial event loop for
// hosts that own a goroutine; Manual defers callbacks until Tick and suits
// tests and hosts that pump their own events.
package dispatch
