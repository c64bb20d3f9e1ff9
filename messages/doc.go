// Package messages defines the envelope types that travel across the bus:
// commands, events, and command results.
//
// Design decisions:
//   - Two envelope flavors: a Command is a request/response message owned by
//     exactly one handler; an Event is a fire-and-forget notification owned by
//     zero or more handlers. The split is enforced at compile time through
//     unexported marker methods, so a type cannot accidentally be both.
//   - Stable kinds: every concrete message declares a Kind, a stable string
//     identifier the registry keys handlers by. Kinds double as the
//     "event_type" discriminator in the journal.
//   - Rich metadata: every message carries an id (UUIDv7), a timestamp, an
//     optional session id, and a free-form metadata map.
//   - Results as data: command failures are represented in CommandResult, not
//     raised, so observability can record them uniformly.
//
// Concrete messages embed CommandEnvelope or EventEnvelope and add their
// payload fields:
//
//	type Greet struct {
//	    messages.CommandEnvelope
//	    Name string `json:"name"`
//	}
//
//	func (Greet) Kind() string { return "greet" }
//
// The package also declares the events the bus itself publishes: command
// lifecycle notifications and session boundary markers.
package messages
