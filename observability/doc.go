// Package observability provides the built-in telemetry surface of the bus:
// metric, trace, and log event types, the append-only JSONL journal every
// published message lands in, and optional console reporters for live
// metric/trace output.
//
// Design decisions:
//   - Telemetry as events: metrics, traces, and log records are ordinary bus
//     events. They travel through the same queue as domain events and produce
//     the same journal lines, so one trail covers everything.
//   - Append-only journal: one self-contained JSON line per event, flushed per
//     write so a crash loses at most the in-flight record. The journal file is
//     opened when the bus starts and closed when it stops.
//   - Read-only tooling contract: external viewers parse the journal with
//     ReadJournal; nothing in the system ever rewrites a journal file.
//   - Reporters never fail: console rendering problems are swallowed, a
//     formatting bug must not take down event delivery.
package observability
