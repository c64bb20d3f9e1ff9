// Package slogx carries small helpers for building log/slog attributes with
// consistent keys across the bus runtime.
package slogx

import "log/slog"

// Error returns an attribute with the key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Kind returns an attribute carrying a message kind, the stable type
// identifier commands and events register under.
func Kind(kind string) slog.Attr {
	return slog.String("kind", kind)
}

// SessionID returns an attribute carrying a bus session identifier.
// The empty id renders as "global", matching the journal convention.
func SessionID(id string) slog.Attr {
	if id == "" {
		id = "global"
	}
	return slog.String("session_id", id)
}
