package messages

import "github.com/google/uuid"

// CommandResult is produced exactly once per command execution. Success and
// Error are mutually exclusive: a successful result never carries an error
// message, and a failed result never carries a payload.
type CommandResult struct {
	CommandID uuid.UUID      `json:"command_id"`
	Success   bool           `json:"success"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Meta      map[string]any `json:"metadata,omitempty"`
}

// Succeed builds a successful result for cmd carrying the given payload.
func Succeed(cmd Command, result any) CommandResult {
	return CommandResult{
		CommandID: cmd.MessageID(),
		Success:   true,
		Result:    result,
	}
}

// Fail builds a failed result for cmd carrying the error's message.
func Fail(cmd Command, err error) CommandResult {
	return CommandResult{
		CommandID: cmd.MessageID(),
		Error:     err.Error(),
	}
}

// Failure builds a failed result for cmd from a plain message. Used when
// there is no error value, such as the missing-handler case.
func Failure(cmd Command, msg string) CommandResult {
	return CommandResult{
		CommandID: cmd.MessageID(),
		Error:     msg,
	}
}
