package tools

import "fmt"

// Result is the envelope every dispatch produces, exactly as it goes
// back over the wire to the conversation loop.
//
// Invariants: Error set implies Success false. RequiresConfirmation
// implies Success false and a pendingAction payload inside Data.
// Message is a complete, display-ready sentence; Error is the shorter
// diagnostic string.
type Result struct {
	Success              bool   `json:"success"`
	Data                 any    `json:"data,omitempty"`
	Error                string `json:"error,omitempty"`
	Message              string `json:"message,omitempty"`
	RequiresConfirmation bool   `json:"requiresConfirmation,omitempty"`
	ActionTaken          string `json:"actionTaken,omitempty"`
}

// Ok returns a successful result carrying data and a display message.
func Ok(data any, message string) *Result {
	return &Result{Success: true, Data: data, Message: message}
}

// Fail returns a failed result with a diagnostic error string.
func Fail(err string) *Result {
	return &Result{Success: false, Error: err}
}

// Failf is Fail with formatting.
func Failf(format string, args ...any) *Result {
	return Fail(fmt.Sprintf(format, args...))
}

// Confirmation returns the step-1 gate result: not a success, not an
// error, just a prompt plus the pending action payload the caller must
// echo back.
func Confirmation(message string, data map[string]any) *Result {
	return &Result{
		Success:              false,
		RequiresConfirmation: true,
		Message:              message,
		Data:                 data,
	}
}
