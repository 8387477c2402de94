package adb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolUnavailable means the adb executable could not be located.
	ErrToolUnavailable = errors.New("ADB not found. Please ensure platform-tools are installed.")

	// ErrDeviceUnavailable means no authorized device answered `adb devices`.
	ErrDeviceUnavailable = errors.New("no device connected")

	// ErrMultipleDevices means a device must be named explicitly.
	ErrMultipleDevices = errors.New("more than one device connected, pass --device")
)

// CommandError is an adb invocation that ran but exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Message  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// Err converts a failed Result into a *CommandError named after command.
// It returns nil for a successful result.
func (r *Result) Err(command string) error {
	if r.OK() {
		return nil
	}
	code := -1
	if r != nil {
		code = r.ExitCode
	}
	return &CommandError{
		Command:  strings.TrimSpace(command),
		ExitCode: code,
		Message:  r.FailureMessage(fmt.Sprintf("exit status %d", code)),
	}
}
