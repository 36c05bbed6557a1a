// Package errors defines the failures koi and koictl report to users.
//
// Each CLIError carries the exit code it maps to and, usually, a hint
// telling the user what to do next.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitGeneral = 1  // Launcher failure (missing binary, spawn failure, bad config)
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	Message string
	Hint    string
	Cause   error
	Code    int
}

// Error returns the message followed by the cause, if any.
func (e *CLIError) Error() string {
	if e.Cause == nil {
		return e.Message
	}

	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// Wrap attaches a message and exit code to cause.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{Message: message, Cause: cause, Code: code}
}

// As is errors.As specialised to CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// BinaryNotFound reports that the platform binary is missing at path.
func BinaryNotFound(path, platform string) *CLIError {
	return &CLIError{
		Message: "koi binary not found: " + path,
		Hint:    fmt.Sprintf("The %s build of koi is not installed next to the launcher. Run 'koictl doctor' to inspect the install", platform),
		Code:    ExitGeneral,
	}
}

// SpawnFailed reports that the OS refused to start the binary.
func SpawnFailed(path string, cause error) *CLIError {
	return &CLIError{
		Message: "Failed to start koi: " + path,
		Hint:    "Check that the file is executable and built for this machine",
		Cause:   cause,
		Code:    ExitGeneral,
	}
}

// InstallDirUnknown reports that the launcher cannot locate itself.
func InstallDirUnknown(cause error) *CLIError {
	return &CLIError{
		Message: "Cannot determine the launcher install directory",
		Hint:    "Set KOI_LAUNCHER_INSTALL_DIR to the directory containing the koi_* folders",
		Cause:   cause,
		Code:    ExitGeneral,
	}
}

// ConfigInvalid reports unreadable or malformed configuration.
func ConfigInvalid(cause error) *CLIError {
	return &CLIError{
		Message: "Invalid launcher configuration",
		Hint:    "Check launcher.yaml and KOI_LAUNCHER_* environment variables, or run 'koictl config list'",
		Cause:   cause,
		Code:    ExitGeneral,
	}
}

// LoggingInvalid reports log settings the logger rejected.
func LoggingInvalid(cause error) *CLIError {
	return &CLIError{
		Message: "Invalid logging configuration",
		Hint:    "Use log.level (error|warn|info|debug), log.format (json|text), log.stderr (auto|on|off), and/or log.file",
		Cause:   cause,
		Code:    ExitGeneral,
	}
}

// UnknownConfigKey reports a key koictl does not know.
func UnknownConfigKey(key string) *CLIError {
	return &CLIError{
		Message: "Unknown config key: " + key,
		Hint:    "Run 'koictl config list' to see available keys",
		Code:    ExitUsage,
	}
}

// ChecksFailed reports that doctor found failing checks.
func ChecksFailed(failed int) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("%d check(s) failed", failed),
		Hint:    "Fix the failing checks above, then rerun 'koictl doctor'",
		Code:    ExitGeneral,
	}
}
