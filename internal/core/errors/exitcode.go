package errors

import "errors"

// ExitCode is the process exit status a CLI should use when an error reaches the top.
type ExitCode uint8

const (
	ExitSuccess       ExitCode = 0
	ExitFailure       ExitCode = 1
	ExitUsage         ExitCode = 2
	ExitParseError    ExitCode = 3
	ExitConflicts     ExitCode = 4
	ExitDifferences   ExitCode = 5
	ExitInvalidConfig ExitCode = 6
)

// HasExitCode is an error with an attached exit code.
type HasExitCode interface {
	error
	ExitCode() ExitCode
}

// WithExitCode attaches code to err unless err already carries one. A nil err stays nil.
func WithExitCode(err error, code ExitCode) error {
	if err == nil {
		return nil
	}
	var ec HasExitCode
	if errors.As(err, &ec) {
		return err
	}
	return withExitCode{error: err, code: code}
}

// Silent marks an outcome that must change the exit status but has already been
// reported to the user, e.g. ABI differences printed by the compare report.
func Silent(msg string, code ExitCode) error {
	return withExitCode{error: silentError(msg), code: code, silent: true}
}

// ExitCodeOf returns the exit code attached to err, ExitFailure when there is
// none and ExitSuccess for a nil error.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var ec HasExitCode
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitFailure
}

// IsSilent reports whether err was created by Silent.
func IsSilent(err error) bool {
	var w withExitCode
	if errors.As(err, &w) {
		return w.silent
	}
	return false
}

type silentError string

func (e silentError) Error() string { return string(e) }

type withExitCode struct {
	error
	code   ExitCode
	silent bool
}

func (w withExitCode) Unwrap() error {
	return w.error
}

func (w withExitCode) ExitCode() ExitCode {
	return w.code
}

var _ HasExitCode = withExitCode{}
