package usefulerror

import (
	"errors"
	"fmt"
)

// UsefulError is implemented by errors that carry enough context to be
// shown directly to the user: a stable code for programmatic handling,
// a human readable description, and guidance on how to recover.
type UsefulError interface {
	// Error maintains compatibility with the standard error interface.
	Error() string

	// HumanError returns a human-readable description of what went wrong.
	HumanError() string

	// Help returns recovery guidance specific to this error.
	Help() string

	// Code returns a stable identifier for the error category.
	Code() string
}

type usefulError struct {
	cause      error
	code       string
	humanError string
	help       string
	msg        string
}

var _ UsefulError = (*usefulError)(nil)

// Useful starts building a UsefulError.
func Useful() *usefulError {
	return &usefulError{}
}

// Wrap attaches the underlying cause. The cause remains reachable through
// errors.Is / errors.As.
func (e *usefulError) Wrap(cause error) *usefulError {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithCode sets the stable error category code.
func (e *usefulError) WithCode(code string) *usefulError {
	e.code = code
	return e
}

// WithHumanError sets the human-readable description.
func (e *usefulError) WithHumanError(humanError string) *usefulError {
	e.humanError = humanError
	return e
}

// WithHelp sets the recovery guidance.
func (e *usefulError) WithHelp(help string) *usefulError {
	e.help = help
	return e
}

// Msg sets the terse message used when no cause is attached.
func (e *usefulError) Msg(msg string) *usefulError {
	e.msg = msg
	return e
}

func (e *usefulError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}

	if e.msg == "" {
		return "unknown error"
	}

	if e.code != "" {
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	}

	return e.msg
}

func (e *usefulError) Unwrap() error {
	return e.cause
}

// Is matches any other usefulError carrying the same code, so sentinel
// builders compare equal to their Wrap()ed instances under errors.Is.
func (e *usefulError) Is(target error) bool {
	other, ok := target.(*usefulError)
	if !ok {
		return false
	}

	return e.code != "" && e.code == other.code
}

func (e *usefulError) HumanError() string {
	if e.humanError == "" {
		return "An error occurred, but no further description is available."
	}

	return e.humanError
}

func (e *usefulError) Help() string {
	if e.help == "" {
		return "No additional help is available for this error."
	}

	return e.help
}

func (e *usefulError) Code() string {
	if e.code == "" {
		return ErrCodeUnknown
	}

	return e.code
}

// AsUsefulError attempts to interpret err as a UsefulError anywhere in its
// chain.
func AsUsefulError(err error) (UsefulError, bool) {
	if err == nil {
		return nil, false
	}

	var ue *usefulError
	if errors.As(err, &ue) {
		return ue, true
	}

	if ue, ok := err.(UsefulError); ok {
		return ue, true
	}

	return nil, false
}
