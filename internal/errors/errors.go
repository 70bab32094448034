package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed caller input (empty region, bad
// path, blank secret name). It is always raised before any network
// call is made.
type ValidationError struct {
	Field      string
	Message    string
	Suggestion string
}

func (e ValidationError) Error() string {
	msg := "Validation error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// FetchError wraps a classified remote-store failure. Message carries
// the full human-actionable explanation produced by the classifier,
// including region and path or secret name.
type FetchError struct {
	Store   string // "parameter" or "secret"
	Message string
	Err     error
}

func (e FetchError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, "")
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// UsageError reports a programming or configuration mistake, such as
// refreshing secrets on a store constructed without them. It is never
// subject to the continue-on-error policy.
type UsageError struct {
	Op         string
	Message    string
	Suggestion string
}

func (e UsageError) Error() string {
	msg := fmt.Sprintf("Usage error in %s: %s", e.Op, e.Message)

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// ParseError reports a failed structured decode of a configuration
// value, such as a JSON getter on a non-JSON value.
type ParseError struct {
	Key string
	Err error
}

func (e ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse value for key '%s': %v", e.Key, e.Err)
	}
	return fmt.Sprintf("failed to parse value for key '%s'", e.Key)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsFetch reports whether err is a FetchError
func IsFetch(err error) bool {
	var fe FetchError
	return errors.As(err, &fe)
}

// IsUsage reports whether err is a UsageError
func IsUsage(err error) bool {
	var ue UsageError
	return errors.As(err, &ue)
}

// IsParse reports whether err is a ParseError
func IsParse(err error) bool {
	var pe ParseError
	return errors.As(err, &pe)
}
