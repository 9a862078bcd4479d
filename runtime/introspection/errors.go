package introspection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode uniquely identifies an introspection failure
type ErrorCode string

// ErrorCategory groups error codes
type ErrorCategory string

const (
	// CategoryStructural covers malformed accessor shapes (STR100-199)
	CategoryStructural ErrorCategory = "structural"
	// CategoryConfiguration covers invalid introspection requests (CFG200-299)
	CategoryConfiguration ErrorCategory = "configuration"
)

const (
	// CodeAccessorTypeMismatch: read and write accessors disagree on the property type
	CodeAccessorTypeMismatch ErrorCode = "STR101"
	// CodeAccessorShape: an accessor has the wrong arity or parameter/result types
	CodeAccessorShape ErrorCode = "STR102"
	// CodeIndexedTypeMismatch: the sequence type does not hold the indexed element type
	CodeIndexedTypeMismatch ErrorCode = "STR103"
	// CodeListenerShape: an add/remove listener member is malformed
	CodeListenerShape ErrorCode = "STR104"
	// CodeInvalidDescriptor: a descriptor is missing a required part
	CodeInvalidDescriptor ErrorCode = "STR105"

	// CodeStopNotAncestor: the stop type is not an ancestor of the subject type
	CodeStopNotAncestor ErrorCode = "CFG201"
	// CodeHierarchyCycle: the supertype chain revisits a type
	CodeHierarchyCycle ErrorCode = "CFG202"
	// CodeNilSubject: no subject type was supplied
	CodeNilSubject ErrorCode = "CFG203"
	// CodeNoDefault: a package-level helper was used before SetDefault
	CodeNoDefault ErrorCode = "CFG204"
)

var (
	// ErrStructuralMismatch matches every structural *Error via errors.Is
	ErrStructuralMismatch = errors.New("introspection: structural mismatch")
	// ErrConfiguration matches every configuration *Error via errors.Is
	ErrConfiguration = errors.New("introspection: configuration error")
)

// Error is a structured introspection failure.
type Error struct {
	// Code is the unique error code (e.g. "STR101")
	Code ErrorCode `json:"code"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Message is the primary error message
	Message string `json:"message"`
	// Subject is the qualified name of the type being introspected
	Subject string `json:"subject,omitempty"`
	// Feature names the property, event set or member involved
	Feature string `json:"feature,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the type definition (optional)
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]: %s", e.Category, e.Code, e.Message)
	if e.Subject != "" {
		fmt.Fprintf(&b, " (type %s", e.Subject)
		if e.Feature != "" {
			fmt.Fprintf(&b, ", feature %s", e.Feature)
		}
		b.WriteByte(')')
	} else if e.Feature != "" {
		fmt.Fprintf(&b, " (feature %s)", e.Feature)
	}
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	}
	return b.String()
}

// Is lets errors.Is match an *Error against the category sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrStructuralMismatch:
		return e.Category == CategoryStructural
	case ErrConfiguration:
		return e.Category == CategoryConfiguration
	}
	return false
}

// ToJSON returns the error as indented JSON for machine consumption
func (e *Error) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithSubject records the type being introspected
func (e *Error) WithSubject(t Type) *Error {
	if t != nil && e.Subject == "" {
		e.Subject = t.Name()
	}
	return e
}

// WithSuggestion sets a fix hint
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

func structuralError(code ErrorCode, feature, message string) *Error {
	return &Error{
		Code:     code,
		Category: CategoryStructural,
		Message:  message,
		Feature:  feature,
	}
}

func mismatchError(code ErrorCode, feature, message string, expected, actual Type) *Error {
	e := structuralError(code, feature, message)
	e.Expected = typeName(expected)
	e.Actual = typeName(actual)
	return e
}

func configurationError(code ErrorCode, subject Type, message string) *Error {
	return (&Error{
		Code:     code,
		Category: CategoryConfiguration,
		Message:  message,
	}).WithSubject(subject)
}

// attachSubject fills in the subject on structural errors raised below the
// introspector, where the subject type is not known.
func attachSubject(err error, t Type) error {
	var ie *Error
	if errors.As(err, &ie) {
		ie.WithSubject(t)
	}
	return err
}
