package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
)

// ErrorOptions configures FormatError
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a message with suggestions and follow-up commands
//
// Example output:
//
//	✗ TYPE NOT FOUND: acme.Widgt
//
//	   Did you mean: acme.Widget?
//
//	   → List types: beaninfo types
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	head := newColor(opts.NoColor, color.FgRed, color.Bold)
	body := newColor(opts.NoColor, color.FgRed)
	symbol := "✗"
	if opts.Level == ErrorLevelWarning {
		head = newColor(opts.NoColor, color.FgYellow, color.Bold)
		body = newColor(opts.NoColor, color.FgYellow)
		symbol = "!"
	}

	if opts.Context != "" {
		head.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		head.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}
	for _, d := range opts.Details {
		body.Fprintf(&b, "   %s\n", d)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		help := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			help.Fprintf(&b, "   → %s\n", cmd)
		}
	}
	return b.String()
}

// WriteError writes FormatError(opts) to w
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// TypeNotFoundError reports an unknown type name
func TypeNotFoundError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:     "type not found",
		Problem:     name,
		Suggestions: suggestions,
		HelpCommands: []string{
			"List types: beaninfo types",
			"Get help: beaninfo introspect --help",
		},
		NoColor: noColor,
	})
}

// IntrospectionError renders err, expanding the fields of an
// *introspection.Error when present.
func IntrospectionError(err error, noColor bool) string {
	var ie *introspection.Error
	if !errors.As(err, &ie) {
		return FormatError(ErrorOptions{Context: "introspection failed", Problem: err.Error(), NoColor: noColor})
	}

	opts := ErrorOptions{
		Context: fmt.Sprintf("%s %s", ie.Category, ie.Code),
		Problem: ie.Message,
		NoColor: noColor,
	}
	if ie.Subject != "" {
		opts.Details = append(opts.Details, "type: "+ie.Subject)
	}
	if ie.Feature != "" {
		opts.Details = append(opts.Details, "feature: "+ie.Feature)
	}
	if ie.Expected != "" || ie.Actual != "" {
		opts.Details = append(opts.Details, fmt.Sprintf("expected %s, got %s", ie.Expected, ie.Actual))
	}
	if ie.Suggestion != "" {
		opts.HelpCommands = append(opts.HelpCommands, ie.Suggestion)
	}
	return FormatError(opts)
}

// ConfigError reports an invalid configuration
func ConfigError(err error, noColor bool) string {
	return FormatError(ErrorOptions{
		Context: "configuration error",
		Problem: err.Error(),
		HelpCommands: []string{
			"Check beaninfo.yml or BEANINFO_* environment variables",
		},
		NoColor: noColor,
	})
}
