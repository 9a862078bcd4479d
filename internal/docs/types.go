// Package docs renders introspection results as Markdown reference pages.
package docs

import (
	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// Config holds configuration for documentation generation
type Config struct {
	// Title heads the index page
	Title string

	// Description is an optional paragraph under the title
	Description string

	// OutputDir is the directory the pages are written to
	OutputDir string

	// IncludeHidden also documents hidden types and features
	IncludeHidden bool
}

// Documentation is the input of one generation run
type Documentation struct {
	Types []*TypeDoc
}

// TypeDoc pairs a type with its introspection result
type TypeDoc struct {
	Name  string
	Super string
	Info  *introspection.BeanInfo
}
