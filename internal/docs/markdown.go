package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// MarkdownGenerator generates Markdown documentation
type MarkdownGenerator struct {
	config *Config
}

// NewMarkdownGenerator creates a new Markdown generator
func NewMarkdownGenerator(config *Config) *MarkdownGenerator {
	return &MarkdownGenerator{
		config: config,
	}
}

// PageName returns the file name used for a type's page
func PageName(typeName string) string {
	return strings.ToLower(typeName) + ".md"
}

// Generate writes README.md and one page per documented type, returning
// the paths written.
func (g *MarkdownGenerator) Generate(doc *Documentation) ([]string, error) {
	if err := os.MkdirAll(g.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var types []*TypeDoc
	for _, t := range doc.Types {
		if g.config.IncludeHidden || !t.Info.BeanDescriptor().IsHidden() {
			types = append(types, t)
		}
	}

	written := make([]string, 0, len(types)+1)
	index := filepath.Join(g.config.OutputDir, "README.md")
	if err := os.WriteFile(index, []byte(g.index(types)), 0644); err != nil {
		return nil, err
	}
	written = append(written, index)

	for _, t := range types {
		path := filepath.Join(g.config.OutputDir, PageName(t.Name))
		if err := os.WriteFile(path, []byte(g.page(t)), 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// index renders the README listing every type
func (g *MarkdownGenerator) index(types []*TypeDoc) string {
	var buf strings.Builder

	title := g.config.Title
	if title == "" {
		title = "Type reference"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	if g.config.Description != "" {
		buf.WriteString(g.config.Description + "\n\n")
	}

	buf.WriteString("| Type | Properties | Event sets | Operations |\n")
	buf.WriteString("|------|------------|------------|------------|\n")
	for _, t := range types {
		buf.WriteString(fmt.Sprintf("| [%s](%s) | %d | %d | %d |\n",
			t.Name, PageName(t.Name),
			len(t.Info.PropertyDescriptors()),
			len(t.Info.EventSetDescriptors()),
			len(t.Info.MethodDescriptors())))
	}
	return buf.String()
}

// page renders the reference page of one type
func (g *MarkdownGenerator) page(t *TypeDoc) string {
	var buf strings.Builder
	bean := t.Info.BeanDescriptor()

	buf.WriteString(fmt.Sprintf("# %s\n\n", t.Name))
	if bean.DisplayName() != bean.Name() {
		buf.WriteString(fmt.Sprintf("**%s**\n\n", bean.DisplayName()))
	}
	if d := bean.ShortDescription(); d != bean.DisplayName() {
		buf.WriteString(fmt.Sprintf("> %s\n\n", d))
	}
	if t.Super != "" {
		buf.WriteString(fmt.Sprintf("Extends [%s](%s).\n\n", t.Super, PageName(t.Super)))
	}

	// Properties
	buf.WriteString("## Properties\n\n")
	props := visibleFeatures(t.Info.PropertyDescriptors(), g.config.IncludeHidden)
	if len(props) == 0 {
		buf.WriteString("No properties.\n\n")
	} else {
		def := defaultName(t.Info.PropertyDescriptors(), t.Info.DefaultPropertyIndex())
		buf.WriteString("| Name | Type | Read | Write | Notes |\n")
		buf.WriteString("|------|------|------|-------|-------|\n")
		for _, p := range props {
			var notes []string
			if p.Name() == def {
				notes = append(notes, "default")
			}
			if p.IsIndexed() {
				notes = append(notes, "indexed")
			}
			if p.IsBound() {
				notes = append(notes, "bound")
			}
			if p.IsConstrained() {
				notes = append(notes, "constrained")
			}
			notes = append(notes, featureNotes(&p.FeatureDescriptor)...)
			buf.WriteString(fmt.Sprintf("| `%s` | `%s` | %s | %s | %s |\n",
				p.Name(), typeName(p.PropertyType()),
				member(p.ReadMethod()), member(p.WriteMethod()), joinOrDash(notes)))
		}
		buf.WriteString("\n")
	}

	// Event sets
	buf.WriteString("## Event sets\n\n")
	events := visibleFeatures(t.Info.EventSetDescriptors(), g.config.IncludeHidden)
	if len(events) == 0 {
		buf.WriteString("No event sets.\n\n")
	} else {
		def := defaultName(t.Info.EventSetDescriptors(), t.Info.DefaultEventIndex())
		for _, e := range events {
			buf.WriteString(fmt.Sprintf("### %s\n\n", e.Name()))
			buf.WriteString(fmt.Sprintf("- **Listener:** `%s`\n", typeName(e.ListenerType())))
			var methods []string
			for _, m := range e.ListenerMethods() {
				methods = append(methods, "`"+m.Signature()+"`")
			}
			buf.WriteString(fmt.Sprintf("- **Methods:** %s\n", joinOrDash(methods)))
			buf.WriteString(fmt.Sprintf("- **Add / remove:** %s / %s\n", member(e.AddListenerMethod()), member(e.RemoveListenerMethod())))
			if e.IsUnicast() {
				buf.WriteString("- Unicast\n")
			}
			if e.Name() == def {
				buf.WriteString("- Default event set\n")
			}
			buf.WriteString("\n")
		}
	}

	// Operations
	buf.WriteString("## Operations\n\n")
	methods := visibleFeatures(t.Info.MethodDescriptors(), g.config.IncludeHidden)
	if len(methods) == 0 {
		buf.WriteString("No operations.\n\n")
	} else {
		for _, m := range methods {
			line := fmt.Sprintf("- `%s`", m.Member().Signature())
			var params []string
			for _, p := range m.ParameterDescriptors() {
				params = append(params, p.Name())
			}
			if len(params) > 0 {
				line += " (" + strings.Join(params, ", ") + ")"
			}
			buf.WriteString(line + "\n")
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// visibleFeatures drops hidden features unless configured otherwise
func visibleFeatures[D interface{ IsHidden() bool }](list []D, includeHidden bool) []D {
	if includeHidden {
		return list
	}
	out := list[:0:0]
	for _, d := range list {
		if !d.IsHidden() {
			out = append(out, d)
		}
	}
	return out
}

func featureNotes(f *introspection.FeatureDescriptor) []string {
	var notes []string
	if f.IsExpert() {
		notes = append(notes, "expert")
	}
	if f.IsPreferred() {
		notes = append(notes, "preferred")
	}
	if f.IsHidden() {
		notes = append(notes, "hidden")
	}
	if f.DisplayName() != f.Name() {
		notes = append(notes, fmt.Sprintf("%q", f.DisplayName()))
	}
	return notes
}

func defaultName[D interface{ Name() string }](list []D, index int) string {
	if index < 0 || index >= len(list) {
		return ""
	}
	return list[index].Name()
}

func typeName(t introspection.Type) string {
	if t == nil {
		return "-"
	}
	return t.Name()
}

func member(m *introspection.Member) string {
	if m == nil {
		return "-"
	}
	return "`" + m.Name + "`"
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
