package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/beaninfo/internal/cli/ui"
	"github.com/conduit-lang/beaninfo/internal/watch"
	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

type introspectOptions struct {
	stop            string
	ignoreImmediate bool
	ignoreAll       bool
	format          string
	stats           bool
	watch           bool
}

// newIntrospectCommand creates the 'introspect' command
func newIntrospectCommand(global *globalOptions) *cobra.Command {
	opts := &introspectOptions{}

	cmd := &cobra.Command{
		Use:   "introspect <type>",
		Short: "Show the properties, event sets and operations of a type",
		Long: `Introspect a type from the configured catalog.

The result merges naming-pattern inference over the type's members with any
explicit provider found next to the type or on the search path, and with the
results for its supertypes up to the stop type.`,
		Example: `  # Describe a type
  beaninfo introspect acme.Widget

  # Only the features declared below acme.Component
  beaninfo introspect acme.Widget --stop acme.Component

  # Inference only, in JSON
  beaninfo introspect acme.Slider --ignore-all --format json

  # Include cache and provider counters
  beaninfo introspect acme.Slider --stats

  # Re-render whenever the catalog or configuration changes
  beaninfo introspect acme.Widget --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.stop, "stop", "", "Ancestor at which to stop collecting inherited features")
	cmd.Flags().BoolVar(&opts.ignoreImmediate, "ignore-immediate", false, "Skip the type's own provider")
	cmd.Flags().BoolVar(&opts.ignoreAll, "ignore-all", false, "Skip providers for the whole hierarchy")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: json or table (default from config)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Include introspection counters")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-render when the catalog or configuration file changes")
	cmd.MarkFlagsMutuallyExclusive("ignore-immediate", "ignore-all")

	return cmd
}

func (o *introspectOptions) flags() introspection.Flags {
	switch {
	case o.ignoreAll:
		return introspection.IgnoreAllProviders
	case o.ignoreImmediate:
		return introspection.IgnoreImmediateProvider
	}
	return introspection.UseAllProviders
}

func runIntrospect(cmd *cobra.Command, global *globalOptions, opts *introspectOptions, name string) error {
	s, err := openSession(cmd, global)
	if err != nil {
		return err
	}
	defer s.logger.Sync() //nolint:errcheck

	if err := introspectOnce(cmd, s, opts, name); err != nil || !opts.watch {
		return err
	}

	files := []string{s.cfg.Schema.Path}
	if s.cfg.File != "" {
		files = append(files, s.cfg.File)
	}
	var mu sync.Mutex
	fw, err := watch.NewFileWatcher(files, watch.DefaultDelay, s.logger, func(changed []string) error {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintln(cmd.OutOrStdout())
		ui.Header(cmd.OutOrStdout(), "reloaded "+strings.Join(changed, ", "), s.noColor)
		next, err := openSession(cmd, global)
		if err != nil {
			return err
		}
		return introspectOnce(cmd, next, opts, name)
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}
	s.logger.Info("watching for changes", zap.Strings("files", files))

	<-cmd.Context().Done()
	return fw.Stop()
}

// introspectOnce renders one introspection of name using s
func introspectOnce(cmd *cobra.Command, s *session, opts *introspectOptions, name string) error {
	format := s.cfg.Output.Format
	if opts.format != "" {
		format = opts.format
	}
	if format != "json" && format != "table" {
		return fmt.Errorf("unsupported format: %s (supported: json, table)", format)
	}

	subject, err := s.lookup(cmd, name)
	if err != nil {
		return err
	}
	var stop introspection.Type
	if opts.stop != "" {
		if stop, err = s.lookup(cmd, opts.stop); err != nil {
			return err
		}
	}

	info, err := s.introspector().IntrospectWith(subject, stop, opts.flags())
	if err != nil {
		var ie *introspection.Error
		if errors.As(err, &ie) {
			s.logger.Debug("introspection failed", zap.String("code", string(ie.Code)), zap.String("type", name))
			fmt.Fprint(cmd.ErrOrStderr(), ui.IntrospectionError(err, s.noColor))
			return errReported
		}
		return err
	}

	r := newReport(subject, stop, opts.flags(), info)
	if opts.stats || s.cfg.Metrics.Enabled {
		if r.Stats, err = s.stats(); err != nil {
			return err
		}
	}

	if format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	}
	renderReport(cmd.OutOrStdout(), r, s.noColor)
	return nil
}

// report is the rendered form of one introspection result
type report struct {
	Type            string             `json:"type"`
	Stop            string             `json:"stop,omitempty"`
	Flags           string             `json:"flags"`
	Bean            featureReport      `json:"bean"`
	Properties      []propertyReport   `json:"properties"`
	DefaultProperty int                `json:"default_property"`
	Events          []eventReport      `json:"events"`
	DefaultEvent    int                `json:"default_event"`
	Methods         []methodReport     `json:"methods"`
	Stats           map[string]float64 `json:"stats,omitempty"`
}

type featureReport struct {
	Name             string         `json:"name"`
	DisplayName      string         `json:"display_name,omitempty"`
	ShortDescription string         `json:"short_description,omitempty"`
	Expert           bool           `json:"expert,omitempty"`
	Hidden           bool           `json:"hidden,omitempty"`
	Preferred        bool           `json:"preferred,omitempty"`
	Attributes       map[string]any `json:"attributes,omitempty"`
}

type propertyReport struct {
	featureReport
	Type         string `json:"type,omitempty"`
	Read         string `json:"read,omitempty"`
	Write        string `json:"write,omitempty"`
	Indexed      bool   `json:"indexed,omitempty"`
	IndexedType  string `json:"indexed_type,omitempty"`
	IndexedRead  string `json:"indexed_read,omitempty"`
	IndexedWrite string `json:"indexed_write,omitempty"`
	Bound        bool   `json:"bound,omitempty"`
	Constrained  bool   `json:"constrained,omitempty"`
}

type eventReport struct {
	featureReport
	ListenerType    string   `json:"listener_type"`
	ListenerMethods []string `json:"listener_methods"`
	Add             string   `json:"add"`
	Remove          string   `json:"remove"`
	GetListeners    string   `json:"get_listeners,omitempty"`
	Unicast         bool     `json:"unicast,omitempty"`
	InDefaultSet    bool     `json:"in_default_set"`
}

type methodReport struct {
	featureReport
	Signature  string   `json:"signature"`
	Parameters []string `json:"parameters,omitempty"`
}

func newReport(subject, stop introspection.Type, flags introspection.Flags, info *introspection.BeanInfo) *report {
	r := &report{
		Type:            subject.Name(),
		Flags:           flags.String(),
		Bean:            newFeatureReport(&info.BeanDescriptor().FeatureDescriptor),
		Properties:      []propertyReport{},
		DefaultProperty: info.DefaultPropertyIndex(),
		Events:          []eventReport{},
		DefaultEvent:    info.DefaultEventIndex(),
		Methods:         []methodReport{},
	}
	if stop != nil {
		r.Stop = stop.Name()
	}

	for _, p := range info.PropertyDescriptors() {
		r.Properties = append(r.Properties, propertyReport{
			featureReport: newFeatureReport(&p.FeatureDescriptor),
			Type:          typeName(p.PropertyType()),
			Read:          memberName(p.ReadMethod()),
			Write:         memberName(p.WriteMethod()),
			Indexed:       p.IsIndexed(),
			IndexedType:   typeName(p.IndexedPropertyType()),
			IndexedRead:   memberName(p.IndexedReadMethod()),
			IndexedWrite:  memberName(p.IndexedWriteMethod()),
			Bound:         p.IsBound(),
			Constrained:   p.IsConstrained(),
		})
	}

	for _, e := range info.EventSetDescriptors() {
		er := eventReport{
			featureReport:   newFeatureReport(&e.FeatureDescriptor),
			ListenerType:    typeName(e.ListenerType()),
			ListenerMethods: []string{},
			Add:             memberName(e.AddListenerMethod()),
			Remove:          memberName(e.RemoveListenerMethod()),
			GetListeners:    memberName(e.GetListenerMethod()),
			Unicast:         e.IsUnicast(),
			InDefaultSet:    e.IsInDefaultEventSet(),
		}
		for _, m := range e.ListenerMethods() {
			er.ListenerMethods = append(er.ListenerMethods, m.Name)
		}
		r.Events = append(r.Events, er)
	}

	for _, m := range info.MethodDescriptors() {
		mr := methodReport{
			featureReport: newFeatureReport(&m.FeatureDescriptor),
			Signature:     m.Member().Signature(),
		}
		for _, p := range m.ParameterDescriptors() {
			mr.Parameters = append(mr.Parameters, p.Name())
		}
		r.Methods = append(r.Methods, mr)
	}
	return r
}

func newFeatureReport(fd *introspection.FeatureDescriptor) featureReport {
	fr := featureReport{
		Name:             fd.Name(),
		ShortDescription: fd.ShortDescription(),
		Expert:           fd.IsExpert(),
		Hidden:           fd.IsHidden(),
		Preferred:        fd.IsPreferred(),
	}
	if fd.DisplayName() != fd.Name() {
		fr.DisplayName = fd.DisplayName()
	}
	if fr.ShortDescription == fr.Name || fr.ShortDescription == fd.DisplayName() {
		fr.ShortDescription = ""
	}
	for _, key := range fd.AttributeNames() {
		if fr.Attributes == nil {
			fr.Attributes = make(map[string]any)
		}
		fr.Attributes[key], _ = fd.Value(key)
	}
	return fr
}

func typeName(t introspection.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

func memberName(m *introspection.Member) string {
	if m == nil {
		return ""
	}
	return m.Name
}

// renderReport writes r as a set of tables
func renderReport(w io.Writer, r *report, noColor bool) {
	ui.Header(w, r.Type, noColor)

	summary := ui.NewKeyValueTable(w, noColor)
	if r.Bean.DisplayName != "" {
		summary.AddRow("Display name", r.Bean.DisplayName)
	}
	if r.Bean.ShortDescription != "" {
		summary.AddRow("Description", r.Bean.ShortDescription)
	}
	if r.Stop != "" {
		summary.AddRow("Stop", r.Stop)
	}
	summary.AddRow("Providers", r.Flags)
	if marks := markers(r.Bean); marks != "" {
		summary.AddRow("Flags", marks)
	}
	for _, key := range sortedKeys(r.Bean.Attributes) {
		summary.AddRow(key, fmt.Sprint(r.Bean.Attributes[key]))
	}
	summary.Render()

	fmt.Fprintln(w)
	ui.Header(w, fmt.Sprintf("Properties (%d)", len(r.Properties)), noColor)
	props := ui.NewTable(w, noColor, "", "NAME", "TYPE", "READ", "WRITE", "FLAGS")
	for i, p := range r.Properties {
		name, typ, read, write := p.Name, p.Type, p.Read, p.Write
		if p.Indexed {
			typ = strings.TrimSpace(typ + " [" + p.IndexedType + "]")
			read = joinNonEmpty(read, p.IndexedRead)
			write = joinNonEmpty(write, p.IndexedWrite)
		}
		var flags []string
		if p.Bound {
			flags = append(flags, "bound")
		}
		if p.Constrained {
			flags = append(flags, "constrained")
		}
		if m := markers(p.featureReport); m != "" {
			flags = append(flags, m)
		}
		props.AddRow(defaultMark(i, r.DefaultProperty), name, typ, read, write, strings.Join(flags, ","))
	}
	props.Render()

	fmt.Fprintln(w)
	ui.Header(w, fmt.Sprintf("Event sets (%d)", len(r.Events)), noColor)
	events := ui.NewTable(w, noColor, "", "NAME", "LISTENER", "METHODS", "FLAGS")
	for i, e := range r.Events {
		var flags []string
		if e.Unicast {
			flags = append(flags, "unicast")
		}
		if !e.InDefaultSet {
			flags = append(flags, "non-default")
		}
		if m := markers(e.featureReport); m != "" {
			flags = append(flags, m)
		}
		events.AddRow(defaultMark(i, r.DefaultEvent), e.Name, e.ListenerType, strings.Join(e.ListenerMethods, ","), strings.Join(flags, ","))
	}
	events.Render()

	fmt.Fprintln(w)
	ui.Header(w, fmt.Sprintf("Operations (%d)", len(r.Methods)), noColor)
	methods := ui.NewTable(w, noColor, "SIGNATURE", "PARAMETERS", "FLAGS")
	for _, m := range r.Methods {
		methods.AddRow(m.Signature, strings.Join(m.Parameters, ","), markers(m.featureReport))
	}
	methods.Render()

	if len(r.Stats) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Stats", noColor)
		stats := ui.NewKeyValueTable(w, noColor)
		for _, key := range sortedKeys(r.Stats) {
			stats.AddRow(key, strconv.FormatFloat(r.Stats[key], 'f', -1, 64))
		}
		stats.Render()
	}
}

func markers(f featureReport) string {
	var out []string
	if f.Expert {
		out = append(out, "expert")
	}
	if f.Hidden {
		out = append(out, "hidden")
	}
	if f.Preferred {
		out = append(out, "preferred")
	}
	return strings.Join(out, ",")
}

func defaultMark(i, def int) string {
	if i == def {
		return "*"
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
