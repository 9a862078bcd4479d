package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// ProviderSpec declares explicit metadata for one subject type. A category
// key that is present, even as an empty list, replaces inference for that
// category; an absent key leaves inference in place.
type ProviderSpec struct {
	Name            string         `yaml:"name" validate:"required"`
	Subject         string         `yaml:"subject"`
	Bean            *FeatureSpec   `yaml:"bean"`
	Properties      []PropertySpec `yaml:"properties" validate:"dive"`
	DefaultProperty string         `yaml:"default_property"`
	Events          []EventSpec    `yaml:"events" validate:"dive"`
	DefaultEvent    string         `yaml:"default_event"`
	Methods         []MethodSpec   `yaml:"methods" validate:"dive"`
	Additional      []string       `yaml:"additional"`
}

// FeatureSpec carries the attributes shared by every descriptor
type FeatureSpec struct {
	DisplayName      string         `yaml:"display_name"`
	ShortDescription string         `yaml:"short_description"`
	Expert           bool           `yaml:"expert"`
	Hidden           bool           `yaml:"hidden"`
	Preferred        bool           `yaml:"preferred"`
	Attributes       map[string]any `yaml:"attributes"`
}

// PropertySpec declares a property. Accessors are member references:
// a bare name, or name(T1,T2) when the name is overloaded.
type PropertySpec struct {
	FeatureSpec  `yaml:",inline"`
	Name         string `yaml:"name" validate:"required"`
	Read         string `yaml:"read"`
	Write        string `yaml:"write"`
	IndexedRead  string `yaml:"indexed_read"`
	IndexedWrite string `yaml:"indexed_write"`
	Bound        bool   `yaml:"bound"`
	Constrained  bool   `yaml:"constrained"`
}

// EventSpec declares an event set
type EventSpec struct {
	FeatureSpec     `yaml:",inline"`
	Name            string   `yaml:"name" validate:"required"`
	Listener        string   `yaml:"listener" validate:"required"`
	ListenerMethods []string `yaml:"listener_methods"`
	Add             string   `yaml:"add"`
	Remove          string   `yaml:"remove"`
	GetListeners    string   `yaml:"get_listeners"`
	Unicast         bool     `yaml:"unicast"`
	InDefaultSet    *bool    `yaml:"in_default_set"`
}

// MethodSpec declares an operation
type MethodSpec struct {
	FeatureSpec `yaml:",inline"`
	Member      string   `yaml:"member" validate:"required"`
	Params      []string `yaml:"params"`
}

// provider is the introspection.Provider built from a ProviderSpec
type provider struct {
	bean            *introspection.BeanDescriptor
	properties      []*introspection.PropertyDescriptor
	defaultProperty int
	events          []*introspection.EventSetDescriptor
	defaultEvent    int
	methods         []*introspection.MethodDescriptor
	additional      []introspection.Provider
}

var _ introspection.Provider = (*provider)(nil)

func (p *provider) BeanDescriptor() *introspection.BeanDescriptor { return p.bean }
func (p *provider) PropertyDescriptors() []*introspection.PropertyDescriptor { return p.properties }
func (p *provider) DefaultPropertyIndex() int { return p.defaultProperty }
func (p *provider) EventSetDescriptors() []*introspection.EventSetDescriptor { return p.events }
func (p *provider) DefaultEventIndex() int { return p.defaultEvent }
func (p *provider) MethodDescriptors() []*introspection.MethodDescriptor { return p.methods }
func (p *provider) AdditionalProviders() []introspection.Provider { return p.additional }

func (c *Catalog) buildProvider(spec *ProviderSpec) (*provider, error) {
	return c.buildProviderChain(spec, map[string]bool{})
}

func (c *Catalog) buildProviderChain(spec *ProviderSpec, building map[string]bool) (*provider, error) {
	if building[spec.Name] {
		return nil, fmt.Errorf("provider %s includes itself", spec.Name)
	}
	building[spec.Name] = true
	defer delete(building, spec.Name)

	owner := c.providerSubject(spec)
	refs := memberResolver{catalog: c, owner: owner}
	p := &provider{defaultProperty: -1, defaultEvent: -1}

	if spec.Bean != nil || spec.Subject != "" {
		var subject introspection.Type
		if t, ok := c.types[spec.Subject]; ok && spec.Subject != "" {
			subject = t
		}
		p.bean = introspection.NewBeanDescriptor(subject, nil)
		if spec.Bean != nil {
			applyFeature(&p.bean.FeatureDescriptor, spec.Bean)
		}
	}

	if spec.Properties != nil {
		p.properties = make([]*introspection.PropertyDescriptor, 0, len(spec.Properties))
		for i := range spec.Properties {
			pd, err := refs.property(&spec.Properties[i])
			if err != nil {
				return nil, fmt.Errorf("provider %s: property %s: %w", spec.Name, spec.Properties[i].Name, err)
			}
			p.properties = append(p.properties, pd)
		}
	}
	if spec.DefaultProperty != "" {
		p.defaultProperty = indexByName(p.properties, spec.DefaultProperty)
		if p.defaultProperty < 0 {
			return nil, fmt.Errorf("provider %s: default property %s is not declared", spec.Name, spec.DefaultProperty)
		}
	}

	if spec.Events != nil {
		p.events = make([]*introspection.EventSetDescriptor, 0, len(spec.Events))
		for i := range spec.Events {
			ed, err := refs.eventSet(&spec.Events[i])
			if err != nil {
				return nil, fmt.Errorf("provider %s: event %s: %w", spec.Name, spec.Events[i].Name, err)
			}
			p.events = append(p.events, ed)
		}
	}
	if spec.DefaultEvent != "" {
		p.defaultEvent = indexByName(p.events, spec.DefaultEvent)
		if p.defaultEvent < 0 {
			return nil, fmt.Errorf("provider %s: default event %s is not declared", spec.Name, spec.DefaultEvent)
		}
	}

	if spec.Methods != nil {
		p.methods = make([]*introspection.MethodDescriptor, 0, len(spec.Methods))
		for i := range spec.Methods {
			md, err := refs.method(&spec.Methods[i])
			if err != nil {
				return nil, fmt.Errorf("provider %s: method %s: %w", spec.Name, spec.Methods[i].Member, err)
			}
			p.methods = append(p.methods, md)
		}
	}

	for _, name := range spec.Additional {
		extra, ok := c.providers[name]
		if !ok {
			return nil, fmt.Errorf("provider %s: additional provider %s is not declared", spec.Name, name)
		}
		ep, err := c.buildProviderChain(extra, building)
		if err != nil {
			return nil, err
		}
		p.additional = append(p.additional, ep)
	}
	return p, nil
}

// providerSubject is the type member references are resolved against:
// the declared subject, else the type the provider is named after.
func (c *Catalog) providerSubject(spec *ProviderSpec) *schemaType {
	if spec.Subject != "" {
		return c.types[spec.Subject]
	}
	if name, ok := strings.CutSuffix(spec.Name, introspection.ProviderSuffix); ok {
		if t, ok := c.types[name]; ok {
			return t
		}
	}
	return nil
}

func applyFeature(fd *introspection.FeatureDescriptor, spec *FeatureSpec) {
	if spec.DisplayName != "" {
		fd.SetDisplayName(spec.DisplayName)
	}
	if spec.ShortDescription != "" {
		fd.SetShortDescription(spec.ShortDescription)
	}
	fd.SetExpert(spec.Expert)
	fd.SetHidden(spec.Hidden)
	fd.SetPreferred(spec.Preferred)

	keys := make([]string, 0, len(spec.Attributes))
	for k := range spec.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fd.SetValue(k, spec.Attributes[k])
	}
}

func indexByName[D interface{ Name() string }](list []D, name string) int {
	for i, d := range list {
		if d.Name() == name {
			return i
		}
	}
	return -1
}

// memberResolver turns member references into members of owner or one of
// its supertypes.
type memberResolver struct {
	catalog *Catalog
	owner   *schemaType
}

func (r memberResolver) lookup(ref string) (*introspection.Member, error) {
	if ref == "" {
		return nil, nil
	}
	if r.owner == nil {
		return nil, fmt.Errorf("member %s referenced without a subject type", ref)
	}
	return r.catalog.findMember(r.owner, ref)
}

// findMember resolves ref on t and then its supertypes. A bare name must be
// unambiguous on the first type that declares it.
func (c *Catalog) findMember(t *schemaType, ref string) (*introspection.Member, error) {
	ref = strings.ReplaceAll(ref, " ", "")
	bySignature := strings.Contains(ref, "(")
	seen := make(map[*schemaType]bool)
	for cur := t; cur != nil && !seen[cur]; cur = c.supers[cur] {
		seen[cur] = true
		var found []*introspection.Member
		for _, m := range c.members[cur] {
			if (bySignature && m.Signature() == ref) || (!bySignature && m.Name == ref) {
				found = append(found, m)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return nil, fmt.Errorf("member %s is overloaded on %s; reference it by signature", ref, cur.name)
		}
	}
	return nil, fmt.Errorf("no member %s on %s", ref, t.name)
}

func (r memberResolver) property(spec *PropertySpec) (*introspection.PropertyDescriptor, error) {
	var accessors [4]*introspection.Member
	for i, ref := range []string{spec.Read, spec.Write, spec.IndexedRead, spec.IndexedWrite} {
		m, err := r.lookup(ref)
		if err != nil {
			return nil, err
		}
		accessors[i] = m
	}

	var (
		pd  *introspection.PropertyDescriptor
		err error
	)
	if accessors[2] != nil || accessors[3] != nil {
		pd, err = introspection.NewIndexedPropertyDescriptor(spec.Name, accessors[0], accessors[1], accessors[2], accessors[3])
	} else {
		pd, err = introspection.NewPropertyDescriptor(spec.Name, accessors[0], accessors[1])
	}
	if err != nil {
		return nil, err
	}
	applyFeature(&pd.FeatureDescriptor, &spec.FeatureSpec)
	pd.SetBound(spec.Bound)
	pd.SetConstrained(spec.Constrained)
	return pd, nil
}

func (r memberResolver) eventSet(spec *EventSpec) (*introspection.EventSetDescriptor, error) {
	listener, ok := r.catalog.types[spec.Listener]
	if !ok {
		return nil, fmt.Errorf("%w: listener %q", ErrUnknownType, spec.Listener)
	}

	callbacks := make([]*introspection.Member, 0, len(spec.ListenerMethods))
	for _, ref := range spec.ListenerMethods {
		m, err := r.catalog.findMember(listener, ref)
		if err != nil {
			return nil, err
		}
		callbacks = append(callbacks, m)
	}

	add, err := r.lookup(spec.Add)
	if err != nil {
		return nil, err
	}
	remove, err := r.lookup(spec.Remove)
	if err != nil {
		return nil, err
	}
	getter, err := r.lookup(spec.GetListeners)
	if err != nil {
		return nil, err
	}

	ed, err := introspection.NewEventSetDescriptor(spec.Name, listener, callbacks, add, remove)
	if err != nil {
		return nil, err
	}
	applyFeature(&ed.FeatureDescriptor, &spec.FeatureSpec)
	ed.SetGetListenerMethod(getter)
	ed.SetUnicast(spec.Unicast)
	if spec.InDefaultSet != nil {
		ed.SetInDefaultEventSet(*spec.InDefaultSet)
	}
	return ed, nil
}

func (r memberResolver) method(spec *MethodSpec) (*introspection.MethodDescriptor, error) {
	m, err := r.lookup(spec.Member)
	if err != nil {
		return nil, err
	}
	md, err := introspection.NewMethodDescriptor(m)
	if err != nil {
		return nil, err
	}
	applyFeature(&md.FeatureDescriptor, &spec.FeatureSpec)
	if spec.Params != nil {
		if len(spec.Params) != m.Arity() {
			return nil, fmt.Errorf("%d parameter names for %s", len(spec.Params), m.Signature())
		}
		params := make([]*introspection.ParameterDescriptor, len(spec.Params))
		for i, name := range spec.Params {
			params[i] = introspection.NewParameterDescriptor(name)
		}
		md.SetParameterDescriptors(params)
	}
	return md, nil
}
