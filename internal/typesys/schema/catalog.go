package schema

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// ErrUnknownType is returned when a catalog reference names no declared type
var ErrUnknownType = errors.New("unknown type")

// File is the on-disk layout of a type catalog
type File struct {
	Types     []TypeSpec     `yaml:"types" validate:"dive"`
	Providers []ProviderSpec `yaml:"providers" validate:"dive"`
}

// TypeSpec declares one type
type TypeSpec struct {
	Name         string       `yaml:"name" validate:"required"`
	Kind         string       `yaml:"kind" validate:"omitempty,oneof=struct interface other"`
	Super        string       `yaml:"super"`
	Implements   []string     `yaml:"implements"`
	Capabilities []string     `yaml:"capabilities"`
	Members      []MemberSpec `yaml:"members" validate:"dive"`
}

// MemberSpec declares one member of a type
type MemberSpec struct {
	Name       string   `yaml:"name" validate:"required"`
	Params     []string `yaml:"params"`
	Result     string   `yaml:"result"`
	Errors     []string `yaml:"errors"`
	Static     bool     `yaml:"static"`
	Unexported bool     `yaml:"unexported"`
}

// schemaType is the Type handle of a catalog. Handles are interned, so
// pointer identity is type identity.
type schemaType struct {
	name string
	kind introspection.Kind
	elem *schemaType
}

func (t *schemaType) Name() string { return t.name }

func (t *schemaType) SimpleName() string {
	if t.kind == introspection.KindSlice {
		return "[]" + t.elem.SimpleName()
	}
	if i := strings.LastIndex(t.name, "."); i >= 0 {
		return t.name[i+1:]
	}
	return t.name
}

func (t *schemaType) Package() string {
	if t.kind == introspection.KindSlice {
		return ""
	}
	if i := strings.LastIndex(t.name, "."); i >= 0 {
		return t.name[:i]
	}
	return ""
}

func (t *schemaType) Kind() introspection.Kind { return t.kind }

func (t *schemaType) Elem() introspection.Type {
	if t.elem == nil {
		return nil
	}
	return t.elem
}

var builtinKinds = map[string]introspection.Kind{
	"bool":    introspection.KindBool,
	"int":     introspection.KindInt,
	"int8":    introspection.KindInt,
	"int16":   introspection.KindInt,
	"int32":   introspection.KindInt,
	"int64":   introspection.KindInt,
	"uint":    introspection.KindInt,
	"uint8":   introspection.KindInt,
	"uint16":  introspection.KindInt,
	"uint32":  introspection.KindInt,
	"uint64":  introspection.KindInt,
	"byte":    introspection.KindInt,
	"rune":    introspection.KindInt,
	"float32": introspection.KindFloat,
	"float64": introspection.KindFloat,
	"string":  introspection.KindString,
	"any":     introspection.KindInterface,
	"error":   introspection.KindInterface,
}

var declaredKinds = map[string]introspection.Kind{
	"":          introspection.KindStruct,
	"struct":    introspection.KindStruct,
	"interface": introspection.KindInterface,
	"other":     introspection.KindOther,
}

// Catalog is an immutable set of declared types. It implements
// introspection.TypeSystem.
type Catalog struct {
	types     map[string]*schemaType
	declared  []*schemaType
	members   map[*schemaType][]*introspection.Member
	supers    map[*schemaType]*schemaType
	ifaces    map[*schemaType][]*schemaType
	caps      map[*schemaType]map[string]bool
	providers map[string]*ProviderSpec
}

// Load reads and parses the catalog at path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes, validates and links a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(&f)
}

// New validates f and links every reference it contains
func New(f *File) (*Catalog, error) {
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		types:     make(map[string]*schemaType),
		members:   make(map[*schemaType][]*introspection.Member),
		supers:    make(map[*schemaType]*schemaType),
		ifaces:    make(map[*schemaType][]*schemaType),
		caps:      make(map[*schemaType]map[string]bool),
		providers: make(map[string]*ProviderSpec),
	}
	for name, kind := range builtinKinds {
		c.types[name] = &schemaType{name: name, kind: kind}
	}

	// declare every type before resolving references so order does not matter
	for i := range f.Types {
		spec := &f.Types[i]
		if _, exists := c.types[spec.Name]; exists {
			return nil, fmt.Errorf("type %s declared twice", spec.Name)
		}
		t := &schemaType{name: spec.Name, kind: declaredKinds[spec.Kind]}
		c.types[spec.Name] = t
		c.declared = append(c.declared, t)
	}

	for i := range f.Types {
		spec := &f.Types[i]
		t := c.types[spec.Name]
		if spec.Super != "" {
			super, err := c.resolve(spec.Super)
			if err != nil {
				return nil, fmt.Errorf("type %s: supertype: %w", spec.Name, err)
			}
			c.supers[t] = super
		}
		for _, name := range spec.Implements {
			iface, err := c.resolve(name)
			if err != nil {
				return nil, fmt.Errorf("type %s: implements: %w", spec.Name, err)
			}
			c.ifaces[t] = append(c.ifaces[t], iface)
		}
		if len(spec.Capabilities) > 0 {
			c.caps[t] = make(map[string]bool, len(spec.Capabilities))
			for _, capability := range spec.Capabilities {
				c.caps[t][capability] = true
			}
		}
		for _, ms := range spec.Members {
			m, err := c.member(t, ms)
			if err != nil {
				return nil, fmt.Errorf("type %s: member %s: %w", spec.Name, ms.Name, err)
			}
			c.members[t] = append(c.members[t], m)
		}
	}

	for i := range f.Providers {
		spec := &f.Providers[i]
		if _, exists := c.providers[spec.Name]; exists {
			return nil, fmt.Errorf("provider %s declared twice", spec.Name)
		}
		if spec.Subject != "" {
			if _, err := c.resolve(spec.Subject); err != nil {
				return nil, fmt.Errorf("provider %s: subject: %w", spec.Name, err)
			}
		}
		c.providers[spec.Name] = spec
	}
	// every provider is built once up front so broken references fail the load
	for i := range f.Providers {
		if _, err := c.buildProvider(&f.Providers[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) member(owner *schemaType, spec MemberSpec) (*introspection.Member, error) {
	m := &introspection.Member{
		Owner:    owner,
		Name:     spec.Name,
		Errors:   append([]string(nil), spec.Errors...),
		Exported: !spec.Unexported,
		Static:   spec.Static,
	}
	for _, p := range spec.Params {
		t, err := c.resolve(p)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, t)
	}
	if spec.Result != "" {
		t, err := c.resolve(spec.Result)
		if err != nil {
			return nil, err
		}
		m.Result = t
	}
	return m, nil
}

// resolve finds a named type, creating slice and map types on demand
func (c *Catalog) resolve(name string) (*schemaType, error) {
	name = strings.TrimSpace(name)
	if t, ok := c.types[name]; ok {
		return t, nil
	}
	switch {
	case strings.HasPrefix(name, "[]"):
		elem, err := c.resolve(name[2:])
		if err != nil {
			return nil, err
		}
		t := &schemaType{name: "[]" + elem.name, kind: introspection.KindSlice, elem: elem}
		c.types[t.name] = t
		return t, nil
	case strings.HasPrefix(name, "map["):
		t := &schemaType{name: name, kind: introspection.KindMap}
		c.types[name] = t
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Lookup returns the type with the given qualified name
func (c *Catalog) Lookup(name string) (introspection.Type, bool) {
	t, ok := c.types[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// TypeNames lists the declared (non-builtin) types in sorted order
func (c *Catalog) TypeNames() []string {
	names := make([]string, len(c.declared))
	for i, t := range c.declared {
		names[i] = t.name
	}
	sort.Strings(names)
	return names
}

// ProviderNames lists the declared providers in sorted order
func (c *Catalog) ProviderNames() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
