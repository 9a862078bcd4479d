package introspection

import (
	"strings"
)

// Kind classifies a Type for the shape checks performed by pattern matching.
type Kind int

const (
	// KindOther covers every type the engine does not need to distinguish
	KindOther Kind = iota
	// KindBool is a boolean type
	KindBool
	// KindInt is an integer type usable as an index
	KindInt
	// KindFloat is a floating point type
	KindFloat
	// KindString is a string type
	KindString
	// KindSlice is an ordered sequence; Elem returns the element type
	KindSlice
	// KindMap is a key/value type
	KindMap
	// KindInterface is a capability (interface-like) type
	KindInterface
	// KindStruct is a concrete composite type
	KindStruct
)

var kindNames = map[Kind]string{
	KindOther:     "other",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindSlice:     "slice",
	KindMap:       "map",
	KindInterface: "interface",
	KindStruct:    "struct",
}

// String returns the lower-case kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "other"
}

// Type is an opaque handle to a subject type supplied by a TypeSystem.
//
// Implementations must be comparable: the introspector uses Type values as
// map keys and compares them with ==. A TypeSystem must hand out the same
// Type value for the same underlying type for the lifetime of the process.
type Type interface {
	// Name returns the fully qualified name (e.g. "acme.widgets.Widget")
	Name() string
	// SimpleName returns the unqualified name (e.g. "Widget")
	SimpleName() string
	// Package returns the qualifier of Name, or "" for unqualified types
	Package() string
	// Kind classifies the type
	Kind() Kind
	// Elem returns the element type of a KindSlice type, or nil
	Elem() Type
}

// Member describes one callable member declared directly on a type.
type Member struct {
	// Owner is the type that declares the member
	Owner Type
	// Name is the member name as declared
	Name string
	// Params are the parameter types in order
	Params []Type
	// Result is the return type; nil means the member returns nothing
	Result Type
	// Errors lists the declared error kinds (e.g. "PropertyVeto")
	Errors []string
	// Exported reports whether the member is externally visible
	Exported bool
	// Static reports whether the member is bound to the type rather than an instance
	Static bool
}

// Arity returns the number of parameters.
func (m *Member) Arity() int {
	return len(m.Params)
}

// Declares reports whether kind is among the member's declared error kinds.
func (m *Member) Declares(kind string) bool {
	for _, e := range m.Errors {
		if e == kind {
			return true
		}
	}
	return false
}

// Signature renders the member as name(T1,T2).
func (m *Member) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(typeName(p))
	}
	b.WriteByte(')')
	return b.String()
}

// String implements fmt.Stringer
func (m *Member) String() string {
	if m == nil {
		return "<nil>"
	}
	sig := m.Signature()
	if m.Owner != nil {
		sig = m.Owner.Name() + "." + sig
	}
	if m.Result != nil {
		sig += " " + m.Result.Name()
	}
	return sig
}

// TypeSystem is the host-supplied adapter the engine reads type
// information through. It is consumed, never implemented, by this package.
type TypeSystem interface {
	// DeclaredMembers returns the members declared directly on t, excluding
	// inherited ones. Results must be stable for the process lifetime.
	DeclaredMembers(t Type) ([]*Member, error)
	// Supertype returns the direct supertype of t, or nil
	Supertype(t Type) Type
	// Implements reports whether t satisfies the named capability
	Implements(t Type, capability string) bool
	// InstantiateByName creates an instance of the named type, resolving the
	// name in the loading context of contextType.
	InstantiateByName(contextType Type, name string) (any, error)
}

// Well-known capability names, error kinds and naming markers.
const (
	// CapabilityEventListener marks callback interfaces usable as listeners
	CapabilityEventListener = "EventListener"
	// CapabilityBeanInfo marks types that act as their own explicit provider
	CapabilityBeanInfo = "BeanInfo"

	// ErrorKindPropertyVeto marks setters whose change may be vetoed
	ErrorKindPropertyVeto = "PropertyVeto"
	// ErrorKindTooManyListeners marks add-listener members that accept a single listener
	ErrorKindTooManyListeners = "TooManyListeners"

	// ListenerSuffix terminates listener capability names
	ListenerSuffix = "Listener"
	// EventMarker appears in the parameter type name of notification callbacks
	EventMarker = "Event"
	// PropertyChangeEvent is the reserved event-set name for generic change notification
	PropertyChangeEvent = "propertyChange"
	// ProviderSuffix is appended to a type name to locate its explicit provider
	ProviderSuffix = "Info"
)

// sameType reports whether a and b are the same handle. Names are not
// unique across a TypeSystem, so they are never compared.
func sameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func typeName(t Type) string {
	if t == nil {
		return "void"
	}
	return t.Name()
}
