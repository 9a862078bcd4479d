// Package reflectsys adapts Go's reflect package to introspection.TypeSystem.
//
// Go has no inheritance, so the first embedded struct field stands in for
// the supertype. Method names are decapitalized ("GetColor" becomes
// "getColor") so the accessor conventions apply to ordinary Go methods.
// Capabilities and explicit providers are registered by the host.
package reflectsys

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// ErrNotRegistered is returned by InstantiateByName for unknown names
var ErrNotRegistered = errors.New("no provider registered")

// ErrorDeclarer is implemented by types whose methods declare error kinds
// such as introspection.ErrorKindPropertyVeto. Keys are Go method names.
type ErrorDeclarer interface {
	DeclaredErrors() map[string][]string
}

var (
	errorType    = reflect.TypeFor[error]()
	declarerType = reflect.TypeFor[ErrorDeclarer]()
	providerType = reflect.TypeFor[introspection.Provider]()
)

// Matcher decides whether a Go type has a capability
type Matcher func(reflect.Type) bool

// Implementing matches types that implement iface, directly or through a
// pointer receiver.
func Implementing(iface reflect.Type) Matcher {
	return func(t reflect.Type) bool {
		if t.Implements(iface) {
			return true
		}
		return t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
	}
}

// Types matches exactly the listed types
func Types(types ...reflect.Type) Matcher {
	set := make(map[reflect.Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return func(t reflect.Type) bool { return set[t] }
}

// Factory creates a provider instance
type Factory func() (any, error)

// System is a TypeSystem over reflect.Type. It is safe for concurrent use;
// registrations are expected before the first introspection.
type System struct {
	mu        sync.RWMutex
	handles   map[reflect.Type]*goType
	caps      map[string][]Matcher
	factories map[string]Factory
}

var _ introspection.TypeSystem = (*System)(nil)

// New creates a System in which every type implementing
// introspection.Provider reports the BeanInfo capability.
func New() *System {
	s := &System{
		handles:   make(map[reflect.Type]*goType),
		caps:      make(map[string][]Matcher),
		factories: make(map[string]Factory),
	}
	s.RegisterCapability(introspection.CapabilityBeanInfo, Implementing(providerType))
	return s
}

// RegisterCapability adds a matcher for the named capability
func (s *System) RegisterCapability(name string, m Matcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps[name] = append(s.caps[name], m)
}

// RegisterProvider makes factory reachable under name through
// InstantiateByName. See ProviderName for the conventional name.
func (s *System) RegisterProvider(name string, factory Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[name] = factory
}

// TypeOf returns the handle for t. Pointer types share the handle of the
// type they point to.
func (s *System) TypeOf(t reflect.Type) introspection.Type {
	if t == nil {
		return nil
	}
	return s.handle(t)
}

// Of returns the handle for T
func Of[T any](s *System) introspection.Type {
	return s.TypeOf(reflect.TypeFor[T]())
}

// ProviderName returns the conventional sibling provider name for t,
// i.e. its qualified name followed by "Info".
func (s *System) ProviderName(t reflect.Type) string {
	return s.handle(t).Name() + introspection.ProviderSuffix
}

func (s *System) handle(t reflect.Type) *goType {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.mu.RLock()
	h, ok := s.handles[t]
	s.mu.RUnlock()
	if ok {
		return h
	}

	var elem *goType
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		elem = s.handle(t.Elem())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[t]; ok {
		return h
	}
	h = newGoType(t, elem)
	s.handles[t] = h
	return h
}

func (s *System) own(t introspection.Type) (*goType, bool) {
	h, ok := t.(*goType)
	if !ok || h == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return h, s.handles[h.rt] == h
}

// DeclaredMembers lists the exported methods of t that it does not share
// with its supertype.
func (s *System) DeclaredMembers(t introspection.Type) ([]*introspection.Member, error) {
	h, ok := s.own(t)
	if !ok {
		return nil, fmt.Errorf("type %s was not created by this system", t.Name())
	}

	methods, receiver := methodSet(h.rt)
	var inherited map[string]reflect.Type
	if super := supertype(h.rt); super != nil {
		superMethods, superReceiver := methodSet(super)
		inherited = make(map[string]reflect.Type, len(superMethods))
		for _, m := range superMethods {
			inherited[m.Name] = signature(m.Type, superReceiver)
		}
	}

	declared := declaredErrors(h.rt)
	members := make([]*introspection.Member, 0, len(methods))
	for _, m := range methods {
		if m.Name == "DeclaredErrors" && h.rt.Kind() != reflect.Interface {
			continue
		}
		sig := signature(m.Type, receiver)
		if st, ok := inherited[m.Name]; ok && st == sig {
			continue
		}
		members = append(members, s.member(h, m.Name, sig, declared[m.Name]))
	}
	return members, nil
}

func (s *System) member(owner *goType, name string, sig reflect.Type, errs []string) *introspection.Member {
	m := &introspection.Member{
		Owner:    owner,
		Name:     introspection.Decapitalize(name),
		Errors:   append([]string(nil), errs...),
		Exported: true,
	}
	for i := 0; i < sig.NumIn(); i++ {
		m.Params = append(m.Params, s.handle(sig.In(i)))
	}
	// a trailing error result is the Go way of failing and is not the
	// member's value
	results := sig.NumOut()
	if results > 0 && sig.Out(results-1) == errorType {
		results--
	}
	if results > 0 {
		m.Result = s.handle(sig.Out(0))
	}
	return m
}

// Supertype returns the first embedded struct field of t, or nil
func (s *System) Supertype(t introspection.Type) introspection.Type {
	h, ok := s.own(t)
	if !ok {
		return nil
	}
	if super := supertype(h.rt); super != nil {
		return s.handle(super)
	}
	return nil
}

// Implements reports whether any matcher registered for capability
// accepts t.
func (s *System) Implements(t introspection.Type, capability string) bool {
	h, ok := s.own(t)
	if !ok {
		return false
	}
	s.mu.RLock()
	matchers := s.caps[capability]
	s.mu.RUnlock()
	for _, m := range matchers {
		if m(h.rt) {
			return true
		}
	}
	return false
}

// InstantiateByName calls the factory registered under name. When name is
// the context type itself and that type implements introspection.Provider,
// a zero value of it is returned instead.
func (s *System) InstantiateByName(context introspection.Type, name string) (any, error) {
	s.mu.RLock()
	factory, ok := s.factories[name]
	s.mu.RUnlock()
	if ok {
		return factory()
	}
	if h, own := s.own(context); own && h.Name() == name {
		if v, ok := zeroProvider(h.rt); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
}

func zeroProvider(t reflect.Type) (any, bool) {
	if t.Kind() == reflect.Interface {
		return nil, false
	}
	if t.Implements(providerType) {
		return reflect.New(t).Elem().Interface(), true
	}
	if reflect.PointerTo(t).Implements(providerType) {
		return reflect.New(t).Interface(), true
	}
	return nil, false
}

// methodSet returns the exported methods callable on a value of t, and
// whether their reflect types carry a leading receiver parameter.
func methodSet(t reflect.Type) ([]reflect.Method, bool) {
	if t.Kind() == reflect.Interface {
		methods := make([]reflect.Method, t.NumMethod())
		for i := range methods {
			methods[i] = t.Method(i)
		}
		return methods, false
	}
	pt := reflect.PointerTo(t)
	methods := make([]reflect.Method, pt.NumMethod())
	for i := range methods {
		methods[i] = pt.Method(i)
	}
	return methods, true
}

// signature strips the receiver from a method type
func signature(ft reflect.Type, receiver bool) reflect.Type {
	if !receiver {
		return ft
	}
	in := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		in = append(in, ft.In(i))
	}
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	return reflect.FuncOf(in, out, ft.IsVariadic())
}

func supertype(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Struct || t.NumField() == 0 {
		return nil
	}
	f := t.Field(0)
	if !f.Anonymous {
		return nil
	}
	ft := f.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	if ft.Kind() != reflect.Struct {
		return nil
	}
	return ft
}

func declaredErrors(t reflect.Type) map[string][]string {
	if t.Kind() == reflect.Interface || !reflect.PointerTo(t).Implements(declarerType) {
		return nil
	}
	d, ok := reflect.New(t).Interface().(ErrorDeclarer)
	if !ok {
		return nil
	}
	return d.DeclaredErrors()
}
