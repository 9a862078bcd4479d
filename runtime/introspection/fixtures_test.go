package introspection

import (
	"errors"
	"strings"
	"sync"
)

// testType is a minimal comparable Type for tests.
type testType struct {
	name string
	kind Kind
	elem *testType
}

func (t *testType) Name() string { return t.name }

func (t *testType) SimpleName() string {
	if i := strings.LastIndex(t.name, "."); i >= 0 {
		return t.name[i+1:]
	}
	return t.name
}

func (t *testType) Package() string {
	if i := strings.LastIndex(t.name, "."); i >= 0 {
		return t.name[:i]
	}
	return ""
}

func (t *testType) Kind() Kind { return t.kind }

func (t *testType) Elem() Type {
	if t.elem == nil {
		return nil
	}
	return t.elem
}

var (
	boolType   = &testType{name: "bool", kind: KindBool}
	intType    = &testType{name: "int", kind: KindInt}
	longType   = &testType{name: "int64", kind: KindInt}
	stringType = &testType{name: "string", kind: KindString}
)

var errNoSuchType = errors.New("no such type")

// testTypeSystem is an in-memory TypeSystem with call counters.
type testTypeSystem struct {
	mu          sync.Mutex
	types       map[string]*testType
	slices      map[*testType]*testType
	members     map[Type][]*Member
	supers      map[Type]Type
	caps        map[Type]map[string]bool
	factories   map[string]func() (any, error)
	memberCalls map[Type]int
	created     map[string]int
}

func newTestTypeSystem() *testTypeSystem {
	return &testTypeSystem{
		types:       make(map[string]*testType),
		slices:      make(map[*testType]*testType),
		members:     make(map[Type][]*Member),
		supers:      make(map[Type]Type),
		caps:        make(map[Type]map[string]bool),
		factories:   make(map[string]func() (any, error)),
		memberCalls: make(map[Type]int),
		created:     make(map[string]int),
	}
}

// class declares a struct type with an optional supertype
func (ts *testTypeSystem) class(name string, super Type) *testType {
	t := &testType{name: name, kind: KindStruct}
	ts.types[name] = t
	if super != nil {
		ts.supers[t] = super
	}
	return t
}

// iface declares an interface type with the given capabilities
func (ts *testTypeSystem) iface(name string, caps ...string) *testType {
	t := &testType{name: name, kind: KindInterface}
	ts.types[name] = t
	for _, c := range caps {
		ts.capability(t, c)
	}
	return t
}

func (ts *testTypeSystem) capability(t Type, name string) {
	if ts.caps[t] == nil {
		ts.caps[t] = make(map[string]bool)
	}
	ts.caps[t][name] = true
}

func (ts *testTypeSystem) sliceOf(elem *testType) *testType {
	if s, ok := ts.slices[elem]; ok {
		return s
	}
	s := &testType{name: "[]" + elem.name, kind: KindSlice, elem: elem}
	ts.slices[elem] = s
	return s
}

// method declares an exported instance member on owner
func (ts *testTypeSystem) method(owner Type, name string, result Type, params ...Type) *Member {
	m := &Member{Owner: owner, Name: name, Result: result, Params: params, Exported: true}
	ts.members[owner] = append(ts.members[owner], m)
	return m
}

func (ts *testTypeSystem) provider(name string, factory func() (any, error)) {
	ts.factories[name] = factory
}

func (ts *testTypeSystem) DeclaredMembers(t Type) ([]*Member, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.memberCalls[t]++
	return ts.members[t], nil
}

func (ts *testTypeSystem) Supertype(t Type) Type {
	return ts.supers[t]
}

func (ts *testTypeSystem) Implements(t Type, capability string) bool {
	return ts.caps[t][capability]
}

func (ts *testTypeSystem) InstantiateByName(_ Type, name string) (any, error) {
	ts.mu.Lock()
	factory, ok := ts.factories[name]
	if ok {
		ts.created[name]++
	}
	ts.mu.Unlock()
	if !ok {
		return nil, errNoSuchType
	}
	return factory()
}

func (ts *testTypeSystem) createdCount(name string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.created[name]
}

// staticProvider returns fixed descriptors
type staticProvider struct {
	SimpleProvider
	bean         *BeanDescriptor
	props        []*PropertyDescriptor
	defaultProp  int
	events       []*EventSetDescriptor
	defaultEvent int
	methods      []*MethodDescriptor
	additional   []Provider
}

func newStaticProvider() *staticProvider {
	return &staticProvider{defaultProp: -1, defaultEvent: -1}
}

func (p *staticProvider) BeanDescriptor() *BeanDescriptor { return p.bean }
func (p *staticProvider) PropertyDescriptors() []*PropertyDescriptor { return p.props }
func (p *staticProvider) DefaultPropertyIndex() int { return p.defaultProp }
func (p *staticProvider) EventSetDescriptors() []*EventSetDescriptor { return p.events }
func (p *staticProvider) DefaultEventIndex() int { return p.defaultEvent }
func (p *staticProvider) MethodDescriptors() []*MethodDescriptor { return p.methods }
func (p *staticProvider) AdditionalProviders() []Provider { return p.additional }

// widgetFixture builds the canonical Widget type:
//
//	getColor() Color, setColor(Color), addChangeListener, removeChangeListener, paint()
type widgetFixture struct {
	ts       *testTypeSystem
	color    *testType
	listener *testType
	event    *testType
	widget   *testType
}

func newWidgetFixture() *widgetFixture {
	ts := newTestTypeSystem()
	f := &widgetFixture{ts: ts}
	f.color = ts.class("acme.Color", nil)
	f.event = ts.class("acme.ChangeEvent", nil)
	f.listener = ts.iface("acme.ChangeListener", CapabilityEventListener)
	ts.method(f.listener, "stateChanged", nil, f.event)
	f.widget = ts.class("acme.Widget", nil)
	ts.method(f.widget, "getColor", f.color)
	ts.method(f.widget, "setColor", nil, f.color)
	ts.method(f.widget, "addChangeListener", nil, f.listener)
	ts.method(f.widget, "removeChangeListener", nil, f.listener)
	ts.method(f.widget, "paint", nil)
	return f
}

func names[D interface{ Name() string }](list []D) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Name()
	}
	return out
}
