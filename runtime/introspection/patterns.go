package introspection

import (
	"strings"
)

const (
	getPrefix    = "get"
	setPrefix    = "set"
	isPrefix     = "is"
	addPrefix    = "add"
	removePrefix = "remove"
)

// CandidateKind is the role a member plays according to the naming and
// shape conventions.
type CandidateKind int

const (
	// PlainOperation is a member with no accessor role
	PlainOperation CandidateKind = iota
	// ReadAccessor is get<X>() or a boolean is<X>()
	ReadAccessor
	// WriteAccessor is set<X>(v) returning nothing
	WriteAccessor
	// IndexedReadAccessor is get<X>(i int)
	IndexedReadAccessor
	// IndexedWriteAccessor is set<X>(i int, v) returning nothing
	IndexedWriteAccessor
	// AddListener is add<Name>Listener(l) returning nothing
	AddListener
	// RemoveListener is remove<Name>Listener(l) returning nothing
	RemoveListener
	// ListenerGetter is get<Name>Listeners() returning a sequence of listeners
	ListenerGetter
)

var candidateKindNames = [...]string{
	PlainOperation:       "operation",
	ReadAccessor:         "read",
	WriteAccessor:        "write",
	IndexedReadAccessor:  "indexed-read",
	IndexedWriteAccessor: "indexed-write",
	AddListener:          "add-listener",
	RemoveListener:       "remove-listener",
	ListenerGetter:       "listener-getter",
}

// String returns a short name for the kind
func (k CandidateKind) String() string {
	if int(k) < len(candidateKindNames) {
		return candidateKindNames[k]
	}
	return "unknown"
}

// Candidate is the classification of a single member.
type Candidate struct {
	Kind CandidateKind
	// Feature is the derived property name for accessor kinds, or the
	// listener name (e.g. "ChangeListener") for listener kinds.
	Feature string
	Member  *Member
}

// Classify assigns m its conventional role using only its name, arity and
// parameter/result types. It has no side effects and does not consult the
// type system; listener capability checks happen when pairs are formed.
func Classify(m *Member) Candidate {
	c := Candidate{Kind: PlainOperation, Member: m}
	name := m.Name

	switch {
	case hasFeaturePrefix(name, getPrefix):
		rest := name[len(getPrefix):]
		switch m.Arity() {
		case 0:
			if m.Result == nil {
				return c
			}
			if listener, ok := listenerGetterName(rest, m.Result); ok {
				c.Kind, c.Feature = ListenerGetter, listener
				return c
			}
			c.Kind, c.Feature = ReadAccessor, Decapitalize(rest)
		case 1:
			if m.Result != nil && isIndex(m.Params[0]) {
				c.Kind, c.Feature = IndexedReadAccessor, Decapitalize(rest)
			}
		}

	case hasFeaturePrefix(name, isPrefix):
		if m.Arity() == 0 && m.Result != nil && m.Result.Kind() == KindBool {
			c.Kind, c.Feature = ReadAccessor, Decapitalize(name[len(isPrefix):])
		}

	case hasFeaturePrefix(name, setPrefix):
		if m.Result != nil {
			return c
		}
		rest := name[len(setPrefix):]
		switch m.Arity() {
		case 1:
			c.Kind, c.Feature = WriteAccessor, Decapitalize(rest)
		case 2:
			if isIndex(m.Params[0]) {
				c.Kind, c.Feature = IndexedWriteAccessor, Decapitalize(rest)
			}
		}

	case hasFeaturePrefix(name, addPrefix):
		if listener, ok := registrationListener(m, addPrefix); ok {
			c.Kind, c.Feature = AddListener, listener
		}

	case hasFeaturePrefix(name, removePrefix):
		if listener, ok := registrationListener(m, removePrefix); ok {
			c.Kind, c.Feature = RemoveListener, listener
		}
	}
	return c
}

func hasFeaturePrefix(name, prefix string) bool {
	return len(name) > len(prefix) && strings.HasPrefix(name, prefix)
}

func isIndex(t Type) bool {
	return t != nil && t.Kind() == KindInt
}

// registrationListener matches add<L>/remove<L> where L ends in the listener
// suffix and names the single argument's type.
func registrationListener(m *Member, prefix string) (string, bool) {
	listener := m.Name[len(prefix):]
	if m.Arity() != 1 || m.Result != nil {
		return "", false
	}
	if len(listener) <= len(ListenerSuffix) || !strings.HasSuffix(listener, ListenerSuffix) {
		return "", false
	}
	if m.Params[0] == nil || !strings.HasSuffix(m.Params[0].Name(), listener) {
		return "", false
	}
	return listener, true
}

// listenerGetterName matches get<L>s() returning a sequence of L.
func listenerGetterName(rest string, result Type) (string, bool) {
	listener, ok := strings.CutSuffix(rest, "s")
	if !ok || !strings.HasSuffix(listener, ListenerSuffix) || len(listener) <= len(ListenerSuffix) {
		return "", false
	}
	if result.Kind() != KindSlice || result.Elem() == nil || !strings.HasSuffix(result.Elem().Name(), listener) {
		return "", false
	}
	return listener, true
}

// memberLister returns the members declared directly on a type.
type memberLister func(Type) ([]*Member, error)

// PatternMatcher turns a flat member list into candidate descriptors.
type PatternMatcher struct {
	types   TypeSystem
	members memberLister
}

// NewPatternMatcher creates a matcher that reads listener capabilities from ts
func NewPatternMatcher(ts TypeSystem) *PatternMatcher {
	return &PatternMatcher{types: ts, members: ts.DeclaredMembers}
}

// listenerPair is a matched add/remove registration couple.
type listenerPair struct {
	listener string
	add      *Member
	remove   *Member
	getter   *Member
}

// MemberScan is the classified view of one type's visible members.
type MemberScan struct {
	candidates []Candidate
	pairs      []listenerPair
	consumed   map[*Member]bool
}

// Candidates returns the classification of every scanned member
func (s *MemberScan) Candidates() []Candidate {
	out := make([]Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Scan classifies members and pairs listener registrations. members must
// already be restricted to visible, non-static members.
func (pm *PatternMatcher) Scan(members []*Member) *MemberScan {
	scan := &MemberScan{consumed: make(map[*Member]bool)}
	adds := make(map[string]*Member)
	removes := make(map[string]*Member)
	getters := make(map[string]*Member)
	var addOrder []string

	for _, m := range members {
		c := Classify(m)
		scan.candidates = append(scan.candidates, c)
		switch c.Kind {
		case AddListener:
			if _, dup := adds[c.Feature]; !dup {
				addOrder = append(addOrder, c.Feature)
			}
			adds[c.Feature] = m
		case RemoveListener:
			removes[c.Feature] = m
		case ListenerGetter:
			getters[c.Feature] = m
		case ReadAccessor, WriteAccessor, IndexedReadAccessor, IndexedWriteAccessor:
			scan.consumed[m] = true
		}
	}

	for _, listener := range addOrder {
		add := adds[listener]
		remove, ok := removes[listener]
		if !ok || !sameType(add.Params[0], remove.Params[0]) {
			continue
		}
		if !pm.types.Implements(add.Params[0], CapabilityEventListener) {
			continue
		}
		pair := listenerPair{listener: listener, add: add, remove: remove, getter: getters[listener]}
		scan.pairs = append(scan.pairs, pair)
		scan.consumed[add] = true
		scan.consumed[remove] = true
		if pair.getter != nil {
			scan.consumed[pair.getter] = true
		}
	}

	// a listener getter without a registration pair is an ordinary read accessor
	for i, c := range scan.candidates {
		if c.Kind == ListenerGetter && !scan.consumed[c.Member] {
			scan.candidates[i].Kind = ReadAccessor
			scan.candidates[i].Feature = Decapitalize(c.Member.Name[len(getPrefix):])
			scan.consumed[c.Member] = true
		}
	}
	return scan
}

// Events builds one event set per registration pair. The returned flag
// reports whether a generic property-change event set was among them.
func (pm *PatternMatcher) Events(scan *MemberScan) ([]*EventSetDescriptor, bool, error) {
	var (
		events       []*EventSetDescriptor
		changeSource bool
	)
	for _, pair := range scan.pairs {
		listenerType := pair.add.Params[0]
		callbacks, err := pm.listenerCallbacks(listenerType)
		if err != nil {
			return nil, false, err
		}
		name := Decapitalize(strings.TrimSuffix(pair.listener, ListenerSuffix))
		es, err := NewEventSetDescriptor(name, listenerType, callbacks, pair.add, pair.remove)
		if err != nil {
			return nil, false, err
		}
		es.SetUnicast(pair.add.Declares(ErrorKindTooManyListeners))
		es.SetGetListenerMethod(pair.getter)
		if name == PropertyChangeEvent {
			changeSource = true
		}
		events = append(events, es)
	}
	return events, changeSource, nil
}

// listenerCallbacks collects the listener capability's notification
// members, walking its supertypes so inherited callbacks are included.
func (pm *PatternMatcher) listenerCallbacks(listenerType Type) ([]*Member, error) {
	var callbacks []*Member
	seen := make(map[Type]bool)
	for t := listenerType; t != nil && !seen[t]; t = pm.types.Supertype(t) {
		seen[t] = true
		members, err := pm.members(t)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if !m.Exported || m.Static || m.Arity() != 1 || m.Params[0] == nil {
				continue
			}
			if strings.Contains(m.Params[0].Name(), EventMarker) {
				callbacks = append(callbacks, m)
			}
		}
	}
	return callbacks, nil
}

// Properties folds every accessor candidate into a per-name property table.
// When changeSource is set every discovered property is marked bound.
func (pm *PatternMatcher) Properties(scan *MemberScan, changeSource bool) ([]*PropertyDescriptor, error) {
	table := newDescriptorTable(mergeProperty)
	for _, c := range scan.candidates {
		var (
			pd  *PropertyDescriptor
			err error
		)
		switch c.Kind {
		case ReadAccessor:
			pd, err = NewPropertyDescriptor(c.Feature, c.Member, nil)
		case WriteAccessor:
			pd, err = NewPropertyDescriptor(c.Feature, nil, c.Member)
		case IndexedReadAccessor:
			pd, err = NewIndexedPropertyDescriptor(c.Feature, nil, nil, c.Member, nil)
		case IndexedWriteAccessor:
			pd, err = NewIndexedPropertyDescriptor(c.Feature, nil, nil, nil, c.Member)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		if (c.Kind == WriteAccessor || c.Kind == IndexedWriteAccessor) && c.Member.Declares(ErrorKindPropertyVeto) {
			pd.SetConstrained(true)
		}
		if changeSource {
			pd.SetBound(true)
		}
		if err := table.add(pd); err != nil {
			return nil, err
		}
	}
	return table.list(), nil
}

// Operations wraps every member not consumed as an accessor or listener
// registration. Overloads are kept apart by their signature.
func (pm *PatternMatcher) Operations(scan *MemberScan) ([]*MethodDescriptor, error) {
	table := newDescriptorTable(always(combineMethod))
	for _, c := range scan.candidates {
		if scan.consumed[c.Member] {
			continue
		}
		md, err := NewMethodDescriptor(c.Member)
		if err != nil {
			return nil, err
		}
		if err := table.add(md); err != nil {
			return nil, err
		}
	}
	return table.list(), nil
}
