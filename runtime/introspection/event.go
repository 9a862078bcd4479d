package introspection

// EventSetDescriptor describes a group of notifications delivered to one
// listener capability, together with the members that register listeners.
type EventSetDescriptor struct {
	FeatureDescriptor

	listenerType      Type
	listenerMethods   []*Member
	addMethod         *Member
	removeMethod      *Member
	getListenerMethod *Member
	unicast           bool
	inDefaultSet      bool
}

// NewEventSetDescriptor creates an event set. add and remove must each take
// exactly one argument of the listener type.
func NewEventSetDescriptor(name string, listenerType Type, listenerMethods []*Member, add, remove *Member) (*EventSetDescriptor, error) {
	if name == "" {
		return nil, structuralError(CodeInvalidDescriptor, "", "event set name must not be empty")
	}
	for _, m := range []*Member{add, remove} {
		if m == nil {
			continue
		}
		if m.Arity() != 1 {
			return nil, structuralError(CodeListenerShape, name, "listener registration member "+m.Signature()+" must take exactly one argument")
		}
		if listenerType != nil && !sameType(m.Params[0], listenerType) {
			return nil, mismatchError(CodeListenerShape, name, "listener registration member "+m.Signature()+" takes the wrong listener type", listenerType, m.Params[0])
		}
	}
	methods := make([]*Member, len(listenerMethods))
	copy(methods, listenerMethods)
	return &EventSetDescriptor{
		FeatureDescriptor: FeatureDescriptor{name: name},
		listenerType:      listenerType,
		listenerMethods:   methods,
		addMethod:         add,
		removeMethod:      remove,
		inDefaultSet:      true,
	}, nil
}

// ListenerType returns the listener capability type
func (e *EventSetDescriptor) ListenerType() Type { return e.listenerType }

// ListenerMethods returns the notification callbacks of the listener capability
func (e *EventSetDescriptor) ListenerMethods() []*Member {
	out := make([]*Member, len(e.listenerMethods))
	copy(out, e.listenerMethods)
	return out
}

// AddListenerMethod returns the registration member
func (e *EventSetDescriptor) AddListenerMethod() *Member { return e.addMethod }

// RemoveListenerMethod returns the deregistration member
func (e *EventSetDescriptor) RemoveListenerMethod() *Member { return e.removeMethod }

// GetListenerMethod returns the member listing registered listeners, or nil
func (e *EventSetDescriptor) GetListenerMethod() *Member { return e.getListenerMethod }

// SetGetListenerMethod records the member listing registered listeners
func (e *EventSetDescriptor) SetGetListenerMethod(m *Member) { e.getListenerMethod = m }

// IsUnicast reports whether the source accepts at most one listener
func (e *EventSetDescriptor) IsUnicast() bool { return e.unicast }

// SetUnicast marks the event set as unicast
func (e *EventSetDescriptor) SetUnicast(unicast bool) { e.unicast = unicast }

// IsInDefaultEventSet reports whether tools should offer the event set by default
func (e *EventSetDescriptor) IsInDefaultEventSet() bool { return e.inDefaultSet }

// SetInDefaultEventSet sets the default-set membership
func (e *EventSetDescriptor) SetInDefaultEventSet(in bool) { e.inDefaultSet = in }

// Clone returns a deep copy that shares only the immutable member references
func (e *EventSetDescriptor) Clone() *EventSetDescriptor {
	c := *e
	c.FeatureDescriptor = e.FeatureDescriptor.clone()
	c.listenerMethods = e.ListenerMethods()
	return &c
}

func (e *EventSetDescriptor) key() string { return e.name }

// combineEventSet merges x and y with y taking priority. Registration members
// and listener callbacks are taken from y when present.
func combineEventSet(x, y *EventSetDescriptor) *EventSetDescriptor {
	methods := y.listenerMethods
	if len(methods) == 0 {
		methods = x.listenerMethods
	}
	out := &EventSetDescriptor{
		FeatureDescriptor: combineFeature(&x.FeatureDescriptor, &y.FeatureDescriptor),
		listenerType:      pickType(x.listenerType, y.listenerType),
		addMethod:         pickMember(x.addMethod, y.addMethod),
		removeMethod:      pickMember(x.removeMethod, y.removeMethod),
		getListenerMethod: pickMember(x.getListenerMethod, y.getListenerMethod),
		unicast:           x.unicast || y.unicast,
		inDefaultSet:      x.inDefaultSet && y.inDefaultSet,
	}
	out.listenerMethods = make([]*Member, len(methods))
	copy(out.listenerMethods, methods)
	return out
}
