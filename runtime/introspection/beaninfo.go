package introspection

// BeanInfo is the aggregate description of a subject type. It is built once
// per cache key and never modified; every accessor returns fresh copies so
// callers cannot mutate the cached value.
type BeanInfo struct {
	bean                 *BeanDescriptor
	properties           []*PropertyDescriptor
	defaultPropertyIndex int
	events               []*EventSetDescriptor
	defaultEventIndex    int
	methods              []*MethodDescriptor
}

// BeanDescriptor returns the description of the subject type itself
func (b *BeanInfo) BeanDescriptor() *BeanDescriptor {
	return b.bean.Clone()
}

// PropertyDescriptors returns the properties in stable order
func (b *BeanInfo) PropertyDescriptors() []*PropertyDescriptor {
	out := make([]*PropertyDescriptor, len(b.properties))
	for i, p := range b.properties {
		out[i] = p.Clone()
	}
	return out
}

// DefaultPropertyIndex returns the index of the default property, or -1
func (b *BeanInfo) DefaultPropertyIndex() int {
	return b.defaultPropertyIndex
}

// EventSetDescriptors returns the event sets in stable order
func (b *BeanInfo) EventSetDescriptors() []*EventSetDescriptor {
	out := make([]*EventSetDescriptor, len(b.events))
	for i, e := range b.events {
		out[i] = e.Clone()
	}
	return out
}

// DefaultEventIndex returns the index of the default event set, or -1
func (b *BeanInfo) DefaultEventIndex() int {
	return b.defaultEventIndex
}

// MethodDescriptors returns the operations in stable order
func (b *BeanInfo) MethodDescriptors() []*MethodDescriptor {
	out := make([]*MethodDescriptor, len(b.methods))
	for i, m := range b.methods {
		out[i] = m.Clone()
	}
	return out
}

// Property finds a property by name
func (b *BeanInfo) Property(name string) (*PropertyDescriptor, bool) {
	for _, p := range b.properties {
		if p.name == name {
			return p.Clone(), true
		}
	}
	return nil, false
}

// EventSet finds an event set by name
func (b *BeanInfo) EventSet(name string) (*EventSetDescriptor, bool) {
	for _, e := range b.events {
		if e.name == name {
			return e.Clone(), true
		}
	}
	return nil, false
}

// Methods returns every operation with the given name, overloads included
func (b *BeanInfo) Methods(name string) []*MethodDescriptor {
	var out []*MethodDescriptor
	for _, m := range b.methods {
		if m.name == name {
			out = append(out, m.Clone())
		}
	}
	return out
}

// indexOf resolves a name to its position in list, or -1.
func indexOf[D interface{ Name() string }](list []D, name string) int {
	if name == "" {
		return -1
	}
	for i, d := range list {
		if d.Name() == name {
			return i
		}
	}
	return -1
}
