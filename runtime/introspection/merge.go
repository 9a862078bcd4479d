package introspection

// descriptor is implemented by every name-keyed descriptor category.
type descriptor[D any] interface {
	key() string
	Clone() D
}

// mergeFunc combines an existing entry x with an incoming entry y, y winning.
type mergeFunc[D any] func(x, y D) (D, error)

// always lifts a combine that cannot fail into a mergeFunc
func always[D any](combine func(x, y D) D) mergeFunc[D] {
	return func(x, y D) (D, error) {
		return combine(x, y), nil
	}
}

// descriptorTable is a name-keyed table that remembers insertion order.
type descriptorTable[D descriptor[D]] struct {
	order   []string
	entries map[string]D
	merge   mergeFunc[D]
}

func newDescriptorTable[D descriptor[D]](merge mergeFunc[D]) *descriptorTable[D] {
	return &descriptorTable[D]{
		entries: make(map[string]D),
		merge:   merge,
	}
}

// add inserts d, or merges it on top of the entry already stored under its key.
func (t *descriptorTable[D]) add(d D) error {
	k := d.key()
	old, exists := t.entries[k]
	if !exists {
		t.order = append(t.order, k)
		t.entries[k] = d.Clone()
		return nil
	}
	merged, err := t.merge(old, d)
	if err != nil {
		return err
	}
	t.entries[k] = merged
	return nil
}

func (t *descriptorTable[D]) addAll(ds []D) error {
	for _, d := range ds {
		if err := t.add(d); err != nil {
			return err
		}
	}
	return nil
}

func (t *descriptorTable[D]) lookup(key string) (D, bool) {
	d, ok := t.entries[key]
	return d, ok
}

func (t *descriptorTable[D]) len() int {
	return len(t.order)
}

// list returns the entries in stable insertion order
func (t *descriptorTable[D]) list() []D {
	out := make([]D, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.entries[k])
	}
	return out
}

// mergeCategory folds the layers of one descriptor category into a single
// ordered list. Priority ascends from inherited through each supplement to
// local and finally explicit. A non-nil explicit layer is authoritative:
// local inference is skipped for the category, inherited data is kept.
func mergeCategory[D descriptor[D]](merge mergeFunc[D], inherited []D, supplements [][]D, local, explicit []D) ([]D, error) {
	t := newDescriptorTable(merge)
	if err := t.addAll(inherited); err != nil {
		return nil, err
	}
	for _, s := range supplements {
		if err := t.addAll(s); err != nil {
			return nil, err
		}
	}
	if explicit == nil {
		if err := t.addAll(local); err != nil {
			return nil, err
		}
	} else if err := t.addAll(explicit); err != nil {
		return nil, err
	}
	return t.list(), nil
}

// Combine merges p with y, y taking priority on conflicts. Both sides must
// agree on the property type.
func (p *PropertyDescriptor) Combine(y *PropertyDescriptor) (*PropertyDescriptor, error) {
	return combineProperty(p, y)
}

// Combine merges e with y, y taking priority on conflicts
func (e *EventSetDescriptor) Combine(y *EventSetDescriptor) *EventSetDescriptor {
	return combineEventSet(e, y)
}

// Combine merges m with y, y taking priority on conflicts
func (m *MethodDescriptor) Combine(y *MethodDescriptor) *MethodDescriptor {
	return combineMethod(m, y)
}

// Combine merges b with y, y taking priority on conflicts
func (b *BeanDescriptor) Combine(y *BeanDescriptor) *BeanDescriptor {
	return combineBean(b, y)
}
