package introspection

// Provider supplies explicitly authored metadata for a subject type.
//
// A nil slice from any category method means the provider has no opinion on
// that category and local inference takes over; a non-nil (possibly empty)
// slice is authoritative. Default indices are -1 when unset.
type Provider interface {
	BeanDescriptor() *BeanDescriptor
	EventSetDescriptors() []*EventSetDescriptor
	DefaultEventIndex() int
	PropertyDescriptors() []*PropertyDescriptor
	DefaultPropertyIndex() int
	MethodDescriptors() []*MethodDescriptor
	// AdditionalProviders returns auxiliary bundles, lowest priority first
	AdditionalProviders() []Provider
}

// SimpleProvider is a Provider with no opinion on anything. Embed it to
// override only the categories a provider cares about.
type SimpleProvider struct{}

var _ Provider = SimpleProvider{}

func (SimpleProvider) BeanDescriptor() *BeanDescriptor { return nil }
func (SimpleProvider) EventSetDescriptors() []*EventSetDescriptor { return nil }
func (SimpleProvider) DefaultEventIndex() int { return -1 }
func (SimpleProvider) PropertyDescriptors() []*PropertyDescriptor { return nil }
func (SimpleProvider) DefaultPropertyIndex() int { return -1 }
func (SimpleProvider) MethodDescriptors() []*MethodDescriptor { return nil }
func (SimpleProvider) AdditionalProviders() []Provider { return nil }

// Flags control explicit-provider lookup for one introspection call.
type Flags int

const (
	// UseAllProviders consults explicit providers for the subject and every ancestor
	UseAllProviders Flags = iota
	// IgnoreImmediateProvider skips the subject's own provider but consults ancestors'
	IgnoreImmediateProvider
	// IgnoreAllProviders relies on inference alone for the whole hierarchy
	IgnoreAllProviders
)

// String returns the flag name
func (f Flags) String() string {
	switch f {
	case UseAllProviders:
		return "use-all"
	case IgnoreImmediateProvider:
		return "ignore-immediate"
	case IgnoreAllProviders:
		return "ignore-all"
	}
	return "unknown"
}

// defaultName resolves a provider's default index against its own list.
func defaultName[D interface{ Name() string }](list []D, index int) string {
	if index < 0 || index >= len(list) {
		return ""
	}
	return list[index].Name()
}
