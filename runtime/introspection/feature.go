package introspection

// Attributes is an insertion-ordered string-keyed map of extension values.
// The zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]any
}

// Get returns the value stored under key
func (a *Attributes) Get(key string) (any, bool) {
	if a == nil || a.values == nil {
		return nil, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Set stores value under key, keeping the original position of an existing key
func (a *Attributes) Set(key string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Keys returns the keys in insertion order
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of entries
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

func (a *Attributes) clone() *Attributes {
	if a == nil {
		return nil
	}
	c := &Attributes{}
	for _, k := range a.keys {
		c.Set(k, a.values[k])
	}
	return c
}

// mergeAttributes unions x and y, y's entries winning on key collision.
func mergeAttributes(x, y *Attributes) *Attributes {
	if x.Len() == 0 && y.Len() == 0 {
		return nil
	}
	out := x.clone()
	if out == nil {
		out = &Attributes{}
	}
	if y != nil {
		for _, k := range y.keys {
			out.Set(k, y.values[k])
		}
	}
	return out
}

// FeatureDescriptor holds the data common to every descriptor category.
// It is embedded by the concrete descriptors and never used on its own.
type FeatureDescriptor struct {
	name             string
	displayName      string
	shortDescription string
	expert           bool
	hidden           bool
	preferred        bool
	attributes       *Attributes
}

// Name returns the programmatic name; it is the lookup key within a category
func (f *FeatureDescriptor) Name() string {
	return f.name
}

// DisplayName returns the localized display name, defaulting to Name
func (f *FeatureDescriptor) DisplayName() string {
	if f.displayName == "" {
		return f.name
	}
	return f.displayName
}

// SetDisplayName sets the display name
func (f *FeatureDescriptor) SetDisplayName(name string) {
	f.displayName = name
}

// ShortDescription returns the short description, defaulting to DisplayName
func (f *FeatureDescriptor) ShortDescription() string {
	if f.shortDescription == "" {
		return f.DisplayName()
	}
	return f.shortDescription
}

// SetShortDescription sets the short description
func (f *FeatureDescriptor) SetShortDescription(text string) {
	f.shortDescription = text
}

// IsExpert reports whether the feature is intended for expert users
func (f *FeatureDescriptor) IsExpert() bool {
	return f.expert
}

// SetExpert marks the feature as expert-only
func (f *FeatureDescriptor) SetExpert(expert bool) {
	f.expert = expert
}

// IsHidden reports whether the feature is meant for tools rather than humans
func (f *FeatureDescriptor) IsHidden() bool {
	return f.hidden
}

// SetHidden marks the feature as hidden
func (f *FeatureDescriptor) SetHidden(hidden bool) {
	f.hidden = hidden
}

// IsPreferred reports whether the feature should be shown prominently
func (f *FeatureDescriptor) IsPreferred() bool {
	return f.preferred
}

// SetPreferred marks the feature as preferred
func (f *FeatureDescriptor) SetPreferred(preferred bool) {
	f.preferred = preferred
}

// Value returns the extension attribute stored under key
func (f *FeatureDescriptor) Value(key string) (any, bool) {
	return f.attributes.Get(key)
}

// SetValue stores an extension attribute, allocating the map on first use
func (f *FeatureDescriptor) SetValue(key string, value any) {
	if f.attributes == nil {
		f.attributes = &Attributes{}
	}
	f.attributes.Set(key, value)
}

// AttributeNames returns the extension attribute keys in insertion order
func (f *FeatureDescriptor) AttributeNames() []string {
	return f.attributes.Keys()
}

func (f FeatureDescriptor) clone() FeatureDescriptor {
	f.attributes = f.attributes.clone()
	return f
}

// combineFeature merges the common fields of x and y with y taking priority.
// Text fields follow "set wins"; flags are OR-ed; attributes are unioned.
func combineFeature(x, y *FeatureDescriptor) FeatureDescriptor {
	out := FeatureDescriptor{
		name:             pickString(x.name, y.name),
		displayName:      pickString(x.displayName, y.displayName),
		shortDescription: pickString(x.shortDescription, y.shortDescription),
		expert:           x.expert || y.expert,
		hidden:           x.hidden || y.hidden,
		preferred:        x.preferred || y.preferred,
		attributes:       mergeAttributes(x.attributes, y.attributes),
	}
	return out
}

func pickString(x, y string) string {
	if y != "" {
		return y
	}
	return x
}

func pickType(x, y Type) Type {
	if y != nil {
		return y
	}
	return x
}

func pickMember(x, y *Member) *Member {
	if y != nil {
		return y
	}
	return x
}
