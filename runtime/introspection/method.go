package introspection

// ParameterDescriptor carries optional metadata for one operation parameter.
type ParameterDescriptor struct {
	FeatureDescriptor
}

// NewParameterDescriptor creates a parameter descriptor
func NewParameterDescriptor(name string) *ParameterDescriptor {
	return &ParameterDescriptor{FeatureDescriptor: FeatureDescriptor{name: name}}
}

// Clone returns a deep copy
func (p *ParameterDescriptor) Clone() *ParameterDescriptor {
	return &ParameterDescriptor{FeatureDescriptor: p.FeatureDescriptor.clone()}
}

// MethodDescriptor describes a callable operation.
type MethodDescriptor struct {
	FeatureDescriptor

	member *Member
	params []*ParameterDescriptor
}

// NewMethodDescriptor wraps member as an operation named after it
func NewMethodDescriptor(member *Member) (*MethodDescriptor, error) {
	if member == nil || member.Name == "" {
		return nil, structuralError(CodeInvalidDescriptor, "", "operation requires a named member")
	}
	return &MethodDescriptor{
		FeatureDescriptor: FeatureDescriptor{name: member.Name},
		member:            member,
	}, nil
}

// Member returns the wrapped member
func (m *MethodDescriptor) Member() *Member { return m.member }

// ParameterDescriptors returns per-parameter metadata, or nil when none was supplied
func (m *MethodDescriptor) ParameterDescriptors() []*ParameterDescriptor {
	if m.params == nil {
		return nil
	}
	out := make([]*ParameterDescriptor, len(m.params))
	for i, p := range m.params {
		out[i] = p.Clone()
	}
	return out
}

// SetParameterDescriptors attaches per-parameter metadata
func (m *MethodDescriptor) SetParameterDescriptors(params []*ParameterDescriptor) {
	m.params = make([]*ParameterDescriptor, len(params))
	copy(m.params, params)
}

// Clone returns a deep copy that shares only the immutable member reference
func (m *MethodDescriptor) Clone() *MethodDescriptor {
	c := *m
	c.FeatureDescriptor = m.FeatureDescriptor.clone()
	c.params = m.ParameterDescriptors()
	return &c
}

// key qualifies the operation name with its parameter types so overloads
// never collapse into one entry.
func (m *MethodDescriptor) key() string {
	if m.member == nil {
		return m.name
	}
	return m.member.Signature()
}

// combineMethod merges x and y with y taking priority
func combineMethod(x, y *MethodDescriptor) *MethodDescriptor {
	params := y.params
	if params == nil {
		params = x.params
	}
	out := &MethodDescriptor{
		FeatureDescriptor: combineFeature(&x.FeatureDescriptor, &y.FeatureDescriptor),
		member:            pickMember(x.member, y.member),
	}
	if params != nil {
		out.params = make([]*ParameterDescriptor, len(params))
		copy(out.params, params)
	}
	return out
}
