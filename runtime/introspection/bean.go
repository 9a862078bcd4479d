package introspection

// BeanDescriptor describes the subject type as a whole.
type BeanDescriptor struct {
	FeatureDescriptor

	subjectType    Type
	customizerType Type
}

// NewBeanDescriptor creates a descriptor named after the subject's simple name
func NewBeanDescriptor(subject Type, customizer Type) *BeanDescriptor {
	name := ""
	if subject != nil {
		name = subject.SimpleName()
	}
	return &BeanDescriptor{
		FeatureDescriptor: FeatureDescriptor{name: name},
		subjectType:       subject,
		customizerType:    customizer,
	}
}

// SubjectType returns the described type
func (b *BeanDescriptor) SubjectType() Type { return b.subjectType }

// CustomizerType returns the optional customizer type
func (b *BeanDescriptor) CustomizerType() Type { return b.customizerType }

// Clone returns a deep copy
func (b *BeanDescriptor) Clone() *BeanDescriptor {
	c := *b
	c.FeatureDescriptor = b.FeatureDescriptor.clone()
	return &c
}

func (b *BeanDescriptor) key() string { return b.name }

// combineBean merges x and y with y taking priority
func combineBean(x, y *BeanDescriptor) *BeanDescriptor {
	return &BeanDescriptor{
		FeatureDescriptor: combineFeature(&x.FeatureDescriptor, &y.FeatureDescriptor),
		subjectType:       pickType(x.subjectType, y.subjectType),
		customizerType:    pickType(x.customizerType, y.customizerType),
	}
}
