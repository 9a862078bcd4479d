package introspection

import (
	"strings"
)

// PropertyDescriptor describes one externally visible property.
//
// An indexed property (IsIndexed) additionally carries accessors that take an
// integer index; when a plain accessor pair is present alongside them its
// type must be a sequence of the indexed element type.
type PropertyDescriptor struct {
	FeatureDescriptor

	read         *Member
	write        *Member
	propertyType Type
	bound        bool
	constrained  bool
	editorType   Type

	indexed      bool
	indexedRead  *Member
	indexedWrite *Member
	indexedType  Type
}

// NewPropertyDescriptor creates a non-indexed property from its accessors.
// Either accessor may be nil. The accessors must agree on the property type.
func NewPropertyDescriptor(name string, read, write *Member) (*PropertyDescriptor, error) {
	if name == "" {
		return nil, structuralError(CodeInvalidDescriptor, "", "property name must not be empty")
	}
	pd := &PropertyDescriptor{
		FeatureDescriptor: FeatureDescriptor{name: name},
		read:              read,
		write:             write,
	}
	if err := pd.resolveTypes(); err != nil {
		return nil, err
	}
	return pd, nil
}

// NewIndexedPropertyDescriptor creates an indexed property. Any accessor may
// be nil; the non-indexed pair, when present, must expose a sequence whose
// element type matches the indexed accessors.
func NewIndexedPropertyDescriptor(name string, read, write, indexedRead, indexedWrite *Member) (*PropertyDescriptor, error) {
	if name == "" {
		return nil, structuralError(CodeInvalidDescriptor, "", "property name must not be empty")
	}
	pd := &PropertyDescriptor{
		FeatureDescriptor: FeatureDescriptor{name: name},
		read:              read,
		write:             write,
		indexed:           true,
		indexedRead:       indexedRead,
		indexedWrite:      indexedWrite,
	}
	if err := pd.resolveTypes(); err != nil {
		return nil, err
	}
	return pd, nil
}

// ReadMethod returns the read accessor, or nil
func (p *PropertyDescriptor) ReadMethod() *Member { return p.read }

// WriteMethod returns the write accessor, or nil
func (p *PropertyDescriptor) WriteMethod() *Member { return p.write }

// PropertyType returns the type resolved from the accessors, or nil
func (p *PropertyDescriptor) PropertyType() Type { return p.propertyType }

// IsBound reports whether changes to the property fire change notifications
func (p *PropertyDescriptor) IsBound() bool { return p.bound }

// SetBound marks the property as bound
func (p *PropertyDescriptor) SetBound(bound bool) { p.bound = bound }

// IsConstrained reports whether changes to the property may be vetoed
func (p *PropertyDescriptor) IsConstrained() bool { return p.constrained }

// SetConstrained marks the property as constrained
func (p *PropertyDescriptor) SetConstrained(constrained bool) { p.constrained = constrained }

// EditorType returns the explicitly configured editor type, or nil
func (p *PropertyDescriptor) EditorType() Type { return p.editorType }

// SetEditorType overrides the editor type used for the property
func (p *PropertyDescriptor) SetEditorType(t Type) { p.editorType = t }

// IsIndexed reports whether this is an indexed property
func (p *PropertyDescriptor) IsIndexed() bool { return p.indexed }

// IndexedReadMethod returns the indexed read accessor, or nil
func (p *PropertyDescriptor) IndexedReadMethod() *Member { return p.indexedRead }

// IndexedWriteMethod returns the indexed write accessor, or nil
func (p *PropertyDescriptor) IndexedWriteMethod() *Member { return p.indexedWrite }

// IndexedPropertyType returns the element type of an indexed property, or nil
func (p *PropertyDescriptor) IndexedPropertyType() Type { return p.indexedType }

// Clone returns a deep copy that shares only the immutable member references
func (p *PropertyDescriptor) Clone() *PropertyDescriptor {
	c := *p
	c.FeatureDescriptor = p.FeatureDescriptor.clone()
	return &c
}

func (p *PropertyDescriptor) key() string { return p.name }

// resolveTypes checks every accessor's shape and derives propertyType and
// indexedType from them.
func (p *PropertyDescriptor) resolveTypes() error {
	var pt Type
	if r := p.read; r != nil {
		if r.Arity() != 0 {
			return structuralError(CodeAccessorShape, p.name, "read accessor "+r.Signature()+" must take no arguments")
		}
		if r.Result == nil {
			return structuralError(CodeAccessorShape, p.name, "read accessor "+r.Signature()+" must return a value")
		}
		pt = r.Result
	}
	if w := p.write; w != nil {
		if w.Arity() != 1 {
			return structuralError(CodeAccessorShape, p.name, "write accessor "+w.Signature()+" must take exactly one argument")
		}
		if pt != nil && !sameType(pt, w.Params[0]) {
			return mismatchError(CodeAccessorTypeMismatch, p.name, "read and write accessors disagree on the property type", pt, w.Params[0])
		}
		if pt == nil {
			pt = w.Params[0]
		}
	}
	p.propertyType = pt

	if !p.indexed {
		return nil
	}

	var it Type
	if r := p.indexedRead; r != nil {
		if r.Arity() != 1 || r.Params[0].Kind() != KindInt {
			return structuralError(CodeAccessorShape, p.name, "indexed read accessor "+r.Signature()+" must take a single integer index")
		}
		if r.Result == nil {
			return structuralError(CodeAccessorShape, p.name, "indexed read accessor "+r.Signature()+" must return a value")
		}
		it = r.Result
	}
	if w := p.indexedWrite; w != nil {
		if w.Arity() != 2 || w.Params[0].Kind() != KindInt {
			return structuralError(CodeAccessorShape, p.name, "indexed write accessor "+w.Signature()+" must take an integer index and a value")
		}
		if it != nil && !sameType(it, w.Params[1]) {
			return mismatchError(CodeAccessorTypeMismatch, p.name, "indexed read and write accessors disagree on the element type", it, w.Params[1])
		}
		if it == nil {
			it = w.Params[1]
		}
	}
	p.indexedType = it

	if pt != nil {
		if pt.Kind() != KindSlice {
			e := structuralError(CodeIndexedTypeMismatch, p.name, "non-indexed accessors of an indexed property must use a sequence type")
			e.Expected = "[]" + typeName(it)
			e.Actual = typeName(pt)
			return e
		}
		if it != nil && !sameType(pt.Elem(), it) {
			return mismatchError(CodeIndexedTypeMismatch, p.name, "sequence element type differs from the indexed element type", it, pt.Elem())
		}
	}
	return nil
}

// typesConflict reports whether x and y imply different property types.
// Unknown (nil) types never conflict.
func typesConflict(x, y *PropertyDescriptor) bool {
	if x.propertyType != nil && y.propertyType != nil && !sameType(x.propertyType, y.propertyType) {
		return true
	}
	if x.indexedType != nil && y.indexedType != nil && !sameType(x.indexedType, y.indexedType) {
		return true
	}
	return false
}

// combineProperty merges x and y with y taking priority. The result is
// indexed if either side is, and is re-validated as a whole.
func combineProperty(x, y *PropertyDescriptor) (*PropertyDescriptor, error) {
	out := &PropertyDescriptor{
		FeatureDescriptor: combineFeature(&x.FeatureDescriptor, &y.FeatureDescriptor),
		read:              pickReader(x.read, y.read),
		write:             pickMember(x.write, y.write),
		bound:             x.bound || y.bound,
		constrained:       x.constrained || y.constrained,
		editorType:        pickType(x.editorType, y.editorType),
		indexed:           x.indexed || y.indexed,
		indexedRead:       pickMember(x.indexedRead, y.indexedRead),
		indexedWrite:      pickMember(x.indexedWrite, y.indexedWrite),
	}
	if err := out.resolveTypes(); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeProperty is the property-category merge: a type change replaces the
// older entry outright, anything else combines.
func mergeProperty(x, y *PropertyDescriptor) (*PropertyDescriptor, error) {
	if typesConflict(x, y) {
		return y.Clone(), nil
	}
	return combineProperty(x, y)
}

// pickReader prefers y's reader, except that an is-prefixed boolean reader
// is kept over a get-prefixed one.
func pickReader(x, y *Member) *Member {
	if x == nil || y == nil {
		return pickMember(x, y)
	}
	if isBooleanReader(x) && !isBooleanReader(y) && y.Result != nil && y.Result.Kind() == KindBool {
		return x
	}
	return y
}

func isBooleanReader(m *Member) bool {
	return strings.HasPrefix(m.Name, isPrefix) && m.Result != nil && m.Result.Kind() == KindBool
}
