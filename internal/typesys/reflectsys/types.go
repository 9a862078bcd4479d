package reflectsys

import (
	"reflect"
	"strconv"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// goType is the interned handle of one reflect.Type
type goType struct {
	rt   reflect.Type
	name string
	kind introspection.Kind
	elem *goType
}

func newGoType(rt reflect.Type, elem *goType) *goType {
	h := &goType{rt: rt, kind: kindOf(rt), elem: elem}
	switch {
	case elem != nil && rt.Name() == "":
		h.name = h.elemPrefix() + elem.name
	case rt.Name() != "" && rt.PkgPath() != "":
		h.name = rt.PkgPath() + "." + rt.Name()
	default:
		h.name = rt.String()
	}
	return h
}

func (t *goType) Name() string { return t.name }

func (t *goType) SimpleName() string {
	if t.elem != nil && t.rt.Name() == "" {
		return t.elemPrefix() + t.elem.SimpleName()
	}
	if t.rt.Name() != "" {
		return t.rt.Name()
	}
	return t.name
}

// elemPrefix is "[]" for slices and "[N]" for arrays
func (t *goType) elemPrefix() string {
	if t.rt.Kind() == reflect.Array {
		return "[" + strconv.Itoa(t.rt.Len()) + "]"
	}
	return "[]"
}

func (t *goType) Package() string { return t.rt.PkgPath() }

func (t *goType) Kind() introspection.Kind { return t.kind }

func (t *goType) Elem() introspection.Type {
	if t.elem == nil {
		return nil
	}
	return t.elem
}

// Reflect returns the underlying reflect.Type
func (t *goType) Reflect() reflect.Type { return t.rt }

func kindOf(rt reflect.Type) introspection.Kind {
	switch rt.Kind() {
	case reflect.Bool:
		return introspection.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return introspection.KindInt
	case reflect.Float32, reflect.Float64:
		return introspection.KindFloat
	case reflect.String:
		return introspection.KindString
	case reflect.Slice, reflect.Array:
		return introspection.KindSlice
	case reflect.Map:
		return introspection.KindMap
	case reflect.Interface:
		return introspection.KindInterface
	case reflect.Struct:
		return introspection.KindStruct
	}
	return introspection.KindOther
}
