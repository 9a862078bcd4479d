// Package introspection builds queryable descriptions of subject types:
// their properties, event sets and operations.
//
// # Overview
//
// A description (BeanInfo) combines two sources of metadata:
//
//   - explicit metadata authored by a companion Provider, located by naming
//     convention (<Type>Info next to the type, the type itself when it
//     reports the BeanInfo capability, or <entry>.<SimpleName>Info for each
//     search path entry)
//   - metadata inferred from the type's own members by naming and shape
//     conventions (get/set/is accessors, add/remove listener pairs)
//
// and folds in everything the type inherits. Explicit metadata for a
// category wins over inferred metadata, which wins over inherited metadata.
//
// # Type systems
//
// The package never inspects types itself. A host supplies a TypeSystem
// that enumerates declared members, reports supertypes and capabilities and
// instantiates providers by name.
//
// # Example Usage
//
//	in := introspection.New(ts, introspection.WithLogger(logger))
//	info, err := in.Introspect(widget)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, p := range info.PropertyDescriptors() {
//		fmt.Printf("%s: %s\n", p.Name(), p.PropertyType().Name())
//	}
//
// # Caching
//
// Results are cached per (subject, stop, flags) for the lifetime of the
// Introspector and are computed at most once per key, even under concurrent
// calls. There is no invalidation: a changed type definition requires a new
// Introspector.
package introspection
