package introspection

import (
	"sync/atomic"
)

// defaultIntrospector is the process-wide instance used by the package
// level helpers. It is installed once by the host at startup.
var defaultIntrospector atomic.Pointer[Introspector]

// SetDefault installs in as the process-wide introspector
func SetDefault(in *Introspector) {
	defaultIntrospector.Store(in)
}

// Default returns the process-wide introspector, or nil if none is installed
func Default() *Introspector {
	return defaultIntrospector.Load()
}

// Introspect describes subject using the process-wide introspector
func Introspect(subject Type) (*BeanInfo, error) {
	in := Default()
	if in == nil {
		return nil, configurationError(CodeNoDefault, subject, "no default introspector installed").
			WithSuggestion("call introspection.SetDefault at startup")
	}
	return in.Introspect(subject)
}

// IntrospectStop describes subject up to (excluding) stop using the
// process-wide introspector
func IntrospectStop(subject, stop Type) (*BeanInfo, error) {
	in := Default()
	if in == nil {
		return nil, configurationError(CodeNoDefault, subject, "no default introspector installed").
			WithSuggestion("call introspection.SetDefault at startup")
	}
	return in.IntrospectStop(subject, stop)
}
