package introspection

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultSearchPath is the initial process-wide provider search path.
var DefaultSearchPath = []string{"beaninfo.infos"}

var (
	searchPathMu sync.RWMutex
	searchPath   = append([]string(nil), DefaultSearchPath...)
)

// SearchPath returns a copy of the process-wide provider search path
func SearchPath() []string {
	searchPathMu.RLock()
	defer searchPathMu.RUnlock()
	return append([]string(nil), searchPath...)
}

// SetSearchPath replaces the process-wide provider search path. Introspectors
// created without WithSearchPath read it on every provider lookup.
func SetSearchPath(path []string) {
	searchPathMu.Lock()
	defer searchPathMu.Unlock()
	searchPath = append([]string(nil), path...)
}

// Option configures an Introspector
type Option func(*Introspector)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(in *Introspector) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithMetrics records cache and lookup counters on m
func WithMetrics(m *Metrics) Option {
	return func(in *Introspector) {
		in.metrics = m
	}
}

// WithSearchPath gives the introspector its own provider search path
// instead of the process-wide one.
func WithSearchPath(path []string) Option {
	return func(in *Introspector) {
		in.searchPath = append([]string{}, path...)
	}
}

// Introspector builds and caches aggregate descriptions of subject types.
// It is safe for concurrent use.
type Introspector struct {
	types   TypeSystem
	matcher *PatternMatcher
	results *resultCache
	members *memberCache
	logger  *zap.Logger
	metrics *Metrics

	// searchPath overrides the process-wide path when non-nil.
	// It is guarded by results.mu, the lock shared with cache access.
	searchPath []string
}

// New creates an Introspector reading type information from ts.
func New(ts TypeSystem, opts ...Option) *Introspector {
	in := &Introspector{
		types:   ts,
		results: newResultCache(),
		members: newMemberCache(ts),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.matcher = &PatternMatcher{types: ts, members: in.members.declared}
	return in
}

// SearchPath returns the provider search path in effect for this introspector
func (in *Introspector) SearchPath() []string {
	in.results.mu.RLock()
	defer in.results.mu.RUnlock()
	if in.searchPath == nil {
		return SearchPath()
	}
	return append([]string(nil), in.searchPath...)
}

// SetSearchPath overrides the provider search path for this introspector.
// Already cached results are not recomputed.
func (in *Introspector) SetSearchPath(path []string) {
	in.results.mu.Lock()
	defer in.results.mu.Unlock()
	in.searchPath = append([]string{}, path...)
}

// CacheLen returns the number of cached aggregates
func (in *Introspector) CacheLen() int {
	return in.results.len()
}

// Introspect returns the aggregate description of subject including
// everything it inherits.
func (in *Introspector) Introspect(subject Type) (*BeanInfo, error) {
	return in.IntrospectWith(subject, nil, UseAllProviders)
}

// IntrospectStop returns the aggregate description of subject, leaving out
// everything contributed solely by stop and its ancestors. stop must be an
// ancestor of subject.
func (in *Introspector) IntrospectStop(subject, stop Type) (*BeanInfo, error) {
	return in.IntrospectWith(subject, stop, UseAllProviders)
}

// IntrospectFlags returns the aggregate description of subject using the
// given provider lookup flags.
func (in *Introspector) IntrospectFlags(subject Type, flags Flags) (*BeanInfo, error) {
	return in.IntrospectWith(subject, nil, flags)
}

// IntrospectWith is the general form of Introspect. stop may be nil.
func (in *Introspector) IntrospectWith(subject, stop Type, flags Flags) (*BeanInfo, error) {
	if subject == nil {
		in.metrics.recordFailure("configuration")
		return nil, configurationError(CodeNilSubject, nil, "no subject type supplied")
	}
	if err := in.checkHierarchy(subject, stop); err != nil {
		in.metrics.recordFailure("configuration")
		return nil, err
	}
	bi, err := in.introspect(subject, stop, flags)
	if err != nil {
		in.metrics.recordFailure(failureKind(err))
		in.logger.Debug("introspection failed",
			zap.String("subject", subject.Name()),
			zap.Error(err))
		return nil, err
	}
	return bi, nil
}

// checkHierarchy walks the supertype chain once, rejecting cycles and a stop
// type that is not an ancestor of subject.
func (in *Introspector) checkHierarchy(subject, stop Type) error {
	seen := map[Type]bool{subject: true}
	foundStop := stop == nil
	for t := in.types.Supertype(subject); t != nil; t = in.types.Supertype(t) {
		if seen[t] {
			return configurationError(CodeHierarchyCycle, subject, "supertype chain revisits "+t.Name())
		}
		seen[t] = true
		if !foundStop && sameType(t, stop) {
			foundStop = true
		}
	}
	if !foundStop {
		return configurationError(CodeStopNotAncestor, subject, stop.Name()+" is not an ancestor").
			WithSuggestion("pass a supertype of " + subject.Name() + " or no stop type")
	}
	return nil
}

func (in *Introspector) introspect(subject, stop Type, flags Flags) (*BeanInfo, error) {
	key := cacheKey{subject: subject, stop: stop, flags: flags}
	bi, hit, err := in.results.getOrCompute(key, func() (*BeanInfo, error) {
		return in.build(subject, stop, flags)
	})
	if err != nil {
		return nil, err
	}
	in.metrics.recordCache(hit)
	if hit {
		in.logger.Debug("introspection cache hit", zap.String("subject", subject.Name()))
	}
	return bi, nil
}

// layers gathers the per-category inputs of one introspection pass.
type layers struct {
	provider    Provider
	supplements []Provider
	inherited   *BeanInfo
	scan        *MemberScan
}

func (in *Introspector) build(subject, stop Type, flags Flags) (*BeanInfo, error) {
	var l layers
	if flags == UseAllProviders {
		l.provider = in.findProvider(subject)
		if l.provider != nil {
			l.supplements = l.provider.AdditionalProviders()
		}
	}

	superFlags := flags
	if flags == IgnoreImmediateProvider {
		superFlags = UseAllProviders
	}
	if super := in.types.Supertype(subject); super != nil && !sameType(super, stop) {
		inherited, err := in.introspect(super, stop, superFlags)
		if err != nil {
			return nil, err
		}
		l.inherited = inherited
	}

	declared, err := in.members.declared(subject)
	if err != nil {
		return nil, fmt.Errorf("enumerate members of %s: %w", subject.Name(), err)
	}
	l.scan = in.matcher.Scan(visible(declared))

	bi, err := in.assemble(subject, &l)
	if err != nil {
		in.logger.Warn("introspection aborted",
			zap.String("subject", subject.Name()),
			zap.Error(err))
		return nil, attachSubject(err, subject)
	}
	in.logger.Debug("introspected",
		zap.String("subject", subject.Name()),
		zap.Int("properties", len(bi.properties)),
		zap.Int("events", len(bi.events)),
		zap.Int("operations", len(bi.methods)),
		zap.Bool("explicit", l.provider != nil))
	return bi, nil
}

// assemble merges every category. Events are resolved before properties
// because a property-change event set marks local properties as bound.
func (in *Introspector) assemble(subject Type, l *layers) (*BeanInfo, error) {
	bi := &BeanInfo{defaultPropertyIndex: -1, defaultEventIndex: -1}

	bean := NewBeanDescriptor(subject, nil)
	for _, p := range l.supplements {
		if bd := p.BeanDescriptor(); bd != nil {
			bean = combineBean(bean, bd)
		}
	}
	if l.provider != nil {
		if bd := l.provider.BeanDescriptor(); bd != nil {
			bean = combineBean(bean, bd)
		}
	}
	bi.bean = bean

	// events
	var explicitEvents, localEvents []*EventSetDescriptor
	if l.provider != nil {
		explicitEvents = l.provider.EventSetDescriptors()
	}
	if explicitEvents == nil {
		events, _, err := in.matcher.Events(l.scan)
		if err != nil {
			return nil, err
		}
		localEvents = events
	}
	supplementEvents := make([][]*EventSetDescriptor, len(l.supplements))
	for i, p := range l.supplements {
		supplementEvents[i] = p.EventSetDescriptors()
	}
	events, err := mergeCategory(always(combineEventSet), l.inherited.eventList(), supplementEvents, localEvents, explicitEvents)
	if err != nil {
		return nil, err
	}
	bi.events = events
	changeSource := indexOf(events, PropertyChangeEvent) >= 0

	// properties
	var explicitProps, localProps []*PropertyDescriptor
	if l.provider != nil {
		explicitProps = l.provider.PropertyDescriptors()
	}
	if explicitProps == nil {
		props, err := in.matcher.Properties(l.scan, changeSource)
		if err != nil {
			return nil, err
		}
		localProps = props
	}
	supplementProps := make([][]*PropertyDescriptor, len(l.supplements))
	for i, p := range l.supplements {
		supplementProps[i] = p.PropertyDescriptors()
	}
	props, err := mergeCategory(mergeProperty, l.inherited.propertyList(), supplementProps, localProps, explicitProps)
	if err != nil {
		return nil, err
	}
	bi.properties = props

	// operations
	var explicitMethods, localMethods []*MethodDescriptor
	if l.provider != nil {
		explicitMethods = l.provider.MethodDescriptors()
	}
	if explicitMethods == nil {
		methods, err := in.matcher.Operations(l.scan)
		if err != nil {
			return nil, err
		}
		localMethods = methods
	}
	supplementMethods := make([][]*MethodDescriptor, len(l.supplements))
	for i, p := range l.supplements {
		supplementMethods[i] = p.MethodDescriptors()
	}
	methods, err := mergeCategory(always(combineMethod), l.inherited.methodList(), supplementMethods, localMethods, explicitMethods)
	if err != nil {
		return nil, err
	}
	bi.methods = methods

	bi.defaultEventIndex = indexOf(bi.events, l.defaultEventName())
	bi.defaultPropertyIndex = indexOf(bi.properties, l.defaultPropertyName())
	return bi, nil
}

// defaultEventName picks the provider's default, then the highest priority
// supplement's, then the inherited one.
func (l *layers) defaultEventName() string {
	if l.provider != nil {
		if name := defaultName(l.provider.EventSetDescriptors(), l.provider.DefaultEventIndex()); name != "" {
			return name
		}
	}
	for i := len(l.supplements) - 1; i >= 0; i-- {
		p := l.supplements[i]
		if name := defaultName(p.EventSetDescriptors(), p.DefaultEventIndex()); name != "" {
			return name
		}
	}
	if l.inherited != nil {
		return defaultName(l.inherited.events, l.inherited.defaultEventIndex)
	}
	return ""
}

func (l *layers) defaultPropertyName() string {
	if l.provider != nil {
		if name := defaultName(l.provider.PropertyDescriptors(), l.provider.DefaultPropertyIndex()); name != "" {
			return name
		}
	}
	for i := len(l.supplements) - 1; i >= 0; i-- {
		p := l.supplements[i]
		if name := defaultName(p.PropertyDescriptors(), p.DefaultPropertyIndex()); name != "" {
			return name
		}
	}
	if l.inherited != nil {
		return defaultName(l.inherited.properties, l.inherited.defaultPropertyIndex)
	}
	return ""
}

// The inherited layer is read without copying; merging never mutates it.
func (b *BeanInfo) eventList() []*EventSetDescriptor {
	if b == nil {
		return nil
	}
	return b.events
}

func (b *BeanInfo) propertyList() []*PropertyDescriptor {
	if b == nil {
		return nil
	}
	return b.properties
}

func (b *BeanInfo) methodList() []*MethodDescriptor {
	if b == nil {
		return nil
	}
	return b.methods
}

// findProvider tries, in order, <subject>Info next to the subject, the
// subject itself when it reports the provider capability, and
// <entry>.<SimpleName>Info for every search path entry. Failures are
// swallowed and the next candidate is tried.
func (in *Introspector) findProvider(subject Type) Provider {
	if p, ok := in.instantiate(subject, subject.Name()+ProviderSuffix); ok {
		in.metrics.recordProvider(true)
		return p
	}
	if in.types.Implements(subject, CapabilityBeanInfo) {
		if p, ok := in.instantiate(subject, subject.Name()); ok {
			in.metrics.recordProvider(true)
			return p
		}
	}
	for _, entry := range in.SearchPath() {
		name := entry + "." + subject.SimpleName() + ProviderSuffix
		p, ok := in.instantiate(subject, name)
		if !ok {
			continue
		}
		// a search-path provider must not describe some other type of the same simple name
		if bd := p.BeanDescriptor(); bd != nil && bd.SubjectType() != nil && !sameType(bd.SubjectType(), subject) {
			in.logger.Debug("provider describes another type",
				zap.String("subject", subject.Name()),
				zap.String("candidate", name),
				zap.String("describes", bd.SubjectType().Name()))
			continue
		}
		in.metrics.recordProvider(true)
		return p
	}
	in.metrics.recordProvider(false)
	return nil
}

// instantiate asks the adapter for a provider instance, converting every
// failure, panics included, into "not found".
func (in *Introspector) instantiate(context Type, name string) (p Provider, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Debug("provider instantiation panicked",
				zap.String("candidate", name),
				zap.Any("panic", r))
			p, ok = nil, false
		}
	}()
	v, err := in.types.InstantiateByName(context, name)
	if err != nil {
		in.logger.Debug("provider lookup failed",
			zap.String("candidate", name),
			zap.Error(err))
		return nil, false
	}
	p, ok = v.(Provider)
	if !ok {
		in.logger.Debug("candidate is not a provider",
			zap.String("candidate", name),
			zap.String("type", fmt.Sprintf("%T", v)))
		return nil, false
	}
	return p, true
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrStructuralMismatch):
		return "structural"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	}
	return "adapter"
}
