package introspection

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospectWidgetEndToEnd(t *testing.T) {
	f := newWidgetFixture()
	in := New(f.ts)

	info, err := in.Introspect(f.widget)
	require.NoError(t, err)

	props := info.PropertyDescriptors()
	require.Len(t, props, 1)
	assert.Equal(t, "color", props[0].Name())
	assert.False(t, props[0].IsBound())
	assert.False(t, props[0].IsIndexed())

	events := info.EventSetDescriptors()
	require.Len(t, events, 1)
	assert.Equal(t, "change", events[0].Name())
	assert.False(t, events[0].IsUnicast())

	assert.Equal(t, []string{"paint"}, names(info.MethodDescriptors()))
	assert.Equal(t, -1, info.DefaultPropertyIndex())
	assert.Equal(t, -1, info.DefaultEventIndex())

	bean := info.BeanDescriptor()
	assert.Equal(t, "Widget", bean.Name())
	assert.Equal(t, f.widget, bean.SubjectType())
}

func TestIntrospectIsCached(t *testing.T) {
	f := newWidgetFixture()
	in := New(f.ts)

	first, err := in.Introspect(f.widget)
	require.NoError(t, err)
	second, err := in.Introspect(f.widget)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, names(first.PropertyDescriptors()), names(second.PropertyDescriptors()))
	assert.Equal(t, 1, f.ts.memberCalls[f.widget])
	assert.Equal(t, 1, in.CacheLen())
}

func TestIntrospectResultIsImmutable(t *testing.T) {
	f := newWidgetFixture()
	in := New(f.ts)

	info, err := in.Introspect(f.widget)
	require.NoError(t, err)

	props := info.PropertyDescriptors()
	props[0].SetExpert(true)
	props[0].SetValue("k", "v")

	again, ok := info.Property("color")
	require.True(t, ok)
	assert.False(t, again.IsExpert())
	assert.Empty(t, again.AttributeNames())
}

func TestIntrospectExplicitProviderOverridesExpert(t *testing.T) {
	f := newWidgetFixture()
	f.ts.provider("acme.WidgetInfo", func() (any, error) {
		color, err := NewPropertyDescriptor("color", f.ts.members[f.widget][0], f.ts.members[f.widget][1])
		if err != nil {
			return nil, err
		}
		color.SetExpert(true)
		p := newStaticProvider()
		p.props = []*PropertyDescriptor{color}
		p.defaultProp = 0
		return p, nil
	})
	in := New(f.ts)

	info, err := in.Introspect(f.widget)
	require.NoError(t, err)

	color, ok := info.Property("color")
	require.True(t, ok)
	assert.True(t, color.IsExpert())
	assert.Equal(t, 0, info.DefaultPropertyIndex())

	// categories the provider left absent are still inferred
	assert.Equal(t, []string{"change"}, names(info.EventSetDescriptors()))
	assert.Equal(t, []string{"paint"}, names(info.MethodDescriptors()))
}

func TestIntrospectExplicitCategorySkipsInference(t *testing.T) {
	f := newWidgetFixture()
	f.ts.provider("acme.WidgetInfo", func() (any, error) {
		p := newStaticProvider()
		p.methods = []*MethodDescriptor{}
		return p, nil
	})
	in := New(f.ts)

	info, err := in.Introspect(f.widget)
	require.NoError(t, err)
	assert.Empty(t, info.MethodDescriptors())
	assert.Len(t, info.PropertyDescriptors(), 1)
}

func TestIntrospectInheritance(t *testing.T) {
	ts := newTestTypeSystem()
	base := ts.class("acme.Base", nil)
	ts.method(base, "getId", stringType)
	ts.method(base, "close", nil)
	derived := ts.class("acme.Derived", base)
	ts.method(derived, "setId", nil, stringType)
	ts.method(derived, "getName", stringType)
	ts.method(derived, "close", nil)
	ts.method(derived, "open", nil)

	in := New(ts)
	info, err := in.Introspect(derived)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, names(info.PropertyDescriptors()))
	id, _ := info.Property("id")
	assert.NotNil(t, id.ReadMethod())
	assert.NotNil(t, id.WriteMethod())

	ops := info.MethodDescriptors()
	assert.Equal(t, []string{"close", "open"}, names(ops))
	assert.Equal(t, derived, ops[0].Member().Owner, "the override wins")
}

func TestIntrospectStopTruncates(t *testing.T) {
	ts := newTestTypeSystem()
	root := ts.class("acme.Root", nil)
	ts.method(root, "getRoot", stringType)
	base := ts.class("acme.Base", root)
	ts.method(base, "getBase", stringType)
	derived := ts.class("acme.Derived", base)
	ts.method(derived, "getDerived", stringType)

	in := New(ts)

	full, err := in.Introspect(derived)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "base", "derived"}, names(full.PropertyDescriptors()))

	truncated, err := in.IntrospectStop(derived, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"derived"}, names(truncated.PropertyDescriptors()))

	fromRoot, err := in.IntrospectStop(derived, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "derived"}, names(fromRoot.PropertyDescriptors()))
}

func TestIntrospectStopMustBeAncestor(t *testing.T) {
	ts := newTestTypeSystem()
	base := ts.class("acme.Base", nil)
	derived := ts.class("acme.Derived", base)
	stranger := ts.class("acme.Stranger", nil)

	in := New(ts)
	_, err := in.IntrospectStop(derived, stranger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Zero(t, ts.memberCalls[derived], "fails before member enumeration")

	_, err = in.IntrospectStop(derived, derived)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = in.Introspect(nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestIntrospectHierarchyCycle(t *testing.T) {
	ts := newTestTypeSystem()
	a := ts.class("acme.A", nil)
	b := ts.class("acme.B", a)
	ts.supers[a] = b

	_, err := New(ts).Introspect(a)
	var ie *Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, CodeHierarchyCycle, ie.Code)
}

func TestIntrospectStructuralFailureIsNotCached(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "getFoo", ts.sliceOf(longType))
	ts.method(bean, "getFoo", intType, intType)

	in := New(ts)
	_, err := in.Introspect(bean)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructuralMismatch))

	var ie *Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "acme.Bean", ie.Subject)
	assert.Equal(t, 0, in.CacheLen())

	_, err = in.Introspect(bean)
	assert.Error(t, err)
}

func TestIntrospectFailureInSupertypeAborts(t *testing.T) {
	ts := newTestTypeSystem()
	base := ts.class("acme.Base", nil)
	ts.method(base, "getFoo", stringType)
	ts.method(base, "getBar", ts.sliceOf(longType))
	ts.method(base, "getBar", intType, intType)
	derived := ts.class("acme.Derived", base)

	_, err := New(ts).Introspect(derived)
	require.Error(t, err)
	var ie *Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "acme.Base", ie.Subject)
}

func TestProviderLookupOrder(t *testing.T) {
	t.Run("sibling provider first", func(t *testing.T) {
		f := newWidgetFixture()
		f.ts.provider("acme.WidgetInfo", func() (any, error) {
			p := newStaticProvider()
			p.bean = NewBeanDescriptor(nil, nil)
			p.bean.SetDisplayName("sibling")
			return p, nil
		})
		f.ts.provider("beaninfo.infos.WidgetInfo", func() (any, error) {
			p := newStaticProvider()
			p.bean = NewBeanDescriptor(nil, nil)
			p.bean.SetDisplayName("search path")
			return p, nil
		})

		info, err := New(f.ts).Introspect(f.widget)
		require.NoError(t, err)
		assert.Equal(t, "sibling", info.BeanDescriptor().DisplayName())
		assert.Equal(t, 0, f.ts.createdCount("beaninfo.infos.WidgetInfo"))
	})

	t.Run("self-reporting type", func(t *testing.T) {
		f := newWidgetFixture()
		f.ts.capability(f.widget, CapabilityBeanInfo)
		f.ts.provider("acme.Widget", func() (any, error) {
			p := newStaticProvider()
			p.events = []*EventSetDescriptor{}
			return p, nil
		})

		info, err := New(f.ts).Introspect(f.widget)
		require.NoError(t, err)
		assert.Empty(t, info.EventSetDescriptors())
	})

	t.Run("search path", func(t *testing.T) {
		f := newWidgetFixture()
		f.ts.provider("custom.infos.WidgetInfo", func() (any, error) {
			p := newStaticProvider()
			p.bean = NewBeanDescriptor(nil, nil)
			p.bean.SetHidden(true)
			return p, nil
		})

		in := New(f.ts, WithSearchPath([]string{"missing.infos", "custom.infos"}))
		info, err := in.Introspect(f.widget)
		require.NoError(t, err)
		assert.True(t, info.BeanDescriptor().IsHidden())
		assert.Equal(t, f.widget, info.BeanDescriptor().SubjectType())
	})

	t.Run("search path provider for another type is rejected", func(t *testing.T) {
		f := newWidgetFixture()
		other := f.ts.class("other.Widget", nil)
		f.ts.provider("custom.infos.WidgetInfo", func() (any, error) {
			p := newStaticProvider()
			p.bean = NewBeanDescriptor(other, nil)
			p.methods = []*MethodDescriptor{}
			return p, nil
		})

		in := New(f.ts, WithSearchPath([]string{"custom.infos"}))
		info, err := in.Introspect(f.widget)
		require.NoError(t, err)
		assert.Equal(t, []string{"paint"}, names(info.MethodDescriptors()))
	})

	t.Run("failures are swallowed", func(t *testing.T) {
		f := newWidgetFixture()
		f.ts.provider("acme.WidgetInfo", func() (any, error) {
			return nil, errors.New("constructor failed")
		})
		f.ts.provider("beaninfo.infos.WidgetInfo", func() (any, error) {
			panic("boom")
		})
		f.ts.provider("custom.infos.WidgetInfo", func() (any, error) {
			return "not a provider", nil
		})

		in := New(f.ts, WithSearchPath([]string{"beaninfo.infos", "custom.infos"}))
		info, err := in.Introspect(f.widget)
		require.NoError(t, err)
		assert.Equal(t, []string{"color"}, names(info.PropertyDescriptors()))
	})
}

func TestIntrospectFlags(t *testing.T) {
	ts := newTestTypeSystem()
	base := ts.class("acme.Base", nil)
	ts.method(base, "getId", stringType)
	derived := ts.class("acme.Derived", base)
	ts.method(derived, "getName", stringType)

	hideAll := func() (any, error) {
		p := newStaticProvider()
		p.props = []*PropertyDescriptor{}
		return p, nil
	}
	ts.provider("acme.BaseInfo", hideAll)
	ts.provider("acme.DerivedInfo", hideAll)

	in := New(ts)

	info, err := in.IntrospectFlags(derived, UseAllProviders)
	require.NoError(t, err)
	assert.Empty(t, info.PropertyDescriptors())

	info, err = in.IntrospectFlags(derived, IgnoreImmediateProvider)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, names(info.PropertyDescriptors()))

	info, err = in.IntrospectFlags(derived, IgnoreAllProviders)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, names(info.PropertyDescriptors()))
}

func TestDefaultIndexFromSupertype(t *testing.T) {
	ts := newTestTypeSystem()
	base := ts.class("acme.Base", nil)
	getA := ts.method(base, "getA", stringType)
	ts.method(base, "getB", stringType)
	derived := ts.class("acme.Derived", base)
	ts.method(derived, "getC", stringType)

	ts.provider("acme.BaseInfo", func() (any, error) {
		b, err := NewPropertyDescriptor("b", nil, nil)
		if err != nil {
			return nil, err
		}
		a, err := NewPropertyDescriptor("a", getA, nil)
		if err != nil {
			return nil, err
		}
		p := newStaticProvider()
		p.props = []*PropertyDescriptor{b, a}
		p.defaultProp = 0
		return p, nil
	})

	in := New(ts)
	baseInfo, err := in.Introspect(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(baseInfo.PropertyDescriptors()))
	assert.Equal(t, 0, baseInfo.DefaultPropertyIndex())

	info, err := in.Introspect(derived)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, names(info.PropertyDescriptors()))
	assert.Equal(t, 0, info.DefaultPropertyIndex())
}

func TestDefaultIndexDroppedWhenNotCarried(t *testing.T) {
	f := newWidgetFixture()
	f.ts.provider("acme.WidgetInfo", func() (any, error) {
		p := newStaticProvider()
		p.defaultEvent = 3
		return p, nil
	})

	info, err := New(f.ts).Introspect(f.widget)
	require.NoError(t, err)
	assert.Equal(t, -1, info.DefaultEventIndex(), "index outside the provider's own list is ignored")
}

func TestAdditionalProvidersPriority(t *testing.T) {
	f := newWidgetFixture()
	bundle := func(display string, expert bool) Provider {
		pd, _ := NewPropertyDescriptor("color", nil, nil)
		pd.SetDisplayName(display)
		pd.SetExpert(expert)
		p := newStaticProvider()
		p.props = []*PropertyDescriptor{pd}
		return p
	}
	f.ts.provider("acme.WidgetInfo", func() (any, error) {
		p := newStaticProvider()
		p.additional = []Provider{bundle("first", true), bundle("second", false)}
		return p, nil
	})

	info, err := New(f.ts).Introspect(f.widget)
	require.NoError(t, err)

	color, ok := info.Property("color")
	require.True(t, ok)
	assert.Equal(t, "second", color.DisplayName(), "later bundles win")
	assert.True(t, color.IsExpert())
	assert.NotNil(t, color.ReadMethod(), "local inference still applies on top")
}

func TestPropertyChangeSourceFromSupertype(t *testing.T) {
	ts := newTestTypeSystem()
	event := ts.class("beans.PropertyChangeEvent", nil)
	listener := ts.iface("beans.PropertyChangeListener", CapabilityEventListener)
	ts.method(listener, "propertyChange", nil, event)
	base := ts.class("acme.Base", nil)
	ts.method(base, "addPropertyChangeListener", nil, listener)
	ts.method(base, "removePropertyChangeListener", nil, listener)
	derived := ts.class("acme.Derived", base)
	ts.method(derived, "getTitle", stringType)

	info, err := New(ts).Introspect(derived)
	require.NoError(t, err)
	title, ok := info.Property("title")
	require.True(t, ok)
	assert.True(t, title.IsBound())
}

func TestConcurrentIntrospectionComputesOnce(t *testing.T) {
	f := newWidgetFixture()
	f.ts.provider("acme.WidgetInfo", func() (any, error) {
		return newStaticProvider(), nil
	})
	in := New(f.ts)

	var wg sync.WaitGroup
	results := make([]*BeanInfo, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := in.Introspect(f.widget)
			assert.NoError(t, err)
			results[i] = info
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, f.ts.createdCount("acme.WidgetInfo"))
}

func TestIntrospectSupertypeWithSameName(t *testing.T) {
	ts := newTestTypeSystem()
	base := ts.class("acme.W", nil)
	ts.method(base, "getAlpha", intType)
	derived := ts.class("acme.W", base)
	ts.method(derived, "getBeta", intType)
	in := New(ts)

	done := make(chan *BeanInfo, 1)
	go func() {
		info, err := in.Introspect(derived)
		assert.NoError(t, err)
		done <- info
	}()

	select {
	case info := <-done:
		require.NotNil(t, info)
		assert.Equal(t, []string{"alpha", "beta"}, names(info.PropertyDescriptors()))
		assert.Equal(t, 2, in.CacheLen())
	case <-time.After(2 * time.Second):
		t.Fatal("introspecting a type whose supertype shares its name did not return")
	}
}

func TestConcurrentIntrospectionOfNamesakes(t *testing.T) {
	ts := newTestTypeSystem()
	first := ts.class("acme.W", nil)
	ts.method(first, "getAlpha", intType)
	second := ts.class("acme.W", nil)
	ts.method(second, "getBeta", intType)

	// the first lookup of the shared provider name parks until released
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	ts.provider("acme.WInfo", func() (any, error) {
		parked := false
		once.Do(func() {
			parked = true
			close(started)
		})
		if parked {
			<-release
		}
		return newStaticProvider(), nil
	})
	in := New(ts)

	firstDone := make(chan *BeanInfo, 1)
	go func() {
		info, err := in.Introspect(first)
		assert.NoError(t, err)
		firstDone <- info
	}()
	<-started

	secondDone := make(chan *BeanInfo, 1)
	go func() {
		info, err := in.Introspect(second)
		assert.NoError(t, err)
		secondDone <- info
	}()

	var secondInfo *BeanInfo
	select {
	case secondInfo = <-secondDone:
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("a distinct type with the same name waited on another computation")
	}
	close(release)
	firstInfo := <-firstDone

	require.NotNil(t, secondInfo)
	require.NotNil(t, firstInfo)
	assert.Same(t, second, secondInfo.BeanDescriptor().SubjectType())
	assert.Equal(t, []string{"beta"}, names(secondInfo.PropertyDescriptors()))
	assert.Same(t, first, firstInfo.BeanDescriptor().SubjectType())
	assert.Equal(t, []string{"alpha"}, names(firstInfo.PropertyDescriptors()))
}

func TestIntrospectorMetrics(t *testing.T) {
	f := newWidgetFixture()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	in := New(f.ts, WithMetrics(metrics))

	_, err := in.Introspect(f.widget)
	require.NoError(t, err)
	_, err = in.Introspect(f.widget)
	require.NoError(t, err)
	_, err = in.IntrospectStop(f.widget, f.color)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.providersTotal.WithLabelValues("absent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failuresTotal.WithLabelValues("configuration")))
}

func TestSearchPathAccessors(t *testing.T) {
	original := SearchPath()
	defer SetSearchPath(original)

	assert.Equal(t, DefaultSearchPath, original)

	SetSearchPath([]string{"a.infos"})
	in := New(newTestTypeSystem())
	assert.Equal(t, []string{"a.infos"}, in.SearchPath())

	in.SetSearchPath([]string{"b.infos"})
	assert.Equal(t, []string{"b.infos"}, in.SearchPath())
	assert.Equal(t, []string{"a.infos"}, SearchPath())

	in.SetSearchPath(nil)
	assert.Empty(t, in.SearchPath(), "an explicit empty path disables search-path lookup")
}

func TestPackageLevelHelpers(t *testing.T) {
	previous := Default()
	defer SetDefault(previous)

	f := newWidgetFixture()
	SetDefault(nil)
	_, err := Introspect(f.widget)
	assert.True(t, errors.Is(err, ErrConfiguration))

	SetDefault(New(f.ts))
	info, err := Introspect(f.widget)
	require.NoError(t, err)
	assert.Len(t, info.PropertyDescriptors(), 1)

	_, err = IntrospectStop(f.widget, f.color)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
