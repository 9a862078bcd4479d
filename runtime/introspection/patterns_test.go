package introspection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanOf(ts *testTypeSystem, owner Type) (*PatternMatcher, *MemberScan) {
	pm := NewPatternMatcher(ts)
	return pm, pm.Scan(visible(ts.members[owner]))
}

func TestPatternMatcherWidget(t *testing.T) {
	f := newWidgetFixture()
	pm, scan := scanOf(f.ts, f.widget)

	events, changeSource, err := pm.Events(scan)
	require.NoError(t, err)
	assert.False(t, changeSource)
	require.Len(t, events, 1)
	assert.Equal(t, "change", events[0].Name())
	assert.False(t, events[0].IsUnicast())
	assert.True(t, events[0].IsInDefaultEventSet())
	require.Len(t, events[0].ListenerMethods(), 1)
	assert.Equal(t, "stateChanged", events[0].ListenerMethods()[0].Name)

	props, err := pm.Properties(scan, changeSource)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "color", props[0].Name())
	assert.Equal(t, f.color, props[0].PropertyType())
	assert.False(t, props[0].IsBound())
	assert.NotNil(t, props[0].ReadMethod())
	assert.NotNil(t, props[0].WriteMethod())

	ops, err := pm.Operations(scan)
	require.NoError(t, err)
	assert.Equal(t, []string{"paint"}, names(ops))
}

func TestPatternMatcherPropertyChangeMarksBound(t *testing.T) {
	ts := newTestTypeSystem()
	event := ts.class("beans.PropertyChangeEvent", nil)
	listener := ts.iface("beans.PropertyChangeListener", CapabilityEventListener)
	ts.method(listener, "propertyChange", nil, event)
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "getName", stringType)
	ts.method(bean, "addPropertyChangeListener", nil, listener)
	ts.method(bean, "removePropertyChangeListener", nil, listener)

	pm, scan := scanOf(ts, bean)
	events, changeSource, err := pm.Events(scan)
	require.NoError(t, err)
	assert.True(t, changeSource)
	assert.Equal(t, []string{PropertyChangeEvent}, names(events))

	props, err := pm.Properties(scan, changeSource)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.True(t, props[0].IsBound())
}

func TestPatternMatcherUnicast(t *testing.T) {
	for _, declared := range []bool{true, false} {
		ts := newTestTypeSystem()
		event := ts.class("acme.FooEvent", nil)
		listener := ts.iface("acme.FooListener", CapabilityEventListener)
		ts.method(listener, "fooHappened", nil, event)
		ts.method(listener, "helper", nil, stringType)
		bean := ts.class("acme.Bean", nil)
		add := ts.method(bean, "addFooListener", nil, listener)
		if declared {
			add.Errors = []string{ErrorKindTooManyListeners}
		}
		ts.method(bean, "removeFooListener", nil, listener)

		pm, scan := scanOf(ts, bean)
		events, _, err := pm.Events(scan)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "foo", events[0].Name())
		assert.Equal(t, declared, events[0].IsUnicast())
		assert.Len(t, events[0].ListenerMethods(), 1, "only members taking an event are callbacks")
	}
}

func TestPatternMatcherUnpairedListenerIsOperation(t *testing.T) {
	ts := newTestTypeSystem()
	listener := ts.iface("acme.FooListener", CapabilityEventListener)
	plain := ts.iface("acme.BarListener")
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "addFooListener", nil, listener)
	ts.method(bean, "addBarListener", nil, plain)
	ts.method(bean, "removeBarListener", nil, plain)

	pm, scan := scanOf(ts, bean)
	events, _, err := pm.Events(scan)
	require.NoError(t, err)
	assert.Empty(t, events, "no remove for Foo, no listener capability for Bar")

	ops, err := pm.Operations(scan)
	require.NoError(t, err)
	assert.Equal(t, []string{"addFooListener", "addBarListener", "removeBarListener"}, names(ops))
}

func TestPatternMatcherListenerGetter(t *testing.T) {
	f := newWidgetFixture()
	getter := f.ts.method(f.widget, "getChangeListeners", f.ts.sliceOf(f.listener))

	pm, scan := scanOf(f.ts, f.widget)
	events, _, err := pm.Events(scan)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Same(t, getter, events[0].GetListenerMethod())

	props, err := pm.Properties(scan, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"color"}, names(props))
}

func TestPatternMatcherConstrained(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "getLimit", intType)
	set := ts.method(bean, "setLimit", nil, intType)
	set.Errors = []string{ErrorKindPropertyVeto}
	ts.method(bean, "setOther", nil, intType)

	pm, scan := scanOf(ts, bean)
	props, err := pm.Properties(scan, false)
	require.NoError(t, err)
	require.Equal(t, []string{"limit", "other"}, names(props))
	assert.True(t, props[0].IsConstrained())
	assert.False(t, props[1].IsConstrained())
}

func TestPatternMatcherIndexedConsistency(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "getFoo", ts.sliceOf(intType))
	ts.method(bean, "getFoo", intType, intType)

	pm, scan := scanOf(ts, bean)
	props, err := pm.Properties(scan, false)
	require.NoError(t, err)
	require.Len(t, props, 1)
	foo := props[0]
	assert.Equal(t, "foo", foo.Name())
	assert.True(t, foo.IsIndexed())
	assert.Equal(t, intType, foo.IndexedPropertyType())
	assert.Equal(t, ts.sliceOf(intType), foo.PropertyType())

	ops, err := pm.Operations(scan)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestPatternMatcherIndexedElementMismatch(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "getFoo", ts.sliceOf(longType))
	ts.method(bean, "getFoo", intType, intType)

	pm, scan := scanOf(ts, bean)
	_, err := pm.Properties(scan, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructuralMismatch))
}

func TestPatternMatcherTypeChangeReplaces(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "getSize", intType)
	set := ts.method(bean, "setSize", nil, stringType)

	pm, scan := scanOf(ts, bean)
	props, err := pm.Properties(scan, false)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Nil(t, props[0].ReadMethod())
	assert.Same(t, set, props[0].WriteMethod())
}

func TestPatternMatcherBooleanReaders(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	is := ts.method(bean, "isOpen", boolType)
	ts.method(bean, "getOpen", boolType)
	ts.method(bean, "setOpen", nil, boolType)

	pm, scan := scanOf(ts, bean)
	props, err := pm.Properties(scan, false)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Same(t, is, props[0].ReadMethod())
	assert.Equal(t, boolType, props[0].PropertyType())
}

func TestPatternMatcherOverloads(t *testing.T) {
	ts := newTestTypeSystem()
	bean := ts.class("acme.Bean", nil)
	ts.method(bean, "draw", nil)
	ts.method(bean, "draw", nil, intType)
	ts.method(bean, "draw", nil, stringType)

	pm, scan := scanOf(ts, bean)
	ops, err := pm.Operations(scan)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, "draw(int)", ops[1].Member().Signature())
}
