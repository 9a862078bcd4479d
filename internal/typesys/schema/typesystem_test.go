package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

func propertyNames(info *introspection.BeanInfo) []string {
	var out []string
	for _, p := range info.PropertyDescriptors() {
		out = append(out, p.Name())
	}
	return out
}

func TestIntrospectCatalogComponent(t *testing.T) {
	c := loadWidgets(t)
	in := introspection.New(c)

	info, err := in.Introspect(mustLookup(t, c, "acme.Component"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "visible"}, propertyNames(info))
	visible, ok := info.Property("visible")
	require.True(t, ok)
	assert.Nil(t, visible.WriteMethod())
	assert.Equal(t, "bool", visible.PropertyType().Name())

	require.Len(t, info.MethodDescriptors(), 1)
	assert.Equal(t, "repaint", info.MethodDescriptors()[0].Name())
	assert.Empty(t, info.EventSetDescriptors())
}

func TestIntrospectCatalogWidget(t *testing.T) {
	c := loadWidgets(t)
	in := introspection.New(c)

	info, err := in.Introspect(mustLookup(t, c, "acme.Widget"))
	require.NoError(t, err)

	bean := info.BeanDescriptor()
	assert.Equal(t, "Widget", bean.Name())
	assert.Equal(t, "A paintable component", bean.ShortDescription())
	category, ok := bean.Value("category")
	require.True(t, ok)
	assert.Equal(t, "controls", category)

	assert.Equal(t, []string{"name", "visible", "color"}, propertyNames(info))
	assert.Equal(t, 2, info.DefaultPropertyIndex())

	name, _ := info.Property("name")
	assert.True(t, name.IsExpert())
	assert.NotNil(t, name.WriteMethod())
	color, _ := info.Property("color")
	assert.True(t, color.IsPreferred())

	change, ok := info.EventSet("change")
	require.True(t, ok)
	assert.Equal(t, "getChangeListeners()", change.GetListenerMethod().Signature())
	require.Len(t, change.ListenerMethods(), 1)
	assert.Equal(t, "stateChanged", change.ListenerMethods()[0].Name)

	methods := info.MethodDescriptors()
	require.Len(t, methods, 2)
	assert.Equal(t, "repaint", methods[0].Name())
	assert.Equal(t, "paint(acme.Color)", methods[1].Member().Signature())
	params := methods[1].ParameterDescriptors()
	require.Len(t, params, 1)
	assert.Equal(t, "background", params[0].Name())
}

func TestIntrospectCatalogSliderFromSearchPath(t *testing.T) {
	c := loadWidgets(t)
	in := introspection.New(c, introspection.WithSearchPath([]string{"beaninfo.infos"}))

	info, err := in.Introspect(mustLookup(t, c, "acme.Slider"))
	require.NoError(t, err)

	assert.True(t, info.BeanDescriptor().IsHidden())
	assert.Equal(t, "Slider", info.BeanDescriptor().Name())

	assert.Equal(t, []string{"name", "visible", "color", "value"}, propertyNames(info))
	assert.Equal(t, 2, info.DefaultPropertyIndex(), "default carried from the supertype")

	value, _ := info.Property("value")
	assert.Equal(t, "Current value", value.DisplayName())
	assert.True(t, value.IsConstrained())
	assert.Equal(t, "int", value.PropertyType().Name())
}

func TestIntrospectCatalogStop(t *testing.T) {
	c := loadWidgets(t)
	in := introspection.New(c)

	info, err := in.IntrospectStop(mustLookup(t, c, "acme.Widget"), mustLookup(t, c, "acme.Component"))
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "name"}, propertyNames(info))
	assert.Equal(t, 0, info.DefaultPropertyIndex())
}

func TestInstantiateByNameBuildsFreshProviders(t *testing.T) {
	c := loadWidgets(t)

	a, err := c.InstantiateByName(nil, "acme.WidgetInfo")
	require.NoError(t, err)
	b, err := c.InstantiateByName(nil, "acme.WidgetInfo")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	p, ok := a.(introspection.Provider)
	require.True(t, ok)
	assert.Nil(t, p.EventSetDescriptors(), "absent category keeps inference")
	assert.Equal(t, 0, p.DefaultPropertyIndex())

	_, err = c.InstantiateByName(nil, "acme.Missing")
	assert.ErrorIs(t, err, ErrUnknownType)
}
