package sdk

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ name string }

func (g greeter) PluginName() string { return "greeter" }

func TestTable_RegisterSampleAndConstructor(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Register("demo.Greeter", greeter{}))
	require.NoError(t, tbl.Register("demo.NewGreeter", func() *greeter { return &greeter{name: "made"} }))

	s, ok := tbl.Lookup("demo.Greeter")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(greeter{}), s.Type)
	assert.IsType(t, &greeter{}, s.New())

	c, ok := tbl.Lookup("demo.NewGreeter")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&greeter{}), c.Type)
	assert.Equal(t, "made", c.New().(*greeter).name)

	assert.Equal(t, []string{"demo.Greeter", "demo.NewGreeter"}, tbl.Names())
}

func TestTable_RegisterErrors(t *testing.T) {
	tbl := NewTable()
	assert.Error(t, tbl.Register("x", nil))
	assert.Error(t, tbl.Register("x", func(int) int { return 0 }))
	assert.Error(t, tbl.Register("", greeter{}))

	require.NoError(t, tbl.Register("x", greeter{}))
	assert.ErrorContains(t, tbl.Register("x", greeter{}), "already registered")
}

func TestTable_RegisterInterface(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterType("demo.Plugin", TypeOf[Plugin]()))
	s, ok := tbl.Lookup("demo.Plugin")
	require.True(t, ok)
	assert.Equal(t, reflect.Interface, s.Type.Kind())
	assert.Nil(t, s.New)
}

func TestTable_RegisterPointerSample(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Register("demo.Ptr", &greeter{name: "sample"}))
	s, ok := tbl.Lookup("demo.Ptr")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&greeter{}), s.Type)

	v, ok := s.New().(*greeter)
	require.True(t, ok)
	require.NotNil(t, v)
	assert.Equal(t, "greeter", v.PluginName())
}

func TestAlloc(t *testing.T) {
	assert.Equal(t, greeter{}, Alloc(reflect.TypeOf(greeter{})).Interface())

	pp, ok := Alloc(reflect.TypeOf((**greeter)(nil))).Interface().(**greeter)
	require.True(t, ok)
	require.NotNil(t, pp)
	assert.NotNil(t, *pp)
}

func TestTable_Provide(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Provide("metrics", "1.4.0"))
	require.NoError(t, tbl.Provide("metrics", "v2.0.1"))
	require.NoError(t, tbl.Provide("metrics", "1.4.0"))
	assert.Equal(t, []string{"1.4.0", "v2.0.1"}, tbl.Providers("metrics"))
	assert.Empty(t, tbl.Providers("absent"))

	assert.Error(t, tbl.Provide("metrics", "not-a-version"))
	assert.Error(t, tbl.Provide("", "1.0.0"))
}
