package args

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convert(t *testing.T, c Converter, raw string) (any, error) {
	t.Helper()
	return c.Convert(context.Background(), &Context{}, raw)
}

func TestBoolVocabulary(t *testing.T) {
	truthy := []string{"true", "TRUE", "Yes", "1", "on", "ON"}
	falsy := []string{"false", "False", "no", "NO", "0", "off", "Off"}

	for _, s := range truthy {
		v, err := convert(t, Bool, s)
		require.NoError(t, err, s)
		assert.Equal(t, true, v, s)
	}
	for _, s := range falsy {
		v, err := convert(t, Bool, s)
		require.NoError(t, err, s)
		assert.Equal(t, false, v, s)
	}
	for _, s := range []string{"maybe", "y", "enable", "", "2"} {
		_, err := convert(t, Bool, s)
		assert.ErrorIs(t, err, ErrBadArgument, s)
	}
}

func TestIntConverter(t *testing.T) {
	reg := NewRegistry()
	c := reg.Resolve(TypeOf[int]())

	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"-7", -7, true},
		{"+7", 7, true},
		{"007", 7, true},
		{"12abc", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"1_000", 0, false},
		{" 1", 0, false},
		{"0x10", 0, false},
	}
	for _, tt := range tests {
		v, err := c.Convert(context.Background(), &Context{}, tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrBadArgument, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, v, tt.in)
	}
}

func TestIntWidths(t *testing.T) {
	reg := NewRegistry()

	v, err := reg.Resolve(TypeOf[int8]()).Convert(context.Background(), &Context{}, "-128")
	require.NoError(t, err)
	assert.Equal(t, int8(-128), v)

	_, err = reg.Resolve(TypeOf[int8]()).Convert(context.Background(), &Context{}, "128")
	require.ErrorIs(t, err, ErrBadArgument)
	assert.Contains(t, err.Error(), "out of range")

	v, err = reg.Resolve(TypeOf[uint16]()).Convert(context.Background(), &Context{}, "+65535")
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), v)

	_, err = reg.Resolve(TypeOf[uint]()).Convert(context.Background(), &Context{}, "-1")
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestFloatConverter(t *testing.T) {
	c := NewRegistry().Resolve(TypeOf[float64]())

	v, err := c.Convert(context.Background(), &Context{}, "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	for _, bad := range []string{"NaN", "inf", "1e400", "x"} {
		_, err := c.Convert(context.Background(), &Context{}, bad)
		assert.ErrorIs(t, err, ErrBadArgument, bad)
	}
}

type port uint16

type upper string

func (upper) Convert(_ context.Context, _ *Context, raw string) (any, error) {
	return upper(strings.ToUpper(raw)), nil
}

type coords struct{ X, Y int }

func (*coords) Convert(_ context.Context, _ *Context, raw string) (any, error) {
	x, y, ok := strings.Cut(raw, ",")
	if !ok {
		return nil, errors.New("want x,y")
	}
	cx, err := strconv.Atoi(x)
	if err != nil {
		return nil, err
	}
	cy, err := strconv.Atoi(y)
	if err != nil {
		return nil, err
	}
	return coords{cx, cy}, nil
}

func TestResolveOrder(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()

	// named primitive
	v, err := reg.Resolve(TypeOf[port]()).Convert(ctx, &Context{}, "8080")
	require.NoError(t, err)
	assert.Equal(t, port(8080), v)

	// value receiver self-converter
	v, err = reg.Resolve(TypeOf[upper]()).Convert(ctx, &Context{}, "shout")
	require.NoError(t, err)
	assert.Equal(t, upper("SHOUT"), v)

	// pointer receiver self-converter, declared by value and by pointer
	v, err = reg.Resolve(TypeOf[coords]()).Convert(ctx, &Context{}, "1,2")
	require.NoError(t, err)
	assert.Equal(t, coords{1, 2}, v)
	v, err = reg.Resolve(TypeOf[*coords]()).Convert(ctx, &Context{}, "3,4")
	require.NoError(t, err)
	assert.Equal(t, coords{3, 4}, v)

	// unknown types pass through as text
	v, err = reg.Resolve(TypeOf[struct{ A int }]()).Convert(ctx, &Context{}, "as is")
	require.NoError(t, err)
	assert.Equal(t, "as is", v)

	// nil type is the raw string
	v, err = reg.Resolve(nil).Convert(ctx, &Context{}, `"kept"`)
	require.NoError(t, err)
	assert.Equal(t, `"kept"`, v)
}

func TestCustomOverridesBuiltin(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFunc(TypeOf[int](), func(context.Context, *Context, string) (any, error) {
		return -1, nil
	})

	v, err := reg.Resolve(TypeOf[int]()).Convert(context.Background(), &Context{}, "5")
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	// custom also wins over a self-declared converter
	reg.RegisterFunc(TypeOf[upper](), func(_ context.Context, _ *Context, raw string) (any, error) {
		return upper("custom:" + raw), nil
	})
	v, err = reg.Resolve(TypeOf[upper]()).Convert(context.Background(), &Context{}, "x")
	require.NoError(t, err)
	assert.Equal(t, upper("custom:x"), v)

	reg.Unregister(TypeOf[int]())
	v, err = reg.Resolve(TypeOf[int]()).Convert(context.Background(), &Context{}, "5")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestCustomOverridesEntity(t *testing.T) {
	type thing struct{}
	reg := NewRegistry()
	reg.RegisterEntity(TypeOf[*thing](), EntityGuild, EntityResolverFunc(
		func(context.Context, EntityKind, string, *Context) (any, error) { return "entity", nil }))

	v, err := reg.Resolve(TypeOf[*thing]()).Convert(context.Background(), &Context{}, "x")
	require.NoError(t, err)
	assert.Equal(t, "entity", v)

	reg.RegisterFunc(TypeOf[*thing](), func(context.Context, *Context, string) (any, error) { return "custom", nil })
	v, err = reg.Resolve(TypeOf[*thing]()).Convert(context.Background(), &Context{}, "x")
	require.NoError(t, err)
	assert.Equal(t, "custom", v)
}

func TestChoice(t *testing.T) {
	c := NewChoice("red", "green", "blue")

	v, err := c.Convert(context.Background(), &Context{}, "green")
	require.NoError(t, err)
	assert.Equal(t, "green", v)

	_, err = c.Convert(context.Background(), &Context{}, "GREEN")
	require.ErrorIs(t, err, ErrBadArgument)
	assert.Contains(t, err.Error(), `"red", "green", or "blue"`)

	c.IgnoreCase = true
	v, err = c.Convert(context.Background(), &Context{}, "GREEN")
	require.NoError(t, err)
	assert.Equal(t, "green", v)
}

func TestPointerToNamedPrimitive(t *testing.T) {
	reg := NewRegistry()

	v, err := convert(t, reg.Resolve(TypeOf[*port]()), "80")
	require.NoError(t, err)
	p, ok := v.(*port)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, port(80), *p)

	_, err = convert(t, reg.Resolve(TypeOf[*port]()), "70000")
	assert.ErrorIs(t, err, ErrBadArgument)

	v, err = convert(t, reg.Resolve(TypeOf[*int]()), "-3")
	require.NoError(t, err)
	assert.Equal(t, -3, *v.(*int))

	sig := NewBuilder().Param("port", TypeOf[*port](), Optional()).MustBuild()
	got, err := NewBinder(WithRegistry(reg)).Bind(context.Background(), sig, "8080", Origin{})
	require.NoError(t, err)
	bound, ok := Get[*port](got, "port")
	require.True(t, ok)
	assert.Equal(t, port(8080), *bound)
}
