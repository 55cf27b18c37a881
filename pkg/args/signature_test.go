package args

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShapes(t *testing.T) {
	sig, err := NewBuilder().
		Param("plain", intType).
		Param("maybe", intType, Optional()).
		Param("either", nil, OneOf(intType, stringType)).
		Param("lonely", nil, OneOf(boolType)).
		Param("untyped", nil).
		Param("rest", nil, Rest()).
		Build()
	require.NoError(t, err)
	require.Equal(t, 6, sig.Len())

	params := sig.Params()

	assert.Equal(t, ShapeSingle, params[0].Type.Shape)
	assert.False(t, params[0].Optional)

	assert.Equal(t, ShapeOptional, params[1].Type.Shape)
	assert.True(t, params[1].Optional)
	assert.Nil(t, params[1].Default)
	assert.Equal(t, "Optional[int]", params[1].Type.String())

	assert.Equal(t, ShapeUnion, params[2].Type.Shape)
	assert.Equal(t, "Union[int, string]", params[2].Type.String())

	assert.Equal(t, ShapeSingle, params[3].Type.Shape)
	assert.Equal(t, boolType, params[3].Type.Elem())

	assert.Nil(t, params[4].Type.Elem())
	assert.Equal(t, "string", params[4].Type.String())

	assert.Equal(t, Variadic, params[5].Kind)
}

func TestBuildDefaultMakesOptional(t *testing.T) {
	sig := NewBuilder().Param("n", intType, Default(5)).MustBuild()

	p := sig.Param(0)
	assert.True(t, p.Optional)
	assert.Equal(t, 5, p.Default)
	assert.Equal(t, ShapeSingle, p.Type.Shape)
}

func TestBuildParamsIsACopy(t *testing.T) {
	sig := NewBuilder().Param("a", intType).MustBuild()

	params := sig.Params()
	params[0].Name = "changed"
	assert.Equal(t, "a", sig.Param(0).Name)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		decls []ParamDecl
		param string
	}{
		{
			name:  "variadic not last",
			decls: []ParamDecl{{Name: "rest", Variadic: true}, {Name: "after"}},
			param: "rest",
		},
		{
			name:  "two variadics",
			decls: []ParamDecl{{Name: "a", Variadic: true}, {Name: "b", Variadic: true}},
			param: "a",
		},
		{
			name:  "variadic with default",
			decls: []ParamDecl{{Name: "rest", Variadic: true, Default: "x", HasDefault: true}},
			param: "rest",
		},
		{
			name:  "optional variadic",
			decls: []ParamDecl{{Name: "rest", Variadic: true, Optional: true}},
			param: "rest",
		},
		{
			name:  "duplicate name",
			decls: []ParamDecl{{Name: "a"}, {Name: "a"}},
			param: "a",
		},
		{
			name:  "missing name",
			decls: []ParamDecl{{Type: intType}},
		},
		{
			name:  "empty union",
			decls: []ParamDecl{{Name: "u", Union: []reflect.Type{}}},
			param: "u",
		},
		{
			name:  "greedy string",
			decls: []ParamDecl{{Name: "g", Greedy: true}},
			param: "g",
		},
		{
			name:  "optional greedy",
			decls: []ParamDecl{{Name: "g", Type: intType, Greedy: true, Optional: true}},
			param: "g",
		},
		{
			name:  "greedy and variadic",
			decls: []ParamDecl{{Name: "g", Type: intType, Greedy: true, Variadic: true}},
			param: "g",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Build(tt.decls)
			assert.Nil(t, sig)

			var sigErr *SignatureError
			require.ErrorAs(t, err, &sigErr)
			assert.Equal(t, tt.param, sigErr.Param)
			assert.NotEmpty(t, sigErr.Reason)
		})
	}
}

func TestMustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().Param("rest", nil, Rest()).Param("x", nil).MustBuild()
	})
}

func TestExtraPolicy(t *testing.T) {
	assert.Equal(t, ExtraInherit, NewBuilder().MustBuild().Extra())
	assert.Equal(t, ExtraReject, NewBuilder().RejectExtra().MustBuild().Extra())
	assert.Equal(t, ExtraIgnore, NewBuilder().IgnoreExtra().MustBuild().Extra())

	var nilSig *Signature
	assert.Equal(t, ExtraInherit, nilSig.Extra())
	assert.Zero(t, nilSig.Len())
}
