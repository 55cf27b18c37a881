package args

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	intType    = TypeOf[int]()
	stringType = TypeOf[string]()
	boolType   = TypeOf[bool]()
)

func bind(t *testing.T, sig *Signature, text string) (BoundArguments, error) {
	t.Helper()
	return NewBinder().Bind(context.Background(), sig, text, Origin{Command: "test", Message: "!test " + text})
}

func TestBindUnionLeftToRight(t *testing.T) {
	sig := NewBuilder().Param("v", nil, OneOf(intType, stringType)).MustBuild()

	got, err := bind(t, sig, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got["v"])

	got, err = bind(t, sig, "42")
	require.NoError(t, err)
	assert.Equal(t, 42, got["v"])
}

func TestBindUnionStopsAtFirstSuccess(t *testing.T) {
	var calls atomic.Int32
	counting := ConverterFunc(func(context.Context, *Context, string) (any, error) {
		calls.Add(1)
		return "second", nil
	})
	type marker struct{}
	reg := NewRegistry()
	reg.Register(TypeOf[marker](), counting)

	sig := NewBuilder().Param("v", nil, OneOf(intType, TypeOf[marker]())).MustBuild()
	got, err := NewBinder(WithRegistry(reg)).Bind(context.Background(), sig, "7", Origin{})

	require.NoError(t, err)
	assert.Equal(t, 7, got["v"])
	assert.Zero(t, calls.Load())
}

func TestBindUnionAllFail(t *testing.T) {
	sig := NewBuilder().Param("v", nil, OneOf(intType, boolType)).MustBuild()

	_, err := bind(t, sig, "maybe")
	require.Error(t, err)

	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "v", bindErr.Param)

	var unionErr *UnionConversionError
	require.ErrorAs(t, err, &unionErr)
	assert.Equal(t, "maybe", unionErr.Raw)
	assert.Len(t, unionErr.Types, 2)
	assert.Len(t, unionErr.Errs, 2)
	assert.ErrorIs(t, err, ErrBadArgument)
	assert.Contains(t, unionErr.Error(), "int or bool")
}

func TestBindOptionalFallback(t *testing.T) {
	sig := NewBuilder().
		Param("n", intType, Optional()).
		Param("word", nil).
		MustBuild()

	got, err := bind(t, sig, "abc def")
	require.NoError(t, err)
	assert.Contains(t, got, "n")
	assert.Nil(t, got["n"])
	assert.False(t, got.Has("n"))
	// the failed token is still consumed
	assert.Equal(t, "def", got["word"])
}

func TestBindOptionalWithDefault(t *testing.T) {
	sig := NewBuilder().Param("n", intType, Optional(), Default(10)).MustBuild()

	got, err := bind(t, sig, "abc")
	require.NoError(t, err)
	assert.Equal(t, 10, got["n"])

	got, err = bind(t, sig, "")
	require.NoError(t, err)
	assert.Equal(t, 10, got["n"])
}

func TestBindDefaultOnSingleType(t *testing.T) {
	sig := NewBuilder().Param("n", intType, Default(3)).MustBuild()

	got, err := bind(t, sig, "nope")
	require.NoError(t, err)
	assert.Equal(t, 3, got["n"])
}

func TestBindMissingRequired(t *testing.T) {
	sig := NewBuilder().Param("a", intType).Param("b", intType).MustBuild()

	_, err := bind(t, sig, "5")

	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "b", missing.Param)
}

func TestBindConversionFailed(t *testing.T) {
	sig := NewBuilder().Param("a", intType).MustBuild()

	got, err := bind(t, sig, "12abc")
	assert.Nil(t, got)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "a", convErr.Param)
	assert.Equal(t, "12abc", convErr.Raw)
	assert.Equal(t, intType, convErr.Type)
	assert.ErrorIs(t, err, ErrBadArgument)
}

func TestBindVariadicCollectsRawText(t *testing.T) {
	sig := NewBuilder().Param("a", intType).Param("rest", nil, Rest()).MustBuild()

	got, err := bind(t, sig, `5 hello   world`)
	require.NoError(t, err)
	assert.Equal(t, 5, got["a"])
	assert.Equal(t, "hello world", got["rest"])
}

func TestBindVariadicStripsQuotes(t *testing.T) {
	sig := NewBuilder().Param("rest", intType, Rest()).MustBuild()

	got, err := bind(t, sig, `1 "two three" 4`)
	require.NoError(t, err)
	// declared element type is not applied
	assert.Equal(t, "1 two three 4", got["rest"])
}

func TestBindVariadicNeedsInput(t *testing.T) {
	sig := NewBuilder().Param("rest", nil, Rest()).MustBuild()

	_, err := bind(t, sig, "")
	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "rest", missing.Param)
}

func TestBindSurplusTolerated(t *testing.T) {
	sig := NewBuilder().Param("a", intType).MustBuild()

	got, err := bind(t, sig, "5 6 7")
	require.NoError(t, err)
	assert.Equal(t, BoundArguments{"a": 5}, got)
}

func TestBindSurplusRejected(t *testing.T) {
	strict := NewBuilder().Param("a", intType).RejectExtra().MustBuild()

	_, err := bind(t, strict, "5 6 7")
	var tooMany *TooManyArgumentsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, []string{"6", "7"}, tooMany.Surplus)

	inherit := NewBuilder().Param("a", intType).MustBuild()
	_, err = NewBinder(WithRejectExtra(true)).Bind(context.Background(), inherit, "5 6", Origin{})
	require.ErrorAs(t, err, &tooMany)

	lenient := NewBuilder().Param("a", intType).IgnoreExtra().MustBuild()
	_, err = NewBinder(WithRejectExtra(true)).Bind(context.Background(), lenient, "5 6", Origin{})
	assert.NoError(t, err)
}

func TestBindOptionalAtEnd(t *testing.T) {
	sig := NewBuilder().
		Param("a", intType).
		Param("b", stringType, Default("x")).
		Param("c", boolType, Optional()).
		MustBuild()

	got, err := bind(t, sig, "1")
	require.NoError(t, err)
	assert.Equal(t, BoundArguments{"a": 1, "b": "x", "c": nil}, got)
}

func TestBindKeywordOnlyConsumesOneToken(t *testing.T) {
	sig := NewBuilder().Param("a", intType).Param("flag", boolType, Keyword()).MustBuild()

	got, err := bind(t, sig, "1 on extra")
	require.NoError(t, err)
	assert.Equal(t, true, got["flag"])
}

func TestBindGreedy(t *testing.T) {
	sig := NewBuilder().
		Param("nums", intType, Many()).
		Param("label", nil).
		MustBuild()

	got, err := bind(t, sig, "1 2 3 done")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, got["nums"])
	assert.Equal(t, "done", got["label"])
}

func TestBindGreedyNothingConverted(t *testing.T) {
	required := NewBuilder().Param("nums", intType, Many()).MustBuild()
	_, err := bind(t, required, "x")
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "x", convErr.Raw)

	optional := NewBuilder().
		Param("nums", intType, Many(), Default([]any{})).
		Param("rest", nil, Rest()).
		MustBuild()
	got, err := bind(t, optional, "x y")
	require.NoError(t, err)
	assert.Equal(t, []any{}, got["nums"])
	assert.Equal(t, "x y", got["rest"])
}

func TestBindNoParams(t *testing.T) {
	got, err := bind(t, NewBuilder().MustBuild(), "anything at all")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NewBinder().Bind(context.Background(), nil, "x", Origin{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBindContextIsFreshPerAttempt(t *testing.T) {
	type marker struct{}
	var seen []*Context
	reg := NewRegistry()
	reg.RegisterFunc(TypeOf[marker](), func(_ context.Context, cc *Context, raw string) (any, error) {
		seen = append(seen, cc)
		return nil, errors.New("no")
	})

	sig := NewBuilder().
		Param("p", nil, OneOf(TypeOf[marker](), TypeOf[marker]()), Optional()).
		MustBuild()
	origin := Origin{Command: "marker", Message: "!marker x", Host: "host"}
	_, err := NewBinder(WithRegistry(reg)).Bind(context.Background(), sig, "x", origin)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	for _, cc := range seen {
		assert.Equal(t, "marker", cc.Command)
		assert.Equal(t, "!marker x", cc.Message)
		assert.Equal(t, "host", cc.Host)
		assert.Equal(t, "p", cc.Param.Name)
		assert.Equal(t, TypeOf[marker](), cc.Target)
	}
}

func TestBindResolverFailureIsConversionFailure(t *testing.T) {
	type user struct{ name string }
	resolver := EntityResolverFunc(func(_ context.Context, kind EntityKind, raw string, _ *Context) (any, error) {
		switch raw {
		case "alice":
			return &user{name: raw}, nil
		case "bob":
			return nil, ErrAmbiguous
		}
		return nil, ErrNotFound
	})
	reg := NewRegistry()
	reg.RegisterEntity(TypeOf[*user](), EntityUser, resolver)
	binder := NewBinder(WithRegistry(reg))

	sig := NewBuilder().Param("who", TypeOf[*user]()).MustBuild()

	got, err := binder.Bind(context.Background(), sig, "alice", Origin{})
	require.NoError(t, err)
	assert.Equal(t, "alice", got["who"].(*user).name)

	_, err = binder.Bind(context.Background(), sig, "bob", Origin{})
	var rerr *ResolverError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, Ambiguous, rerr.Kind)
	assert.Equal(t, "who", rerr.Param)
	assert.ErrorIs(t, err, ErrAmbiguous)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "bob", convErr.Raw)

	_, err = binder.Bind(context.Background(), sig, "carol", Origin{})
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, NotFound, rerr.Kind)

	optional := NewBuilder().Param("who", TypeOf[*user](), Optional()).MustBuild()
	got, err = binder.Bind(context.Background(), optional, "carol", Origin{})
	require.NoError(t, err)
	assert.Nil(t, got["who"])
}

func TestBindCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	type slow struct{}

	reg := NewRegistry()
	reg.RegisterFunc(TypeOf[slow](), func(ctx context.Context, _ *Context, _ string) (any, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	sig := NewBuilder().
		Param("a", intType).
		Param("s", TypeOf[slow](), Optional()).
		Param("c", intType).
		MustBuild()

	got, err := NewBinder(WithRegistry(reg)).Bind(ctx, sig, "1 x 3", Origin{})
	assert.Nil(t, got)
	require.ErrorIs(t, err, context.Canceled)

	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "s", bindErr.Param)
}

func TestBindCancelledDuringLastConversion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	type late struct{}

	reg := NewRegistry()
	reg.RegisterFunc(TypeOf[late](), func(_ context.Context, _ *Context, raw string) (any, error) {
		cancel()
		return raw, nil
	})

	sig := NewBuilder().Param("x", TypeOf[late]()).MustBuild()
	got, err := NewBinder(WithRegistry(reg)).Bind(ctx, sig, "abc", Origin{Command: "late"})
	assert.Nil(t, got)
	require.ErrorIs(t, err, context.Canceled)

	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "late", bindErr.Command)
}

func TestBindErrorMessage(t *testing.T) {
	sig := NewBuilder().Param("count", intType).MustBuild()

	_, err := NewBinder().Bind(context.Background(), sig, "", Origin{Command: "purge"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), `command "purge": parameter "count"`))
}
