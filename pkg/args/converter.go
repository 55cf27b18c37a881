package args

import (
	"context"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Context is the read-only view handed to a converter. A new Context is made
// for every conversion attempt.
type Context struct {
	// Message is the full raw message text.
	Message string
	// Command is the name of the invoked command.
	Command string
	// Param is the parameter being bound.
	Param *ParameterSpec
	// Target is the declared type this attempt converts to; nil for raw text.
	Target reflect.Type
	// Host is an opaque value supplied by the host framework, e.g. its
	// message event.
	Host any
}

// Converter turns one raw token into a value.
type Converter interface {
	Convert(ctx context.Context, cc *Context, raw string) (any, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, cc *Context, raw string) (any, error)

func (f ConverterFunc) Convert(ctx context.Context, cc *Context, raw string) (any, error) {
	return f(ctx, cc, raw)
}

// String passes the token through unchanged.
var String Converter = ConverterFunc(func(_ context.Context, _ *Context, raw string) (any, error) {
	return raw, nil
})

// Bool accepts true/false, yes/no, 1/0 and on/off in any case.
var Bool Converter = ConverterFunc(func(_ context.Context, _ *Context, raw string) (any, error) {
	return parseBool(raw)
})

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	}
	return false, badArgument("%q is not a recognised boolean option", raw)
}

// intConverter parses base-10 integers of a fixed width. The result has the
// Go type out.
type intConverter struct {
	out reflect.Type
}

func (c intConverter) Convert(_ context.Context, _ *Context, raw string) (any, error) {
	v, err := parseInt(raw, c.out)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func parseInt(raw string, out reflect.Type) (reflect.Value, error) {
	bits := out.Bits()
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, bits)
		if err != nil {
			return reflect.Value{}, numError(raw, err)
		}
		v := reflect.New(out).Elem()
		v.SetInt(n)
		return v, nil
	default:
		// Leading '+' is accepted for unsigned targets too.
		n, err := strconv.ParseUint(strings.TrimPrefix(raw, "+"), 10, bits)
		if err != nil {
			return reflect.Value{}, numError(raw, err)
		}
		v := reflect.New(out).Elem()
		v.SetUint(n)
		return v, nil
	}
}

func numError(raw string, err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return badArgument("%q is out of range", raw)
	}
	return badArgument("%q is not a number", raw)
}

// floatConverter parses finite floating point numbers.
type floatConverter struct {
	out reflect.Type
}

func (c floatConverter) Convert(_ context.Context, _ *Context, raw string) (any, error) {
	v, err := parseFloat(raw, c.out)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func parseFloat(raw string, out reflect.Type) (reflect.Value, error) {
	f, err := strconv.ParseFloat(raw, out.Bits())
	if err != nil {
		return reflect.Value{}, numError(raw, err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return reflect.Value{}, badArgument("%q is not a finite number", raw)
	}
	v := reflect.New(out).Elem()
	v.SetFloat(f)
	return v, nil
}

// kindConverter handles named types whose underlying kind is a primitive,
// e.g. `type Port uint16`.
type kindConverter struct {
	out reflect.Type
}

func (c kindConverter) Convert(_ context.Context, _ *Context, raw string) (any, error) {
	switch c.out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := parseInt(raw, c.out)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	case reflect.Float32, reflect.Float64:
		v, err := parseFloat(raw, c.out)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	case reflect.Bool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(b).Convert(c.out).Interface(), nil
	default:
		return reflect.ValueOf(raw).Convert(c.out).Interface(), nil
	}
}

// pointerConverter converts through the converter of the pointed-to type and
// returns a pointer to the result, e.g. for `*Port`.
type pointerConverter struct {
	elem Converter
	out  reflect.Type
}

func (c pointerConverter) Convert(ctx context.Context, cc *Context, raw string) (any, error) {
	v, err := c.elem.Convert(ctx, cc, raw)
	if err != nil {
		return nil, err
	}
	p := reflect.New(c.out)
	p.Elem().Set(reflect.ValueOf(v).Convert(c.out))
	return p.Interface(), nil
}

func primitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	return false
}

// Choice accepts one of a fixed set of literals and returns the canonical
// spelling.
type Choice struct {
	Values     []string
	IgnoreCase bool
}

// NewChoice returns a case-sensitive Choice.
func NewChoice(values ...string) *Choice {
	return &Choice{Values: values}
}

func (c *Choice) Convert(_ context.Context, _ *Context, raw string) (any, error) {
	for _, v := range c.Values {
		if v == raw || (c.IgnoreCase && strings.EqualFold(v, raw)) {
			return v, nil
		}
	}
	return nil, badArgument("%q is not one of %s", raw, joinOr(quoteAll(c.Values)))
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Quote(v)
	}
	return out
}
