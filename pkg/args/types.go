package args

import (
	"reflect"
	"strings"
)

// Kind says how a parameter consumes tokens.
type Kind int

const (
	Positional Kind = iota
	KeywordOnly
	Variadic
	Greedy
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case KeywordOnly:
		return "keyword-only"
	case Variadic:
		return "variadic"
	case Greedy:
		return "greedy"
	default:
		return "unknown"
	}
}

// Shape is the closed set of declared type shapes.
type Shape int

const (
	ShapeSingle Shape = iota
	ShapeOptional
	ShapeUnion
)

// TypeDescriptor is the declared type of a parameter. A nil member type means
// "undeclared" and converts to the raw string.
type TypeDescriptor struct {
	Shape Shape
	Types []reflect.Type
}

// SingleType describes a plain parameter of type t.
func SingleType(t reflect.Type) TypeDescriptor {
	return TypeDescriptor{Shape: ShapeSingle, Types: []reflect.Type{t}}
}

// OptionalType describes a parameter whose conversion failure is never fatal.
func OptionalType(t reflect.Type) TypeDescriptor {
	return TypeDescriptor{Shape: ShapeOptional, Types: []reflect.Type{t}}
}

// UnionType describes a parameter tried against each member in order.
func UnionType(ts ...reflect.Type) TypeDescriptor {
	members := make([]reflect.Type, len(ts))
	copy(members, ts)
	return TypeDescriptor{Shape: ShapeUnion, Types: members}
}

// TypeOf is shorthand for reflect.TypeFor.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Elem returns the single member type of a Single or Optional descriptor.
func (d TypeDescriptor) Elem() reflect.Type {
	if len(d.Types) == 0 {
		return nil
	}
	return d.Types[0]
}

func (d TypeDescriptor) String() string {
	switch d.Shape {
	case ShapeOptional:
		return "Optional[" + TypeName(d.Elem()) + "]"
	case ShapeUnion:
		names := make([]string, len(d.Types))
		for i, t := range d.Types {
			names[i] = TypeName(t)
		}
		return "Union[" + strings.Join(names, ", ") + "]"
	default:
		return TypeName(d.Elem())
	}
}

// TypeName is a short human readable name for t; nil reads as "string".
func TypeName(t reflect.Type) string {
	if t == nil {
		return "string"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
