package args

import (
	"reflect"
)

// ParameterSpec is the static description of one command parameter.
type ParameterSpec struct {
	Name     string
	Kind     Kind
	Type     TypeDescriptor
	Optional bool
	Default  any
}

// ExtraPolicy decides what happens to tokens left after the last parameter.
type ExtraPolicy int

const (
	// ExtraInherit defers to the binder's default, which ignores surplus.
	ExtraInherit ExtraPolicy = iota
	ExtraIgnore
	ExtraReject
)

// Signature is the ordered parameter list of a command. It is immutable once
// built and safe to share between goroutines.
type Signature struct {
	params []ParameterSpec
	extra  ExtraPolicy
}

// Params returns a copy of the parameter list.
func (s *Signature) Params() []ParameterSpec {
	if s == nil {
		return nil
	}
	out := make([]ParameterSpec, len(s.params))
	copy(out, s.params)
	return out
}

// Len returns the number of parameters.
func (s *Signature) Len() int {
	if s == nil {
		return 0
	}
	return len(s.params)
}

// Param returns the parameter at index i.
func (s *Signature) Param(i int) ParameterSpec { return s.params[i] }

// Extra returns the surplus-token policy.
func (s *Signature) Extra() ExtraPolicy {
	if s == nil {
		return ExtraInherit
	}
	return s.extra
}

// ParamDecl is a parameter as declared by the command author, before it is
// normalized into a ParameterSpec.
type ParamDecl struct {
	Name string
	// Type is the declared type; nil means the raw string is passed through.
	Type reflect.Type
	// Optional wraps Type (or the union) so a failed conversion is not fatal.
	Optional bool
	// Union lists member types tried in order. Type is ignored when set.
	Union       []reflect.Type
	Variadic    bool
	KeywordOnly bool
	Greedy      bool
	Default     any
	HasDefault  bool
}

// Build validates decls and returns the signature.
func Build(decls []ParamDecl) (*Signature, error) {
	return build(decls, ExtraInherit)
}

func build(decls []ParamDecl, extra ExtraPolicy) (*Signature, error) {
	sig := &Signature{params: make([]ParameterSpec, 0, len(decls)), extra: extra}
	seen := make(map[string]bool, len(decls))

	for i, d := range decls {
		if d.Name == "" {
			return nil, &SignatureError{Reason: "parameter without a name"}
		}
		if seen[d.Name] {
			return nil, &SignatureError{Param: d.Name, Reason: "duplicate parameter name"}
		}
		seen[d.Name] = true

		spec, err := normalize(d)
		if err != nil {
			return nil, err
		}
		if spec.Kind == Variadic && i != len(decls)-1 {
			return nil, &SignatureError{Param: d.Name, Reason: "variadic parameter must be last"}
		}
		sig.params = append(sig.params, spec)
	}
	return sig, nil
}

func normalize(d ParamDecl) (ParameterSpec, error) {
	spec := ParameterSpec{Name: d.Name, Kind: Positional}

	switch {
	case len(d.Union) > 1:
		spec.Type = UnionType(d.Union...)
	case len(d.Union) == 1:
		spec.Type = SingleType(d.Union[0])
	case d.Union != nil:
		return spec, &SignatureError{Param: d.Name, Reason: "empty union"}
	default:
		spec.Type = SingleType(d.Type)
	}

	if d.Optional {
		spec.Optional = true
		if spec.Type.Shape == ShapeSingle {
			spec.Type = OptionalType(spec.Type.Elem())
		}
	}
	if d.HasDefault {
		spec.Optional = true
		spec.Default = d.Default
	}

	kinds := 0
	for _, set := range []bool{d.Variadic, d.KeywordOnly, d.Greedy} {
		if set {
			kinds++
		}
	}
	if kinds > 1 {
		return spec, &SignatureError{Param: d.Name, Reason: "variadic, keyword-only and greedy are exclusive"}
	}

	switch {
	case d.Variadic:
		if spec.Optional {
			return spec, &SignatureError{Param: d.Name, Reason: "variadic parameter cannot have a default or be optional"}
		}
		spec.Kind = Variadic
	case d.KeywordOnly:
		spec.Kind = KeywordOnly
	case d.Greedy:
		if d.Optional {
			return spec, &SignatureError{Param: d.Name, Reason: "greedy parameter cannot be optional"}
		}
		for _, t := range spec.Type.Types {
			if t == nil || t.Kind() == reflect.String {
				return spec, &SignatureError{Param: d.Name, Reason: "greedy string parameter would consume everything"}
			}
		}
		spec.Kind = Greedy
	}
	return spec, nil
}

// ParamOption adjusts a declaration added through a Builder.
type ParamOption func(*ParamDecl)

// Default marks the parameter optional with the given default value.
func Default(v any) ParamOption {
	return func(d *ParamDecl) {
		d.Default = v
		d.HasDefault = true
	}
}

// Optional wraps the declared type so conversion failures bind the default.
func Optional() ParamOption {
	return func(d *ParamDecl) { d.Optional = true }
}

// OneOf declares a union of member types, tried in order.
func OneOf(ts ...reflect.Type) ParamOption {
	return func(d *ParamDecl) {
		d.Union = append([]reflect.Type{}, ts...)
	}
}

// Rest makes the parameter variadic: it collects the remaining text.
func Rest() ParamOption {
	return func(d *ParamDecl) { d.Variadic = true }
}

// Keyword marks the parameter keyword-only.
func Keyword() ParamOption {
	return func(d *ParamDecl) { d.KeywordOnly = true }
}

// Many makes the parameter greedy: it converts tokens until one fails.
func Many() ParamOption {
	return func(d *ParamDecl) { d.Greedy = true }
}

// Builder accumulates declarations for a command signature.
type Builder struct {
	decls []ParamDecl
	extra ExtraPolicy
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Param declares the next parameter. t may be nil for a raw string.
func (b *Builder) Param(name string, t reflect.Type, opts ...ParamOption) *Builder {
	d := ParamDecl{Name: name, Type: t}
	for _, opt := range opts {
		opt(&d)
	}
	b.decls = append(b.decls, d)
	return b
}

// Decl appends a fully specified declaration.
func (b *Builder) Decl(d ParamDecl) *Builder {
	b.decls = append(b.decls, d)
	return b
}

// IgnoreExtra tolerates surplus tokens regardless of the binder default.
func (b *Builder) IgnoreExtra() *Builder {
	b.extra = ExtraIgnore
	return b
}

// RejectExtra makes surplus tokens a binding error.
func (b *Builder) RejectExtra() *Builder {
	b.extra = ExtraReject
	return b
}

// Build validates the declarations.
func (b *Builder) Build() (*Signature, error) {
	return build(b.decls, b.extra)
}

// MustBuild is like Build but panics on error. Meant for package-level
// command declarations.
func (b *Builder) MustBuild() *Signature {
	sig, err := b.Build()
	if err != nil {
		panic(err)
	}
	return sig
}
