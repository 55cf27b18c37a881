package args

import (
	"context"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

// Origin describes the invocation a binding belongs to.
type Origin struct {
	Command string
	Message string
	Host    any
}

// Binder matches tokens to a signature. A Binder holds no per-call state and
// may be shared.
type Binder struct {
	registry *Registry
	extra    ExtraPolicy
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithRegistry sets the converter registry. DefaultRegistry is used otherwise.
func WithRegistry(r *Registry) BinderOption {
	return func(b *Binder) { b.registry = r }
}

// WithRejectExtra makes surplus tokens an error for signatures that do not
// choose a policy themselves.
func WithRejectExtra(reject bool) BinderOption {
	return func(b *Binder) {
		if reject {
			b.extra = ExtraReject
		} else {
			b.extra = ExtraIgnore
		}
	}
}

// NewBinder returns a Binder.
func NewBinder(opts ...BinderOption) *Binder {
	b := &Binder{registry: DefaultRegistry, extra: ExtraIgnore}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry the binder converts with.
func (b *Binder) Registry() *Registry { return b.registry }

// Bind tokenizes text and binds it against sig.
func (b *Binder) Bind(ctx context.Context, sig *Signature, text string, origin Origin) (BoundArguments, error) {
	return b.BindTokens(ctx, sig, Tokenize(text), origin)
}

// BindTokens binds already tokenized input against sig. On failure it returns
// a *BindError and no arguments.
func (b *Binder) BindTokens(ctx context.Context, sig *Signature, tokens []Token, origin Origin) (BoundArguments, error) {
	cur := &cursor{tokens: tokens}
	out := make(BoundArguments, sig.Len())
	log := zerolog.Ctx(ctx)

	for i := 0; i < sig.Len(); i++ {
		p := sig.Param(i)
		if err := ctx.Err(); err != nil {
			return nil, &BindError{Command: origin.Command, Param: p.Name, Err: err}
		}

		v, err := b.bindParam(ctx, &p, cur, origin)
		if err != nil {
			log.Debug().
				Str("command", origin.Command).
				Str("param", p.Name).
				Err(err).
				Msg("binding failed")
			return nil, &BindError{Command: origin.Command, Param: p.Name, Err: err}
		}
		out[p.Name] = v
	}
	if err := ctx.Err(); err != nil {
		return nil, &BindError{Command: origin.Command, Err: err}
	}

	if !cur.done() && b.rejects(sig) {
		return nil, &BindError{
			Command: origin.Command,
			Err:     &TooManyArgumentsError{Surplus: Texts(cur.rest())},
		}
	}
	if !cur.done() {
		log.Debug().Str("command", origin.Command).Int("surplus", cur.remaining()).Msg("ignoring extra arguments")
	}
	return out, nil
}

func (b *Binder) rejects(sig *Signature) bool {
	policy := sig.Extra()
	if policy == ExtraInherit {
		policy = b.extra
	}
	return policy == ExtraReject
}

func (b *Binder) bindParam(ctx context.Context, p *ParameterSpec, cur *cursor, origin Origin) (any, error) {
	switch p.Kind {
	case Variadic:
		if cur.done() {
			return nil, &MissingArgumentError{Param: p.Name}
		}
		return strings.Join(Texts(cur.rest()), " "), nil
	case Greedy:
		return b.bindGreedy(ctx, p, cur, origin)
	}

	if cur.done() {
		if p.Optional {
			return p.Default, nil
		}
		return nil, &MissingArgumentError{Param: p.Name}
	}

	tok := cur.next()
	v, err := b.convert(ctx, p, tok, origin)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if p.Optional {
		zerolog.Ctx(ctx).Debug().
			Str("param", p.Name).
			Str("raw", tok.Text).
			Err(err).
			Msg("conversion failed, using default")
		return p.Default, nil
	}
	return nil, err
}

// bindGreedy converts tokens until one fails; the failing token stays in
// the cursor for the next parameter.
func (b *Binder) bindGreedy(ctx context.Context, p *ParameterSpec, cur *cursor, origin Origin) (any, error) {
	var (
		values  []any
		lastErr error
	)
	for !cur.done() {
		v, err := b.convert(ctx, p, cur.peek(), origin)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			break
		}
		cur.next()
		values = append(values, v)
	}

	if len(values) > 0 {
		return values, nil
	}
	if p.Optional {
		return p.Default, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &MissingArgumentError{Param: p.Name}
}

func (b *Binder) convert(ctx context.Context, p *ParameterSpec, tok Token, origin Origin) (any, error) {
	if p.Type.Shape != ShapeUnion {
		t := p.Type.Elem()
		v, err := b.attempt(ctx, p, t, tok.Text, origin)
		if err != nil {
			return nil, &ConversionError{Param: p.Name, Type: t, Raw: tok.Text, Err: err}
		}
		return v, nil
	}

	errs := make([]error, 0, len(p.Type.Types))
	for _, t := range p.Type.Types {
		v, err := b.attempt(ctx, p, t, tok.Text, origin)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, err)
	}
	return nil, &UnionConversionError{
		Param: p.Name,
		Types: append([]reflect.Type{}, p.Type.Types...),
		Raw:   tok.Text,
		Errs:  errs,
	}
}

func (b *Binder) attempt(ctx context.Context, p *ParameterSpec, t reflect.Type, raw string, origin Origin) (any, error) {
	spec := *p
	cc := &Context{
		Message: origin.Message,
		Command: origin.Command,
		Param:   &spec,
		Target:  t,
		Host:    origin.Host,
	}
	return b.registry.Resolve(t).Convert(ctx, cc, raw)
}

// cursor is the shared left-to-right position in the token list.
type cursor struct {
	tokens []Token
	pos    int
}

func (c *cursor) done() bool { return c.pos >= len(c.tokens) }

func (c *cursor) remaining() int { return len(c.tokens) - c.pos }

func (c *cursor) peek() Token { return c.tokens[c.pos] }

func (c *cursor) next() Token {
	t := c.tokens[c.pos]
	c.pos++
	return t
}

func (c *cursor) rest() []Token {
	r := c.tokens[c.pos:]
	c.pos = len(c.tokens)
	return r
}
