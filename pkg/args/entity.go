package args

import (
	"context"
	"errors"
)

// EntityKind tags a framework-managed object a resolver knows how to find.
type EntityKind string

const (
	EntityUser         EntityKind = "user"
	EntityMember       EntityKind = "member"
	EntityChannel      EntityKind = "channel"
	EntityTextChannel  EntityKind = "text channel"
	EntityVoiceChannel EntityKind = "voice channel"
	EntityRole         EntityKind = "role"
	EntityGuild        EntityKind = "guild"
	EntityEmoji        EntityKind = "emoji"
)

// EntityResolver looks up framework entities from raw text. It is supplied by
// the host; the engine never caches what it returns. Implementations should
// return ErrNotFound or ErrAmbiguous (possibly wrapped) for lookup misses.
type EntityResolver interface {
	ResolveEntity(ctx context.Context, kind EntityKind, raw string, cc *Context) (any, error)
}

// EntityResolverFunc adapts a function to EntityResolver.
type EntityResolverFunc func(ctx context.Context, kind EntityKind, raw string, cc *Context) (any, error)

func (f EntityResolverFunc) ResolveEntity(ctx context.Context, kind EntityKind, raw string, cc *Context) (any, error) {
	return f(ctx, kind, raw, cc)
}

// EntityConverter converts a token by asking a resolver for an entity.
type EntityConverter struct {
	Kind     EntityKind
	Resolver EntityResolver
}

func (c *EntityConverter) Convert(ctx context.Context, cc *Context, raw string) (any, error) {
	v, err := c.Resolver.ResolveEntity(ctx, c.Kind, raw, cc)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	rerr := &ResolverError{Kind: Failed, Entity: c.Kind, Raw: raw, Err: err}
	if cc != nil && cc.Param != nil {
		rerr.Param = cc.Param.Name
	}
	switch {
	case errors.Is(err, ErrNotFound):
		rerr.Kind = NotFound
	case errors.Is(err, ErrAmbiguous):
		rerr.Kind = Ambiguous
	}
	return nil, rerr
}
