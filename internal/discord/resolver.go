package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/retrylimit"
	"golang.org/x/text/cases"
)

// ErrNoGuild is returned for guild-scoped lookups made outside a guild.
var ErrNoGuild = errors.New("only available inside a server")

// REST is the part of *discordgo.Session the resolver falls back to when the
// state cache misses.
type REST interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// GuildScoped is implemented by host values that know the guild a message
// came from. The resolver reads it from args.Context.Host.
type GuildScoped interface {
	GuildID() string
}

// TextChannel is a guild channel that carries messages.
type TextChannel struct{ *discordgo.Channel }

// VoiceChannel is a guild voice or stage channel.
type VoiceChannel struct{ *discordgo.Channel }

// Resolver finds Discord entities for the argument binder. It reads the
// state cache first, then asks the REST API by ID, throttled by an adaptive
// rate limit. Name lookups only search the cache.
type Resolver struct {
	state   *discordgo.State
	rest    REST
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
}

// NewResolver returns a resolver. rest and limiter may be nil; without rest
// only cached entities are found.
func NewResolver(state *discordgo.State, rest REST, limiter *retrylimit.AdaptiveLimiter) *Resolver {
	return &Resolver{
		state:   state,
		rest:    rest,
		limiter: limiter,
		retry:   retrylimit.DefaultConfig(),
	}
}

// ResolveEntity implements args.EntityResolver.
func (r *Resolver) ResolveEntity(ctx context.Context, kind args.EntityKind, raw string, cc *args.Context) (any, error) {
	guildID := ""
	if cc != nil {
		if g, ok := cc.Host.(GuildScoped); ok {
			guildID = g.GuildID()
		}
	}

	switch kind {
	case args.EntityUser:
		return r.user(ctx, guildID, raw)
	case args.EntityMember:
		if guildID == "" {
			return nil, ErrNoGuild
		}
		return r.member(ctx, guildID, raw)
	case args.EntityChannel:
		return r.channel(ctx, guildID, raw, nil)
	case args.EntityTextChannel:
		ch, err := r.channel(ctx, guildID, raw, isTextChannel)
		if err != nil {
			return nil, err
		}
		return TextChannel{ch}, nil
	case args.EntityVoiceChannel:
		ch, err := r.channel(ctx, guildID, raw, isVoiceChannel)
		if err != nil {
			return nil, err
		}
		return VoiceChannel{ch}, nil
	case args.EntityRole:
		if guildID == "" {
			return nil, ErrNoGuild
		}
		return r.role(ctx, guildID, raw)
	case args.EntityGuild:
		return r.guild(ctx, raw)
	case args.EntityEmoji:
		return r.emoji(guildID, raw)
	default:
		return nil, fmt.Errorf("unsupported entity kind %q", kind)
	}
}

func (r *Resolver) user(ctx context.Context, guildID, raw string) (*discordgo.User, error) {
	if id, ok := UserID(raw); ok {
		if guildID != "" {
			if m, err := r.state.Member(guildID, id); err == nil && m.User != nil {
				return m.User, nil
			}
		}
		var u *discordgo.User
		err := r.fetch(ctx, func(opts ...discordgo.RequestOption) (err error) {
			u, err = r.rest.User(id, opts...)
			return err
		})
		return u, err
	}

	// by name: the current guild first, then every cached guild
	scopes := []string{guildID}
	if guildID == "" {
		scopes = r.guildIDs()
	}
	seen := map[string]bool{}
	var found []*discordgo.User
	for _, gid := range scopes {
		members, err := r.findMembers(gid, raw)
		if err != nil && !errors.Is(err, args.ErrNotFound) {
			return nil, err
		}
		for _, m := range members {
			if !seen[m.User.ID] {
				seen[m.User.ID] = true
				found = append(found, m.User)
			}
		}
	}
	return one(found, "user", raw)
}

func (r *Resolver) member(ctx context.Context, guildID, raw string) (*discordgo.Member, error) {
	if id, ok := UserID(raw); ok {
		if m, err := r.state.Member(guildID, id); err == nil {
			return m, nil
		}
		var m *discordgo.Member
		err := r.fetch(ctx, func(opts ...discordgo.RequestOption) (err error) {
			m, err = r.rest.GuildMember(guildID, id, opts...)
			return err
		})
		return m, err
	}
	members, err := r.findMembers(guildID, raw)
	if err != nil {
		return nil, err
	}
	return one(members, "member", raw)
}

// findMembers matches cached members of guildID, trying in turn the exact
// tag (name#0000), username, global name, nickname and finally any of the
// three names compared case-insensitively. The first tier with a hit wins.
func (r *Resolver) findMembers(guildID, raw string) ([]*discordgo.Member, error) {
	g, err := r.state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: guild %s not cached", args.ErrNotFound, guildID)
	}

	r.state.RLock()
	defer r.state.RUnlock()

	name, discriminator, isTag := splitTag(raw)
	fold := newFolded(raw)
	tiers := []func(m *discordgo.Member) bool{
		func(m *discordgo.Member) bool {
			return isTag && m.User.Username == name && m.User.Discriminator == discriminator
		},
		func(m *discordgo.Member) bool { return m.User.Username == raw },
		func(m *discordgo.Member) bool { return m.User.GlobalName != "" && m.User.GlobalName == raw },
		func(m *discordgo.Member) bool { return m.Nick != "" && m.Nick == raw },
		func(m *discordgo.Member) bool {
			return fold.equal(m.User.Username) || fold.equal(m.User.GlobalName) || fold.equal(m.Nick)
		},
	}
	for _, match := range tiers {
		var hits []*discordgo.Member
		for _, m := range g.Members {
			if m.User != nil && match(m) {
				hits = append(hits, m)
			}
		}
		if len(hits) > 0 {
			return hits, nil
		}
	}
	return nil, nil
}

func (r *Resolver) channel(ctx context.Context, guildID, raw string, accept func(*discordgo.Channel) bool) (*discordgo.Channel, error) {
	if id, ok := ChannelID(raw); ok {
		ch, err := r.state.Channel(id)
		if err != nil {
			err = r.fetch(ctx, func(opts ...discordgo.RequestOption) (err error) {
				ch, err = r.rest.Channel(id, opts...)
				return err
			})
			if err != nil {
				return nil, err
			}
		}
		if guildID != "" && ch.GuildID != guildID {
			return nil, fmt.Errorf("%w: channel %s is not in this server", args.ErrNotFound, id)
		}
		if accept != nil && !accept(ch) {
			return nil, fmt.Errorf("%w: channel %s has the wrong type", args.ErrNotFound, id)
		}
		return ch, nil
	}

	if guildID == "" {
		return nil, ErrNoGuild
	}
	g, err := r.state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: guild %s not cached", args.ErrNotFound, guildID)
	}

	name := strings.TrimPrefix(raw, "#")
	r.state.RLock()
	var found []*discordgo.Channel
	for _, ch := range g.Channels {
		if ch.Name == name && (accept == nil || accept(ch)) {
			found = append(found, ch)
		}
	}
	r.state.RUnlock()
	return one(found, "channel", raw)
}

// folded compares names after Unicode case folding. Not safe for concurrent
// use.
type folded struct {
	caser  cases.Caser
	target string
}

func newFolded(s string) *folded {
	c := cases.Fold()
	return &folded{caser: c, target: c.String(s)}
}

func (f *folded) equal(s string) bool {
	return s != "" && f.caser.String(s) == f.target
}

func isTextChannel(ch *discordgo.Channel) bool {
	switch ch.Type {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return true
	}
	return false
}

func isVoiceChannel(ch *discordgo.Channel) bool {
	switch ch.Type {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return true
	}
	return false
}

func (r *Resolver) role(ctx context.Context, guildID, raw string) (*discordgo.Role, error) {
	if id, ok := RoleID(raw); ok {
		if role, err := r.state.Role(guildID, id); err == nil {
			return role, nil
		}
		var roles []*discordgo.Role
		err := r.fetch(ctx, func(opts ...discordgo.RequestOption) (err error) {
			roles, err = r.rest.GuildRoles(guildID, opts...)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, role := range roles {
			if role.ID == id {
				return role, nil
			}
		}
		return nil, fmt.Errorf("%w: role %s", args.ErrNotFound, id)
	}

	g, err := r.state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: guild %s not cached", args.ErrNotFound, guildID)
	}
	name := strings.TrimPrefix(raw, "@")
	r.state.RLock()
	var found []*discordgo.Role
	for _, role := range g.Roles {
		if role.Name == name {
			found = append(found, role)
		}
	}
	if len(found) == 0 {
		fold := newFolded(name)
		for _, role := range g.Roles {
			if fold.equal(role.Name) {
				found = append(found, role)
			}
		}
	}
	r.state.RUnlock()
	return one(found, "role", raw)
}

func (r *Resolver) guild(ctx context.Context, raw string) (*discordgo.Guild, error) {
	if IsID(raw) {
		if g, err := r.state.Guild(raw); err == nil {
			return g, nil
		}
		var g *discordgo.Guild
		err := r.fetch(ctx, func(opts ...discordgo.RequestOption) (err error) {
			g, err = r.rest.Guild(raw, opts...)
			return err
		})
		return g, err
	}

	r.state.RLock()
	var found []*discordgo.Guild
	for _, g := range r.state.Guilds {
		if g.Name == raw {
			found = append(found, g)
		}
	}
	r.state.RUnlock()
	return one(found, "guild", raw)
}

// emoji resolves a custom emoji. A full <:name:id> from another guild still
// resolves to a partial emoji carrying just name, ID and animation flag.
func (r *Resolver) emoji(guildID, raw string) (*discordgo.Emoji, error) {
	if name, id, animated, ok := CustomEmoji(raw); ok {
		if guildID != "" {
			if e, err := r.state.Emoji(guildID, id); err == nil {
				return e, nil
			}
		}
		return &discordgo.Emoji{ID: id, Name: name, Animated: animated}, nil
	}

	if guildID == "" {
		return nil, ErrNoGuild
	}
	g, err := r.state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("%w: guild %s not cached", args.ErrNotFound, guildID)
	}
	name := strings.Trim(raw, ":")
	r.state.RLock()
	var found []*discordgo.Emoji
	for _, e := range g.Emojis {
		if e.ID == raw || e.Name == name {
			found = append(found, e)
		}
	}
	r.state.RUnlock()
	return one(found, "emoji", raw)
}

func (r *Resolver) guildIDs() []string {
	r.state.RLock()
	defer r.state.RUnlock()
	ids := make([]string, 0, len(r.state.Guilds))
	for _, g := range r.state.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// fetch runs a REST call through the limiter and retry loop. Client errors
// end the loop; 404 and 400 count as not found.
func (r *Resolver) fetch(ctx context.Context, call func(opts ...discordgo.RequestOption) error) error {
	if r.rest == nil {
		return args.ErrNotFound
	}
	return retrylimit.Do(ctx, r.limiter, r.retry, func(ctx context.Context) error {
		err := call(discordgo.WithContext(ctx))
		var rest *discordgo.RESTError
		if err == nil || !errors.As(err, &rest) || rest.Response == nil {
			return err
		}
		code := rest.Response.StatusCode
		switch {
		case code == http.StatusNotFound, code == http.StatusBadRequest:
			return retrylimit.Fatal(fmt.Errorf("%w: %w", args.ErrNotFound, err))
		case code == http.StatusTooManyRequests, code >= 500:
			return &statusError{err: err, code: code}
		default:
			return retrylimit.Fatal(err)
		}
	})
}

type statusError struct {
	err  error
	code int
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.code }

// one returns the single element of found, or ErrNotFound / ErrAmbiguous.
func one[T any](found []T, what, raw string) (T, error) {
	var zero T
	switch len(found) {
	case 0:
		return zero, fmt.Errorf("%w: no %s named %q", args.ErrNotFound, what, raw)
	case 1:
		return found[0], nil
	default:
		return zero, fmt.Errorf("%w: %d %ss match %q", args.ErrAmbiguous, len(found), what, raw)
	}
}
