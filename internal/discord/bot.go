package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/storage"
	"github.com/keshon/textcmd/pkg/args"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/retrylimit"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const commandTimeout = 30 * time.Second

// Bot is a Discord bot dispatching prefixed text commands
type Bot struct {
	dg          *discordgo.Session
	cfg         *config.Config
	storage     *storage.Storage
	commands    *cmd.Registry
	binder      *args.Binder
	checks      []cmd.Check
	middlewares []cmd.Middleware
	log         zerolog.Logger
	ctx         context.Context
}

type Option func(*Bot)

// WithMiddleware wraps every dispatched command, first outermost.
func WithMiddleware(mws ...cmd.Middleware) Option {
	return func(b *Bot) { b.middlewares = append(b.middlewares, mws...) }
}

// WithChecks adds checks run before any argument is bound, once for the
// matched command and once for every group above it that passes its checks
// down.
func WithChecks(checks ...cmd.Check) Option {
	return func(b *Bot) { b.checks = append(b.checks, checks...) }
}

// WithLogger sets the root logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bot) { b.log = log }
}

// NewBot creates the session and the argument binder. Nothing connects until
// Run.
func NewBot(cfg *config.Config, store *storage.Storage, commands *cmd.Registry, opts ...Option) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		storage:  store,
		commands: commands,
		log:      zerolog.Nop(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}

	limiter := retrylimit.NewAdaptiveLimiter(
		rate.Limit(cfg.ResolverRPS), 1, rate.Limit(cfg.ResolverMaxRPS), 1, 0.5,
	)
	reg := args.NewRegistry()
	RegisterConverters(reg, NewResolver(dg.State, dg, limiter))
	b.binder = args.NewBinder(args.WithRegistry(reg), args.WithRejectExtra(cfg.RejectExtraArgs))
	return b, nil
}

// Session returns the underlying discordgo session.
func (b *Bot) Session() *discordgo.Session { return b.dg }

// Run connects and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Int("commands", len(b.commands.GetAll())).
		Msg("discord bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	botID := ""
	if s.State.User != nil {
		botID = s.State.User.ID
	}
	if m.Author.ID == botID {
		return
	}

	prefix := b.prefixFor(m.GuildID)
	body, ok := StripPrefix(m.Content, prefix, botID, b.cfg.MentionPrefix)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()
	log := b.log.With().
		Str("guild_id", m.GuildID).
		Str("channel_id", m.ChannelID).
		Str("user", m.Author.Username).
		Logger()
	ctx = log.WithContext(ctx)

	mc := &core.MessageContext{Session: s, Event: m, Storage: b.storage, Prefix: prefix}
	if err := b.execute(ctx, mc, body); err != nil {
		b.report(ctx, mc, err)
	}
}

// prefixFor returns the guild's own prefix or the configured default.
func (b *Bot) prefixFor(guildID string) string {
	if guildID != "" && b.storage != nil {
		p, err := b.storage.Prefix(guildID)
		if err != nil {
			b.log.Warn().Err(err).Str("guild_id", guildID).Msg("failed to read guild prefix")
		} else if p != "" {
			return p
		}
	}
	return b.cfg.CommandPrefix
}

// StripPrefix returns the command text when content starts with prefix or,
// if mentions are enabled, with a mention of botID.
func StripPrefix(content, prefix, botID string, mentions bool) (string, bool) {
	if mentions {
		if rest, ok := StripMention(content, botID); ok {
			return rest, true
		}
	}
	if prefix == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(content, prefix)
	if !ok {
		return "", false
	}
	return rest, true
}

// UsageError is a binding failure together with the command's usage line.
type UsageError struct {
	Usage string
	Err   error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// execute finds the command named at the start of body, checks it, binds its
// arguments and runs it with the bot's middleware. Unknown and disabled
// commands are ignored.
func (b *Bot) execute(ctx context.Context, mc *core.MessageContext, body string) error {
	tokens := args.Tokenize(body)
	if len(tokens) == 0 {
		return nil
	}
	words := args.Texts(tokens)
	lookup := make([]string, len(words))
	for i, w := range words {
		lookup[i] = strings.ToLower(w)
	}

	chain, n := b.commands.Lookup(lookup)
	if n == 0 {
		zerolog.Ctx(ctx).Debug().Str("command", words[0]).Msg("unknown command")
		return nil
	}
	path := lookup[:n]
	if !cmd.PathEnabled(chain) {
		zerolog.Ctx(ctx).Debug().Strs("path", path).Msg("command disabled, ignored")
		return nil
	}
	c := chain[n-1]
	rest := tokens[n:]
	inv := &cmd.Invocation{
		Path: path,
		Raw:  args.Remainder(body, rest),
		Data: mc,
	}
	if err := cmd.RunChecks(ctx, chain, inv, b.checks...); err != nil {
		return err
	}

	sig := cmd.SignatureOf(c)
	bound, err := b.binder.BindTokens(ctx, sig, rest, args.Origin{
		Command: strings.Join(path, " "),
		Message: body,
		Host:    mc,
	})
	if err != nil {
		return &UsageError{Usage: core.Usage(mc.Prefix, path, sig), Err: err}
	}
	inv.Args = bound
	return cmd.Apply(c, b.middlewares...).Run(ctx, inv)
}

func (b *Bot) report(ctx context.Context, mc *core.MessageContext, err error) {
	log := zerolog.Ctx(ctx)

	var usage *UsageError
	if errors.As(err, &usage) {
		log.Debug().Err(err).Msg("argument binding failed")
		msg := DescribeError(usage.Err) + "\nUsage: `" + usage.Usage + "`"
		if e := mc.Reply(msg); e != nil {
			log.Warn().Err(e).Msg("failed to send usage reply")
		}
		return
	}

	var denied *cmd.CheckError
	if errors.As(err, &denied) {
		if errors.Is(err, cmd.ErrSkip) {
			log.Debug().Err(err).Msg("command skipped by check")
			return
		}
		log.Debug().Err(err).Msg("command refused by check")
		if e := mc.Reply(DescribeCheckError(denied)); e != nil {
			log.Warn().Err(e).Msg("failed to send refusal reply")
		}
		return
	}

	log.Error().Err(err).Msg("error running command")
	if e := mc.ReplyEmbed("", fmt.Sprintf("Error running command: %v", err)); e != nil {
		log.Warn().Err(e).Msg("failed to send error reply")
	}
}
