// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/keshon/textcmd/internal/commands/game"
	_ "github.com/keshon/textcmd/internal/commands/info"
	_ "github.com/keshon/textcmd/internal/commands/settings"
	_ "github.com/keshon/textcmd/internal/commands/utility"

	"github.com/keshon/textcmd/internal/config"
	"github.com/keshon/textcmd/internal/core"
	"github.com/keshon/textcmd/internal/discord"
	"github.com/keshon/textcmd/internal/logging"
	"github.com/keshon/textcmd/internal/storage"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/keshon/textcmd/pkg/jobmgr"
	"github.com/rs/zerolog"
)

const appName = "textcmd"

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, envFound, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closer.Close()

	log.Info().Str("app", appName).Bool("env_file", envFound).Msg("starting bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = log.WithContext(ctx)

	store, err := storage.New(cfg.StoragePath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
	}
	defer store.Close()

	jobmgr.DefaultManager.SetLogger(log)
	defer jobmgr.DefaultManager.StopAll()

	bot, err := discord.NewBot(cfg, store, cmd.DefaultRegistry,
		discord.WithLogger(log),
		discord.WithChecks(
			core.CheckGuildOnly(),
			core.CheckUserPermissions(),
		),
		discord.WithMiddleware(core.WithCommandLogger()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	case <-ctx.Done():
	}

	log.Info().Msg("discord bot exited cleanly")
}
