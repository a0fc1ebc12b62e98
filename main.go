package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rummikub/internal/config"
	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/history"
	"github.com/robalobadob/rummikub/internal/httpserver"
	"github.com/robalobadob/rummikub/internal/optimizer"
	"github.com/robalobadob/rummikub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if err := deck.InitPresets(cfg.PresetsFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load deck presets")
	}

	db, err := history.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv := httpserver.New(httpserver.Options{
		Store:   store.NewMemoryStore(),
		History: history.NewStore(db),
		Engine: optimizer.New(optimizer.Config{
			NodeLimit: cfg.NodeLimit,
			TimeLimit: cfg.SolveTimeout,
		}),
		JWTSecret:    cfg.JWTSecret,
		JWTExpires:   cfg.JWTExpires,
		ClientOrigin: cfg.ClientOrigin,
		SolveTimeout: cfg.SolveTimeout,
	})
	log.Info().Str("port", cfg.Port).Str("driver", db.Driver).Msg("starting rummikub server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
