package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/outbreaklab/go-outbreak/config"
	"github.com/outbreaklab/go-outbreak/server"
	"github.com/outbreaklab/go-outbreak/store"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", "", "Listen port (default: PORT env or 8080)")
	configPath := fs.String("config", "", "TOML config file with default parameters")
	dbPath := fs.String("store", "", "SQLite run archive (default: OUTBREAK_DB env, empty disables)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: outbreak serve [options]

Start the HTTP API server.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  PORT          Listen port
  OUTBREAK_DB   SQLite run archive path
  OUTBREAK_*    Default parameter overrides (e.g. OUTBREAK_BETA=0.25)

Examples:
  outbreak serve --port 8080 --store outbreak.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.FromEnv()

	listenPort := *port
	if listenPort == "" {
		listenPort = os.Getenv("PORT")
	}
	if listenPort == "" {
		listenPort = "8080"
	}

	archivePath := *dbPath
	if archivePath == "" {
		archivePath = os.Getenv("OUTBREAK_DB")
	}

	var st *store.Store
	if archivePath != "" {
		var err error
		st, err = store.New(archivePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		log.Info().Str("path", archivePath).Msg("run archive enabled")
	}

	srv := server.New(cfg, st, log)
	r := srv.SetupRouter()

	log.Info().Str("port", listenPort).Msg("starting server")
	if err := r.Run(":" + listenPort); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
