package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/wordsync/internal/bootstrap"
	"github.com/at-ishikawa/wordsync/internal/config"
	"github.com/at-ishikawa/wordsync/internal/database"
	"github.com/at-ishikawa/wordsync/internal/dictionary"
	"github.com/at-ishikawa/wordsync/internal/server"
	"github.com/at-ishikawa/wordsync/internal/translation"
	"github.com/at-ishikawa/wordsync/schemas"
)

var configFile string

func main() {
	var migrate bool
	rootCmd := &cobra.Command{
		Use:           "wordsync-server",
		Short:         "Remote translation store HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), migrate)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&migrate, "migrate", false, "Create the translations table before serving")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, migrate bool) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(context.Context) error {
		return db.Close()
	})
	if migrate {
		if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
			_ = db.Close()
			return fmt.Errorf("database.Migrate() > %w", err)
		}
	}

	dict, err := dictionary.LoadFile(cfg.Dictionary.Path)
	if err != nil {
		slog.Warn("failed to load the dictionary, serving without it", "error", err)
		dict = dictionary.New(nil)
	}

	srv := newServer(cfg, translation.NewDBRepository(db), dict)
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func newServer(cfg *config.Config, repo translation.Repository, dict *dictionary.Dictionary) *http.Server {
	handler := server.NewTranslationHandler(repo, dict)
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.CORSMiddleware(h2c.NewHandler(handler.Routes(), &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
