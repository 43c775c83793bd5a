package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aethra/marketconsole/internal/api"
	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/audit"
	"github.com/aethra/marketconsole/internal/auth"
	"github.com/aethra/marketconsole/internal/config"
	"github.com/aethra/marketconsole/internal/console"
	"github.com/aethra/marketconsole/internal/database"
	"github.com/aethra/marketconsole/internal/session"
)

// Version is set at build time
var Version = "1.0.0"

const brand = "Market Console"

var (
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Marketplace admin console",
	Long: `Server-rendered administration console for the marketplace API.

Run without arguments to start the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			configPath = os.Getenv("CONSOLE_CONFIG")
		}
		var err error
		cfg, err = config.Load(configPath, os.Getenv)
		if err != nil {
			return err
		}
		logger, err = cfg.Logging.NewLogger()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.Database, logger)
		if err != nil {
			return err
		}
		applied, err := database.RunMigrations(db, logger)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("Database is up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Printf("  applied %s\n", name)
		}
		fmt.Printf("%d migration(s) applied\n", len(applied))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Redacted().YAML()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("market-console %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default: CONSOLE_CONFIG env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// backing holds the stores selected by session.store
type backing struct {
	tokens   session.TokenStore
	settings config.SettingsStore
	audit    audit.Recorder
}

func openBacking(ctx context.Context) (*backing, error) {
	if cfg.Session.Store != config.StorePostgres {
		logger.Info("using in-memory session store")
		return &backing{
			tokens:   session.NewMemoryStore(),
			settings: config.NewMemorySettings(),
			audit:    audit.NewMemoryRecorder(0),
		}, nil
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if _, err := database.RunMigrations(db, logger); err != nil {
		return nil, err
	}
	return postgresBacking(ctx, db)
}

func postgresBacking(ctx context.Context, db *gorm.DB) (*backing, error) {
	sealer := auth.NewSealer(cfg.Session.Secret)
	if sealer.Ephemeral() {
		logger.Warn("session secret not set; stored tokens will not survive a restart")
	}
	settings, err := config.NewGormSettings(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &backing{
		tokens:   session.NewGormStore(db, sealer),
		settings: settings,
		audit:    audit.NewGormRecorder(db, logger),
	}, nil
}

func runServe(ctx context.Context) error {
	gin.SetMode(cfg.Server.Mode)

	store, err := openBacking(ctx)
	if err != nil {
		return err
	}

	client := apiclient.New(cfg.Backend.BaseURL,
		apiclient.WithTimeout(cfg.Backend.Timeout),
		apiclient.WithLogger(logger),
	)

	limiter := auth.NewLoginRateLimiter()
	go limiter.Run(ctx, time.Minute)

	registry := console.NewRegistry(brand, cfg.Session.IdleTimeout, logger)
	go registry.Run(ctx, cfg.Session.SweepInterval)

	c := console.New(console.Options{
		Client:   client,
		Guard:    session.NewGuard(store.tokens, client, limiter, logger),
		Settings: config.NewSettingsService(store.settings, cfg.Display, logger),
		Audit:    store.audit,
		Registry: registry,
		Logger:   logger,
	})

	router := api.SetupRouter(api.NewHandler(c, logger, Version), api.RouterOptions{
		Session: cfg.Session,
		CORS:    cfg.CORS,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("market console listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", client.BaseURL()),
			zap.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
