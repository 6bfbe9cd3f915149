package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/metrics"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/projects"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/storage"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/telegram"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/web"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
	"github.com/amirenger/My-Final-Telegram-Bot/pkg/config"
)

var (
	configFile string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "approval-bot",
	Short: "Approval Bot - content approval workflow over Telegram",
	Long: `Approval Bot coordinates a manager, editors and clients through a
content approval workflow: editors submit cuts, clients review them and
the manager makes the final call.`,
	RunE: runBot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("approval-bot %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "address", "a", "", "webhook listen address (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStorage builds the configured backend.
func openStorage(cfg StorageConfig) (storage.Storage, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	var backend storage.Storage
	switch cfg.Backend {
	case "sqlite":
		backend = storage.NewSQLiteStorage(cfg.Path)
	default:
		backend = storage.NewJSONStorage(cfg.Path)
	}
	if err := backend.Open(); err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	return backend, nil
}

func runBot(cmd *cobra.Command, args []string) error {
	var cfg *Config
	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	if listenAddr != "" {
		cfg.Server.Address = listenAddr
	}

	backend, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer backend.Close()

	store := projects.NewStore(backend)
	if err := store.Load(context.Background()); err != nil {
		// Start with an empty mapping; saves will keep reporting until
		// the backend recovers.
		log.Printf("warning: %v", err)
		metrics.StorageErrorsTotal.Inc()
	}

	client, err := telegram.NewClient(telegram.Config{
		Token:         cfg.Telegram.Token,
		RatePerSecond: cfg.Telegram.RatePerSecond,
	})
	if err != nil {
		return fmt.Errorf("create telegram client: %w", err)
	}

	router := workflow.NewRouter(store, telegram.NewNotifier(client), workflow.Config{
		ManagerID:  cfg.Telegram.ManagerID,
		SessionTTL: cfg.Workflow.SessionTTL,
	})

	webhookServer := web.NewServer(web.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, cfg.Telegram.Token, router, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	if cfg.Telegram.WebhookURL != "" {
		url := cfg.Telegram.WebhookURL + "/webhook/" + cfg.Telegram.Token
		if err := client.SetWebhook(ctx, url); err != nil {
			return fmt.Errorf("register webhook: %w", err)
		}
		log.Printf("webhook registered at %s", cfg.Telegram.WebhookURL)
	}

	log.Printf("starting approval-bot %s", config.Version)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(webhookServer.Start)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Address)
		g.Go(metricsServer.Start)
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := webhookServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("webhook server shutdown: %v", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("metrics server shutdown: %v", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	log.Printf("bot stopped")
	return nil
}
