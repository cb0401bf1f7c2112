package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iudanet/tmasync/internal/agent"
	"github.com/iudanet/tmasync/internal/agent/middleware"
	"github.com/iudanet/tmasync/internal/client/api"
	"github.com/iudanet/tmasync/internal/client/badge"
	"github.com/iudanet/tmasync/internal/client/connectivity"
	"github.com/iudanet/tmasync/internal/client/storage/opener"
	"github.com/iudanet/tmasync/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tmasync-agent",
		Short:         "Background replay agent for the tmasync offline queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")

	load := func(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
		flags := make(map[string]*pflag.Flag, len(keys))
		for name, key := range keys {
			flags[key] = cmd.Flags().Lookup(name)
		}
		return config.Load(configPath, flags)
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd, map[string]string{
				"listen":      "agent.listen",
				"backend-url": "backend.url",
				"db":          "storage.path",
				"driver":      "storage.driver",
				"log-level":   "log.level",
			})
			if err != nil {
				return err
			}
			return serveAgent(cmd.Context(), cfg)
		},
	}
	serve.Flags().String("listen", "", "listen address")
	serve.Flags().String("backend-url", "", "academy backend URL")
	serve.Flags().String("db", "", "path to the queue database")
	serve.Flags().String("driver", "", "queue store driver (bolt|sqlite)")
	serve.Flags().String("log-level", "", "log level (debug|info|warn|error)")

	var (
		sender string
		ttl    time.Duration
	)
	token := &cobra.Command{
		Use:   "token",
		Short: "Issue a push token for a notification sender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.Agent.PushSecret == "" {
				return fmt.Errorf("agent.push_secret is not set, push endpoints accept any caller")
			}

			signed, err := middleware.GeneratePushToken([]byte(cfg.Agent.PushSecret), sender, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	token.Flags().StringVar(&sender, "sender", "", "sender name embedded in the token (required)")
	token.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	_ = token.MarkFlagRequired("sender")

	version := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tmasync agent\n")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}

	root.AddCommand(serve, token, version)
	return root
}

func serveAgent(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Log.NewLogger(os.Stderr)

	if cfg.Storage.Driver == config.DriverBolt {
		// bbolt держит эксклюзивную блокировку файла: CLI не сможет открыть очередь, пока агент работает
		logger.Warn("Bolt queue store is locked by the agent, use storage.driver=sqlite to share the queue with the CLI",
			"path", cfg.Storage.Path)
	}

	store, err := opener.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	notifier, err := badge.NewNotifier(cfg.Badge.Notifier, cfg.Badge.File, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create badge notifier: %w", err)
	}
	counter := badge.NewCounter(store, notifier, logger)

	backend := api.NewClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Backend.RequestTimeout)
	monitor := connectivity.NewMonitor(backend, cfg.Connectivity.ProbeInterval, logger)
	monitor.Check(ctx)

	a := agent.New(store, backend, counter, monitor, agent.Config{
		Version:        Version,
		PushSecret:     []byte(cfg.Agent.PushSecret),
		SyncInterval:   cfg.Agent.SyncInterval,
		RequestTimeout: cfg.Backend.RequestTimeout,
		LeaseGrace:     cfg.Queue.LeaseGrace,
		RateLimit:      cfg.Agent.RateLimit,
	}, logger)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Agent.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Agent.Listen, err)
	}

	logger.Info("Starting background agent", "version", Version, "backend", cfg.Backend.URL, "driver", cfg.Storage.Driver)

	return a.Run(ctx, ln, monitor.Run)
}
