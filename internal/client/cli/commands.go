package cli

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iudanet/tmasync/internal/client/iocli"
	"github.com/iudanet/tmasync/internal/client/offline"
	"github.com/iudanet/tmasync/internal/config"
	"github.com/iudanet/tmasync/internal/models"
)

// VersionInfo is set via ldflags during build
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// rootFlags глобальные флаги, перекрывающие ключи конфигурации
type rootFlags struct {
	configPath string
}

// configFlags связывает флаги командной строки с ключами конфигурации
var configFlags = []struct {
	name  string
	key   string
	usage string
}{
	{name: "backend-url", key: "backend.url", usage: "academy backend URL"},
	{name: "agent-url", key: "agent.url", usage: "background agent URL"},
	{name: "db", key: "storage.path", usage: "path to the queue database"},
	{name: "driver", key: "storage.driver", usage: "queue store driver (bolt|sqlite)"},
	{name: "log-level", key: "log.level", usage: "log level (debug|info|warn|error)"},
}

// NewRootCommand builds the tmasync command tree
func NewRootCommand(info VersionInfo, io iocli.IO) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "tmasync",
		Short:         "Offline action queue for the academy client",
		Long:          "tmasync records attendance, forms and training plans even without a connection and sends them once the backend is reachable.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath(), "config file")
	for _, f := range configFlags {
		root.PersistentFlags().String(f.name, "", f.usage)
	}

	// withCli загружает конфигурацию, открывает сервисы и закрывает их после команды
	withCli := func(run func(ctx context.Context, c *Cli, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			bound := make(map[string]*pflag.Flag, len(configFlags))
			for _, f := range configFlags {
				if flag := cmd.Flags().Lookup(f.name); flag != nil {
					bound[f.key] = flag
				}
			}

			cfg, err := config.Load(flags.configPath, bound)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

			ctx := cmd.Context()
			c, err := Open(ctx, cfg, io, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					logger.Error("failed to close storage", "error", err)
				}
			}()

			return run(ctx, c, cmd, args)
		}
	}

	root.AddCommand(
		newAttendanceCommand(withCli),
		newFormCommand(withCli),
		newPlanCommand(withCli),
		newPerformanceCommand(withCli),
		newMessageCommand(withCli),
		newCallCommand(withCli),
		newSyncCommand(withCli),
		&cobra.Command{
			Use:   "status",
			Short: "Show connection, queue and badge state",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
				return c.runStatus(ctx)
			}),
		},
		newQueueCommand(withCli),
		newBadgeCommand(withCli),
		&cobra.Command{
			Use:   "watch",
			Short: "Stay connected: auto-sync on reconnect and relay agent messages",
			Long:  "watch keeps running until interrupted. Press Enter to mark notifications as seen and clear the badge.",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, cmd *cobra.Command, _ []string) error {
				return c.runWatch(ctx, lineSignals(cmd.InOrStdin()))
			}),
		},
		newConfigCommand(io, flags),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				io.Printf("tmasync\n")
				io.Printf("Version:    %s\n", info.Version)
				io.Printf("Build Date: %s\n", info.BuildDate)
				io.Printf("Git Commit: %s\n", info.GitCommit)
			},
		},
	)

	return root
}

type runner = func(run func(ctx context.Context, c *Cli, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error

// payloadFlags флаги тела запроса, общие для команд с произвольным payload
func payloadFlags(cmd *cobra.Command) *string {
	return cmd.Flags().String("data", "", "JSON payload or @file; key=value arguments are merged into it")
}

func newAttendanceCommand(withCli runner) *cobra.Command {
	var opts AttendanceOptions

	mark := &cobra.Command{
		Use:   "mark",
		Short: "Mark a player present or absent",
		Args:  cobra.NoArgs,
		RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
			return c.runMarkAttendance(ctx, opts)
		}),
	}
	mark.Flags().StringVar(&opts.PlayerID, "player", "", "player id (required)")
	mark.Flags().StringVar(&opts.Date, "date", "", "session date YYYY-MM-DD (default today)")
	mark.Flags().StringVar(&opts.Sport, "sport", "", "sport of the session")
	mark.Flags().BoolVar(&opts.Absent, "absent", false, "mark the player absent")
	_ = mark.MarkFlagRequired("player")

	cmd := &cobra.Command{Use: "attendance", Short: "Attendance records"}
	cmd.AddCommand(mark)
	return cmd
}

func newFormCommand(withCli runner) *cobra.Command {
	submit := &cobra.Command{
		Use:   "submit <form-type> [key=value...]",
		Short: "Submit a form",
		Args:  cobra.MinimumNArgs(1),
	}
	data := payloadFlags(submit)
	endpoint := submit.Flags().String("endpoint", "", "backend endpoint of the form (required)")
	_ = submit.MarkFlagRequired("endpoint")

	submit.RunE = withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
		payload, err := parsePayload(*data, args[1:])
		if err != nil {
			return err
		}
		return c.runSubmitForm(ctx, args[0], *endpoint, payload)
	})

	cmd := &cobra.Command{Use: "form", Short: "Generic forms"}
	cmd.AddCommand(submit)
	return cmd
}

// newPayloadCommand команда вида "<group> <verb> [key=value...]"
func newPayloadCommand(withCli runner, group, groupShort, verb, short string, run func(ctx context.Context, c *Cli, payload map[string]any) error) *cobra.Command {
	sub := &cobra.Command{
		Use:   verb + " [key=value...]",
		Short: short,
	}
	data := payloadFlags(sub)

	sub.RunE = withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
		payload, err := parsePayload(*data, args)
		if err != nil {
			return err
		}
		if len(payload) == 0 {
			return fmt.Errorf("payload is empty, use --data or key=value arguments")
		}
		return run(ctx, c, payload)
	})

	cmd := &cobra.Command{Use: group, Short: groupShort}
	cmd.AddCommand(sub)
	return cmd
}

func newPlanCommand(withCli runner) *cobra.Command {
	return newPayloadCommand(withCli, "plan", "Training plans", "create", "Create a training plan",
		func(ctx context.Context, c *Cli, payload map[string]any) error {
			return c.runCreatePlan(ctx, payload)
		})
}

func newPerformanceCommand(withCli runner) *cobra.Command {
	return newPayloadCommand(withCli, "performance", "Player performance", "update", "Record a performance update",
		func(ctx context.Context, c *Cli, payload map[string]any) error {
			return c.runUpdatePerformance(ctx, payload)
		})
}

func newMessageCommand(withCli runner) *cobra.Command {
	return newPayloadCommand(withCli, "message", "Messages", "send", "Send a message",
		func(ctx context.Context, c *Cli, payload map[string]any) error {
			return c.runSendMessage(ctx, payload)
		})
}

func newCallCommand(withCli runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <endpoint> [key=value...]",
		Short: "Call any backend endpoint, queueing it when offline",
		Args:  cobra.MinimumNArgs(1),
	}
	data := payloadFlags(cmd)
	kind := cmd.Flags().String("kind", models.KindGenericForm, "action kind used for queue filtering")
	method := cmd.Flags().StringP("method", "X", http.MethodPost, "HTTP method")
	headers := cmd.Flags().StringArrayP("header", "H", nil, "extra header \"Name: value\"")

	cmd.RunE = withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
		payload, err := parsePayload(*data, args[1:])
		if err != nil {
			return err
		}
		h, err := parseHeaders(*headers)
		if err != nil {
			return err
		}
		return c.runCall(ctx, *kind, payload, offline.Options{
			Endpoint: args[0],
			Method:   *method,
			Headers:  h,
		})
	})

	return cmd
}

func newSyncCommand(withCli runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Send queued actions now",
		Args:  cobra.NoArgs,
	}
	kind := cmd.Flags().String("kind", "", "sync only actions of this kind")
	viaAgent := cmd.Flags().Bool("agent", false, "ask the background agent to sync")

	cmd.RunE = withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
		return c.runSync(ctx, *kind, *viaAgent)
	})

	return cmd
}

func newQueueCommand(withCli runner) *cobra.Command {
	cmd := &cobra.Command{Use: "queue", Short: "Inspect and manage queued actions"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List actions waiting to sync",
		Args:  cobra.NoArgs,
	}
	kind := list.Flags().String("kind", "", "only actions of this kind")
	list.RunE = withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
		return c.runQueueList(ctx, *kind)
	})

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one queued action",
			Args:  cobra.ExactArgs(1),
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
				return c.runQueueShow(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "failed",
			Short: "List actions that could not be synced",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
				return c.runQueueFailed(ctx)
			}),
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Drop a queued action without sending it",
			Args:  cobra.ExactArgs(1),
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
				return c.runQueueRemove(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "purge-failed",
			Short: "Delete actions that could not be synced",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
				return c.runQueuePurgeFailed(ctx)
			}),
		},
	)

	return cmd
}

func newBadgeCommand(withCli runner) *cobra.Command {
	cmd := &cobra.Command{Use: "badge", Short: "Notification badge"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the badge count",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
				return c.runBadgeGet(ctx)
			}),
		},
		&cobra.Command{
			Use:   "set <count>",
			Short: "Set the badge count",
			Args:  cobra.ExactArgs(1),
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
				count, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid badge count %q", args[0])
				}
				return c.runBadgeSet(ctx, count)
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the badge",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
				return c.runBadgeClear(ctx)
			}),
		},
		&cobra.Command{
			Use:   "init",
			Short: "Show the persisted badge count on the host",
			Args:  cobra.NoArgs,
			RunE: withCli(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
				return c.runBadgeInit(ctx)
			}),
		},
	)

	return cmd
}

func newConfigCommand(io iocli.IO, flags *rootFlags) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteDefault(flags.configPath, force); err != nil {
				return err
			}
			io.Printf("✓ Configuration written to %s\n", flags.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd := &cobra.Command{Use: "config", Short: "Configuration"}
	cmd.AddCommand(initCmd)
	return cmd
}
