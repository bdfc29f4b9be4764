package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pipewatch/pipewatch/internal/assistant"
	"github.com/pipewatch/pipewatch/internal/config"
	"github.com/pipewatch/pipewatch/internal/poll"
	"github.com/pipewatch/pipewatch/internal/shutdown"
	"github.com/pipewatch/pipewatch/internal/state"
	"github.com/pipewatch/pipewatch/internal/stream"
	"github.com/pipewatch/pipewatch/internal/telemetry"
	"github.com/pipewatch/pipewatch/internal/tui"
)

var version = "dev"

// connStatus maps a stream lifecycle status onto the store's connection
// status.
func connStatus(st stream.Status) state.ConnStatus {
	switch st {
	case stream.StatusOpen:
		return state.ConnOpen
	case stream.StatusConnecting:
		return state.ConnConnecting
	default:
		return state.ConnClosed
	}
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	viper.SetEnvPrefix("PIPEWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "pipewatch",
		Short: "Terminal dashboard for the document processing pipeline",
		Long: `pipewatch is a terminal dashboard for operators of the document
processing pipeline. It polls the monitoring backend for snapshots,
streams live log events over a websocket, derives health state
(baselines, severities, insights) client-side, and renders everything
in a live TUI.`,
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .pipewatch/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Log file path")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pipewatch %s\n", version)
		},
	}

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live dashboard",
		Long: `Open the live dashboard against the monitoring backend.

Snapshots are polled periodically and log events stream in over a
websocket. The backend connection is best-effort: the dashboard keeps
running while disconnected and reconnects automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool(FlagVerbose) {
				logLevel.Set(slog.LevelDebug)
				logger.Debug("verbose logging enabled")
			}

			// Load config from files with defaults
			cfg, err := config.LoadConfig(viper.GetViper())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Apply CLI flag overrides (only if explicitly set)
			if cmd.Flags().Changed(FlagLogFile) {
				cfg.Paths.Log = viper.GetString(FlagLogFile)
			}
			if cmd.Flags().Changed(FlagSnapshotURL) {
				cfg.Backend.SnapshotURL = viper.GetString(FlagSnapshotURL)
			}
			if cmd.Flags().Changed(FlagStreamURL) {
				cfg.Backend.StreamURL = viper.GetString(FlagStreamURL)
			}
			if cmd.Flags().Changed(FlagPollInterval) {
				cfg.Backend.PollInterval = viper.GetDuration(FlagPollInterval)
			}
			if cmd.Flags().Changed(FlagPrefsFile) {
				cfg.Paths.Prefs = viper.GetString(FlagPrefsFile)
			}
			if cmd.Flags().Changed(FlagAssistantEnabled) {
				cfg.Assistant.Enabled = viper.GetBool(FlagAssistantEnabled)
			}
			if cmd.Flags().Changed(FlagAssistantURL) {
				cfg.Assistant.URL = viper.GetString(FlagAssistantURL)
			}

			// TUI mode: redirect logger to a rotating file so log output
			// does not corrupt the display.
			tuiEnabled := term.IsTerminal(int(os.Stdout.Fd()))
			if tuiEnabled {
				logDir := filepath.Dir(cfg.Paths.Log)
				if err := os.MkdirAll(logDir, 0o755); err != nil {
					return fmt.Errorf("create log directory: %w", err)
				}
				tuiLogResult, err := SetupTUILogger(logDir, logLevel, cfg.LogRotation)
				if err != nil {
					return err
				}
				defer func() { _ = tuiLogResult.Close() }()
				logger = tuiLogResult.Logger
				slog.SetDefault(logger)
			}

			logger.Info("pipewatch starting",
				"version", version,
				"snapshot_url", cfg.Backend.SnapshotURL,
				"stream_url", cfg.Backend.StreamURL,
				"poll_interval", cfg.Backend.PollInterval,
			)

			store := state.NewStore(state.Options{
				EventBuffer:       cfg.Engine.EventBuffer,
				LatencyHistory:    cfg.Engine.LatencyHistory,
				MetricHistory:     cfg.Engine.MetricHistory,
				TrendHistory:      cfg.Engine.TrendHistory,
				ActiveEventWindow: cfg.Engine.ActiveEventWindow,
				PrefsPath:         cfg.Paths.Prefs,
			})

			poller := poll.New(poll.Options{
				URL:      cfg.Backend.SnapshotURL,
				Interval: cfg.Backend.PollInterval,
			}, func(raw []byte) {
				store.IngestSnapshot(raw, time.Now())
			})

			conn := stream.New(stream.Options{
				URL:       cfg.Backend.StreamURL,
				Heartbeat: cfg.Backend.Heartbeat,
				Reconnect: cfg.Backend.ReconnectDelay,
			}, stream.Handlers{
				OnEvent: func(p telemetry.EventPayload) {
					store.IngestEvent(p, time.Now())
				},
				OnSnapshot: func(raw json.RawMessage) {
					store.IngestSnapshot(raw, time.Now())
				},
				OnStatus: func(st stream.Status) {
					store.SetConnection(connStatus(st), time.Now())
				},
				// A fresh snapshot right after (re)connect closes the gap
				// between poll ticks.
				OnOpen: func() {
					poller.Refresh()
				},
			})

			return shutdown.Run(cmd.Context(), logger, 10*time.Second, func(runCtx context.Context) error {
				ctx, cancel := context.WithCancel(runCtx)
				defer cancel()

				go poller.Run(ctx)
				go conn.Run(ctx)

				opts := []tui.Option{tui.WithOnQuit(cancel)}
				if cfg.Assistant.Enabled && cfg.Assistant.URL != "" {
					client := assistant.NewHTTPClient(cfg.Assistant.URL, cfg.Assistant.Timeout)
					opts = append(opts, tui.WithAssistant(client))
				}

				dashboard := tui.New(store, opts...)
				return dashboard.Run(ctx)
			})
		},
	}

	// Watch command specific flags
	watchCmd.Flags().String(FlagSnapshotURL, "", "Snapshot endpoint URL")
	watchCmd.Flags().String(FlagStreamURL, "", "Websocket stream URL")
	watchCmd.Flags().Duration(FlagPollInterval, 0, "Snapshot poll interval")
	watchCmd.Flags().String(FlagPrefsFile, "", "Layout preferences file path")
	watchCmd.Flags().Bool(FlagAssistantEnabled, true, "Enable the assistant pane")
	watchCmd.Flags().String(FlagAssistantURL, "", "Assistant endpoint URL")

	watchCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
