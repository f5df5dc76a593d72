package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petasbytes/entropy-agent/internal/config"
	"github.com/petasbytes/entropy-agent/internal/entropy"
	"github.com/petasbytes/entropy-agent/internal/metrics"
)

const version = "0.2.0"

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *zap.Logger

	// httpClient overrides the entropy client; tests only.
	httpClient *http.Client
}

func newRootCmd() *cobra.Command {
	return newAppCmd(&app{})
}

func newAppCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "agent",
		Short:         "Tool-calling agent with quantum entropy and exact arithmetic",
		Long:          "agent connects the Anthropic Messages API to two tools: a quantum random door picker with a local fallback and an exact multiplier.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "agent.yaml", "Path to a YAML config file (optional)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newChatCmd(a))
	root.AddCommand(newDoorCmd(a))
	root.AddCommand(newCodeCmd(a))
	root.AddCommand(newMCPCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) resolver(m *metrics.Metrics) (*entropy.Resolver, error) {
	opts := []entropy.Option{
		entropy.WithLogger(a.log.Named("entropy")),
		entropy.WithMetrics(m),
	}
	if a.httpClient != nil {
		opts = append(opts, entropy.WithHTTPClient(a.httpClient))
	}
	return entropy.New(a.cfg.Entropy, opts...)
}
