package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petasbytes/entropy-agent/internal/mcpserver"
	"github.com/petasbytes/entropy-agent/internal/metrics"
)

func newMCPCmd(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve both tools over MCP on stdio",
		Long:  "mcp serves get_quantum_random_door and calculate_security_code to an MCP client on stdin/stdout. Logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				stop, err := serveMetrics(ctx, metricsAddr, reg, a.log)
				if err != nil {
					return err
				}
				defer stop()
			}

			res, err := a.resolver(m)
			if err != nil {
				return err
			}
			server := mcpserver.New(res, a.cfg.Doors, version, mcpserver.Options{
				Logger:  a.log.Named("mcp"),
				Metrics: m,
			})
			a.log.Info("serving MCP on stdio", zap.Int("doors", a.cfg.Doors))
			return mcpserver.Serve(ctx, server, &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	return cmd
}

// serveMetrics starts a /metrics listener on addr and returns its shutdown func.
func serveMetrics(ctx context.Context, addr string, g prometheus.Gatherer, log *zap.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
