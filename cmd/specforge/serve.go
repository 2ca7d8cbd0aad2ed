package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yousuf/specforge-mcp/internal/ir"
	"github.com/yousuf/specforge-mcp/internal/proxy"
)

var serveCmd = &cobra.Command{
	Use:   "serve <spec-file>",
	Short: "Serve an OpenAPI spec directly as a live MCP server",
	Long: `Map a spec (or a saved server config, with --config) and serve it as an
MCP server without generating any code. Tool calls are proxied to the
upstream API over HTTP. Defaults to stdio transport; pass --http to serve
the streamable HTTP transport instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpAddr, err := cmd.Flags().GetString("http")
		if err != nil {
			return err
		}
		fromConfig, err := cmd.Flags().GetBool("config")
		if err != nil {
			return err
		}

		var cfg ir.ServerConfig
		if fromConfig {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return fmt.Errorf("failed to parse config: %w", err)
			}
		} else {
			cfg, err = loadConfig(args[0])
			if err != nil {
				return err
			}
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		exec := proxy.NewExecutor()
		if httpAddr != "" {
			return serveHTTP(cfg, exec, logger, httpAddr)
		}
		return serveStdio(cmd.Context(), cfg, exec, logger)
	},
}

func init() {
	serveCmd.Flags().String("http", "", "Serve the streamable HTTP transport on this address (e.g. :3000)")
	serveCmd.Flags().Bool("config", false, "Treat the argument as a saved server config instead of an OpenAPI spec")
	rootCmd.AddCommand(serveCmd)
}

func serveStdio(ctx context.Context, cfg ir.ServerConfig, exec *proxy.Executor, logger *zap.Logger) error {
	server, err := proxy.NewServer(cfg, exec, logger)
	if err != nil {
		return err
	}
	logger.Info("serving MCP over stdio",
		zap.String("server", cfg.Name),
		zap.Int("tools", len(cfg.EnabledTools())))
	return server.Run(ctx, &mcp.StdioTransport{})
}

func serveHTTP(cfg ir.ServerConfig, exec *proxy.Executor, logger *zap.Logger, addr string) error {
	// Build once up front so config problems surface before binding the port.
	if _, err := proxy.NewServer(cfg, exec, logger); err != nil {
		return err
	}

	// A fresh server per request lets the SDK manage sessions.
	handler := mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		server, err := proxy.NewServer(cfg, exec, logger)
		if err != nil {
			logger.Error("failed to build MCP server", zap.Error(err))
			return nil
		}
		return server
	}, &mcp.StreamableHTTPOptions{})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over HTTP",
			zap.String("addr", addr),
			zap.String("server", cfg.Name),
			zap.Int("tools", len(cfg.EnabledTools())))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
