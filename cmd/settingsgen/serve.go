package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/settings-generator/backend/internal/api"
	"github.com/settings-generator/backend/internal/config"
	"github.com/settings-generator/backend/internal/session"
	"github.com/settings-generator/backend/internal/storage"
	"github.com/settings-generator/backend/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the settings generator web server",
	Long: `Starts the HTTP API and the embedded form. Configuration is read from an
XML file next to the executable (created with defaults on first run) unless
--config is given. PORT, DATA_DIR and LOG_LEVEL override the file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to settingsgen.config")
}

func runServe(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cmd.Flags().Changed("log-level") {
		l, err := newLogger(cfg.Advanced.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	schema, closeSniffer, err := newSchemaParser(cfg.SnifferName(), cfg.Storage.TempDirectory)
	if err != nil {
		return err
	}
	defer closeSniffer()

	workspaces := session.NewManager(fileStore, schema, logger.Named("workspace"))
	workspaces.SetMaxWorkspaces(cfg.Processing.MaxWorkspaces)
	defer workspaces.Close()

	e := newEcho(cfg, workspaces, fileStore, schema.SnifferName())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egctx := errgroup.WithContext(ctx)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
	}

	printBanner(cmd, path, cfg, schema.SnifferName())

	eg.Go(func() error {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Background workspace cleanup
	eg.Go(func() error {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-ticker.C:
				if n := workspaces.CleanupOldWorkspaces(cfg.WorkspaceTimeout()); n > 0 {
					logger.Info("expired workspaces removed", zap.Int("count", n))
				}
			}
		}
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("shutting down server")
		return s.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// newEcho wires middleware, API routes and the embedded form.
func newEcho(cfg *config.AppConfig, workspaces api.WorkspaceManager, store storage.Store, snifferName string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.SetupMiddleware(e)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || strings.HasSuffix(path, "/keepalive")
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Workspaces:  workspaces,
		Store:       store,
		Version:     Version,
		SnifferName: snifferName,
	}))

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", zap.Error(err))
		}
	}

	return e
}

func resolveConfigPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), "settingsgen.config"), nil
}

func printBanner(cmd *cobra.Command, path string, cfg *config.AppConfig, sniffer string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(out, "║           Settings Generator Server                       ║\n")
	fmt.Fprintf(out, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(out, "║  Version:    %-45s║\n", Version)
	fmt.Fprintf(out, "║  Build Time: %-45s║\n", BuildTime)
	fmt.Fprintf(out, "║  Sniffer:    %-45s║\n", sniffer)
	fmt.Fprintf(out, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(out, "║  Config:    %-46s║\n", path)
	fmt.Fprintf(out, "║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Fprintf(out, "║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Fprintf(out, "╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
}
