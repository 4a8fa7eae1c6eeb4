package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/modegate/internal/config"
	"github.com/fyrsmithlabs/modegate/internal/dispatcher"
	"github.com/fyrsmithlabs/modegate/internal/logging"
	"github.com/fyrsmithlabs/modegate/internal/metrics"
	"github.com/fyrsmithlabs/modegate/internal/modes"
	"github.com/fyrsmithlabs/modegate/internal/rpc"
	"github.com/fyrsmithlabs/modegate/internal/session"
	"github.com/fyrsmithlabs/modegate/internal/task"
)

// newServeCmd builds the explicit "serve" subcommand. Its flags and
// RunE are also attached directly to the root command by main.go, so
// bare `modegate` (no subcommand) runs the server the same way.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP stdio server (default command)",
	}
	attachServeFlags(cmd)
	return cmd
}

// attachServeFlags registers the serve flags on cmd and wires its RunE
// to runServe.
func attachServeFlags(cmd *cobra.Command) {
	var (
		configPath         string
		projectRoot        string
		configDir          string
		logLevel           string
		logFile            string
		logMetricsInterval time.Duration
	)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		overrides := config.Overrides{
			ProjectRoot: projectRoot,
			ConfigDir:   configDir,
			LogLevel:    logLevel,
			LogFile:     logFile,
		}
		return runServe(cmd.Context(), configPath, overrides, logMetricsInterval)
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "project directory searched for .roomodes")
	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory holding the global modes.yaml")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn, or error")
	cmd.Flags().StringVar(&logFile, "log-file", "", "file to receive log output instead of stderr")
	cmd.Flags().DurationVar(&logMetricsInterval, "log-metrics-interval", 0, "log a metrics snapshot on this interval (0 disables)")
}

// runServe implements the full startup order: load config, validate,
// init logger, load modes, construct the orchestrator/session manager/
// dispatcher, install signal handling, run the stdio read loop, then
// stop background goroutines and flush the logger on the way out.
func runServe(ctx context.Context, configPath string, overrides config.Overrides, logMetricsInterval time.Duration) error {
	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(ctx, "starting modegate",
		zap.String("project_root", cfg.ProjectRoot),
		zap.String("config_dir", cfg.ConfigDir),
		zap.Duration("session_timeout", cfg.SessionTimeout.Duration()),
		zap.Duration("cleanup_interval", cfg.CleanupInterval.Duration()))

	registry, err := loadModeRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load modes: %w", err)
	}

	orchestrator := task.NewOrchestrator(registry, task.DefaultCatalog())
	sessions := session.NewManager(cfg.SessionTimeout.Duration())
	recorder := metrics.New(logger.Underlying())
	d := dispatcher.New(registry, orchestrator, sessions, logger, recorder)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info(runCtx, "received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	go session.RunSweeper(runCtx, sessions, cfg.CleanupInterval.Duration(), logger.Underlying())
	if logMetricsInterval > 0 {
		go metrics.LogSnapshot(runCtx, recorder, logMetricsInterval, logger.Underlying())
	}

	fmt.Fprintln(os.Stderr, "modegate stdio server started")

	if err := runLoop(runCtx, d, os.Stdin, os.Stdout, logger); err != nil {
		return fmt.Errorf("stdio loop error: %w", err)
	}

	logger.Info(ctx, "modegate stdio server shutdown complete")
	return nil
}

// runLoop reads newline-delimited JSON-RPC requests until ctx is
// cancelled or the input stream is exhausted, dispatching each to d and
// writing its response (notifications receive none).
func runLoop(ctx context.Context, d *dispatcher.Dispatcher, stdin io.Reader, stdout io.Writer, logger *logging.Logger) error {
	reader := rpc.NewReader(stdin)
	writer := rpc.NewWriter(stdout)

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(done)
	}()

	for {
		select {
		case <-done:
			return nil
		default:
		}

		result, err := reader.ReadMessage()
		if err != nil {
			return nil // io.EOF: the client closed stdin
		}

		if result.Err != nil {
			logger.Warn(ctx, "malformed request", zap.Error(result.Err))
			if err := writer.WriteResponse(rpc.NewError(nil, errorCode(result.Err), result.Err.Error(), nil)); err != nil {
				logger.Error(ctx, "failed to write error response", zap.Error(err))
			}
			continue
		}

		req := result.Request
		res, errObj := d.Dispatch(ctx, req)
		if req.IsNotification() {
			continue
		}
		if errObj != nil {
			if err := writer.WriteResponse(rpc.NewError(req.ID, errObj.Code, errObj.Message, errObj.Data)); err != nil {
				logger.Error(ctx, "failed to write error response", zap.Error(err))
			}
			continue
		}
		if err := writer.WriteResponse(rpc.NewResponse(req.ID, res)); err != nil {
			logger.Error(ctx, "failed to write response", zap.Error(err))
		}
	}
}

func errorCode(err error) int {
	var parseErr *rpc.ParseError
	if errors.As(err, &parseErr) {
		return rpc.CodeParseError
	}
	return rpc.CodeInvalidRequest
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	logCfg.Output.File = cfg.LogFile
	logCfg.Output.Stderr = cfg.LogFile == ""

	return logging.NewLogger(logCfg)
}

func loadModeRegistry(cfg *config.Config, logger *logging.Logger) (*modes.Registry, error) {
	registry := modes.NewRegistry()
	ctx := context.Background()

	if cfg.ConfigDir != "" {
		globalModes, err := modes.LoadFile(modes.GlobalPath(cfg.ConfigDir))
		if err != nil {
			logger.Warn(ctx, "failed to load global modes, treating as empty", zap.Error(err))
		} else if err := registry.LoadGlobal(globalModes); err != nil {
			logger.Warn(ctx, "global modes rejected, treating as empty", zap.Error(err))
		}
	}

	projectModes, err := modes.LoadFile(modes.ProjectPath(cfg.ProjectRoot))
	if err != nil {
		logger.Warn(ctx, "failed to load project modes, treating as empty", zap.Error(err))
	} else if err := registry.LoadProject(projectModes); err != nil {
		logger.Warn(ctx, "project modes rejected, treating as empty", zap.Error(err))
	}

	return registry, nil
}
