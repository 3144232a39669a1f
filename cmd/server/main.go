package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nahidhasan98/git-diff-server/internal/app"
	"github.com/nahidhasan98/git-diff-server/internal/config"
	"github.com/nahidhasan98/git-diff-server/internal/dispatch"
	"github.com/nahidhasan98/git-diff-server/internal/gitdiff"
	"github.com/nahidhasan98/git-diff-server/internal/handlers"
	"github.com/nahidhasan98/git-diff-server/internal/logger"
	"github.com/nahidhasan98/git-diff-server/internal/runner"
	"github.com/nahidhasan98/git-diff-server/internal/server"
)

// Global variables for configuration and services
var (
	cfg     *config.Config
	log     *logger.Logger
	errChan = make(chan error, 1)
)

// flagOverrides holds command-line values that take precedence over the
// environment
type flagOverrides struct {
	host      string
	port      int
	scriptDir string
	ref       string
	ui        string
	logLevel  string
	showQR    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides

	cmd := &cobra.Command{
		Use:   "git-diff-server",
		Short: "Serve commit messages generated from the current git diff",
		Long: "git-diff-server exposes a small HTTP API and browser UI. Each request captures\n" +
			"the git diff, hands it to a per-model script and returns the script's last\n" +
			"output line as the commit message.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "Host to bind (env SERVER_HOST)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (env SERVER_PORT)")
	cmd.Flags().StringVar(&flags.scriptDir, "script-dir", "", "Directory containing the model scripts (env SCRIPT_DIR)")
	cmd.Flags().StringVar(&flags.ref, "ref", "", "Reference to diff against (env GIT_DIFF_REF)")
	cmd.Flags().StringVar(&flags.ui, "ui", "", "UI asset to serve at / (env UI_FILE)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (env LOG_LEVEL)")
	cmd.Flags().BoolVar(&flags.showQR, "qr", false, "Print a QR code of the UI URL on start-up (env SHOW_QR)")

	return cmd
}

func run(cmd *cobra.Command, flags *flagOverrides) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initialize(cmd, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Initialization error: %v\n", err)
		return err
	}

	httpServer, err := startWebServer()
	if err != nil {
		log.Error("Failed to start HTTP server", err)
		return err
	}

	app.PrintBanner(os.Stdout, cfg.Server.URL(), dispatch.NewCatalog(cfg.Scripts.Dir).Models(), cfg.UI.ShowQR)

	// Handle shutdown signals
	waitForShutdown(ctx, cancel)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during HTTP server shutdown", err)
		return err
	}

	log.Info("Application stopped")
	return nil
}

func initialize(cmd *cobra.Command, flags *flagOverrides) error {
	var err error

	// Load configuration
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize logger
	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Starting git diff server")
	log.With("script_dir", cfg.Scripts.Dir).
		With("ref", cfg.Git.Ref).
		With("ui", cfg.UIPath()).
		Debug("Configuration loaded")

	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, flags *flagOverrides, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("host") {
		cfg.Server.Host = flags.host
	}
	if changed("port") {
		cfg.Server.Port = flags.port
	}
	if changed("script-dir") {
		cfg.Scripts.Dir = flags.scriptDir
	}
	if changed("ref") {
		cfg.Git.Ref = flags.ref
	}
	if changed("ui") {
		cfg.UI.File = flags.ui
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("qr") {
		cfg.UI.ShowQR = flags.showQR
	}
}

func startWebServer() (*server.Server, error) {
	log.Info("Starting HTTP server...")

	execRunner := runner.NewExecRunner()

	differ := gitdiff.New(execRunner,
		gitdiff.WithBinary(cfg.Git.Binary),
		gitdiff.WithRef(cfg.Git.Ref),
		gitdiff.WithWorkDir(cfg.Git.WorkDir),
	)

	dispatcher := dispatch.New(
		dispatch.NewCatalog(cfg.Scripts.Dir),
		differ,
		execRunner,
		log,
		dispatch.WithDiffEnvVar(cfg.Scripts.DiffEnvVar),
		dispatch.WithTimeout(cfg.Scripts.Timeout),
	)

	// Initialize HTTP handlers
	httpHandler := handlers.New(dispatcher, log, cfg.UIPath())

	// Initialize and start HTTP server
	httpServer := server.New(cfg, httpHandler, log)
	if err := httpServer.Start(errChan); err != nil {
		return nil, err
	}

	return httpServer, nil
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	// Wait for either the server to fail or for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		log.Error("Service failed", err)
	case <-sigChan:
		log.Info("Received shutdown signal")
	case <-ctx.Done():
	}

	cancel()
}
