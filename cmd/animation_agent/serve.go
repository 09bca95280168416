package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/animation-agent/internal/artifacts"
	"github.com/jonathan/animation-agent/internal/config"
	"github.com/jonathan/animation-agent/internal/generation"
	"github.com/jonathan/animation-agent/internal/history"
	"github.com/jonathan/animation-agent/internal/llm"
	"github.com/jonathan/animation-agent/internal/metrics"
	"github.com/jonathan/animation-agent/internal/pipeline"
	"github.com/jonathan/animation-agent/internal/rendering"
	"github.com/jonathan/animation-agent/internal/server"
	"github.com/jonathan/animation-agent/internal/store"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the animation generation HTTP API server",
	Long: `Starts the REST API: prompts submitted to POST /create-animation are queued,
turned into Manim code by the LLM, validated, rendered in a bounded worker
pool and exposed for download once complete.`,
	RunE: serveCmd,
}

var (
	serveConfigPath string
	servePort       int
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON or YAML config file (environment variables take priority)")
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")

	rootCmd.AddCommand(serveCommand)
}

func serveCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.InitLogger(cfg)

	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	st := store.New()
	manager, err := artifacts.NewManager(cfg.AnimationsDir, st)
	if err != nil {
		return err
	}

	renderer := rendering.NewManimRenderer(rendering.Config{
		Binary:           cfg.ManimBinary,
		Quality:          cfg.ManimQuality,
		MediaDir:         cfg.MediaDir,
		OutputDir:        cfg.AnimationsDir,
		Timeout:          cfg.RenderTimeout(),
		MaxArtifactBytes: cfg.MaxArtifactBytes(),
	})

	collector := metrics.NewCollector()

	opts := pipeline.Options{
		Store:     st,
		Generator: generation.NewLLMGenerator(client),
		Renderer:  renderer,
		Metrics:   collector,
		Workers:   cfg.Workers,
		QueueSize: cfg.QueueSize,
	}

	// Render history is optional: only archived when a database is configured.
	if cfg.DatabaseURL != "" {
		archive, err := history.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to render history database: %w", err)
		}
		defer archive.Close()
		opts.Archive = archive
	}

	orchestrator := pipeline.New(opts)
	orchestrator.Start()
	defer orchestrator.Stop()

	janitor := artifacts.NewJanitor(manager, cfg.CleanupTTL())
	if err := janitor.Start(cfg.JanitorSchedule); err != nil {
		return fmt.Errorf("failed to start artifact janitor: %w", err)
	}
	defer janitor.Stop()

	slog.Info("animation agent configured",
		"port", cfg.Port,
		"workers", cfg.Workers,
		"quality", cfg.ManimQuality,
		"animations_dir", cfg.AnimationsDir)

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Submitter: orchestrator,
		Store:     st,
		Artifacts: manager,
		Metrics:   collector,
	})
	return srv.Start()
}
