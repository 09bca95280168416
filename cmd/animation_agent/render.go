package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/animation-agent/internal/config"
	"github.com/jonathan/animation-agent/internal/generation"
	"github.com/jonathan/animation-agent/internal/llm"
	"github.com/jonathan/animation-agent/internal/rendering"
	"github.com/jonathan/animation-agent/internal/validation"
)

var renderCommand = &cobra.Command{
	Use:   "render <prompt>",
	Short: "Generate and render a single animation from the terminal",
	Long: `Runs the full pipeline once without the HTTP server: the prompt is turned
into Manim code, statically validated and rendered. The path of the finished
video is printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: renderCmd,
}

var (
	renderConfigPath string
	renderOutDir     string
	renderQuality    string
	renderTimeout    int
)

func init() {
	renderCommand.Flags().StringVar(&renderConfigPath, "config", "", "Path to a JSON or YAML config file")
	renderCommand.Flags().StringVarP(&renderOutDir, "out", "o", "", "Output directory for the video and source file (overrides config)")
	renderCommand.Flags().StringVarP(&renderQuality, "quality", "q", "", "Render quality: low, medium or high (overrides config)")
	renderCommand.Flags().IntVar(&renderTimeout, "timeout", 0, "Render timeout in seconds (overrides config)")

	rootCmd.AddCommand(renderCommand)
}

func renderCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	prompt := args[0]

	cfg, err := config.Load(renderConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.AnimationsDir = renderOutDir
	}
	if cmd.Flags().Changed("quality") {
		cfg.ManimQuality = renderQuality
	}
	if cmd.Flags().Changed("timeout") {
		cfg.RenderTimeoutSeconds = renderTimeout
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

	generator := generation.NewLLMGenerator(client)
	src, err := generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("code generation failed: %w", err)
	}

	if violations := validation.Validate(src.Code); !violations.Empty() {
		return fmt.Errorf("generated code failed validation: %s", violations.Summary())
	}

	renderer := rendering.NewManimRenderer(rendering.Config{
		Binary:           cfg.ManimBinary,
		Quality:          cfg.ManimQuality,
		MediaDir:         cfg.MediaDir,
		OutputDir:        cfg.AnimationsDir,
		Timeout:          cfg.RenderTimeout(),
		MaxArtifactBytes: cfg.MaxArtifactBytes(),
	})

	path, err := renderer.Render(ctx, src.Code, uuid.New().String())
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	_, _ = fmt.Fprintln(os.Stdout, path)
	return nil
}
