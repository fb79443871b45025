package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/deck"
	"github.com/deckforge/deckforge/generate"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/ratelimit"
	"github.com/deckforge/deckforge/render"
	"github.com/deckforge/deckforge/workflow"
)

func generateCmd() *cobra.Command {
	var (
		configPath string
		inputPath  string
		outputPath string
		format     string
		slides     int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a presentation from document text",
		Long: `Generate reads plain document text (from a file or stdin) and writes
the assembled presentation as HTML, markdown or JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(configPath, inputPath, outputPath, format, slides)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Input text file (- for stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format (html, markdown, json)")
	cmd.Flags().IntVarP(&slides, "slides", "n", 0, "Slide count (0 = derive from document, else 3 or more)")

	return cmd
}

func runGenerate(configPath, inputPath, outputPath, format string, slides int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	text, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	limiter, err := ratelimit.NewManager(cfg.RateLimiter())
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	client := llm.NewClient(cfg.Endpoint(), llm.WithTimeout(cfg.Model.Timeout))
	coord := workflow.NewCoordinator(client, limiter,
		workflow.WithGatewayOptions(generate.WithTemperature(cfg.Model.Temperature)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := coord.Run(ctx, text, workflow.Options{TargetSlides: slides})
	if err != nil {
		return err
	}

	slog.Info("Presentation ready",
		"run_id", result.RunID,
		"slides", len(result.Slides),
		"success_rate", result.Stats.SuccessRate)

	out, err := formatResult(result, format)
	if err != nil {
		return err
	}
	return writeOutput(outputPath, out)
}

func formatResult(result *deck.Result, format string) (string, error) {
	switch format {
	case "html":
		return render.HTML(result)
	case "markdown", "md":
		return render.Markdown(result), nil
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format %q (want html, markdown or json)", format)
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func writeOutput(path, content string) error {
	if path == "-" {
		_, err := fmt.Print(content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
