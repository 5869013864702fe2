package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shotscout/internal/planner"
	"shotscout/internal/shotplan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var topic string
	var narrationPath string
	var outputPath string
	var compileOnly bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a shot plan from an episode topic and narration",
		Long: "Plan drafts a shot plan with the configured LLM when an API key is\n" +
			"present and the draft converts cleanly; otherwise it compiles one\n" +
			"deterministically from the narration. Pass \"-\" as the narration\n" +
			"path to read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			topic = strings.TrimSpace(topic)
			if topic == "" {
				return fmt.Errorf("--topic is required")
			}
			narration, err := readNarration(cmd, narrationPath)
			if err != nil {
				return err
			}

			var provider planner.DraftProvider
			if !compileOnly && strings.TrimSpace(cfg.Planner.APIKey) != "" {
				provider = planner.NewClient(planner.ClientConfig{
					APIKey:         cfg.Planner.APIKey,
					BaseURL:        cfg.Planner.BaseURL,
					Model:          cfg.Planner.Model,
					TimeoutSeconds: cfg.Planner.TimeoutSeconds,
				})
			}

			plan, source := planner.BuildPlan(cmd.Context(), provider, topic, narration, logger)

			target := strings.TrimSpace(outputPath)
			if target == "" {
				return writeJSON(cmd, plan)
			}
			if err := writePlanFile(plan, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s shot plan (%d scenes) to %s\n", source, len(plan.Scenes), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Canonical episode topic")
	cmd.Flags().StringVarP(&narrationPath, "narration", "n", "", "Narration text file, or - for stdin")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Plan destination (defaults to stdout)")
	cmd.Flags().BoolVar(&compileOnly, "compile-only", false, "Skip the LLM draft and compile deterministically")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func readNarration(cmd *cobra.Command, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("--narration is required")
	}
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read narration from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read narration file: %w", err)
	}
	return string(data), nil
}

func writePlanFile(plan *shotplan.Plan, path string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal shot plan: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plan directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write shot plan: %w", err)
	}
	return nil
}
