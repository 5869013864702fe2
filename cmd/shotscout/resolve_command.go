package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shotscout/internal/curator"
	"shotscout/internal/manifest"
	"shotscout/internal/pipeline"
	"shotscout/internal/shotplan"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "resolve <plan.json>",
		Short: "Resolve a shot plan into a curated source pack",
		Long: "Resolve runs the full pipeline against a shot plan file: query\n" +
			"sanitization, deduplication, federated archive search, relevance and\n" +
			"frame gates, curation, and source pack assembly. The run always\n" +
			"produces a source pack; shortfalls surface as warnings in the report.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			plan, err := shotplan.Load(args[0])
			if err != nil {
				return err
			}

			runner, cleanup, err := buildRunner(cfg, "file", logger)
			if err != nil {
				return err
			}
			defer cleanup()

			pack, report, err := runner.Run(cmd.Context(), plan)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = filepath.Join(cfg.Paths.OutputDir, slugify(plan.EpisodeTopic)+"_sources.json")
			}
			if err := manifest.WriteFile(pack, target); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source pack written to %s\n", target)
			renderReport(cmd, report, pack)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Source pack destination (defaults to the output directory)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run report as JSON")
	return cmd
}

func renderReport(cmd *cobra.Command, report pipeline.Report, pack manifest.SourcePack) {
	out := cmd.OutOrStdout()
	counts := report.Counts

	rows := [][]string{
		{"Raw queries", strconv.Itoa(counts.RawQueries)},
		{"Valid queries", strconv.Itoa(counts.ValidQueries)},
		{"Strategic queries", strconv.Itoa(counts.StrategicQueries)},
		{"Candidates", strconv.Itoa(counts.Candidates)},
		{"Cache hits", strconv.Itoa(counts.CacheHits)},
		{"Gate accepted", strconv.Itoa(counts.GateAccepted)},
		{"Gate rejected", strconv.Itoa(counts.GateRejected)},
		{"Frame rejected", strconv.Itoa(counts.FrameRejected)},
		{"Curated assets", strconv.Itoa(counts.Curated)},
		{"Fallback entries", strconv.Itoa(counts.FallbackEntries)},
	}
	fmt.Fprintln(out, renderTable([]string{"Stage", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	colorize := shouldColorize(out)
	for _, warning := range report.Warnings {
		fmt.Fprintln(out, renderStatusLine("warning", statusWarn, warning, colorize))
	}
	for _, sceneID := range report.LowCoverageScenes {
		fmt.Fprintln(out, renderStatusLine("low coverage", statusWarn, sceneID, colorize))
	}
	for _, deficit := range report.Deficits {
		detail := fmt.Sprintf("%s has %d of %d required assets", deficit.VisualType, deficit.Actual, deficit.Required)
		kind := statusWarn
		if deficit.Severity == curator.SeverityCritical {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine("coverage deficit", kind, detail, colorize))
	}
	if report.ProviderFailures > 0 {
		detail := fmt.Sprintf("%d provider calls failed", report.ProviderFailures)
		fmt.Fprintln(out, renderStatusLine("providers", statusWarn, detail, colorize))
	}
	fmt.Fprintf(out, "Resolved %d scenes (%d fallback entries)\n", len(pack.Scenes), pack.FallbackUsed)
}
