package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shotscout/internal/runstore"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect pipeline run history",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRunStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := "running"
				if run.FinishedAt != nil {
					status = "finished"
				}
				rows = append(rows, []string{
					shortRunID(run.ID),
					truncate(run.EpisodeTopic, 40),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					status,
					strconv.Itoa(run.QueryCount),
					strconv.Itoa(run.CuratedCount),
					strconv.Itoa(run.FallbackCount),
					strconv.Itoa(run.WarningCount),
				})
			}
			headers := []string{"Run", "Topic", "Started", "Status", "Queries", "Curated", "Fallback", "Warnings"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRunStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := resolveRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %q not found", args[0])
			}
			if jsonOut {
				return writeJSON(cmd, run)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "Topic:    %s\n", run.EpisodeTopic)
			fmt.Fprintf(out, "Source:   %s\n", run.PlanSource)
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
			if run.FinishedAt != nil {
				fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "Scenes:   %d   Queries: %d   Candidates: %d   Curated: %d   Fallback: %d   Warnings: %d\n",
				run.SceneCount, run.QueryCount, run.CandidateCount, run.CuratedCount, run.FallbackCount, run.WarningCount)

			if len(run.Queries) > 0 {
				rows := make([][]string, 0, len(run.Queries))
				for _, q := range run.Queries {
					rows = append(rows, []string{
						q.QueryID,
						truncate(q.Query, 48),
						q.VisualType,
						strconv.Itoa(q.Priority),
						strconv.Itoa(len(q.IntendedScenes)),
					})
				}
				headers := []string{"Query ID", "Query", "Type", "Priority", "Scenes"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run as JSON")
	return cmd
}

// resolveRun accepts a full run id or an unambiguous prefix.
func resolveRun(cmd *cobra.Command, store *runstore.Store, id string) (*runstore.Run, error) {
	run, err := store.Get(cmd.Context(), id)
	if err != nil || run != nil {
		return run, err
	}
	runs, err := store.List(cmd.Context(), 1000)
	if err != nil {
		return nil, err
	}
	var match *runstore.Run
	for i := range runs {
		if strings.HasPrefix(runs[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
			}
			match = &runs[i]
		}
	}
	return match, nil
}

func openRunStore(ctx *commandContext) (*runstore.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runstore.Open(cfg.Paths.RunDBPath)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
