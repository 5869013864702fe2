package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shotscout/internal/config"
	"shotscout/internal/deps"
	"shotscout/internal/pipeline"
	"shotscout/internal/runstore"
	"shotscout/internal/safetypack"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check pipeline dependencies and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("External binaries", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				kind := statusOK
				message := status.Command
				if !status.Available {
					kind = statusError
					if status.Optional {
						kind = statusWarn
					}
					message = status.Detail
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			for _, line := range renderSectionHeader("Providers", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("archive.org", providerKind(cfg.ArchiveOrg.Enabled), "enabled: "+yesNo(cfg.ArchiveOrg.Enabled), colorize))
			fmt.Fprintln(out, renderStatusLine("wikimedia", providerKind(cfg.Wikimedia.Enabled), "enabled: "+yesNo(cfg.Wikimedia.Enabled), colorize))
			europeanaOn := cfg.Europeana.Enabled && cfg.Europeana.APIKey != ""
			fmt.Fprintln(out, renderStatusLine("europeana", providerKind(europeanaOn), "enabled: "+yesNo(europeanaOn), colorize))

			for _, line := range renderSectionHeader("Storage", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, health := range storageChecks(cfg) {
				kind := statusOK
				if !health.Ready {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
			}
			return nil
		},
	}
}

func providerKind(enabled bool) statusKind {
	if enabled {
		return statusOK
	}
	return statusInfo
}

// storageChecks probes the fallback pool and the run history database. Both
// degrade gracefully at run time, so failures report WARN rather than ERROR.
func storageChecks(cfg *config.Config) []pipeline.Health {
	var checks []pipeline.Health

	pool, err := safetypack.ScanDir(cfg.Paths.FallbackDir)
	switch {
	case err != nil:
		checks = append(checks, pipeline.Unhealthy("fallback pool", err.Error()))
	case pool.Size() == 0:
		checks = append(checks, pipeline.Unhealthy("fallback pool", "no media in "+cfg.Paths.FallbackDir+"; scenes without matches will stay empty"))
	default:
		health := pipeline.Healthy("fallback pool")
		health.Detail = fmt.Sprintf("%d assets", pool.Size())
		checks = append(checks, health)
	}

	store, err := runstore.Open(cfg.Paths.RunDBPath)
	if err != nil {
		checks = append(checks, pipeline.Unhealthy("run history", err.Error()))
	} else {
		_ = store.Close()
		health := pipeline.Healthy("run history")
		health.Detail = cfg.Paths.RunDBPath
		checks = append(checks, health)
	}

	return checks
}
