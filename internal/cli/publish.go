package cli

import (
	"fmt"
	"time"

	"github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/internal/graph"
	"github.com/waymark/waymark/internal/logger"
	"github.com/waymark/waymark/internal/ops"
	"github.com/waymark/waymark/internal/preflight"
	"github.com/waymark/waymark/internal/prompt"
	"github.com/waymark/waymark/internal/publish"
	"github.com/waymark/waymark/internal/report"
	"github.com/waymark/waymark/internal/ui"
	"github.com/waymark/waymark/pkg/types"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the computed plan across the repository set",
	Long: "Validates the dependency graph, runs pre-flight checks, then " +
		"drives C9's publishing orchestrator: per-package publish, " +
		"wait-for-availability, cascading dependency-file updates, batch " +
		"install with cache-healing retry, and optional deployment.",
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().Bool("dry-run", false, "Predict versions and print what would happen without publishing")
	publishCmd.Flags().Bool("deploy", false, "Deploy every repository touched by this run after publishing")
	publishCmd.Flags().Bool("skip-install", false, "Skip batch dependency installation after manifest updates")
	publishCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	publishCmd.Flags().String("strategy", "caret", "Range-write strategy for updated dependencies: exact, caret, tilde, gte")
	publishCmd.Flags().Int64("max-wait-ms", publish.DefaultMaxWaitMs, "Total timeout budget for registry-availability polling")
	publishCmd.Flags().String("required-branch", "main", "Branch every repository must be on before publishing")
	publishCmd.Flags().String("build-command", "build", "External build sub-command invoked during pre-flight")
}

func runPublish(cmd *cobra.Command, args []string) error {
	repos, cfg, err := loadRepositories(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	deploy, _ := cmd.Flags().GetBool("deploy")
	skipInstall, _ := cmd.Flags().GetBool("skip-install")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	strategyFlag, _ := cmd.Flags().GetString("strategy")
	maxWaitMs, _ := cmd.Flags().GetInt64("max-wait-ms")
	requiredBranch, _ := cmd.Flags().GetString("required-branch")
	buildCommand, _ := cmd.Flags().GetString("build-command")

	validation, err := graph.Validate(repos, graph.ValidateOptions{
		ThrowOnProductionCycles: true,
		LogCycles:               true,
		LogOrder:                true,
	})
	if err != nil {
		return errors.NewExitCodeErrorWithCause(1, "fatal: production dependency cycle blocks publishing", err)
	}
	if validation.SortError != nil {
		return errors.NewExitCodeErrorWithCause(1, "fatal: could not compute a publishing order", validation.SortError)
	}

	agg := ops.NewDefault(cfg.Registry.URL, buildCommand)

	if !dryRun {
		checker := preflight.New(agg)
		preflightResult, err := checker.RunPreflightChecks(repos, ops.PreflightOptions{RequiredBranch: requiredBranch})
		if err != nil {
			return errors.NewExitCodeErrorWithCause(1, "pre-flight check failed", err)
		}
		for _, w := range preflightResult.Warnings {
			fmt.Println(ui.WarningMessage(w))
		}
		if !preflightResult.OK {
			for _, e := range preflightResult.Errors {
				fmt.Println(ui.ErrorMessage(e))
			}
			return errors.NewExitCodeError(1, "pre-flight checks failed")
		}

		if !skipConfirm {
			ok, err := prompt.PromptConfirm(fmt.Sprintf("Publish %d repositories in order %v?", len(repos), validation.PublishingOrder), false)
			if err != nil {
				return errors.NewExitCodeErrorWithCause(1, "confirmation prompt failed", err)
			}
			if !ok {
				fmt.Println(ui.InfoMessage("Publish cancelled"))
				return nil
			}
		}
	}

	result := publish.Publish(repos, publish.Options{
		DryRun:          dryRun,
		UpdateDeps:      true,
		VersionStrategy: types.RangeStrategy(strategyFlag),
		Deploy:          deploy,
		MaxWaitMs:       maxWaitMs,
		SkipInstall:     skipInstall,
		RequiredBranch:  requiredBranch,
	}, agg)

	printPublishingResult(result)

	run := report.FromPublishingResult(result, time.Now())
	if err := report.Save(run, report.DefaultPath); err != nil {
		logger.Warn("failed to save run report", "error", err)
	}

	if !result.OK {
		return errors.NewExitCodeError(1, "one or more packages failed to publish")
	}
	return nil
}

func printPublishingResult(result *types.PublishingResult) {
	for _, w := range result.Warnings {
		fmt.Println(ui.WarningMessage(w))
	}
	for _, p := range result.Published {
		label := p.Name + "@" + p.Version.String()
		if p.DryRun {
			fmt.Println(ui.InfoMessage(label + " (dry run)"))
			continue
		}
		fmt.Println(ui.SuccessMessage(label))
	}
	for _, f := range result.Failed {
		fmt.Println(ui.ErrorMessage(fmt.Sprintf("%s: %s", f.Name, f.Error)))
	}
}
