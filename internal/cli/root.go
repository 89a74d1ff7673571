// Package cli wires waymark's core packages (C1-C10) into a cobra command
// tree: plan, publish, status, validate, graph. CLI flag parsing details
// beyond this thin layer, and config-file discovery beyond a single viper
// load, are explicitly out of the core's scope (spec.md §1) — this
// package is the "external collaborator" the rest of the module is
// written against.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/waymark/waymark/internal/config"
	"github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/internal/logger"
	"github.com/waymark/waymark/internal/repository"
	"github.com/waymark/waymark/internal/ui"
	"github.com/spf13/cobra"
)

// Version, GitCommit and BuildDate are set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootCmd is the top-level waymark command.
var RootCmd = &cobra.Command{
	Use:   "waymark",
	Short: "Waymark, a multi-repo changeset publishing orchestrator",
	Long: "Waymark computes a publishing order across a set of dependent " +
		"repositories, predicts resulting versions from pending changesets, " +
		"propagates breaking changes, and publishes each package in order.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger(cmd)
	},
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "", "Path to .waymark/config.yaml (defaults to searching upward from the current directory)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) logging")
	RootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("log-file", "", "Mirror logs to this file, relative to the current directory")

	RootCmd.AddCommand(planCmd)
	RootCmd.AddCommand(publishCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(graphCmd)

	RootCmd.SetHelpFunc(ui.HelpFunc)
}

func initLogger(cmd *cobra.Command) error {
	logLevelFlag, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")
	logFile, _ := cmd.Flags().GetString("log-file")

	level, err := logger.ParseLevel(logLevelFlag)
	if err != nil {
		level = logger.InfoLevel
	}
	if verbose {
		level = logger.DebugLevel
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current working directory: %w", err)
	}

	return logger.Init(&logger.Config{
		Level:      level,
		Output:     os.Stderr,
		Prefix:     "waymark",
		LogFile:    logFile,
		CurrentDir: cwd,
		Version:    Version,
	})
}

// loadRepositories resolves the repository set named by the --config flag
// (or the nearest .waymark/config.yaml found by searching upward) and
// loads every repository's on-disk manifest into a Descriptor (§3).
func loadRepositories(cmd *cobra.Command) ([]*repository.Descriptor, *config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("getting current working directory: %w", err)
		}
		configPath, err = config.FindConfig(cwd)
		if err != nil {
			return nil, nil, errors.NewConfigError("no waymark config found", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	// configPath is <configDir>/.waymark/config.yaml; repositories resolve
	// relative to configDir, the workspace root one level above .waymark.
	configDir := filepath.Dir(filepath.Dir(configPath))
	repos, err := repository.LoadAll(cfg.ResolvedDirs(configDir))
	if err != nil {
		return nil, nil, err
	}

	return repos, cfg, nil
}

// ExitCode extracts the process exit code an error should produce,
// defaulting to 1 for any non-ExitCodeError failure (§6 "Exit codes").
func ExitCode(err error) int {
	var exitErr *errors.ExitCodeError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
