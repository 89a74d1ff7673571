package cli

import (
	"fmt"

	"github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/internal/graph"
	"github.com/waymark/waymark/internal/ui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the graph validation gate (C4) and report cycles without publishing",
	Long: "Builds the dependency graph, classifies production/peer cycles " +
		"(fatal for publishing) and dev cycles (tolerated), and attempts a " +
		"topological sort. Exits non-zero if a production cycle is found.",
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	repos, _, err := loadRepositories(cmd)
	if err != nil {
		return err
	}

	result, err := graph.Validate(repos, graph.ValidateOptions{
		ThrowOnProductionCycles: false,
		LogCycles:               false,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Println(ui.WarningMessage(w))
	}

	if len(result.ProductionCycles) > 0 {
		for _, cycle := range result.ProductionCycles {
			fmt.Println(ui.ErrorMessage(fmt.Sprintf("production dependency cycle: %v", cycle)))
		}
		return errors.NewExitCodeError(1, "production dependency cycle(s) found")
	}

	for _, cycle := range result.DevCycles {
		fmt.Println(ui.InfoMessage(fmt.Sprintf("dev-only dependency cycle (tolerated): %v", cycle)))
	}

	if result.SortError != nil {
		return errors.NewExitCodeErrorWithCause(1, "could not compute a publishing order", result.SortError)
	}

	fmt.Println(ui.SuccessMessage(fmt.Sprintf("graph is valid; publishing order: %v", result.PublishingOrder)))
	return nil
}
