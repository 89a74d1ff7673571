package cli

import (
	"fmt"
	"strings"

	"github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/internal/graph"
	"github.com/waymark/waymark/internal/logger"
	"github.com/waymark/waymark/internal/plan"
	"github.com/waymark/waymark/internal/ui"
	"github.com/waymark/waymark/pkg/types"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute and preview the publishing plan without touching the registry",
	Long: "Runs the fixed-point plan engine (C5) over the configured repository " +
		"set: predicted versions from declared changesets, cascaded breaking " +
		"changes, bump escalations, and auto-generated changesets for " +
		"transitively-affected packages. Nothing on disk is mutated.",
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Bool("verbose", false, "Record per-iteration decisions in the plan output")
	planCmd.Flags().Bool("raw", false, "Print the styled terminal preview instead of the rendered markdown summary")
}

func runPlan(cmd *cobra.Command, args []string) error {
	repos, _, err := loadRepositories(cmd)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	raw, _ := cmd.Flags().GetBool("raw")

	validation, err := graph.Validate(repos, graph.ValidateOptions{
		ThrowOnProductionCycles: false,
		LogCycles:               true,
	})
	if err != nil {
		return errors.NewExitCodeErrorWithCause(1, "graph validation failed", err)
	}
	if len(validation.ProductionCycles) > 0 {
		fmt.Println(ui.ErrorMessage(fmt.Sprintf("production dependency cycle(s) detected: %v", validation.ProductionCycles)))
	}

	result := plan.GeneratePlan(repos, plan.Options{Verbose: verbose})

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Println(ui.ErrorMessage(e))
		}
		return errors.NewExitCodeError(1, "plan computation produced errors")
	}

	for _, w := range result.Warnings {
		fmt.Println(ui.WarningMessage(w))
	}
	for _, i := range result.Info {
		fmt.Println(ui.InfoMessage(i))
	}

	if raw {
		fmt.Println(ui.RenderPreview(result))
		return nil
	}

	rendered, err := renderMarkdown(planMarkdown(result))
	if err != nil {
		logger.Warn("failed to render markdown preview, falling back to styled terminal output", "error", err)
		fmt.Println(ui.RenderPreview(result))
		return nil
	}
	fmt.Println(rendered)
	return nil
}

// planMarkdown renders plan as a plain markdown summary suitable for
// glamour to style, independent of ui.RenderPreview's ANSI-styled
// terminal rendering (used by --raw).
func planMarkdown(p *types.Plan) string {
	var b strings.Builder

	b.WriteString("# Publishing plan\n\n")
	if len(p.VersionChanges) == 0 {
		b.WriteString("No version changes.\n")
		return b.String()
	}

	b.WriteString("| Package | From | To | Bump | Breaking |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, c := range p.VersionChanges {
		breaking := ""
		if c.Breaking {
			breaking = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", c.Package, c.From, c.To, c.BumpType, breaking)
	}

	if len(p.DependencyUpdates) > 0 {
		b.WriteString("\n## Dependency updates\n\n")
		for _, u := range p.DependencyUpdates {
			fmt.Fprintf(&b, "- **%s** depends on **%s**: `%s` → `%s`\n", u.DependentPackage, u.UpdatedDependency, u.CurrentRange, u.NewVersion)
		}
	}

	if len(p.BreakingCascades) > 0 {
		b.WriteString("\n## Breaking cascades\n\n")
		for source, affected := range p.BreakingCascades {
			fmt.Fprintf(&b, "- **%s** → %s\n", source, strings.Join(affected, ", "))
		}
	}

	return b.String()
}

// renderMarkdown renders markdown content for terminal display using
// glamour (SPEC_FULL.md §1.1's changelog/plan preview rendering).
func renderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}
