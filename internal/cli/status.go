package cli

import (
	"fmt"

	"github.com/waymark/waymark/internal/changeset"
	"github.com/waymark/waymark/internal/plan"
	"github.com/waymark/waymark/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which repositories have pending changesets and their predicted next versions",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	repos, _, err := loadRepositories(cmd)
	if err != nil {
		return err
	}

	fmt.Println(ui.Header("waymark", "repository status"))
	fmt.Println()

	headers := []string{"Repository", "Version", "Changesets", "Next Version"}
	var rows [][]string

	result := plan.GeneratePlan(repos, plan.Options{})
	predicted := make(map[string]string, len(result.VersionChanges))
	for _, c := range result.VersionChanges {
		predicted[c.Package] = c.To.String()
	}

	for _, repo := range repos {
		has := "no"
		if changeset.HasChangesets(repo.Dir) {
			has = "yes"
		}
		next := predicted[repo.Name]
		if next == "" {
			next = "-"
		}
		rows = append(rows, []string{repo.Name, repo.Version.String(), has, next})
	}

	fmt.Println(ui.Table(headers, rows))

	for _, w := range result.Warnings {
		fmt.Println(ui.WarningMessage(w))
	}
	for _, i := range result.Info {
		fmt.Println(ui.InfoMessage(i))
	}

	return nil
}
