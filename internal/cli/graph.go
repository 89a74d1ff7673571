package cli

import (
	"fmt"
	"sort"

	waymarkgraph "github.com/waymark/waymark/internal/graph"
	"github.com/waymark/waymark/internal/ui"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the dependency graph: publishing order and every repository's edges",
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().Bool("exclude-dev", true, "Exclude development edges from the printed publishing order")
}

func runGraph(cmd *cobra.Command, args []string) error {
	repos, _, err := loadRepositories(cmd)
	if err != nil {
		return err
	}

	excludeDev, _ := cmd.Flags().GetBool("exclude-dev")

	g, warnings := waymarkgraph.Build(repos)
	for _, w := range warnings {
		fmt.Println(ui.WarningMessage(w))
	}

	order, err := g.TopologicalSort(excludeDev)
	if err != nil {
		fmt.Println(ui.ErrorMessage(err.Error()))
	} else {
		fmt.Println(ui.Section("Publishing order"))
		for i, name := range order {
			fmt.Printf("  %d. %s\n", i+1, name)
		}
	}

	fmt.Println()
	fmt.Println(ui.Section("Edges"))

	headers := []string{"Repository", "Depends on", "Kind"}
	var rows [][]string
	for _, name := range g.Names() {
		node := g.Nodes[name]
		depNames := make([]string, 0, len(node.Deps))
		for depName := range node.Deps {
			depNames = append(depNames, depName)
		}
		sort.Strings(depNames)
		for _, depName := range depNames {
			rows = append(rows, []string{name, depName, string(node.Deps[depName].Kind)})
		}
	}
	fmt.Println(ui.Table(headers, rows))

	return nil
}
