package ui

import (
	"fmt"
	"os"

	"github.com/espbuild/compmgr/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderSolution prints the resolved components as a table: one row per
// requested component, in request order.
func RenderSolution(solution *models.DependencySolution) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Component", "Version", "Hash", "Path"})

	for _, component := range solution.Resolved {
		t.AppendRow(table.Row{
			component.QualifiedName(),
			component.Version.String(),
			shortHash(component.ComponentHash),
			component.Path,
		})
	}

	t.Render()

	fmt.Printf("%s %s\n", Colors.Green("✓"),
		fmt.Sprintf("%d component(s) installed", len(solution.Resolved)))
}

func shortHash(hash *string) string {
	if hash == nil {
		return "-"
	}

	if len(*hash) > 12 {
		return (*hash)[:12]
	}

	return *hash
}
