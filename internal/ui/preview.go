package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/waymark/waymark/pkg/semver"
	"github.com/waymark/waymark/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Preview styles
	packageNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("13")).
				Bold(true)

	versionOldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	versionNewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	changeTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Italic(true)

	changeItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			MarginLeft(4)

	breakingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)
)

// RenderPreview renders a waymark Plan (§3) as a human-readable preview:
// one section per version change, annotated with why it happened
// (declared changeset, bump escalation, or auto-generated), followed by
// dependency updates and breaking cascades.
func RenderPreview(plan *types.Plan) string {
	if plan == nil || len(plan.VersionChanges) == 0 {
		return InfoMessage("No version changes to preview")
	}

	var sections []string
	sections = append(sections, Section("Version Preview"))

	for _, change := range plan.VersionChanges {
		sections = append(sections, renderVersionChange(change))
	}

	if len(plan.DependencyUpdates) > 0 {
		sections = append(sections, renderDependencyUpdates(plan.DependencyUpdates))
	}

	if len(plan.BreakingCascades) > 0 {
		sections = append(sections, renderCascades(plan.BreakingCascades))
	}

	return strings.Join(sections, "\n\n")
}

func renderVersionChange(change types.VersionChange) string {
	var lines []string

	pkgName := packageNameStyle.Render(change.Package)
	versionDiff := RenderVersionDiff(change.From, change.To)
	changeType := changeTypeStyle.Render(fmt.Sprintf("(%s)", change.BumpType))

	header := fmt.Sprintf("%s: %s %s", pkgName, versionDiff, changeType)
	if change.Breaking {
		header += " " + breakingBadgeStyle.Render("BREAKING")
	}
	lines = append(lines, header)

	lines = append(lines, changeItemStyle.Render("• "+reasonFor(change)))

	return strings.Join(lines, "\n")
}

func reasonFor(change types.VersionChange) string {
	switch {
	case change.NeedsBumpEscalation:
		return fmt.Sprintf("escalated from %s to %s (a dependency update requires it)", change.ExistingBump, change.RequiredBump)
	case change.WillGenerateChangeset:
		return "auto-generated: a dependency update forces republishing"
	case change.HasChangesets:
		return "from declared changeset(s)"
	default:
		return "unchanged reason"
	}
}

func renderDependencyUpdates(updates []types.DependencyUpdate) string {
	var lines []string
	lines = append(lines, Section("Dependency Updates"))
	for _, u := range updates {
		republish := ""
		if u.CausesRepublish {
			republish = changeTypeStyle.Render(" (causes republish)")
		}
		lines = append(lines, changeItemStyle.Render(fmt.Sprintf(
			"• %s: %s %s → %s%s",
			u.DependentPackage, u.UpdatedDependency, u.CurrentRange, u.NewVersion, republish,
		)))
	}
	return strings.Join(lines, "\n")
}

func renderCascades(cascades map[string][]string) string {
	var lines []string
	lines = append(lines, Section("Breaking Cascades"))
	for _, source := range sortedCascadeKeys(cascades) {
		affected := strings.Join(cascades[source], ", ")
		lines = append(lines, changeItemStyle.Render(fmt.Sprintf("• %s → %s", source, affected)))
	}
	return strings.Join(lines, "\n")
}

func sortedCascadeKeys(cascades map[string][]string) []string {
	keys := make([]string, 0, len(cascades))
	for k := range cascades {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderVersionDiff renders a version diff with a directional arrow.
func RenderVersionDiff(oldVer, newVer semver.Version) string {
	old := versionOldStyle.Render(oldVer.String())
	newv := versionNewStyle.Render(newVer.String())
	arrow := lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("→")

	return fmt.Sprintf("%s %s %s", old, arrow, newv)
}
