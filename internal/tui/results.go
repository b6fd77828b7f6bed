package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	statsPkg "github.com/verte-zerg/rehab/internal/stats"
)

var (
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#66BB6A"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726"))
	stopStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8C8C8C"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

func (m *Model) renderResult(width int) string {
	r := *m.result
	var title string
	switch {
	case !r.Completed:
		title = stopStyle.Render("Session stopped")
	case r.Success:
		title = passStyle.Render("Great work! Level passed")
	default:
		title = failStyle.Render("Keep practicing")
	}
	lvl := m.opts.Level
	goal := fmt.Sprintf("Goal: precision ≥ %.0f%% and at least %d hits", lvl.PrecisionThreshold, lvl.MinHits)

	rows := [][2]string{
		{"Score", fmt.Sprintf("%d", r.Score)},
		{"Hits / misses", fmt.Sprintf("%d / %d", r.Hits, r.Misses)},
		{"Precision", fmt.Sprintf("%.1f%%", r.Precision)},
		{"Max combo", fmt.Sprintf("%d", r.MaxCombo)},
		{"Avg velocity", fmt.Sprintf("%.0f px/s", r.AvgVelocity)},
		{"Movement range", fmt.Sprintf("%.0f px", r.MovementRange)},
		{"Avg reaction", statsPkg.FormatMs(r.AvgReactionMs)},
		{"Consistency", fmt.Sprintf("%.0f%%", r.Consistency)},
		{"Time", statsPkg.FormatDuration(r.Elapsed)},
	}
	labelWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row[0]))
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(row[0]))
		lines[i] = labelStyle.Render(row[0]+pad) + "  " + valueStyle.Render(row[1])
	}

	status := ""
	switch {
	case m.saveErr != nil:
		status = warningStyle.Render(fit("Could not save result: "+m.saveErr.Error(), width))
	case m.saved:
		status = labelStyle.Render("Result saved for " + m.opts.Patient.Name)
	case m.opts.Patient.Anonymous():
		status = labelStyle.Render("No patient selected; result not saved")
	}

	parts := []string{title, footerStyle.Render(goal), cardStyle.Render(strings.Join(lines, "\n"))}
	if status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, footerStyle.Render("r restart · q quit"))
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}
