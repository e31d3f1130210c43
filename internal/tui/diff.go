package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Underline(true)
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true)
)

// changes returns a semantic character diff from before to after.
func changes(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// renderDiff shows removed text struck through and added text underlined.
func renderDiff(before, after string) string {
	var b strings.Builder
	for _, d := range changes(before, after) {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteStyle.Render(d.Text))
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertStyle.Render(d.Text))
		}
	}
	return b.String()
}
