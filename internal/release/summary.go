package release

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one VM's line in the summary table.
type Row struct {
	Name      string
	Succeeded bool
	Note      string
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	nameStyle = lipgloss.NewStyle().PaddingRight(2)
)

// RenderSummary writes one line per VM. Colour is dropped automatically
// when the output is not a terminal.
func RenderSummary(w io.Writer, rows []Row) error {
	width := 0
	for _, r := range rows {
		if n := lipgloss.Width(r.Name); n > width {
			width = n
		}
	}
	var b strings.Builder
	b.WriteString("Summary:\n")
	for _, r := range rows {
		name := nameStyle.Width(width + 2).Render(r.Name)
		status := okStyle.Render("SUCCESS")
		if !r.Succeeded {
			status = failStyle.Render("FAILED")
		}
		line := "  " + name + status
		if r.Note != "" {
			line += " (" + r.Note + ")"
		}
		b.WriteString(line + "\n")
	}
	_, err := fmt.Fprint(w, b.String())
	return err
}
