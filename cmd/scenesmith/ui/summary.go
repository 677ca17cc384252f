package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// SummaryLine renders the one-line result summary printed after a
// generation: backend badge, fallback marker, quality, record id.
func SummaryLine(s Styles, backendName string, fallback bool, quality float64, recordID string) string {
	parts := []string{
		s.Success.Render("✓"),
		s.Badge.Render(backendName),
	}
	if fallback {
		parts = append(parts, s.Warning.Render("fallback"))
	}
	parts = append(parts,
		s.Body.Render(fmt.Sprintf("quality %.2f", quality)),
		s.Muted.Render("record "+recordID),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, joinSpaced(parts)...)
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, len(parts)*2-1)
	for i, p := range parts {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, p)
	}
	return out
}
