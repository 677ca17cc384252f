package ui

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	table := NewTable("Generation Summary", "Metric", "Value")
	table.AddRow("Records", "12")
	table.AddRow("Average quality", "0.71")

	styles := DefaultStyles()
	view := table.View(styles)

	t.Logf("View:\n%q", view)

	if !strings.Contains(view, "Generation Summary") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "Records") {
		t.Error("View missing cell content")
	}
	if !strings.Contains(view, "0.71") {
		t.Error("View missing second row content")
	}
}

func TestTableEmpty(t *testing.T) {
	table := NewTable("Empty", "A", "B")

	if view := table.View(DefaultStyles()); view != "" {
		t.Errorf("expected empty view for table with no rows, got %q", view)
	}
}
