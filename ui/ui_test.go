package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Table(&buf, []string{"ID", "POINTS"}, [][]string{
		{"c1", "4"},
		{"long_id", "12"},
	})

	want := "  ID       POINTS\n" +
		"  ───────  ──────\n" +
		"  c1       4\n" +
		"  long_id  12\n"
	if got := buf.String(); got != want {
		t.Errorf("Table output =\n%q\nwant\n%q", got, want)
	}
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"ID"}, nil)
	if buf.Len() != 0 {
		t.Errorf("empty table printed %q", buf.String())
	}
}

func TestStatusIcon(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	if got := StatusIcon(true); got != "✓" {
		t.Errorf("StatusIcon(true) = %q", got)
	}
	if got := StatusIcon(false); got != "✗" {
		t.Errorf("StatusIcon(false) = %q", got)
	}
}
