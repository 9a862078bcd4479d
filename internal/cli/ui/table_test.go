package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Name", "Type", "Access")

	table.AddRow("color", "acme.Color", "rw")
	table.AddRow("visible", "bool", "r")
	table.AddRow("name")

	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}

	if lines[0] != "Name     Type        Access" {
		t.Errorf("unexpected header line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "───────") {
		t.Errorf("expected separator, got %q", lines[1])
	}
	if lines[2] != "color    acme.Color  rw" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[4] != "name                 " {
		t.Errorf("missing cells should render empty, got %q", lines[4])
	}
	if table.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", table.Len())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("ignored")
	table.Render()

	if buf.Len() != 0 {
		t.Errorf("expected no output for a table without headers, got %q", buf.String())
	}
}

func TestTableRuneWidth(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Name", "Note")
	table.AddRow("größe", "x")
	table.AddRow("a", "y")
	table.Render()

	lines := strings.Split(buf.String(), "\n")
	if lines[3] != "a      y" {
		t.Errorf("columns should align by rune count, got %q", lines[3])
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("Type", "acme.Widget")
	table.AddRow("Default property", "color")
	table.Render()

	want := "Type:             acme.Widget\nDefault property: color\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Properties", true)

	if buf.String() != "Properties\n──────────\n" {
		t.Errorf("unexpected header %q", buf.String())
	}
}
