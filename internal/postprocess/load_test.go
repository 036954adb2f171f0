package postprocess

import (
	"strings"
	"testing"
)

func TestLoadTables_File(t *testing.T) {
	tb, err := LoadTables("testdata/en-US.yaml")
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if tb.Locale != "en-US" {
		t.Errorf("expected locale en-US, got %s", tb.Locale)
	}
	if len(tb.Periods) != 4 {
		t.Errorf("expected 4 periods, got %d", len(tb.Periods))
	}
	if tb.Periods[1].Kind != PeriodPM {
		t.Errorf("expected afternoon to be pm, got %s", tb.Periods[1].Kind)
	}
	if len(tb.Categories) != 2 || tb.Categories[1].Label != "Dinner" {
		t.Errorf("unexpected categories %+v", tb.Categories)
	}
}

func TestLoadTables_MissingFile(t *testing.T) {
	if _, err := LoadTables("testdata/does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadTablesFromReader_UnknownField(t *testing.T) {
	doc := `
locale: xx
lexicn:
  - {from: a, to: b}
`
	_, err := LoadTablesFromReader(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadTablesFromReader_RunsValidation(t *testing.T) {
	doc := `
locale: xx
clock_separators: ":"
default_title: x
default_start_time: "09:00"
numerals:
  - {from: "one", to: "1"}
  - {from: "twenty-one", to: "21"}
`
	_, err := LoadTablesFromReader(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected ordering error")
	}
	if !strings.Contains(err.Error(), "shadowed") {
		t.Errorf("expected shadowing error, got %v", err)
	}
}
