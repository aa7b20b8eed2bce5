package openops

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sheetFromColumn(t *testing.T, values []string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return &buf
}

func TestParseOpsSheet(t *testing.T) {
	buf := sheetFromColumn(t, []string{
		"Order No", // header row, no trailing digits
		" x-25-010 ",
		"X-25-010", // duplicate after normalization
		"",
		"X-25-042",
		"B-25-100",
	})

	numbers, maxSequence, err := ParseOpsSheet(buf)
	if err != nil {
		t.Fatalf("ParseOpsSheet: %v", err)
	}

	want := []string{"ORDERNO", "X-25-010", "X-25-042", "B-25-100"}
	if len(numbers) != len(want) {
		t.Fatalf("numbers = %v, want %v", numbers, want)
	}
	for i, n := range want {
		if numbers[i] != n {
			t.Fatalf("numbers[%d] = %q, want %q", i, numbers[i], n)
		}
	}
	if maxSequence != 100 {
		t.Fatalf("maxSequence = %d, want 100", maxSequence)
	}
}

func TestParseOpsSheet_EmptyDocument(t *testing.T) {
	buf := sheetFromColumn(t, []string{"", "  ", ""})
	if _, _, err := ParseOpsSheet(buf); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestParseOpsSheet_NotASpreadsheet(t *testing.T) {
	if _, _, err := ParseOpsSheet(bytes.NewBufferString("order,no\nX-25-001\n")); err == nil {
		t.Fatalf("expected an error for non-xlsx content")
	}
}
