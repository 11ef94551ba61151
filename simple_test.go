package gribx

import (
	"bytes"
	"os"
	"testing"
)

func TestParseHRRRFile(t *testing.T) {
	data, err := os.ReadFile("testdata/hrrr-iowa-subset.grib2")
	if err != nil {
		t.Skip("Test file not found")
	}

	t.Logf("File size: %d bytes", len(data))

	// Parse with skip errors (complex-packed fields are intentionally
	// unsupported).
	fields, err := ReadWithOptions(bytes.NewReader(data), WithSequential(), WithSkipErrors())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	t.Logf("Parsed %d fields", len(fields))

	if len(fields) == 0 {
		t.Fatal("expected at least one decodable field")
	}

	for _, field := range fields[:min(3, len(fields))] {
		t.Logf("%s: %d points, range %.2f..%.2f",
			field.Parameter, field.NumPoints, field.MinValue(), field.MaxValue())
	}
}
