package gribx

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mmp/gribx/internal/testutil"
)

// makeCompleteGRIB2Message creates a complete GRIB2 message for testing.
//
// This creates a realistic message with:
// - Section 0: Meteorological discipline
// - Section 1: NCEP, 2023-01-15 12:00 UTC
// - Section 3: 3x3 lat/lon grid, 90N-88N, 0E-2E
// - Section 4: Temperature at 500mb
// - Section 5: Simple packing, 8 bits/value
// - Section 6: No bitmap (all points valid)
// - Section 7: 9 data values decoding to 250.0 ... 258.0
// - Section 8: "7777" end marker
func makeCompleteGRIB2Message() []byte {
	return testGridSpec().Build(testHeaderSpec())
}

func testHeaderSpec() testutil.HeaderSpec {
	return testutil.HeaderSpec{
		Discipline: 0,
		Center:     7,
		RefTime:    time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func testGridSpec() *testutil.GridSpec {
	return &testutil.GridSpec{
		Ni: 3, Nj: 3,
		La1: 90000000, Lo1: 0,
		La2: 88000000, Lo2: 2000000,
		Di: 1000000, Dj: 1000000,
		EarthShape: 6,

		PDSTemplate:   0,
		ParamCategory: 0, ParamNumber: 0,
		TimeUnit: 1,
		Lvl1Type: 100, Lvl1Value: 50000,

		R: 250.0, E: 0, D: 0, Bits: 8,
		Packed: []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8},
	}
}

func TestParseMessageComplete(t *testing.T) {
	data := makeCompleteGRIB2Message()

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	if msg.Section0 == nil {
		t.Fatal("Section0 is nil")
	}
	if msg.Section0.Discipline != 0 {
		t.Errorf("Discipline: got %d, want 0", msg.Section0.Discipline)
	}

	if msg.Section1 == nil {
		t.Fatal("Section1 is nil")
	}
	if msg.Section1.OriginatingCenter != 7 {
		t.Errorf("OriginatingCenter: got %d, want 7", msg.Section1.OriginatingCenter)
	}

	if len(msg.Grids) != 1 {
		t.Fatalf("Grids: got %d, want 1", len(msg.Grids))
	}

	if msg.Section3() == nil {
		t.Fatal("Section3 is nil")
	}
	if msg.Section3().NumDataPoints != 9 {
		t.Errorf("NumDataPoints: got %d, want 9", msg.Section3().NumDataPoints)
	}

	if msg.Section4() == nil {
		t.Fatal("Section4 is nil")
	}
	if msg.Section4().Product.GetParameterCategory() != 0 {
		t.Errorf("ParameterCategory: got %d, want 0", msg.Section4().Product.GetParameterCategory())
	}

	if msg.Section5() == nil {
		t.Fatal("Section5 is nil")
	}
	if msg.Section5().NumDataValues != 9 {
		t.Errorf("NumDataValues: got %d, want 9", msg.Section5().NumDataValues)
	}
}

func TestMessageDecodeData(t *testing.T) {
	data := makeCompleteGRIB2Message()

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	values, err := msg.DecodeData()
	if err != nil {
		t.Fatalf("DecodeData failed: %v", err)
	}

	if len(values) != 9 {
		t.Fatalf("expected 9 values, got %d", len(values))
	}

	for i, v := range values {
		expected := 250.0 + float64(i)
		if math.Abs(v-expected) > 0.001 {
			t.Errorf("value %d: got %f, want %f", i, v, expected)
		}
	}
}

func TestMessageCoordinates(t *testing.T) {
	data := makeCompleteGRIB2Message()

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	lats, lons, err := msg.Coordinates()
	if err != nil {
		t.Fatalf("Coordinates failed: %v", err)
	}

	if len(lats) != 9 || len(lons) != 9 {
		t.Fatalf("expected 9 coordinates, got %d/%d", len(lats), len(lons))
	}

	// First point at 90N 0E, last at 88N 2E.
	if math.Abs(lats[0]-90.0) > 0.001 || math.Abs(lons[0]-0.0) > 0.001 {
		t.Errorf("first point: got (%f, %f), want (90, 0)", lats[0], lons[0])
	}
	if math.Abs(lats[8]-88.0) > 0.001 || math.Abs(lons[8]-2.0) > 0.001 {
		t.Errorf("last point: got (%f, %f), want (88, 2)", lats[8], lons[8])
	}
}

func TestParseMessageMultiGrid(t *testing.T) {
	// Two grids in one message, sharing sections 0-2. The second repeats
	// sections 3-7.
	g1 := testGridSpec()
	g2 := testGridSpec()
	g2.ParamNumber = 2 // potential temperature
	g2.Packed = []uint32{8, 7, 6, 5, 4, 3, 2, 1, 0}

	data := testutil.BuildMessage(testHeaderSpec(), g1.Sections(), g2.Sections())

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	if len(msg.Grids) != 2 {
		t.Fatalf("Grids: got %d, want 2", len(msg.Grids))
	}

	if got := msg.Grids[1].Section4.Product.GetParameterNumber(); got != 2 {
		t.Errorf("second grid parameter number: got %d, want 2", got)
	}

	v1, err := msg.Grids[0].Decode()
	if err != nil {
		t.Fatal(err)
	}
	v2, err := msg.Grids[1].Decode()
	if err != nil {
		t.Fatal(err)
	}
	if v1[0] != 250.0 || v2[0] != 258.0 {
		t.Errorf("grid values: got %g/%g, want 250/258", v1[0], v2[0])
	}
}

func TestParseMessageInheritedBitmap(t *testing.T) {
	// The second grid's bitmap section uses indicator 254: it inherits
	// the first grid's bitmap.
	g1 := testGridSpec()
	g1.Bitmap = []bool{true, false, true, false, true, false, true, false, true}
	g1.Packed = []uint32{0, 2, 4, 6, 8}

	g2 := testGridSpec()
	g2.Bitmap = g1.Bitmap
	g2.Packed = []uint32{1, 3, 5, 7, 9}

	sections2 := g2.Sections()
	// Swap the second grid's explicit bitmap section for an indicator-254
	// one. The section chain is 3 (72 bytes), 4 (34), 5 (21), 6, 7.
	cut := 72 + 34 + 21
	bms254 := []byte{0, 0, 0, 6, 6, 254}
	replaced := append(append(append([]byte{}, sections2[:cut]...), bms254...),
		sections2[cut+6+2:]...)

	data := testutil.BuildMessage(testHeaderSpec(), g1.Sections(), replaced)

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	if len(msg.Grids) != 2 {
		t.Fatalf("Grids: got %d, want 2", len(msg.Grids))
	}

	v2, err := msg.Grids[1].Decode()
	if err != nil {
		t.Fatal(err)
	}
	if v2[0] != 251.0 {
		t.Errorf("first unmasked value: got %g, want 251", v2[0])
	}
	if v2[1] != MissingValue {
		t.Errorf("masked value: got %g, want the missing sentinel", v2[1])
	}
}

func TestMessageString(t *testing.T) {
	data := makeCompleteGRIB2Message()

	msg, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	s := msg.String()
	if !strings.Contains(s, "Meteorological") {
		t.Errorf("String() missing discipline: %q", s)
	}
}

func TestParseMessageInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", []byte{}},
		{"Too short", []byte("GRIB")},
		{"Truncated", makeCompleteGRIB2Message()[:100]},
		{"Wrong magic", []byte("XXXX" + string(makeCompleteGRIB2Message()[4:]))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMessage(tt.data); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
