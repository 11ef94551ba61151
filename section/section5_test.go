package section

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/mmp/gribx/data"
)

// makeSection5 builds a Section 5 with Template 5.0 (simple packing).
func makeSection5(numValues uint32, ref float32, e, d int16, bits uint8) []byte {
	sec := make([]byte, 21)
	binary.BigEndian.PutUint32(sec[0:], 21)
	sec[4] = 5
	binary.BigEndian.PutUint32(sec[5:], numValues)
	binary.BigEndian.PutUint16(sec[9:], 0)
	binary.BigEndian.PutUint32(sec[11:], math.Float32bits(ref))

	putSM16 := func(off int, v int16) {
		u := uint16(v)
		if v < 0 {
			u = uint16(-v) | 0x8000
		}
		binary.BigEndian.PutUint16(sec[off:], u)
	}
	putSM16(15, e)
	putSM16(17, d)
	sec[19] = bits
	sec[20] = 0
	return sec
}

func TestParseSection5Template50(t *testing.T) {
	sec, err := ParseSection5(makeSection5(100, 250.0, 1, 0, 12))
	if err != nil {
		t.Fatalf("ParseSection5 failed: %v", err)
	}

	if sec.NumDataValues != 100 {
		t.Errorf("NumDataValues: got %d, want 100", sec.NumDataValues)
	}
	if sec.DataRepresentationTemplate != 0 {
		t.Errorf("template: got %d, want 0", sec.DataRepresentationTemplate)
	}

	tmpl, ok := sec.Representation.(*data.Template50)
	if !ok {
		t.Fatalf("Representation is %T, want *data.Template50", sec.Representation)
	}
	if tmpl.ReferenceValue != 250.0 {
		t.Errorf("reference: got %g, want 250", tmpl.ReferenceValue)
	}
	if tmpl.BinaryScaleFactor != 1 || tmpl.NumBitsPerValue != 12 {
		t.Errorf("E/bits: got %d/%d, want 1/12", tmpl.BinaryScaleFactor, tmpl.NumBitsPerValue)
	}
}

func TestParseSection5DecimalScaledReference(t *testing.T) {
	// The wire reference is divided by 10^D at parse time.
	sec, err := ParseSection5(makeSection5(10, 1500.0, 0, 1, 8))
	if err != nil {
		t.Fatal(err)
	}
	r, _, d := sec.Representation.Scaling()
	if d != 1 {
		t.Errorf("D: got %d, want 1", d)
	}
	if math.Abs(r-150.0) > 1e-9 {
		t.Errorf("scaled reference: got %g, want 150", r)
	}
}

func TestParseSection5NegativeScaleFactors(t *testing.T) {
	sec, err := ParseSection5(makeSection5(10, 0, -2, -1, 8))
	if err != nil {
		t.Fatal(err)
	}
	_, e, d := sec.Representation.Scaling()
	if e != -2 || d != -1 {
		t.Errorf("E/D: got %d/%d, want -2/-1 (sign-magnitude decode)", e, d)
	}
}

func TestParseSection5TooShort(t *testing.T) {
	if _, err := ParseSection5(make([]byte, 8)); err == nil {
		t.Error("expected error for short section")
	}
}

func TestParseSection5WrongSectionNumber(t *testing.T) {
	sec := makeSection5(10, 0, 0, 0, 8)
	sec[4] = 6
	if _, err := ParseSection5(sec); err == nil {
		t.Error("expected error for wrong section number")
	}
}

func TestParseSection5UnsupportedTemplate(t *testing.T) {
	sec := makeSection5(10, 0, 0, 0, 8)
	binary.BigEndian.PutUint16(sec[9:], 2) // complex packing
	if _, err := ParseSection5(sec); err == nil {
		t.Error("expected error for unsupported template")
	}
}

func TestTemplate50Decode(t *testing.T) {
	sec, err := ParseSection5(makeSection5(5, 100.0, 0, 0, 8))
	if err != nil {
		t.Fatal(err)
	}

	packed := []byte{0, 1, 2, 3, 4}
	values, err := sec.Representation.Decode(packed, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []float64{100, 101, 102, 103, 104}
	for i := range want {
		if math.Abs(values[i]-want[i]) > 1e-9 {
			t.Errorf("value %d: got %g, want %g", i, values[i], want[i])
		}
	}
}

func TestTemplate50DecodeScaling(t *testing.T) {
	// R=100 (wire), E=3, D=2, packed value 5: (100 + 5*8)/100 = 1.40.
	sec, err := ParseSection5(makeSection5(1, 100.0, 3, 2, 4))
	if err != nil {
		t.Fatal(err)
	}
	values, err := sec.Representation.Decode([]byte{0x50}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(values[0]-1.40) > 1e-12 {
		t.Errorf("value: got %g, want 1.40", values[0])
	}
}

func TestTemplate50DecodeWithBitmap(t *testing.T) {
	sec, err := ParseSection5(makeSection5(3, 100.0, 0, 0, 8))
	if err != nil {
		t.Fatal(err)
	}

	bitmap := []bool{true, false, true, false, true}
	values, err := sec.Representation.Decode([]byte{0, 5, 10}, bitmap)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(values) != 5 {
		t.Fatalf("got %d values, want 5", len(values))
	}
	want := []float64{100, data.MissingValue, 105, data.MissingValue, 110}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("value %d: got %g, want %g", i, values[i], want[i])
		}
	}
}

func TestTemplate50DecodeZeroBitsPerValue(t *testing.T) {
	// Pack width 0 is a constant field of the reference value.
	sec, err := ParseSection5(makeSection5(4, 42.0, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	values, err := sec.Representation.Decode(nil, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("got %d values, want 4", len(values))
	}
	for i, v := range values {
		if v != 42.0 {
			t.Errorf("value %d: got %g, want 42", i, v)
		}
	}
}

func TestTemplate50DecodeZeroBitsWithBitmap(t *testing.T) {
	sec, err := ParseSection5(makeSection5(2, 7.0, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}

	values, err := sec.Representation.Decode(nil, []bool{true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{7, data.MissingValue, 7}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("value %d: got %g, want %g", i, values[i], want[i])
		}
	}
}

func TestTemplate50DecodePackWidthTooWide(t *testing.T) {
	sec := makeSection5(1, 0, 0, 0, 33)
	parsed, err := ParseSection5(sec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parsed.Representation.Decode(make([]byte, 8), nil); err == nil {
		t.Error("pack width over 32 bits should fail")
	}
}
