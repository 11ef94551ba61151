package section

import (
	"encoding/binary"
	"testing"

	"github.com/mmp/gribx/product"
)

// makeSection4 builds a Section 4 around the given template number and
// template-specific tail (bytes after the shared 25-byte block).
func makeSection4(templateNumber uint16, category, number uint8, tail []byte) []byte {
	base := make([]byte, 25)
	base[0] = category
	base[1] = number
	base[2] = 2 // generating process: forecast
	base[8] = 1 // time unit: hour
	binary.BigEndian.PutUint32(base[9:], 6)
	base[13] = 100 // first surface: isobaric
	binary.BigEndian.PutUint32(base[15:], 50000)
	base[19] = 255 // second surface: missing

	data := make([]byte, 9, 9+len(base)+len(tail))
	data = append(data, base...)
	data = append(data, tail...)
	binary.BigEndian.PutUint32(data[0:], uint32(len(data)))
	data[4] = 4
	binary.BigEndian.PutUint16(data[5:], 0)
	binary.BigEndian.PutUint16(data[7:], templateNumber)
	return data
}

// statTail builds the 12-byte statistical header plus n identical ranges.
func statTail(process uint8, n int) []byte {
	tail := make([]byte, 12)
	binary.BigEndian.PutUint16(tail[0:], 2023)
	tail[2], tail[3], tail[4] = 1, 15, 18
	tail[7] = uint8(n)
	for i := 0; i < n; i++ {
		spec := make([]byte, 12)
		spec[0] = process
		spec[2] = 1 // unit: hour
		binary.BigEndian.PutUint32(spec[3:], 6)
		tail = append(tail, spec...)
	}
	return tail
}

func TestParseSection4Template40(t *testing.T) {
	data := makeSection4(0, 0, 0, nil)

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatalf("ParseSection4 failed: %v", err)
	}

	if sec.ProductDefinitionTemplate != 0 {
		t.Errorf("template: got %d, want 0", sec.ProductDefinitionTemplate)
	}
	p, ok := sec.Product.(*product.Template40)
	if !ok {
		t.Fatalf("Product is %T, want *product.Template40", sec.Product)
	}
	if p.GetParameterCategory() != 0 || p.GetParameterNumber() != 0 {
		t.Error("parameter identification mismatch")
	}
	if p.GetForecastTime() != 6 || p.GetTimeUnit() != 1 {
		t.Errorf("forecast time: got %d unit %d, want 6 unit 1", p.GetForecastTime(), p.GetTimeUnit())
	}

	first, second := p.Surfaces()
	if first.Type != 100 || first.Value != 50000 {
		t.Errorf("first surface: got type %d value %d", first.Type, first.Value)
	}
	if !second.Missing() {
		t.Error("second surface should be missing")
	}
	if p.Statistical() != nil || p.Ensemble() != nil {
		t.Error("template 4.0 has no statistical or ensemble data")
	}
}

func TestParseSection4Template41(t *testing.T) {
	data := makeSection4(1, 0, 0, []byte{3, 12, 20})

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatalf("ParseSection4 failed: %v", err)
	}
	ens := sec.Product.Ensemble()
	if ens == nil {
		t.Fatal("template 4.1 should carry ensemble data")
	}
	if ens.Type != 3 || ens.PerturbationNumber != 12 || ens.Size != 20 {
		t.Errorf("ensemble: got %+v, want type 3 member 12/20", ens)
	}
}

func TestParseSection4Template42(t *testing.T) {
	data := makeSection4(2, 0, 0, []byte{1, 30})

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatalf("ParseSection4 failed: %v", err)
	}
	code, size, ok := sec.Product.DerivedForecast()
	if !ok {
		t.Fatal("template 4.2 should carry derived-forecast data")
	}
	if code != 1 || size != 30 {
		t.Errorf("derived forecast: got %d/%d, want 1/30", code, size)
	}
}

func TestParseSection4Template48(t *testing.T) {
	data := makeSection4(8, 1, 8, statTail(1, 1))

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatalf("ParseSection4 failed: %v", err)
	}
	stat := sec.Product.Statistical()
	if stat == nil {
		t.Fatal("template 4.8 should carry a statistical block")
	}
	if stat.EndYear != 2023 || stat.NumberOfTimeRanges != 1 {
		t.Errorf("statistical block: %+v", stat)
	}
	if stat.TimeRanges[0].StatisticalProcess != 1 {
		t.Errorf("process: got %d, want 1 (accumulation)", stat.TimeRanges[0].StatisticalProcess)
	}
	if stat.TimeRanges[0].TimeRangeLength != 6 {
		t.Errorf("range length: got %d, want 6", stat.TimeRanges[0].TimeRangeLength)
	}
}

func TestParseSection4Template411(t *testing.T) {
	tail := append([]byte{2, 5, 11}, statTail(0, 1)...)
	data := makeSection4(11, 0, 0, tail)

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatalf("ParseSection4 failed: %v", err)
	}
	if sec.Product.Ensemble() == nil || sec.Product.Statistical() == nil {
		t.Error("template 4.11 should carry both ensemble and statistical data")
	}
}

func TestParseSection4Template412(t *testing.T) {
	tail := append([]byte{0, 15}, statTail(0, 2)...)
	data := makeSection4(12, 0, 0, tail)

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatalf("ParseSection4 failed: %v", err)
	}
	if _, _, ok := sec.Product.DerivedForecast(); !ok {
		t.Error("template 4.12 should carry derived-forecast data")
	}
	stat := sec.Product.Statistical()
	if stat == nil || stat.NumberOfTimeRanges != 2 {
		t.Error("template 4.12 should carry two time ranges")
	}
}

func TestParseSection4NegativeSurfaceValue(t *testing.T) {
	data := makeSection4(0, 0, 0, nil)
	// First surface value -50 (sign-magnitude).
	binary.BigEndian.PutUint32(data[9+15:], 50|0x80000000)

	sec, err := ParseSection4(data)
	if err != nil {
		t.Fatal(err)
	}
	first, _ := sec.Product.Surfaces()
	if first.Value != -50 {
		t.Errorf("surface value: got %d, want -50", first.Value)
	}
}

func TestParseSection4TooShort(t *testing.T) {
	if _, err := ParseSection4(make([]byte, 5)); err == nil {
		t.Error("expected error for short section")
	}
}

func TestParseSection4WrongSectionNumber(t *testing.T) {
	data := makeSection4(0, 0, 0, nil)
	data[4] = 5
	if _, err := ParseSection4(data); err == nil {
		t.Error("expected error for wrong section number")
	}
}

func TestParseSection4UnsupportedTemplate(t *testing.T) {
	data := makeSection4(0, 0, 0, nil)
	binary.BigEndian.PutUint16(data[7:], 20) // radar product
	if _, err := ParseSection4(data); err == nil {
		t.Error("expected error for unsupported template")
	}
}

func TestParseSection4HybridCoordinates(t *testing.T) {
	data := makeSection4(0, 0, 0, nil)
	binary.BigEndian.PutUint16(data[5:], 2) // coordinate values present
	if _, err := ParseSection4(data); err == nil {
		t.Error("expected error for hybrid coordinate values")
	}
}
