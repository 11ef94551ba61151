package grid

import (
	"encoding/binary"
	"testing"
)

// makeLatLonTemplate builds the 58 template bytes of Template 3.0/3.40.
// Coordinates are given in micro-degrees; negatives are encoded
// sign-magnitude as on the wire.
func makeLatLonTemplate(ni, nj uint32, la1, lo1, la2, lo2 int32, di, dj uint32, scan uint8) []byte {
	data := make([]byte, 58)

	data[0] = 6 // shape of earth: spherical, radius 6,371,229 m

	binary.BigEndian.PutUint32(data[16:], ni)
	binary.BigEndian.PutUint32(data[20:], nj)

	putSM := func(off int, v int32) {
		u := uint32(v)
		if v < 0 {
			u = uint32(-v) | 0x80000000
		}
		binary.BigEndian.PutUint32(data[off:], u)
	}
	putSM(32, la1)
	putSM(36, lo1)
	// data[40]: resolution and component flags
	data[40] = 0x30
	putSM(41, la2)
	putSM(45, lo2)
	binary.BigEndian.PutUint32(data[49:], di)
	binary.BigEndian.PutUint32(data[53:], dj)
	data[57] = scan

	return data
}

func TestParseLatLonGrid(t *testing.T) {
	data := makeLatLonTemplate(360, 181, 90000000, 0, -90000000, 359000000,
		1000000, 1000000, 0)

	g, err := ParseLatLonGrid(0, data)
	if err != nil {
		t.Fatalf("ParseLatLonGrid: %v", err)
	}

	if g.Ni != 360 || g.Nj != 181 {
		t.Errorf("dimensions = %dx%d, want 360x181", g.Ni, g.Nj)
	}
	if g.NumPoints() != 360*181 {
		t.Errorf("NumPoints = %d, want %d", g.NumPoints(), 360*181)
	}
	if g.EarthShape() != 6 {
		t.Errorf("earth shape = %d, want 6", g.EarthShape())
	}
	if g.ResolutionFlags() != 0x30 {
		t.Errorf("res flags = %#x, want 0x30", g.ResolutionFlags())
	}

	lat1, lon1 := g.FirstGridPoint()
	if lat1 != 90.0 || lon1 != 0.0 {
		t.Errorf("first point = (%g, %g), want (90, 0)", lat1, lon1)
	}

	// The last latitude is south of the equator: the wire field is
	// sign-magnitude, so the decoded value must be negative.
	lat2, lon2 := g.LastGridPoint()
	if lat2 != -90.0 || lon2 != 359.0 {
		t.Errorf("last point = (%g, %g), want (-90, 359)", lat2, lon2)
	}

	di, dj := g.Increment()
	if di != 1.0 || dj != 1.0 {
		t.Errorf("increments = (%g, %g), want (1, 1)", di, dj)
	}
}

func TestParseLatLonGridSignMagnitudeNotTwosComplement(t *testing.T) {
	// -30 degrees encodes as 0x80000000|30000000, which reads as a large
	// negative number under two's complement. The parser must use
	// sign-magnitude.
	data := makeLatLonTemplate(10, 10, -30000000, 10000000, -40000000, 20000000,
		1000000, 1000000, 0)

	g, err := ParseLatLonGrid(0, data)
	if err != nil {
		t.Fatal(err)
	}
	if g.La1 != -30000000 {
		t.Errorf("La1 = %d, want -30000000", g.La1)
	}
	if g.La2 != -40000000 {
		t.Errorf("La2 = %d, want -40000000", g.La2)
	}
}

func TestParseGaussianGrid(t *testing.T) {
	// Template 3.40: the j field carries the parallel count, not an
	// increment.
	data := makeLatLonTemplate(768, 384, 89731000, 0, -89731000, 359531000,
		469000, 192, 0)

	g, err := ParseLatLonGrid(40, data)
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsGaussian() {
		t.Error("IsGaussian = false for template 40")
	}
	if g.TemplateNumber() != 40 {
		t.Errorf("TemplateNumber = %d, want 40", g.TemplateNumber())
	}
	if g.NumParallels() != 192 {
		t.Errorf("NumParallels = %d, want 192", g.NumParallels())
	}
	_, dj := g.Increment()
	if dj != 192 {
		t.Errorf("Gaussian j value = %g, want 192 (unconverted)", dj)
	}
}

func TestParseLatLonGridTooShort(t *testing.T) {
	if _, err := ParseLatLonGrid(0, make([]byte, 40)); err == nil {
		t.Error("short template data should fail")
	}
}

func TestLatLonCoordinates(t *testing.T) {
	data := makeLatLonTemplate(3, 2, 10000000, 0, 0, 20000000,
		10000000, 10000000, 0)
	g, err := ParseLatLonGrid(0, data)
	if err != nil {
		t.Fatal(err)
	}

	lats, lons := g.Coordinates()
	if len(lats) != 6 || len(lons) != 6 {
		t.Fatalf("got %d/%d coordinates, want 6", len(lats), len(lons))
	}
	// First row at 10N, second at 0; longitudes 0, 10, 20.
	wantLat := []float64{10, 10, 10, 0, 0, 0}
	wantLon := []float64{0, 10, 20, 0, 10, 20}
	for i := range wantLat {
		if lats[i] != wantLat[i] || lons[i] != wantLon[i] {
			t.Errorf("point %d = (%g, %g), want (%g, %g)", i, lats[i], lons[i], wantLat[i], wantLon[i])
		}
	}
}

func TestLatLonScanningFlags(t *testing.T) {
	data := makeLatLonTemplate(2, 2, 0, 0, 0, 0, 1, 1, 0x40)
	g, err := ParseLatLonGrid(0, data)
	if err != nil {
		t.Fatal(err)
	}
	iNeg, jPos, consecutive := g.ScanningFlags()
	if iNeg || !jPos || !consecutive {
		t.Errorf("flags = %v/%v/%v, want false/true/true", iNeg, jPos, consecutive)
	}
}
