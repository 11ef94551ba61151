package grid

import (
	"encoding/binary"
	"math"
	"testing"
)

// makeLambertTemplate builds the 67 template bytes of Template 3.30 with
// HRRR-like parameters.
func makeLambertTemplate(nx, ny uint32, la1, lo1, laD, loV int32, dx, dy uint32, latin1, latin2 int32) []byte {
	data := make([]byte, 67)

	data[0] = 6 // shape of earth

	binary.BigEndian.PutUint32(data[16:], nx)
	binary.BigEndian.PutUint32(data[20:], ny)

	putSM := func(off int, v int32) {
		u := uint32(v)
		if v < 0 {
			u = uint32(-v) | 0x80000000
		}
		binary.BigEndian.PutUint32(data[off:], u)
	}
	putSM(24, la1)
	putSM(28, lo1)
	data[32] = 0x08 // resolution and component flags
	putSM(33, laD)
	putSM(37, loV)
	binary.BigEndian.PutUint32(data[41:], dx)
	binary.BigEndian.PutUint32(data[45:], dy)
	data[49] = 0    // projection center
	data[50] = 0x40 // scanning mode: +i, +j
	putSM(51, latin1)
	putSM(55, latin2)
	putSM(59, -90000000) // southern pole latitude
	putSM(63, 0)

	return data
}

func TestParseLambertConformalGrid(t *testing.T) {
	data := makeLambertTemplate(1799, 1059, 21138123, 237280472,
		38500000, 262500000, 3000000, 3000000, 38500000, 38500000)

	g, err := ParseLambertConformalGrid(data)
	if err != nil {
		t.Fatalf("ParseLambertConformalGrid: %v", err)
	}

	if g.Nx != 1799 || g.Ny != 1059 {
		t.Errorf("dimensions = %dx%d, want 1799x1059", g.Nx, g.Ny)
	}
	if g.TemplateNumber() != 30 {
		t.Errorf("TemplateNumber = %d, want 30", g.TemplateNumber())
	}
	if g.LaD != 38500000 || g.LoV != 262500000 {
		t.Errorf("LaD/LoV = %d/%d", g.LaD, g.LoV)
	}
	if g.LatSouthPole != -90000000 {
		t.Errorf("southern pole latitude = %d, want -90000000 (sign-magnitude)", g.LatSouthPole)
	}

	dx, dy := g.Spacing()
	if dx != 3000 || dy != 3000 {
		t.Errorf("spacing = (%g, %g) m, want (3000, 3000)", dx, dy)
	}
}

func TestLambertCoordinatesFirstPoint(t *testing.T) {
	la1 := int32(21138123)
	lo1 := int32(237280472)
	data := makeLambertTemplate(10, 10, la1, lo1,
		38500000, 262500000, 3000000, 3000000, 38500000, 38500000)

	g, err := ParseLambertConformalGrid(data)
	if err != nil {
		t.Fatal(err)
	}

	lats, lons := g.Coordinates()
	if len(lats) != 100 {
		t.Fatalf("got %d coordinates, want 100", len(lats))
	}

	// At (i, j) = (0, 0) the inverse projection reproduces the first
	// grid latitude; x = 0 lies on the LoV meridian.
	if math.Abs(lats[0]-21.138123) > 0.01 {
		t.Errorf("first latitude = %g, want ~21.138", lats[0])
	}
	if math.Abs(lons[0]-262.5) > 0.01 {
		t.Errorf("first longitude = %g, want 262.5 (the LoV meridian)", lons[0])
	}
}

func TestParseLambertTooShort(t *testing.T) {
	if _, err := ParseLambertConformalGrid(make([]byte, 30)); err == nil {
		t.Error("short template data should fail")
	}
}
