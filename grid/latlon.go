package grid

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// LatLonGrid represents a regular latitude/longitude grid (Template 3.0)
// or a Gaussian latitude/longitude grid (Template 3.40).
//
// The two templates share a byte layout; they differ only in how the
// j-direction field is interpreted. For Template 3.40 the "Dj" octets carry
// the number of parallels between the equator and the pole instead of an
// increment.
//
// Coordinates are stored in micro-degrees as decoded from the wire. The
// wire fields are sign-magnitude (one sign bit plus a 31-bit magnitude),
// not two's complement.
type LatLonGrid struct {
	Template     uint16 // 0 (regular) or 40 (Gaussian)
	Shape        uint8  // Shape of the earth (Table 3.2)
	Ni           uint32 // Number of points along a parallel
	Nj           uint32 // Number of points along a meridian
	La1          int32  // Latitude of first grid point (micro-degrees)
	Lo1          int32  // Longitude of first grid point (micro-degrees)
	ResFlags     uint8  // Resolution and component flags (Table 3.3)
	La2          int32  // Latitude of last grid point (micro-degrees)
	Lo2          int32  // Longitude of last grid point (micro-degrees)
	Di           uint32 // i direction increment (micro-degrees)
	Dj           uint32 // j increment (micro-degrees), or parallel count for 3.40
	ScanningMode uint8  // Scanning mode (Table 3.4)
}

// ParseLatLonGrid parses Template 3.0 or 3.40 from template data (the
// section bytes after the 14-byte section header).
func ParseLatLonGrid(templateNumber uint16, data []byte) (*LatLonGrid, error) {
	if len(data) < 58 {
		return nil, fmt.Errorf("template 3.%d requires at least 58 bytes, got %d", templateNumber, len(data))
	}

	r := internal.NewReader(data)

	shape, _ := r.Uint8()
	// Skip the earth radius/axis scale factors and values (15 bytes);
	// the shape code alone is enough for the products this library reads.
	r.Skip(15)

	ni, _ := r.Uint32()
	nj, _ := r.Uint32()

	// Skip basic angle and subdivisions (8 bytes).
	r.Skip(8)

	la1, _ := r.Int32SignMagnitude()
	lo1, _ := r.Int32SignMagnitude()
	resFlags, _ := r.Uint8()
	la2, _ := r.Int32SignMagnitude()
	lo2, _ := r.Int32SignMagnitude()
	di, _ := r.Uint32()
	dj, _ := r.Uint32()
	scanningMode, err := r.Uint8()
	if err != nil {
		return nil, err
	}

	return &LatLonGrid{
		Template:     templateNumber,
		Shape:        shape,
		Ni:           ni,
		Nj:           nj,
		La1:          la1,
		Lo1:          lo1,
		ResFlags:     resFlags,
		La2:          la2,
		Lo2:          lo2,
		Di:           di,
		Dj:           dj,
		ScanningMode: scanningMode,
	}, nil
}

// TemplateNumber returns 0 or 40.
func (g *LatLonGrid) TemplateNumber() int {
	return int(g.Template)
}

// IsGaussian reports whether this is a Gaussian grid (Template 3.40).
func (g *LatLonGrid) IsGaussian() bool {
	return g.Template == 40
}

// NumPoints returns the total number of grid points.
func (g *LatLonGrid) NumPoints() int {
	return int(g.Ni * g.Nj)
}

// Dimensions returns the grid dimensions.
func (g *LatLonGrid) Dimensions() (nx, ny int) {
	return int(g.Ni), int(g.Nj)
}

// EarthShape returns the shape-of-the-earth code.
func (g *LatLonGrid) EarthShape() uint8 {
	return g.Shape
}

// ResolutionFlags returns the resolution and component flags octet.
func (g *LatLonGrid) ResolutionFlags() uint8 {
	return g.ResFlags
}

// Scanning returns the scanning mode octet.
func (g *LatLonGrid) Scanning() uint8 {
	return g.ScanningMode
}

// String returns a human-readable description of the grid.
func (g *LatLonGrid) String() string {
	kind := "Lat/Lon"
	if g.IsGaussian() {
		kind = "Gaussian"
	}
	return fmt.Sprintf("%s grid: %d x %d points (%.3f, %.3f) to (%.3f, %.3f)",
		kind, g.Ni, g.Nj,
		float64(g.La1)/1e6, float64(g.Lo1)/1e6,
		float64(g.La2)/1e6, float64(g.Lo2)/1e6)
}

// FirstGridPoint returns the latitude and longitude of the first grid point in degrees.
func (g *LatLonGrid) FirstGridPoint() (lat, lon float64) {
	return float64(g.La1) / 1e6, float64(g.Lo1) / 1e6
}

// LastGridPoint returns the latitude and longitude of the last grid point in degrees.
func (g *LatLonGrid) LastGridPoint() (lat, lon float64) {
	return float64(g.La2) / 1e6, float64(g.Lo2) / 1e6
}

// Increment returns the i and j direction increments in degrees. For
// Gaussian grids the j value is the parallel count, unconverted.
func (g *LatLonGrid) Increment() (di, dj float64) {
	di = float64(g.Di) / 1e6
	if g.IsGaussian() {
		return di, float64(g.Dj)
	}
	return di, float64(g.Dj) / 1e6
}

// NumParallels returns the number of parallels between the equator and the
// pole for Gaussian grids, 0 otherwise.
func (g *LatLonGrid) NumParallels() int {
	if g.IsGaussian() {
		return int(g.Dj)
	}
	return 0
}

// Coordinates generates latitude and longitude arrays for all grid points
// in scan order. Gaussian latitudes are approximated by the regular
// subdivision used for display purposes; packed data ordering is unaffected.
func (g *LatLonGrid) Coordinates() ([]float64, []float64) {
	n := g.NumPoints()
	lats := make([]float64, n)
	lons := make([]float64, n)

	lat1, lon1 := g.FirstGridPoint()
	lat2, lon2 := g.LastGridPoint()

	dLat := 0.0
	if g.Nj > 1 {
		dLat = (lat2 - lat1) / float64(g.Nj-1)
	}
	dLon := 0.0
	if g.Ni > 1 {
		span := lon2 - lon1
		for span < 0 {
			span += 360
		}
		dLon = span / float64(g.Ni-1)
	}

	idx := 0
	for j := uint32(0); j < g.Nj; j++ {
		lat := lat1 + float64(j)*dLat
		for i := uint32(0); i < g.Ni; i++ {
			lon := lon1 + float64(i)*dLon
			for lon >= 360 {
				lon -= 360
			}
			lats[idx] = lat
			lons[idx] = lon
			idx++
		}
	}
	return lats, lons
}

// ScanningFlags returns the scanning mode flags as individual booleans.
//
// Returns:
//   - iNegative: true if points scan in -i direction (east to west)
//   - jPositive: true if points scan in +j direction (south to north)
//   - consecutive: true if adjacent points in i direction are consecutive
func (g *LatLonGrid) ScanningFlags() (iNegative, jPositive, consecutive bool) {
	iNegative = (g.ScanningMode & 0x80) != 0   // Bit 0
	jPositive = (g.ScanningMode & 0x40) != 0   // Bit 1
	consecutive = (g.ScanningMode & 0x20) == 0 // Bit 2 (0 = consecutive)
	return
}
