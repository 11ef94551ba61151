package grid

import (
	"fmt"
	"math"

	"github.com/mmp/gribx/internal"
)

// LambertConformalGrid represents Grid Definition Template 3.30:
// Lambert Conformal projection.
//
// This projection is commonly used for regional models like HRRR and NAM.
// Coordinates are micro-degrees decoded from sign-magnitude wire fields;
// Dx and Dy are millimetres on the wire, exposed in metres through Spacing.
type LambertConformalGrid struct {
	Shape            uint8  // Shape of the earth (Table 3.2)
	Nx               uint32 // Number of points along x-axis
	Ny               uint32 // Number of points along y-axis
	La1              int32  // Latitude of first grid point (micro-degrees)
	Lo1              int32  // Longitude of first grid point (micro-degrees)
	ResFlags         uint8  // Resolution and component flags
	LaD              int32  // Latitude where Dx and Dy are specified (micro-degrees)
	LoV              int32  // Longitude of meridian parallel to y-axis (micro-degrees)
	Dx               uint32 // X-direction grid length (millimetres)
	Dy               uint32 // Y-direction grid length (millimetres)
	ProjectionCenter uint8  // Projection center flag
	ScanningMode     uint8  // Scanning mode flags
	Latin1           int32  // First secant-cone latitude (micro-degrees)
	Latin2           int32  // Second secant-cone latitude (micro-degrees)
	LatSouthPole     int32  // Latitude of southern pole (micro-degrees)
	LonSouthPole     int32  // Longitude of southern pole (micro-degrees)
}

// ParseLambertConformalGrid parses Grid Definition Template 3.30 from
// template data (the section bytes after the 14-byte section header).
func ParseLambertConformalGrid(data []byte) (*LambertConformalGrid, error) {
	if len(data) < 67 {
		return nil, fmt.Errorf("template 3.30 requires at least 67 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	shape, _ := r.Uint8()
	r.Skip(15) // earth radius/axis parameters

	nx, _ := r.Uint32()
	ny, _ := r.Uint32()
	la1, _ := r.Int32SignMagnitude()
	lo1, _ := r.Int32SignMagnitude()
	resFlags, _ := r.Uint8()
	laD, _ := r.Int32SignMagnitude()
	loV, _ := r.Int32SignMagnitude()
	dx, _ := r.Uint32()
	dy, _ := r.Uint32()
	projCenter, _ := r.Uint8()
	scanMode, _ := r.Uint8()
	latin1, _ := r.Int32SignMagnitude()
	latin2, _ := r.Int32SignMagnitude()
	latSP, _ := r.Int32SignMagnitude()
	lonSP, err := r.Int32SignMagnitude()
	if err != nil {
		return nil, err
	}

	return &LambertConformalGrid{
		Shape:            shape,
		Nx:               nx,
		Ny:               ny,
		La1:              la1,
		Lo1:              lo1,
		ResFlags:         resFlags,
		LaD:              laD,
		LoV:              loV,
		Dx:               dx,
		Dy:               dy,
		ProjectionCenter: projCenter,
		ScanningMode:     scanMode,
		Latin1:           latin1,
		Latin2:           latin2,
		LatSouthPole:     latSP,
		LonSouthPole:     lonSP,
	}, nil
}

// TemplateNumber returns 30 for Lambert Conformal.
func (g *LambertConformalGrid) TemplateNumber() int {
	return 30
}

// NumPoints returns the total number of grid points.
func (g *LambertConformalGrid) NumPoints() int {
	return int(g.Nx * g.Ny)
}

// Dimensions returns the grid dimensions.
func (g *LambertConformalGrid) Dimensions() (nx, ny int) {
	return int(g.Nx), int(g.Ny)
}

// EarthShape returns the shape-of-the-earth code.
func (g *LambertConformalGrid) EarthShape() uint8 {
	return g.Shape
}

// ResolutionFlags returns the resolution and component flags octet.
func (g *LambertConformalGrid) ResolutionFlags() uint8 {
	return g.ResFlags
}

// Scanning returns the scanning mode octet.
func (g *LambertConformalGrid) Scanning() uint8 {
	return g.ScanningMode
}

// Spacing returns the x and y grid lengths in metres.
func (g *LambertConformalGrid) Spacing() (dx, dy float64) {
	return float64(g.Dx) / 1000, float64(g.Dy) / 1000
}

// FirstGridPoint returns the latitude and longitude of the first grid
// point in degrees.
func (g *LambertConformalGrid) FirstGridPoint() (lat, lon float64) {
	return float64(g.La1) / 1e6, float64(g.Lo1) / 1e6
}

// Coordinates generates latitude and longitude arrays for all grid points
// via the inverse Lambert Conformal projection.
func (g *LambertConformalGrid) Coordinates() ([]float64, []float64) {
	nPoints := g.NumPoints()
	lats := make([]float64, nPoints)
	lons := make([]float64, nPoints)

	lat1 := float64(g.La1) / 1e6
	lonV := float64(g.LoV) / 1e6
	latin1 := float64(g.Latin1) / 1e6
	latin2 := float64(g.Latin2) / 1e6

	lat1Rad := lat1 * math.Pi / 180.0
	latin1Rad := latin1 * math.Pi / 180.0
	latin2Rad := latin2 * math.Pi / 180.0
	lonVRad := lonV * math.Pi / 180.0

	const earthRadius = 6371229.0

	// Cone constant.
	var n float64
	if math.Abs(latin1-latin2) < 1e-6 {
		n = math.Sin(latin1Rad)
	} else {
		n = math.Log(math.Cos(latin1Rad)/math.Cos(latin2Rad)) /
			math.Log(math.Tan((math.Pi/4.0)+(latin2Rad/2.0))/math.Tan((math.Pi/4.0)+(latin1Rad/2.0)))
	}

	F := (math.Cos(latin1Rad) * math.Pow(math.Tan((math.Pi/4.0)+(latin1Rad/2.0)), n)) / n
	rho0 := earthRadius * F * math.Pow(math.Tan((math.Pi/4.0)+(lat1Rad/2.0)), -n)

	dx, dy := g.Spacing()

	iPositive := (g.ScanningMode & 0x80) == 0
	jPositive := (g.ScanningMode & 0x40) != 0

	idx := 0
	for j := uint32(0); j < g.Ny; j++ {
		for i := uint32(0); i < g.Nx; i++ {
			var x, y float64
			if iPositive {
				x = float64(i) * dx
			} else {
				x = float64(g.Nx-1-i) * dx
			}
			if jPositive {
				y = float64(j) * dy
			} else {
				y = float64(g.Ny-1-j) * dy
			}

			rho := math.Sqrt(x*x + (rho0-y)*(rho0-y))
			if n < 0 {
				rho = -rho
			}

			theta := math.Atan2(x, rho0-y)

			lat := (2.0 * math.Atan(math.Pow((earthRadius*F)/rho, 1.0/n))) - (math.Pi / 2.0)
			lon := lonVRad + (theta / n)

			lats[idx] = lat * 180.0 / math.Pi
			lons[idx] = lon * 180.0 / math.Pi

			for lons[idx] < 0 {
				lons[idx] += 360
			}
			for lons[idx] >= 360 {
				lons[idx] -= 360
			}

			idx++
		}
	}

	return lats, lons
}

// String returns a human-readable description.
func (g *LambertConformalGrid) String() string {
	return fmt.Sprintf("Lambert Conformal: %dx%d grid, La1=%.3f, Lo1=%.3f, LoV=%.3f",
		g.Nx, g.Ny,
		float64(g.La1)/1e6, float64(g.Lo1)/1e6, float64(g.LoV)/1e6)
}
