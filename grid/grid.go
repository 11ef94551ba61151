// Package grid provides grid definition types and parsers for GRIB2.
package grid

// Grid represents a GRIB2 grid definition.
// Different grid templates implement this interface.
type Grid interface {
	// TemplateNumber returns the grid definition template number (Table 3.1).
	TemplateNumber() int

	// NumPoints returns the total number of grid points.
	NumPoints() int

	// Dimensions returns the grid dimensions (nx, ny).
	Dimensions() (nx, ny int)

	// EarthShape returns the shape-of-the-earth code (Table 3.2).
	EarthShape() uint8

	// ResolutionFlags returns the resolution and component flags octet.
	ResolutionFlags() uint8

	// Scanning returns the scanning mode octet (Table 3.4). The decoder
	// records it and the transcoder copies it through without
	// reinterpretation.
	Scanning() uint8

	// String returns a human-readable description of the grid.
	String() string
}
