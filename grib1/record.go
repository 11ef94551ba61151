// Package grib1 decodes GRIB edition-1 (and legacy GRIB-0) messages.
//
// Edition 1 predates the sectioned layout of edition 2: a message is a
// Product Definition Section, an optional Grid Description Section, an
// optional Bit Map Section, and a Binary Data Section, addressed by bit
// offset rather than by self-describing section headers. The decoder here
// walks those sections in order and produces a Record with the unpacked
// gridpoint matrix.
package grib1

import "github.com/mmp/gribx/tables"

// MissingValue is the sentinel stored for grid cells masked out by the
// bitmap.
const MissingValue = 1e30

// Data representation types from GRIB1 Table 6 that this decoder handles.
const (
	GridLatLon             = 0
	GridGaussian           = 4
	GridRotatedLatLon      = 10
	GridLambertConformal   = 3
	GridPolarStereographic = 5
)

// Record is one decoded GRIB edition-1 message: a single grid plus its
// product, grid-description, and packing metadata.
type Record struct {
	// Edition is 0 for legacy GRIB-0 messages, 1 otherwise.
	Edition uint8

	// TotalLength is the message length in bytes. For GRIB-0 it grows as
	// sections are discovered, since the GRIB-0 length field covered only
	// the PDS.
	TotalLength int

	// Product Definition Section.
	PDSLength    int
	TableVersion uint8
	Center       uint8
	SubCenter    uint8
	Process      uint8
	GridID       uint8
	HasGDS       bool
	HasBMS       bool
	Parameter    uint8
	LevelType    uint8
	Level1       int
	Level2       int
	Year         int   // full year, century applied
	Month        uint8
	Day          uint8
	Time         int   // hour*100 + minute
	TimeUnit     uint8 // forecast time unit (Table 4)
	P1           int
	P2           int
	TimeRange    uint8
	NumAverage   int
	NumMissing   int
	DecimalScale int // D, sign-magnitude on the wire
	PDSExtension []byte

	// Grid Description Section (valid when HasGDS).
	GDSLength    int
	DataRep      uint8
	Nx           int
	Ny           int
	FirstLat     float64 // degrees
	FirstLon     float64
	ResComp      uint8
	LastLat      float64
	LastLon      float64
	LonIncrement float64
	// LatIncrement holds the j-direction increment in degrees, except for
	// Gaussian grids (DataRep 4) where the same octets carry the number
	// of parallels between equator and pole.
	LatIncrement float64
	OrientLon    float64 // Lambert/Polar: longitude of grid orientation
	Dx           int     // Lambert/Polar: x-direction grid length, metres
	Dy           int
	Projection   uint8
	ScanMode     uint8

	// Binary Data Section.
	BDSLength      int
	BDSFlag        uint8
	BinaryScale    int     // E, sign-magnitude on the wire
	ReferenceValue float64 // R, already divided by 10^D
	PackWidth      int

	// Gridpoints is the unpacked field, indexed [ny][nx] in scanning
	// order. Cells masked by the bitmap hold MissingValue.
	Gridpoints [][]float64
}

// NumPoints returns the total number of grid cells.
func (r *Record) NumPoints() int {
	return r.Nx * r.Ny
}

// ReferenceTime returns the reference time split into its PDS components:
// year, month, day, hour, minute.
func (r *Record) ReferenceTime() (year, month, day, hour, minute int) {
	return r.Year, int(r.Month), int(r.Day), r.Time / 100, r.Time % 100
}

// LevelName returns the name of the record's level type (GRIB1 Table 3).
func (r *Record) LevelName() string {
	return tables.GetGRIB1LevelName(int(r.LevelType))
}
