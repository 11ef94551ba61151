// Package product provides product definition types and parsers for GRIB2.
package product

import "math"

// Product represents a GRIB2 product definition.
// Different product templates implement this interface.
type Product interface {
	// TemplateNumber returns the product definition template number (Table 4.0).
	TemplateNumber() int

	// GetParameterCategory returns the parameter category code (Table 4.1).
	GetParameterCategory() uint8

	// GetParameterNumber returns the parameter number code (Table 4.2).
	GetParameterNumber() uint8

	// GetGeneratingProcess returns the generating process type (Table 4.3).
	GetGeneratingProcess() uint8

	// GetTimeUnit returns the forecast time unit (Table 4.4).
	GetTimeUnit() uint8

	// GetForecastTime returns the forecast time in GetTimeUnit units.
	GetForecastTime() uint32

	// Surfaces returns the two fixed-surface descriptors.
	Surfaces() (first, second FixedSurface)

	// Ensemble returns the ensemble descriptor for templates 4.1/4.11,
	// nil otherwise.
	Ensemble() *EnsembleInfo

	// DerivedForecast returns the derived-forecast code and ensemble size
	// for templates 4.2/4.12; ok is false otherwise.
	DerivedForecast() (code uint8, size uint8, ok bool)

	// Statistical returns the statistical-processing block for templates
	// 4.8/4.11/4.12, nil otherwise.
	Statistical() *StatisticalBlock

	// String returns a human-readable description of the product.
	String() string
}

// FixedSurface describes one fixed surface: its type from Table 4.5 and a
// scaled value. The wire value is a sign-magnitude 1+31-bit integer with a
// separate 8-bit decimal scale factor.
type FixedSurface struct {
	Type        uint8
	ScaleFactor uint8
	Value       int32
}

// Scaled returns the surface value with the decimal scale factor applied.
func (s FixedSurface) Scaled() float64 {
	if s.ScaleFactor == 0 {
		return float64(s.Value)
	}
	return float64(s.Value) / math.Pow(10, float64(s.ScaleFactor))
}

// Missing reports whether the surface is absent (type 255).
func (s FixedSurface) Missing() bool {
	return s.Type == 255
}

// EnsembleInfo describes an ensemble member (templates 4.1 and 4.11).
type EnsembleInfo struct {
	Type               uint8 // Table 4.6
	PerturbationNumber uint8
	Size               uint8
}
