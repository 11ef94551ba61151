// Package data provides data representation types and decoders for GRIB2.
package data

// MissingValue is the sentinel emitted for grid cells masked out by the
// bitmap.
const MissingValue = 1e30

// Representation represents a GRIB2 data representation template.
// Different templates implement this interface to provide decoding
// capabilities.
type Representation interface {
	// TemplateNumber returns the data representation template number (Table 5.0).
	TemplateNumber() int

	// NumDataValues returns the number of data values to be unpacked.
	NumDataValues() uint32

	// BitsPerValue returns the number of bits used to pack each value.
	BitsPerValue() uint8

	// Scaling returns the packing parameters: the reference value R
	// (already divided by 10^D), the binary scale E, and the decimal
	// scale D.
	Scaling() (r float64, e int16, d int16)

	// Decode unpacks the data from packed bytes and applies scaling.
	// The bitmap parameter is optional (nil means all points are valid);
	// when present, the output has one value per bitmap entry, with
	// masked cells set to MissingValue.
	Decode(packedData []byte, bitmap []bool) ([]float64, error)

	// String returns a human-readable description.
	String() string
}
