package data

import (
	"fmt"
	"math"

	"github.com/mmp/gribx/internal"
)

// Template50 represents Data Representation Template 5.0: Simple Packing.
//
// This is the most common data representation template (used in 80%+ of
// GRIB2 files). Data values are linearly scaled and packed as n-bit
// unsigned integers.
//
// The wire carries the reference value as an IEEE 754 binary32 bit
// pattern, which is reinterpreted (not converted) and then divided by 10^D
// at parse time; Decode therefore reconstructs each cell as
//
//	value = R + X * 2^E / 10^D
//
// where R is the already-divided reference, X the packed integer, E the
// binary scale, and D the decimal scale.
type Template50 struct {
	ReferenceValue     float64 // R, divided by 10^D at parse time
	BinaryScaleFactor  int16   // Binary scale factor (E)
	DecimalScaleFactor int16   // Decimal scale factor (D)
	NumBitsPerValue    uint8   // Number of bits per packed value (n)
	OriginalFieldType  uint8   // Type of original field values (Table 5.1)
	NumberOfDataValues uint32  // Number of data values to unpack
}

// ParseTemplate50 parses Data Representation Template 5.0.
//
// The template data should be 10 bytes for Template 5.0.
func ParseTemplate50(numDataValues uint32, data []byte) (*Template50, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("template 5.0 requires at least 10 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, err := r.Uint8()
	if err != nil {
		return nil, err
	}

	return &Template50{
		ReferenceValue:     float64(referenceValue) / math.Pow(10, float64(decimalScaleFactor)),
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 0 for Template 5.0.
func (t *Template50) TemplateNumber() int {
	return 0
}

// NumDataValues returns the number of data values.
func (t *Template50) NumDataValues() uint32 {
	return t.NumberOfDataValues
}

// BitsPerValue returns the number of bits per value.
func (t *Template50) BitsPerValue() uint8 {
	return t.NumBitsPerValue
}

// Scaling returns R (already divided by 10^D), E, and D.
func (t *Template50) Scaling() (float64, int16, int16) {
	return t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor
}

// Decode unpacks data using the simple packing algorithm.
//
// If bitmap is provided, the output has one value per bitmap entry and the
// packed values are consumed in order by the cells the bitmap marks
// present; masked cells take MissingValue. If bitmap is nil, all
// NumDataValues cells are packed.
//
// A pack width of zero denotes a constant field: every unmasked cell is
// the reference value.
func (t *Template50) Decode(packedData []byte, bitmap []bool) ([]float64, error) {
	if t.NumBitsPerValue > 32 {
		return nil, fmt.Errorf("pack width %d exceeds 32 bits", t.NumBitsPerValue)
	}

	if t.NumBitsPerValue == 0 {
		count := t.NumberOfDataValues
		if bitmap != nil {
			count = uint32(len(bitmap))
		}

		values := make([]float64, count)
		for i := range values {
			if bitmap == nil || bitmap[i] {
				values[i] = t.ReferenceValue
			} else {
				values[i] = MissingValue
			}
		}
		return values, nil
	}

	bitReader := internal.NewBitReader(packedData)

	packedValues := make([]uint32, t.NumberOfDataValues)
	for i := uint32(0); i < t.NumberOfDataValues; i++ {
		val, err := bitReader.ReadBits(int(t.NumBitsPerValue))
		if err != nil {
			return nil, fmt.Errorf("failed to read packed value %d: %w", i, err)
		}
		packedValues[i] = uint32(val)
	}

	if bitmap != nil {
		return t.decodeWithBitmap(packedValues, bitmap)
	}
	return t.decodeWithoutBitmap(packedValues), nil
}

// decodeWithoutBitmap decodes when all values are valid.
func (t *Template50) decodeWithoutBitmap(packedValues []uint32) []float64 {
	values := make([]float64, len(packedValues))
	for i, packed := range packedValues {
		values[i] = t.applyScaling(packed)
	}
	return values
}

// decodeWithBitmap decodes and applies the bitmap.
func (t *Template50) decodeWithBitmap(packedValues []uint32, bitmap []bool) ([]float64, error) {
	if len(packedValues) > len(bitmap) {
		return nil, fmt.Errorf("more packed values (%d) than bitmap entries (%d)",
			len(packedValues), len(bitmap))
	}

	values := make([]float64, len(bitmap))
	packedIdx := 0

	for i := range bitmap {
		if bitmap[i] {
			if packedIdx >= len(packedValues) {
				return nil, fmt.Errorf("bitmap indicates more valid points than packed values available")
			}
			values[i] = t.applyScaling(packedValues[packedIdx])
			packedIdx++
		} else {
			values[i] = MissingValue
		}
	}

	if packedIdx != len(packedValues) {
		return nil, fmt.Errorf("bitmap mismatch: used %d packed values, have %d",
			packedIdx, len(packedValues))
	}

	return values, nil
}

// applyScaling reconstructs one cell: R + X * 2^E / 10^D.
func (t *Template50) applyScaling(packedValue uint32) float64 {
	value := t.ReferenceValue
	if packedValue != 0 {
		value += float64(packedValue) *
			math.Pow(2, float64(t.BinaryScaleFactor)) /
			math.Pow(10, float64(t.DecimalScaleFactor))
	}
	return value
}

// String returns a human-readable description.
func (t *Template50) String() string {
	return fmt.Sprintf("Template 5.0: Simple Packing, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
