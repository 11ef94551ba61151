package data

import (
	"bytes"
	"fmt"
	"image"
	"math"

	jpeg2000 "github.com/mrjoshuak/go-jpeg2000"

	"github.com/mmp/gribx/internal"
)

// Template540 represents Data Representation Template 5.40 (and its
// deprecated pre-operational alias 5.40000): grid point data compressed as
// a JPEG 2000 codestream.
//
// The codestream encodes the same quantised integers simple packing would
// carry; after decompression the usual reconstruction applies:
//
//	value = R + X * 2^E / 10^D
//
// with R already divided by 10^D at parse time, as for Template 5.0.
type Template540 struct {
	ReferenceValue     float64 // R, divided by 10^D at parse time
	BinaryScaleFactor  int16   // Binary scale factor (E)
	DecimalScaleFactor int16   // Decimal scale factor (D)
	NumBitsPerValue    uint8   // Depth of the quantised integers
	OriginalFieldType  uint8   // Type of original field values (Table 5.1)
	CompressionType    uint8   // Table 5.40: 0 = lossless, 1 = lossy
	CompressionRatio   uint8   // Target ratio for lossy compression
	NumberOfDataValues uint32  // Number of data values to unpack

	templateNumber int // 40 or 40000
}

// ParseTemplate540 parses Data Representation Template 5.40/5.40000.
//
// The template data should be 12 bytes.
func ParseTemplate540(templateNumber int, numDataValues uint32, data []byte) (*Template540, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("template 5.%d requires at least 12 bytes, got %d", templateNumber, len(data))
	}

	r := internal.NewReader(data)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	compressionType, _ := r.Uint8()
	compressionRatio, err := r.Uint8()
	if err != nil {
		return nil, err
	}

	return &Template540{
		ReferenceValue:     float64(referenceValue) / math.Pow(10, float64(decimalScaleFactor)),
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		CompressionType:    compressionType,
		CompressionRatio:   compressionRatio,
		NumberOfDataValues: numDataValues,
		templateNumber:     templateNumber,
	}, nil
}

// TemplateNumber returns 40 or 40000.
func (t *Template540) TemplateNumber() int {
	return t.templateNumber
}

// NumDataValues returns the number of data values.
func (t *Template540) NumDataValues() uint32 {
	return t.NumberOfDataValues
}

// BitsPerValue returns the depth of the quantised integers.
func (t *Template540) BitsPerValue() uint8 {
	return t.NumBitsPerValue
}

// Scaling returns R (already divided by 10^D), E, and D.
func (t *Template540) Scaling() (float64, int16, int16) {
	return t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor
}

// Decode decompresses the JPEG 2000 codestream and applies scaling.
//
// A zero-length codestream is a constant field: every unmasked cell is the
// reference value. With a bitmap, the decompressed values are consumed in
// order by the cells the bitmap marks present.
func (t *Template540) Decode(packedData []byte, bitmap []bool) ([]float64, error) {
	count := int(t.NumberOfDataValues)
	if bitmap != nil {
		count = len(bitmap)
	}
	values := make([]float64, count)

	if len(packedData) == 0 {
		// Constant field of R.
		for i := range values {
			if bitmap == nil || bitmap[i] {
				values[i] = t.ReferenceValue
			} else {
				values[i] = MissingValue
			}
		}
		return values, nil
	}

	quantised, err := decodeCodestream(packedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JPEG 2000 codestream: %w", err)
	}

	scale := math.Pow(2, float64(t.BinaryScaleFactor)) /
		math.Pow(10, float64(t.DecimalScaleFactor))

	idx := 0
	for i := range values {
		if bitmap != nil && !bitmap[i] {
			values[i] = MissingValue
			continue
		}
		if idx >= len(quantised) {
			return nil, fmt.Errorf("codestream yielded %d values, need at least %d", len(quantised), idx+1)
		}
		values[i] = t.ReferenceValue + float64(quantised[idx])*scale
		idx++
	}
	return values, nil
}

// decodeCodestream decompresses a grayscale JPEG 2000 codestream into its
// quantised integer samples in raster order.
func decodeCodestream(codestream []byte) ([]int64, error) {
	img, err := jpeg2000.Decode(bytes.NewReader(codestream))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	vals := make([]int64, 0, bounds.Dx()*bounds.Dy())

	switch im := img.(type) {
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := im.Pix[(y-bounds.Min.Y)*im.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				vals = append(vals, int64(row[x]))
			}
		}
	case *image.Gray16:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := im.Pix[(y-bounds.Min.Y)*im.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				vals = append(vals, int64(row[2*x])<<8|int64(row[2*x+1]))
			}
		}
	default:
		// GRIB codestreams are single-component grayscale; anything else
		// is not a field this library can interpret.
		return nil, fmt.Errorf("expected grayscale codestream, got %T", img)
	}
	return vals, nil
}

// String returns a human-readable description.
func (t *Template540) String() string {
	kind := "lossless"
	if t.CompressionType == 1 {
		kind = "lossy"
	}
	return fmt.Sprintf("Template 5.%d: JPEG 2000 (%s), %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.templateNumber, kind, t.NumberOfDataValues, t.NumBitsPerValue,
		t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}
