package grib1

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/mmp/gribx/internal"
	"github.com/mmp/gribx/stream"
)

// Level types whose first value occupies a single 16-bit field rather than
// two 8-bit fields (GRIB1 Table 3).
var wideLevelTypes = map[uint8]bool{
	100: true, 103: true, 105: true, 107: true, 109: true, 111: true,
	113: true, 115: true, 125: true, 160: true, 200: true, 201: true,
}

// Time-range P2 values for which the PDS carries a number-in-average field.
var averagedP2 = map[int]bool{
	3: true, 4: true, 51: true, 113: true, 114: true, 115: true,
	116: true, 117: true, 123: true, 124: true,
}

// UnsupportedError reports a GRIB1 encoding this decoder does not handle:
// complex packing, spectral grids, predefined bitmaps.
type UnsupportedError struct {
	Feature string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return "unsupported GRIB1 encoding: " + e.Feature
}

// Decoder reads GRIB edition-1 records from a byte stream.
type Decoder struct {
	framer *stream.Framer
	diag   io.Writer
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDiagnostics directs warning-grade conditions to w.
func WithDiagnostics(w io.Writer) DecoderOption {
	return func(d *Decoder) { d.diag = w }
}

// NewDecoder creates a decoder pulling bytes from the read callback.
func NewDecoder(read stream.ReadFunc, opts ...DecoderOption) *Decoder {
	d := &Decoder{diag: io.Discard}
	for _, opt := range opts {
		opt(d)
	}
	d.framer = stream.NewFramer(read, stream.WithDiagnostics(d.diag))
	return d
}

// Next decodes the next record from the stream. It returns io.EOF at a
// clean message boundary and *stream.ReadError on mid-message truncation.
func (d *Decoder) Next() (*Record, error) {
	msg, err := d.framer.Next()
	if err != nil {
		return nil, err
	}
	return DecodeRecord(msg, d.diag)
}

// DecodeRecord decodes one framed edition-0/1 message into a Record.
// diag receives warning-grade diagnostics; nil discards them.
func DecodeRecord(msg *stream.RawMessage, diag io.Writer) (*Record, error) {
	if diag == nil {
		diag = io.Discard
	}
	if msg.Edition > 1 {
		return nil, errors.Errorf("cannot decode edition-%d message as GRIB1", msg.Edition)
	}

	rec := &Record{
		Edition:     msg.Edition,
		TotalLength: int(msg.TotalLength),
	}
	br := internal.NewBitReader(msg.Data)

	if err := rec.unpackPDS(br, msg.Data, diag); err != nil {
		return nil, errors.Wrap(err, "product definition section")
	}
	if rec.HasGDS {
		if err := rec.unpackGDS(br); err != nil {
			return nil, errors.Wrap(err, "grid description section")
		}
	}
	var bitmap []bool
	if rec.HasBMS {
		var err error
		if bitmap, err = rec.unpackBMS(br); err != nil {
			return nil, errors.Wrap(err, "bit map section")
		}
	}
	if err := rec.unpackBDS(br, msg.Data, bitmap); err != nil {
		return nil, errors.Wrap(err, "binary data section")
	}
	return rec, nil
}

// unpackPDS parses the Product Definition Section. The PDS starts right
// after "GRIB" for edition 0 and after the 8-byte indicator section for
// edition 1.
func (r *Record) unpackPDS(br *internal.BitReader, buf []byte, diag io.Writer) error {
	var pdsStart int
	if r.Edition == 0 {
		// GRIB-0: the indicator length field was the PDS length.
		pdsStart = 32
		r.PDSLength = 24
		if err := br.SetOffset(pdsStart + 32); err != nil {
			return err
		}
	} else {
		pdsStart = 64
		if err := br.SetOffset(pdsStart); err != nil {
			return err
		}
		pdsLen, err := br.ReadBits(24)
		if err != nil {
			return err
		}
		r.PDSLength = int(pdsLen)
		tableVer, err := br.ReadBits(8)
		if err != nil {
			return err
		}
		r.TableVersion = uint8(tableVer)
	}

	center, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.Center = uint8(center)

	process, _ := br.ReadBits(8)
	r.Process = uint8(process)

	gridID, _ := br.ReadBits(8)
	r.GridID = uint8(gridID)

	flag, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.HasGDS = flag&0x80 != 0
	r.HasBMS = flag&0x40 != 0

	param, _ := br.ReadBits(8)
	r.Parameter = uint8(param)

	levelType, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.LevelType = uint8(levelType)

	// Certain level types carry a single 16-bit value; the rest carry two
	// 8-bit values (layer top and bottom).
	if wideLevelTypes[r.LevelType] {
		lvl1, err := br.ReadBits(16)
		if err != nil {
			return err
		}
		r.Level1 = int(lvl1)
		r.Level2 = 0
	} else {
		lvl1, _ := br.ReadBits(8)
		lvl2, err := br.ReadBits(8)
		if err != nil {
			return err
		}
		r.Level1 = int(lvl1)
		r.Level2 = int(lvl2)
	}

	yr, _ := br.ReadBits(8)
	mo, _ := br.ReadBits(8)
	dy, _ := br.ReadBits(8)
	hour, _ := br.ReadBits(8)
	minute, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.Year = int(yr)
	r.Month = uint8(mo)
	r.Day = uint8(dy)
	r.Time = int(hour)*100 + int(minute)

	unit, _ := br.ReadBits(8)
	r.TimeUnit = uint8(unit)
	p1, _ := br.ReadBits(8)
	r.P1 = int(p1)
	p2, _ := br.ReadBits(8)
	r.P2 = int(p2)
	tRange, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.TimeRange = uint8(tRange)

	if averagedP2[r.P2] {
		navg, err := br.ReadBits(16)
		if err != nil {
			return err
		}
		r.NumAverage = int(navg)
	} else {
		r.NumAverage = 0
		if err := br.Skip(16); err != nil {
			return err
		}
	}

	nmiss, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.NumMissing = int(nmiss)

	if r.Edition == 0 {
		// GRIB-0 PDS ends here: no century, sub-center, or decimal scale.
		return br.SetOffset(pdsStart + 192)
	}

	century, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.Year += (int(century) - 1) * 100

	subCenter, _ := br.ReadBits(8)
	r.SubCenter = uint8(subCenter)

	d, err := br.ReadSignMagnitude(16)
	if err != nil {
		return err
	}
	r.DecimalScale = int(d)

	// Optional PDS extension. Files in the wild place it at two different
	// byte offsets: the standard location is byte 40 of the PDS, but some
	// producers with pds_len < 40 put it immediately after the fixed
	// 28-byte PDS. Both layouts are accepted; the non-standard one is
	// flagged on the diagnostics writer.
	if r.PDSLength > 28 {
		if r.PDSLength < 40 {
			fmt.Fprintf(diag, "warning: PDS extension is in wrong location\n")
			extLen := r.PDSLength - 28
			if 36+extLen > len(buf) {
				return io.ErrUnexpectedEOF
			}
			r.PDSExtension = append([]byte(nil), buf[36:36+extLen]...)
			if err := br.Skip(extLen * 8); err != nil {
				return err
			}
		} else {
			extLen := r.PDSLength - 40
			if 48+extLen > len(buf) {
				return io.ErrUnexpectedEOF
			}
			r.PDSExtension = append([]byte(nil), buf[48:48+extLen]...)
			if err := br.Skip((extLen + 12) * 8); err != nil {
				return err
			}
		}
	}
	return nil
}

// unpackGDS parses the Grid Description Section at the current offset.
func (r *Record) unpackGDS(br *internal.BitReader) error {
	gdsStart := br.Offset()

	gdsLen, err := br.ReadBits(24)
	if err != nil {
		return err
	}
	r.GDSLength = int(gdsLen)
	if r.Edition == 0 {
		r.TotalLength += r.GDSLength
	}

	// Skip NV and PV/PL (octets 4-5), read the data representation type.
	if err := br.Skip(16); err != nil {
		return err
	}
	dataRep, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.DataRep = uint8(dataRep)

	switch r.DataRep {
	case GridLatLon, GridGaussian, GridRotatedLatLon:
		nx, _ := br.ReadBits(16)
		ny, err := br.ReadBits(16)
		if err != nil {
			return err
		}
		r.Nx = int(nx)
		r.Ny = int(ny)

		lat1, err := br.ReadSignMagnitude(24)
		if err != nil {
			return err
		}
		r.FirstLat = float64(lat1) * 0.001
		lon1, _ := br.ReadSignMagnitude(24)
		r.FirstLon = float64(lon1) * 0.001

		resComp, _ := br.ReadBits(8)
		r.ResComp = uint8(resComp)

		lat2, _ := br.ReadSignMagnitude(24)
		r.LastLat = float64(lat2) * 0.001
		lon2, err := br.ReadSignMagnitude(24)
		if err != nil {
			return err
		}
		r.LastLon = float64(lon2) * 0.001

		loInc, _ := br.ReadBits(16)
		r.LonIncrement = float64(loInc) * 0.001

		laInc, err := br.ReadBits(16)
		if err != nil {
			return err
		}
		if r.DataRep == GridLatLon {
			r.LatIncrement = float64(laInc) * 0.001
		} else {
			// For Gaussian grids this field is the number of parallels
			// between the equator and the pole, not an increment.
			r.LatIncrement = float64(laInc)
		}

		scan, err := br.ReadBits(8)
		if err != nil {
			return err
		}
		r.ScanMode = uint8(scan)

	case GridLambertConformal, GridPolarStereographic:
		nx, _ := br.ReadBits(16)
		ny, err := br.ReadBits(16)
		if err != nil {
			return err
		}
		r.Nx = int(nx)
		r.Ny = int(ny)

		lat1, err := br.ReadSignMagnitude(24)
		if err != nil {
			return err
		}
		r.FirstLat = float64(lat1) * 0.001
		lon1, _ := br.ReadSignMagnitude(24)
		r.FirstLon = float64(lon1) * 0.001

		resComp, _ := br.ReadBits(8)
		r.ResComp = uint8(resComp)

		oLon, err := br.ReadSignMagnitude(24)
		if err != nil {
			return err
		}
		r.OrientLon = float64(oLon) * 0.001

		dx, _ := br.ReadBits(24)
		dy, err := br.ReadBits(24)
		if err != nil {
			return err
		}
		r.Dx = int(dx)
		r.Dy = int(dy)

		proj, _ := br.ReadBits(8)
		r.Projection = uint8(proj)
		scan, err := br.ReadBits(8)
		if err != nil {
			return err
		}
		r.ScanMode = uint8(scan)

	default:
		return &UnsupportedError{Feature: fmt.Sprintf("grid type %d", r.DataRep)}
	}

	return br.SetOffset(gdsStart + r.GDSLength*8)
}

// unpackBMS parses the Bit Map Section and returns the bitmap: one bool per
// covered cell, true where a packed value is present.
func (r *Record) unpackBMS(br *internal.BitReader) ([]bool, error) {
	bmsStart := br.Offset()

	bmsLen, err := br.ReadBits(24)
	if err != nil {
		return nil, err
	}
	if r.Edition == 0 {
		r.TotalLength += int(bmsLen)
	}

	unused, err := br.ReadBits(8)
	if err != nil {
		return nil, err
	}
	tableRef, err := br.ReadBits(16)
	if err != nil {
		return nil, err
	}
	if tableRef != 0 {
		return nil, &UnsupportedError{Feature: fmt.Sprintf("pre-defined bit map %d", tableRef)}
	}

	n := (int(bmsLen)-6)*8 - int(unused)
	if n < 0 {
		return nil, fmt.Errorf("bit map length %d with %d unused bits is impossible", bmsLen, unused)
	}
	bitmap := make([]bool, n)
	for i := range bitmap {
		bit, err := br.ReadBits(1)
		if err != nil {
			return nil, err
		}
		bitmap[i] = bit == 1
	}

	return bitmap, br.SetOffset(bmsStart + int(bmsLen)*8)
}

// unpackBDS parses the Binary Data Section and unpacks the gridpoints.
func (r *Record) unpackBDS(br *internal.BitReader, buf []byte, bitmap []bool) error {
	bdsStart := br.Offset()

	bdsLen, err := br.ReadBits(24)
	if err != nil {
		return err
	}
	r.BDSLength = int(bdsLen)
	if r.Edition == 0 {
		r.TotalLength += r.BDSLength + 1
	}

	flag, err := br.ReadBits(4)
	if err != nil {
		return err
	}
	r.BDSFlag = uint8(flag)
	unused, err := br.ReadBits(4)
	if err != nil {
		return err
	}

	if r.BDSFlag&0x4 != 0 {
		return &UnsupportedError{Feature: "second-order (complex) packing"}
	}

	e16, err := br.ReadSignMagnitude(16)
	if err != nil {
		return err
	}
	r.BinaryScale = int(e16)

	d := math.Pow(10, float64(r.DecimalScale))
	ref, err := internal.IBM2Real(buf, bdsStart+48)
	if err != nil {
		return err
	}
	r.ReferenceValue = ref / d

	if err := br.Skip(32); err != nil { // past the reference value
		return err
	}
	width, err := br.ReadBits(8)
	if err != nil {
		return err
	}
	r.PackWidth = int(width)
	if r.PackWidth > 32 {
		return fmt.Errorf("pack width %d exceeds 32 bits", r.PackWidth)
	}

	numPacked := 0
	if r.PackWidth > 0 {
		numPacked = (r.BDSLength*8 - 88 - int(unused)) / r.PackWidth
	}

	// Historic grid catalog numbers 23/24/26/63/64 on lat/lon-family
	// grids carry one extra packed value ahead of the field: skip one
	// value's worth of bits, then unpack normally.
	switch r.DataRep {
	case GridLatLon, GridGaussian, GridRotatedLatLon:
		switch r.GridID {
		case 23, 24, 26, 63, 64:
			if err := br.Skip(r.PackWidth); err != nil {
				return err
			}
		}
	}

	packed := make([]uint32, numPacked)
	for i := range packed {
		v, err := br.ReadBits(r.PackWidth)
		if err != nil {
			return err
		}
		packed[i] = uint32(v)
	}

	scale := math.Pow(2, float64(r.BinaryScale)) / d

	if !r.HasGDS {
		// No grid description: a bare stream of gridpoints on one row.
		r.Ny = 1
		r.Nx = numPacked
		row := make([]float64, numPacked)
		for i := range row {
			if bitmap == nil || (i < len(bitmap) && bitmap[i]) {
				row[i] = r.ReferenceValue + float64(packed[i])*scale
			} else {
				row[i] = MissingValue
			}
		}
		r.Gridpoints = [][]float64{row}
		return nil
	}

	r.Gridpoints = make([][]float64, r.Ny)
	cnt := 0
	cell := 0
	for n := 0; n < r.Ny; n++ {
		row := make([]float64, r.Nx)
		for m := 0; m < r.Nx; m++ {
			present := bitmap == nil || (cell < len(bitmap) && bitmap[cell])
			cell++
			if !present {
				row[m] = MissingValue
				continue
			}
			if r.PackWidth == 0 {
				// Constant field: every unmasked cell is the reference.
				row[m] = r.ReferenceValue
				continue
			}
			if cnt >= len(packed) {
				return fmt.Errorf("bit map indicates more valid points than the %d packed values", len(packed))
			}
			row[m] = r.ReferenceValue + float64(packed[cnt])*scale
			cnt++
		}
		r.Gridpoints[n] = row
	}
	return nil
}
