// Package transcode converts decoded GRIB2 messages into GRIB1 messages.
//
// Edition 1 is long obsolete but still the only input some consumers
// accept. The transcoder rebuilds each grid of an edition-2 message as an
// edition-1 PDS/GDS/BMS/BDS chain, re-quantizing the gridpoints with the
// original packing parameters, and emits complete framed messages through
// a write callback.
//
// Only what edition 1 can express survives the trip: lat/lon and Lambert
// conformal grids, the point-in-time and statistically processed product
// templates, and parameters with a GRIB1 code. Anything else is reported
// as a *MappingError naming the entity, and nothing is written for the
// failing grid.
package transcode

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	gribx "github.com/mmp/gribx"
	"github.com/mmp/gribx/grid"
	"github.com/mmp/gribx/stream"
)

// Transcoder converts edition-2 messages to edition-1 output through a
// write callback. The section scratch buffer is reused across messages,
// growing monotonically to the largest grid seen.
type Transcoder struct {
	write          stream.WriteFunc
	diag           io.Writer
	scratch        []byte
	warnedEnsemble bool
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithDiagnostics directs warning-grade notices (ensemble octet packing,
// second-resolution time units) to w.
func WithDiagnostics(w io.Writer) Option {
	return func(t *Transcoder) { t.diag = w }
}

// NewTranscoder creates a transcoder emitting edition-1 messages through
// the write callback.
func NewTranscoder(write stream.WriteFunc, opts ...Option) *Transcoder {
	t := &Transcoder{
		write: write,
		diag:  io.Discard,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcode converts every grid of an edition-2 message into an edition-1
// message and writes them in order. It returns the number of edition-1
// messages written.
//
// On a mapping failure nothing is written for the failing grid (or any
// grid after it); grids already written remain in the output.
func (t *Transcoder) Transcode(msg *gribx.Message) (int, error) {
	written := 0
	for i, g := range msg.Grids {
		if err := t.transcodeGrid(msg, g); err != nil {
			return written, errors.Wrapf(err, "grid %d", i)
		}
		written++
	}
	return written, nil
}

// transcodeGrid converts one grid. All template and code mapping happens
// before the first byte is packed, so a mapping failure leaves no partial
// output in the sink.
func (t *Transcoder) transcodeGrid(msg *gribx.Message, g *gribx.Grid) error {
	p := g.Section4.Product
	rep := g.Section5.Representation
	center := int(msg.Section1.OriginatingCenter)
	refTime := msg.Section1.ReferenceTime

	// Octet length of the GRIB1 sections, minus the fixed-size Indicator
	// and End sections.
	var pdsLen int
	switch g.Section4.ProductDefinitionTemplate {
	case 0, 8:
		pdsLen = 28
	case 1, 11:
		pdsLen = 43
	case 2, 12:
		pdsLen = 42
	default:
		return &MappingError{
			Description: fmt.Sprintf("unable to map Product Definition Template %d into GRIB1",
				g.Section4.ProductDefinitionTemplate),
		}
	}

	var gdsLen int
	switch gr := g.Section3.Grid.(type) {
	case *grid.LatLonGrid:
		if gr.IsGaussian() {
			return &MappingError{
				Description: "unable to map Grid Definition Template 40 into GRIB1",
			}
		}
		gdsLen = 32
	case *grid.LambertConformalGrid:
		gdsLen = 42
	default:
		return &MappingError{
			Description: fmt.Sprintf("unable to map Grid Definition Template %d into GRIB1",
				g.Section3.TemplateNumber),
		}
	}

	// Resolve the code mappings up front.
	paramCode, err := mapParameter(center, int(msg.Section0.Discipline),
		int(p.GetParameterCategory()), int(p.GetParameterNumber()))
	if err != nil {
		return err
	}

	first, second := p.Surfaces()
	levelType, level1, level2, err := mapLevel(first, second, center)
	if err != nil {
		return err
	}

	tr, err := mapTimeRange(p, refTime, msg.Section0.Discipline, center)
	if err != nil {
		return err
	}

	// Quantize the gridpoints with the original packing parameters.
	values, err := g.Decode()
	if err != nil {
		return errors.Wrap(err, "decoding gridpoints")
	}

	nx, ny := g.Section3.Grid.Dimensions()
	numPoints := nx * ny
	if len(values) < numPoints {
		return fmt.Errorf("grid shape %dx%d disagrees with %d decoded values", nx, ny, len(values))
	}

	bitmap := g.Bitmap()
	numToPack := numPoints
	if bitmap != nil {
		numToPack = 0
		for _, present := range bitmap {
			if present {
				numToPack++
			}
		}
	}

	r, e, d := rep.Scaling()
	quantScale := math.Pow(10, float64(d)) / math.Pow(2, float64(e))

	pvals := make([]int, 0, numToPack)
	maxPack := 0
	for i := 0; i < numPoints; i++ {
		if values[i] == gribx.MissingValue {
			continue
		}
		v := int(math.Round((values[i] - r) * quantScale))
		if v > maxPack {
			maxPack = v
		}
		pvals = append(pvals, v)
	}

	// The smallest width that can hold the largest quantized value.
	packWidth := 1
	for (1<<packWidth)-1 < maxPack {
		packWidth++
	}

	length := pdsLen + gdsLen
	if bitmap != nil {
		length += 6 + (numPoints+7)/8
	}
	length += 11 + (len(pvals)*packWidth+7)/8

	if length > len(t.scratch) {
		t.scratch = make([]byte, length)
	}
	buf := t.scratch[:length]
	for i := range buf {
		buf[i] = 0
	}

	fields := &pdsFields{
		Length:        pdsLen,
		Center:        msg.Section1.OriginatingCenter,
		SubCenter:     msg.Section1.OriginatingSubcenter,
		Process:       p.GetGeneratingProcess(),
		HasBitmap:     bitmap != nil,
		ParameterCode: paramCode,
		LevelType:     levelType,
		Level1:        level1,
		Level2:        level2,
		SingleLevel:   second.Missing(),
		RefTime:       refTime,
		TimeUnit:      p.GetTimeUnit(),
		Range:         tr,
		Ensemble:      p.Ensemble(),
		DecimalScale:  int(d),
	}
	if code, size, ok := p.DerivedForecast(); ok {
		fields.HasDerived = true
		fields.DerivedCode = code
		fields.DerivedSize = size
	}

	off := packPDS(buf, 0, fields, t.diag, &t.warnedEnsemble)
	switch gr := g.Section3.Grid.(type) {
	case *grid.LatLonGrid:
		off = packLatLonGDS(buf, off, gr)
	case *grid.LambertConformalGrid:
		off = packLambertGDS(buf, off, gr)
	}
	if bitmap != nil {
		off = packBMS(buf, off, bitmap)
	}
	packBDS(buf, off, pvals, packWidth, r, e, d)

	return t.emit(buf)
}

// emit frames the packed sections as one edition-1 message: marker, 24-bit
// total length (the sections plus 12 bytes of fixed framing), edition
// byte, sections, end marker.
func (t *Transcoder) emit(sections []byte) error {
	total := len(sections) + 12

	header := []byte{
		'G', 'R', 'I', 'B',
		byte(total >> 16), byte(total >> 8), byte(total),
		1,
	}
	for _, chunk := range [][]byte{header, sections, []byte("7777")} {
		if _, err := t.write(chunk); err != nil {
			return errors.Wrap(err, "writing GRIB1 message")
		}
	}
	return nil
}

// TranscodeStream frames GRIB2 messages out of read, converts each one,
// and writes the edition-1 messages to write. It stops at end of stream
// and returns the number of edition-1 messages emitted.
func TranscodeStream(read stream.ReadFunc, write stream.WriteFunc, opts ...Option) (int, error) {
	dec := gribx.NewDecoder(read)
	tc := NewTranscoder(write, opts...)

	total := 0
	for {
		msg, err := dec.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		n, err := tc.Transcode(msg)
		total += n
		if err != nil {
			return total, err
		}
	}
}
