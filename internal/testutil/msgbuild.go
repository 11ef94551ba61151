// Package testutil builds synthetic GRIB2 messages for tests.
//
// The builders assemble bit-exact section chains so decoder and
// transcoder tests can run without fixture files. They intentionally use
// their own byte assembly rather than the production writers, so an
// encoding bug cannot cancel itself out in a round-trip test.
package testutil

import (
	"encoding/binary"
	"math"
	"time"
)

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}

// GridSpec describes one grid (sections 3-7) of a synthetic message.
type GridSpec struct {
	// Section 3: template 3.0 lat/lon geometry, in micro-degrees.
	Ni, Nj             uint32
	La1, Lo1, La2, Lo2 int32
	Di, Dj             uint32
	ScanMode           uint8
	EarthShape         uint8
	ResFlags           uint8
	GDSTemplate        uint16 // 0 (default) or 40

	// Section 4 product definition.
	PDSTemplate   uint16 // 0, 1, 2, 8, 11, 12
	ParamCategory uint8
	ParamNumber   uint8
	Process       uint8
	TimeUnit      uint8
	ForecastTime  uint32
	Lvl1Type      uint8
	Lvl1Scale     uint8
	Lvl1Value     int32
	Lvl2Type      uint8 // 0 means absent (encoded as 255)
	Lvl2Scale     uint8
	Lvl2Value     int32

	// Ensemble fields for templates 1/11; derived fields for 2/12.
	EnsembleType    uint8
	PerturbationNum uint8
	EnsembleSize    uint8
	DerivedCode     uint8

	// Statistical block for templates 8/11/12.
	EndTime    time.Time
	NumMissing uint32
	TimeRanges []StatRange

	// Section 5 template 5.0 packing parameters.
	R    float32
	E    int16
	D    int16
	Bits uint8

	// Section 6/7: optional bitmap and the packed values.
	Bitmap []bool
	Packed []uint32
}

// StatRange is one 12-byte statistical time-range specification.
type StatRange struct {
	Process    uint8
	IncrType   uint8
	Unit       uint8
	Length     uint32
	IncrUnit   uint8
	IncrLength uint32
}

// HeaderSpec describes the indicator and identification sections of a
// synthetic message.
type HeaderSpec struct {
	Discipline uint8
	Center     uint16
	SubCenter  uint16
	RefTime    time.Time
}

func putSignMagnitude32(b []byte, v int32) {
	u := uint32(v)
	if v < 0 {
		u = uint32(-v) | 0x80000000
	}
	binary.BigEndian.PutUint32(b, u)
}

func putSignMagnitude16(b []byte, v int16) {
	u := uint16(v)
	if v < 0 {
		u = uint16(-v) | 0x8000
	}
	binary.BigEndian.PutUint16(b, u)
}

// section3 assembles a template 3.0/3.40 grid definition section.
func (g *GridSpec) section3() []byte {
	sec := make([]byte, 72)
	binary.BigEndian.PutUint32(sec[0:], 72)
	sec[4] = 3
	sec[5] = 0 // source: template
	binary.BigEndian.PutUint32(sec[6:], g.Ni*g.Nj)
	sec[10] = 0 // no optional list
	sec[11] = 0
	binary.BigEndian.PutUint16(sec[12:], g.GDSTemplate)

	tmpl := sec[14:]
	tmpl[0] = g.EarthShape
	binary.BigEndian.PutUint32(tmpl[16:], g.Ni)
	binary.BigEndian.PutUint32(tmpl[20:], g.Nj)
	putSignMagnitude32(tmpl[32:], g.La1)
	putSignMagnitude32(tmpl[36:], g.Lo1)
	tmpl[40] = g.ResFlags
	putSignMagnitude32(tmpl[41:], g.La2)
	putSignMagnitude32(tmpl[45:], g.Lo2)
	binary.BigEndian.PutUint32(tmpl[49:], g.Di)
	binary.BigEndian.PutUint32(tmpl[53:], g.Dj)
	tmpl[57] = g.ScanMode
	return sec
}

// section4 assembles the product definition section for the grid's
// template.
func (g *GridSpec) section4() []byte {
	base := make([]byte, 25)
	base[0] = g.ParamCategory
	base[1] = g.ParamNumber
	base[2] = 2 // generating process type: forecast
	base[3] = 0
	base[4] = g.Process
	// cutoff hours/minutes stay zero
	base[8] = g.TimeUnit
	binary.BigEndian.PutUint32(base[9:], g.ForecastTime)
	base[13] = g.Lvl1Type
	base[14] = g.Lvl1Scale
	putSignMagnitude32(base[15:], g.Lvl1Value)
	if g.Lvl2Type == 0 {
		base[19] = 255
		binary.BigEndian.PutUint32(base[21:], 0)
	} else {
		base[19] = g.Lvl2Type
		base[20] = g.Lvl2Scale
		putSignMagnitude32(base[21:], g.Lvl2Value)
	}

	var tail []byte
	switch g.PDSTemplate {
	case 1, 11:
		tail = append(tail, g.EnsembleType, g.PerturbationNum, g.EnsembleSize)
	case 2, 12:
		tail = append(tail, g.DerivedCode, g.EnsembleSize)
	}
	if g.PDSTemplate == 8 || g.PDSTemplate == 11 || g.PDSTemplate == 12 {
		stat := make([]byte, 12)
		binary.BigEndian.PutUint16(stat[0:], uint16(g.EndTime.Year()))
		stat[2] = uint8(g.EndTime.Month())
		stat[3] = uint8(g.EndTime.Day())
		stat[4] = uint8(g.EndTime.Hour())
		stat[5] = uint8(g.EndTime.Minute())
		stat[6] = uint8(g.EndTime.Second())
		stat[7] = uint8(len(g.TimeRanges))
		binary.BigEndian.PutUint32(stat[8:], g.NumMissing)
		tail = append(tail, stat...)
		for _, tr := range g.TimeRanges {
			spec := make([]byte, 12)
			spec[0] = tr.Process
			spec[1] = tr.IncrType
			spec[2] = tr.Unit
			binary.BigEndian.PutUint32(spec[3:], tr.Length)
			spec[7] = tr.IncrUnit
			binary.BigEndian.PutUint32(spec[8:], tr.IncrLength)
			tail = append(tail, spec...)
		}
	}

	sec := make([]byte, 9, 9+len(base)+len(tail))
	sec = append(sec, base...)
	sec = append(sec, tail...)
	binary.BigEndian.PutUint32(sec[0:], uint32(len(sec)))
	sec[4] = 4
	binary.BigEndian.PutUint16(sec[5:], 0) // no coordinate values
	binary.BigEndian.PutUint16(sec[7:], g.PDSTemplate)
	return sec
}

// section5 assembles a template 5.0 data representation section.
func (g *GridSpec) section5() []byte {
	sec := make([]byte, 21)
	binary.BigEndian.PutUint32(sec[0:], 21)
	sec[4] = 5
	binary.BigEndian.PutUint32(sec[5:], uint32(len(g.Packed)))
	binary.BigEndian.PutUint16(sec[9:], 0) // template 5.0
	binary.BigEndian.PutUint32(sec[11:], float32bits(g.R))
	putSignMagnitude16(sec[15:], g.E)
	putSignMagnitude16(sec[17:], g.D)
	sec[19] = g.Bits
	sec[20] = 0 // original field type: float
	return sec
}

// section6 assembles the bitmap section: an explicit bitmap when the grid
// has one, indicator 255 otherwise.
func (g *GridSpec) section6() []byte {
	if g.Bitmap == nil {
		sec := make([]byte, 6)
		binary.BigEndian.PutUint32(sec[0:], 6)
		sec[4] = 6
		sec[5] = 255
		return sec
	}

	length := 6 + (len(g.Bitmap)+7)/8
	sec := make([]byte, length)
	binary.BigEndian.PutUint32(sec[0:], uint32(length))
	sec[4] = 6
	sec[5] = 0
	for i, present := range g.Bitmap {
		if present {
			sec[6+i/8] |= 0x80 >> (i % 8)
		}
	}
	return sec
}

// section7 assembles the data section with the packed values at the
// grid's bit width.
func (g *GridSpec) section7() []byte {
	length := 5 + (len(g.Packed)*int(g.Bits)+7)/8
	sec := make([]byte, length)
	binary.BigEndian.PutUint32(sec[0:], uint32(length))
	sec[4] = 7

	off := 40
	for _, v := range g.Packed {
		for b := int(g.Bits) - 1; b >= 0; b-- {
			if v&(1<<b) != 0 {
				sec[off/8] |= 0x80 >> (off % 8)
			}
			off++
		}
	}
	return sec
}

// Sections returns the grid's section 3-7 chain.
func (g *GridSpec) Sections() []byte {
	var out []byte
	out = append(out, g.section3()...)
	out = append(out, g.section4()...)
	out = append(out, g.section5()...)
	out = append(out, g.section6()...)
	out = append(out, g.section7()...)
	return out
}

// BuildMessage assembles a complete GRIB2 message from a header and one or
// more grid section chains.
func BuildMessage(h HeaderSpec, gridSections ...[]byte) []byte {
	sec1 := make([]byte, 21)
	binary.BigEndian.PutUint32(sec1[0:], 21)
	sec1[4] = 1
	binary.BigEndian.PutUint16(sec1[5:], h.Center)
	binary.BigEndian.PutUint16(sec1[7:], h.SubCenter)
	sec1[9] = 2  // master tables version
	sec1[10] = 1 // local tables version
	sec1[11] = 1 // significance: start of forecast
	binary.BigEndian.PutUint16(sec1[12:], uint16(h.RefTime.Year()))
	sec1[14] = uint8(h.RefTime.Month())
	sec1[15] = uint8(h.RefTime.Day())
	sec1[16] = uint8(h.RefTime.Hour())
	sec1[17] = uint8(h.RefTime.Minute())
	sec1[18] = uint8(h.RefTime.Second())
	sec1[19] = 0 // production status: operational
	sec1[20] = 1 // type: forecast

	body := len(sec1)
	for _, gs := range gridSections {
		body += len(gs)
	}
	total := 16 + body + 4

	msg := make([]byte, 0, total)
	msg = append(msg, 'G', 'R', 'I', 'B', 0, 0, h.Discipline, 2)
	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], uint64(total))
	msg = append(msg, lenBytes[:]...)
	msg = append(msg, sec1...)
	for _, gs := range gridSections {
		msg = append(msg, gs...)
	}
	msg = append(msg, '7', '7', '7', '7')
	return msg
}

// Build assembles a single-grid message with the given header.
func (g *GridSpec) Build(h HeaderSpec) []byte {
	return BuildMessage(h, g.Sections())
}
