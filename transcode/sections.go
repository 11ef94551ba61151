package transcode

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mmp/gribx/grid"
	"github.com/mmp/gribx/internal"
	"github.com/mmp/gribx/product"
)

// pdsFields carries everything the PDS packer needs, resolved before any
// byte is written so a mapping failure leaves no partial output.
type pdsFields struct {
	Length        int // 28, 42, or 43
	Center        uint16
	SubCenter     uint16
	Process       uint8
	HasBitmap     bool
	ParameterCode int
	LevelType     int
	Level1        int
	Level2        int
	SingleLevel   bool // level1 occupies 16 bits
	RefTime       time.Time
	TimeUnit      uint8
	Range         timeRange
	Ensemble      *product.EnsembleInfo
	DerivedCode   uint8
	DerivedSize   uint8
	HasDerived    bool
	DecimalScale  int
}

// packPDS assembles the edition-1 Product Definition Section at bit offset
// off in buf and returns the offset past it.
func packPDS(buf []byte, off int, f *pdsFields, diag io.Writer, warnedEnsemble *bool) int {
	bw := internal.NewBitWriter(buf)
	bw.SetOffset(off)

	bw.WriteBits(uint32(f.Length), 24)
	bw.WriteBits(3, 8) // GRIB1 parameter table version
	bw.WriteBits(uint32(f.Center)&0xff, 8)
	bw.WriteBits(uint32(f.Process), 8)
	bw.WriteBits(255, 8) // grid catalog number: GDS included instead
	if f.HasBitmap {
		bw.WriteBits(0xC0, 8) // GDS and BMS included
	} else {
		bw.WriteBits(0x80, 8) // GDS included
	}
	bw.WriteBits(uint32(f.ParameterCode), 8)
	bw.WriteBits(uint32(f.LevelType), 8)
	if f.SingleLevel {
		bw.WriteBits(uint32(f.Level1), 16)
	} else {
		bw.WriteBits(uint32(f.Level1), 8)
		bw.WriteBits(uint32(f.Level2), 8)
	}

	bw.WriteBits(uint32(f.RefTime.Year()%100), 8)
	bw.WriteBits(uint32(f.RefTime.Month()), 8)
	bw.WriteBits(uint32(f.RefTime.Day()), 8)
	bw.WriteBits(uint32(f.RefTime.Hour()), 8)
	bw.WriteBits(uint32(f.RefTime.Minute()), 8)

	if f.TimeUnit == 13 {
		// GRIB1 Table 4 has no "seconds" unit; the octet stays zero.
		fmt.Fprintf(diag, "warning: unable to indicate 'Second' for time unit in GRIB1\n")
		bw.Skip(8)
	} else {
		bw.WriteBits(uint32(f.TimeUnit), 8)
	}

	if f.Range.Indicator == 10 {
		bw.WriteBits(uint32(f.Range.P1), 16)
	} else {
		bw.WriteBits(uint32(f.Range.P1), 8)
		bw.WriteBits(uint32(f.Range.P2), 8)
	}
	bw.WriteBits(uint32(f.Range.Indicator), 8)
	bw.WriteBits(uint32(f.Range.NumAverage), 16)
	bw.WriteBits(uint32(f.Range.NumMissing), 8)

	bw.WriteBits(uint32(f.RefTime.Year()/100+1), 8)
	bw.WriteBits(uint32(f.SubCenter)&0xff, 8)
	bw.WriteSignMagnitude(int32(f.DecimalScale), 16)

	// Ensemble metadata extends the PDS to octets 41-43; octets 29-40
	// stay reserved (zero).
	switch {
	case f.Ensemble != nil:
		bw.SetOffset(off + 320)
		bw.WriteBits(uint32(f.Ensemble.Type), 8)
		bw.WriteBits(uint32(f.Ensemble.PerturbationNumber), 8)
		bw.WriteBits(uint32(f.Ensemble.Size), 8)
		if !*warnedEnsemble {
			fmt.Fprintf(diag, "notice: the ensemble type code, perturbation number, and ensemble size\n")
			fmt.Fprintf(diag, "have been packed in octets 41-43 of the GRIB1 Product Definition Section\n")
			*warnedEnsemble = true
		}
	case f.HasDerived:
		bw.SetOffset(off + 320)
		bw.WriteBits(uint32(f.DerivedCode), 8)
		bw.WriteBits(uint32(f.DerivedSize), 8)
		if !*warnedEnsemble {
			fmt.Fprintf(diag, "notice: the derived forecast code and ensemble size have been packed\n")
			fmt.Fprintf(diag, "in octets 41-42 of the GRIB1 Product Definition Section\n")
			*warnedEnsemble = true
		}
	}

	return off + f.Length*8
}

// grib1ResolutionFlags assembles the edition-1 resolution/component octet
// from the edition-2 flags: increments-given mirrors to bit 1, an oblate
// earth (shape 2) sets bit 2, and the wind-component flag mirrors to bit 5.
func grib1ResolutionFlags(resComp uint8, earthShape uint8) uint32 {
	var flags uint32
	if resComp&0x20 != 0 {
		flags |= 0x80
	}
	if earthShape == 2 {
		flags |= 0x40
	}
	if resComp&0x08 != 0 {
		flags |= 0x08
	}
	return flags
}

// microToMilli converts a micro-degree coordinate to the milli-degrees
// edition 1 carries.
func microToMilli(v int32) int32 {
	return v / 1000
}

// packLatLonGDS assembles the 32-byte edition-1 lat/lon GDS.
func packLatLonGDS(buf []byte, off int, g *grid.LatLonGrid) int {
	bw := internal.NewBitWriter(buf)
	bw.SetOffset(off)

	bw.WriteBits(32, 24)
	bw.WriteBits(255, 8) // NV
	bw.WriteBits(255, 8) // PV
	bw.WriteBits(0, 8)   // data representation: lat/lon
	bw.WriteBits(uint32(g.Ni), 16)
	bw.WriteBits(uint32(g.Nj), 16)
	bw.WriteSignMagnitude(microToMilli(g.La1), 24)
	bw.WriteSignMagnitude(microToMilli(g.Lo1), 24)
	bw.WriteBits(grib1ResolutionFlags(g.ResFlags, g.Shape), 8)
	bw.WriteSignMagnitude(microToMilli(g.La2), 24)
	bw.WriteSignMagnitude(microToMilli(g.Lo2), 24)
	bw.WriteBits(uint32(g.Di/1000)&0xffff, 16)
	bw.WriteBits(uint32(g.Dj/1000)&0xffff, 16)
	bw.WriteBits(uint32(g.ScanningMode), 8)
	bw.WriteBits(0, 32) // reserved

	return off + 32*8
}

// packLambertGDS assembles the 42-byte edition-1 Lambert conformal GDS.
func packLambertGDS(buf []byte, off int, g *grid.LambertConformalGrid) int {
	bw := internal.NewBitWriter(buf)
	bw.SetOffset(off)

	bw.WriteBits(42, 24)
	bw.WriteBits(255, 8) // NV
	bw.WriteBits(255, 8) // PV
	bw.WriteBits(3, 8)   // data representation: Lambert conformal
	bw.WriteBits(uint32(g.Nx), 16)
	bw.WriteBits(uint32(g.Ny), 16)
	bw.WriteSignMagnitude(microToMilli(g.La1), 24)
	bw.WriteSignMagnitude(microToMilli(g.Lo1), 24)
	bw.WriteBits(grib1ResolutionFlags(g.ResFlags, g.Shape), 8)
	bw.WriteSignMagnitude(microToMilli(g.LoV), 24)

	// Grid lengths: millimetres on the edition-2 wire, metres in
	// edition 1, rounded.
	dx, dy := g.Spacing()
	bw.WriteBits(uint32(dx+0.5), 24)
	bw.WriteBits(uint32(dy+0.5), 24)

	bw.WriteBits(uint32(g.ProjectionCenter), 8)
	bw.WriteBits(uint32(g.ScanningMode), 8)
	bw.WriteSignMagnitude(microToMilli(g.Latin1), 24)
	bw.WriteSignMagnitude(microToMilli(g.Latin2), 24)
	bw.WriteSignMagnitude(microToMilli(g.LatSouthPole), 24)
	bw.WriteSignMagnitude(microToMilli(g.LonSouthPole), 24)
	bw.WriteBits(0, 16) // reserved

	return off + 42*8
}

// packBMS assembles the edition-1 Bit Map Section from the resolved
// bitmap.
func packBMS(buf []byte, off int, bitmap []bool) int {
	numPoints := len(bitmap)
	length := 6 + (numPoints+7)/8
	unused := 8 - numPoints%8

	bw := internal.NewBitWriter(buf)
	bw.SetOffset(off)

	bw.WriteBits(uint32(length), 24)
	bw.WriteBits(uint32(unused), 8)
	bw.WriteBits(0, 16) // predefined bitmap reference: none
	for _, present := range bitmap {
		if present {
			bw.WriteBits(1, 1)
		} else {
			bw.WriteBits(0, 1)
		}
	}

	return off + length*8
}

// packBDS assembles the edition-1 Binary Data Section: header, scale
// factors, the IBM32 reference, and the packed values.
func packBDS(buf []byte, off int, pvals []int, packWidth int, r float64, e int16, d int16) int {
	length := 11 + (len(pvals)*packWidth+7)/8

	bw := internal.NewBitWriter(buf)
	bw.SetOffset(off)

	bw.WriteBits(uint32(length), 24)
	bw.WriteBits(0, 4) // flag: grid-point data, simple packing
	bw.WriteBits(uint32((length-11)*8-len(pvals)*packWidth), 4)
	bw.WriteSignMagnitude(int32(e), 16)

	// The reference value is the wire-side R (undo the decimal scaling),
	// converted to IBM32 and written byte-by-byte in network order.
	packed := internal.IEEE2IBM(r * math.Pow(10, float64(d)))
	internal.PutIBM32(buf[(off+48)/8:], packed)
	bw.SetOffset(off + 80)

	bw.WriteBits(uint32(packWidth), 8)
	for _, v := range pvals {
		bw.WriteBits(uint32(v), packWidth)
	}

	return off + length*8
}
