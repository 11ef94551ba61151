package internal

import (
	"math"
	"testing"
)

func TestIEEE2IBMKnownValues(t *testing.T) {
	tests := []struct {
		v    float64
		want uint32
	}{
		{1.0, 0x41100000},
		{-1.0, 0xC1100000},
		{0.0, 0x00000000},
		{16.0, 0x42100000},
		{0.5, 0x40800000},
		{-118.625, 0xC276A000},
	}
	for _, tt := range tests {
		if got := IEEE2IBM(tt.v); got != tt.want {
			t.Errorf("IEEE2IBM(%g) = %#08x, want %#08x", tt.v, got, tt.want)
		}
	}
}

func TestIBM2RealRoundTrip(t *testing.T) {
	// Every IBM32-representable value must survive
	// ibm2real(ieee2ibm(f)) == f exactly.
	values := []float64{
		0, 1, -1, 0.5, 100, -100, 273.125, 101325, 1.52587890625e-05, -3.25,
		0.0625, 65536, -65536, 118.625,
	}
	for _, v := range values {
		packed := IEEE2IBM(v)
		buf := make([]byte, 4)
		PutIBM32(buf, packed)

		got, err := IBM2Real(buf, 0)
		if err != nil {
			t.Fatal(err)
		}
		// All chosen values have <= 24 significant bits after hex
		// normalization, so the round trip is exact.
		if got != v {
			t.Errorf("round trip of %g: got %g (packed %#08x)", v, got, packed)
		}
	}
}

func TestIBM2RealReverseRoundTrip(t *testing.T) {
	// For a valid normalized IBM32 bit pattern, real->ibm->real is
	// idempotent.
	patterns := []uint32{
		0x41100000, 0xC1100000, 0x42640000, 0x3F400000, 0x46100000,
	}
	for _, p := range patterns {
		buf := make([]byte, 4)
		PutIBM32(buf, p)
		v, err := IBM2Real(buf, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got := IEEE2IBM(v); got != p {
			t.Errorf("reverse round trip of %#08x: got %#08x (value %g)", p, got, v)
		}
	}
}

func TestIBM2RealUnalignedOffset(t *testing.T) {
	// The GRIB1 BDS reference value sits at a byte-aligned offset within
	// the message, but IBM2Real accepts any bit offset.
	buf := make([]byte, 6)
	PutIBM32(buf[1:], IEEE2IBM(2.5))
	v, err := IBM2Real(buf, 8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2.5 {
		t.Errorf("IBM2Real at offset 8 = %g, want 2.5", v)
	}
}

func TestIEEE2IBMFractionRange(t *testing.T) {
	// The normalized fraction must always fit in 24 bits.
	for _, v := range []float64{1e-10, 1e10, math.Pi, -math.E} {
		packed := IEEE2IBM(v)
		if packed&0xffffff == 0 {
			t.Errorf("IEEE2IBM(%g): zero fraction", v)
		}
	}
}
