package gribx

import (
	"bytes"
	"io"
	"testing"

	"github.com/mmp/gribx/stream"
)

func TestDecoderNext(t *testing.T) {
	input := append(makeCompleteGRIB2Message(), makeCompleteGRIB2Message()...)

	dec := NewDecoder(stream.ReaderFunc(bytes.NewReader(input)))

	for i := 0; i < 2; i++ {
		msg, err := dec.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if len(msg.Grids) != 1 {
			t.Errorf("message %d: %d grids, want 1", i, len(msg.Grids))
		}
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("Next at end of stream = %v, want io.EOF", err)
	}
}

func TestDecoderResyncsOnGarbage(t *testing.T) {
	input := append([]byte("index record garbage"), makeCompleteGRIB2Message()...)

	dec := NewDecoder(stream.ReaderFunc(bytes.NewReader(input)))
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	values, err := msg.DecodeData()
	if err != nil {
		t.Fatal(err)
	}
	if values[0] != 250.0 {
		t.Errorf("first value = %g, want 250", values[0])
	}
}

func TestDecoderRejectsEdition1(t *testing.T) {
	// A minimal edition-1 frame: the GRIB2 decoder must refuse it with a
	// format error, not misparse it.
	msg := make([]byte, 40)
	copy(msg, "GRIB")
	msg[4], msg[5], msg[6] = 0, 0, 40
	msg[7] = 1
	copy(msg[36:], "7777")

	dec := NewDecoder(stream.ReaderFunc(bytes.NewReader(msg)))
	_, err := dec.Next()
	if _, ok := err.(*InvalidFormatError); !ok {
		t.Errorf("Next on edition-1 message = %v, want *InvalidFormatError", err)
	}
}

func TestDecoderTruncatedStream(t *testing.T) {
	full := makeCompleteGRIB2Message()
	dec := NewDecoder(stream.ReaderFunc(bytes.NewReader(full[:60])))

	_, err := dec.Next()
	if _, ok := err.(*stream.ReadError); !ok {
		t.Errorf("Next on truncated stream = %v, want *stream.ReadError", err)
	}
}
