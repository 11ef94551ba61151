package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// buildEdition2Shell wraps body in a minimal edition-2 frame: a 16-byte
// indicator section and the "7777" end marker.
func buildEdition2Shell(discipline uint8, body []byte) []byte {
	total := 16 + len(body) + 4
	msg := make([]byte, 0, total)
	msg = append(msg, 'G', 'R', 'I', 'B', 0, 0, discipline, 2)
	msg = append(msg,
		byte(uint64(total)>>56), byte(uint64(total)>>48),
		byte(uint64(total)>>40), byte(uint64(total)>>32),
		byte(uint64(total)>>24), byte(uint64(total)>>16),
		byte(uint64(total)>>8), byte(uint64(total)))
	msg = append(msg, body...)
	msg = append(msg, '7', '7', '7', '7')
	return msg
}

// buildEdition1Shell wraps body in an edition-1 frame: "GRIB", 24-bit
// length, edition byte, body, "7777".
func buildEdition1Shell(body []byte) []byte {
	total := 8 + len(body) + 4
	msg := make([]byte, 0, total)
	msg = append(msg, 'G', 'R', 'I', 'B',
		byte(total>>16), byte(total>>8), byte(total), 1)
	msg = append(msg, body...)
	msg = append(msg, '7', '7', '7', '7')
	return msg
}

func TestFramerEdition2(t *testing.T) {
	raw := buildEdition2Shell(0, make([]byte, 32))
	f := NewFramer(ReaderFunc(bytes.NewReader(raw)))

	msg, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Edition != 2 {
		t.Errorf("edition = %d, want 2", msg.Edition)
	}
	if msg.TotalLength != uint64(len(raw)) {
		t.Errorf("total length = %d, want %d", msg.TotalLength, len(raw))
	}
	if !bytes.Equal(msg.Data, raw) {
		t.Error("framed data differs from input")
	}

	if _, err := f.Next(); err != io.EOF {
		t.Errorf("second Next = %v, want io.EOF", err)
	}
}

func TestFramerEdition1(t *testing.T) {
	raw := buildEdition1Shell(make([]byte, 28))
	f := NewFramer(ReaderFunc(bytes.NewReader(raw)))

	msg, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg.Edition != 1 {
		t.Errorf("edition = %d, want 1", msg.Edition)
	}
	if int(msg.TotalLength) != len(raw) {
		t.Errorf("total length = %d, want %d", msg.TotalLength, len(raw))
	}
}

func TestFramerResync(t *testing.T) {
	// Arbitrary non-GRIB bytes before the message must yield the same
	// decoded message as the unpadded input — including pad bytes that
	// contain stray 'G's.
	raw := buildEdition2Shell(0, make([]byte, 16))
	for _, pad := range []string{
		"x",
		"junk",
		"GRIngG",
		"GRIGRIGRI",
		strings.Repeat("\x00", 37),
	} {
		input := append([]byte(pad), raw...)
		f := NewFramer(ReaderFunc(bytes.NewReader(input)))
		msg, err := f.Next()
		if err != nil {
			t.Fatalf("pad %q: %v", pad, err)
		}
		if !bytes.Equal(msg.Data, raw) {
			t.Errorf("pad %q: resynced message differs from original", pad)
		}
	}
}

func TestFramerEOFOnEmptyStream(t *testing.T) {
	f := NewFramer(ReaderFunc(bytes.NewReader(nil)))
	if _, err := f.Next(); err != io.EOF {
		t.Errorf("Next on empty stream = %v, want io.EOF", err)
	}
}

func TestFramerEOFOnGarbageOnly(t *testing.T) {
	f := NewFramer(ReaderFunc(strings.NewReader("no grib markers here at all")))
	if _, err := f.Next(); err != io.EOF {
		t.Errorf("Next on garbage stream = %v, want io.EOF", err)
	}
}

func TestFramerTruncatedMessage(t *testing.T) {
	raw := buildEdition2Shell(0, make([]byte, 64))
	f := NewFramer(ReaderFunc(bytes.NewReader(raw[:40])))
	_, err := f.Next()
	if _, ok := err.(*ReadError); !ok {
		t.Errorf("Next on truncated message = %v, want *ReadError", err)
	}
}

func TestFramerMissingEndMarkerWarns(t *testing.T) {
	raw := buildEdition2Shell(0, make([]byte, 8))
	copy(raw[len(raw)-4:], "xxxx")

	var diag bytes.Buffer
	f := NewFramer(ReaderFunc(bytes.NewReader(raw)), WithDiagnostics(&diag))
	if _, err := f.Next(); err != nil {
		t.Fatalf("missing end marker should not be fatal: %v", err)
	}
	if !strings.Contains(diag.String(), "no end section") {
		t.Errorf("expected warning on diagnostics writer, got %q", diag.String())
	}
}

func TestFramerGRIB0Adjustment(t *testing.T) {
	// A 24-byte total length marks the legacy GRIB-0 variant: edition 0,
	// length extended by 7.
	msg := make([]byte, 31)
	copy(msg, "GRIB")
	msg[4], msg[5], msg[6] = 0, 0, 24
	copy(msg[27:], "7777")

	f := NewFramer(ReaderFunc(bytes.NewReader(msg)))
	got, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Edition != 0 {
		t.Errorf("edition = %d, want 0", got.Edition)
	}
	if got.TotalLength != 31 {
		t.Errorf("total length = %d, want 31", got.TotalLength)
	}
}

func TestFramerMultipleMessages(t *testing.T) {
	m1 := buildEdition2Shell(0, make([]byte, 8))
	m2 := buildEdition1Shell(make([]byte, 20))
	m3 := buildEdition2Shell(10, make([]byte, 4))
	input := append(append(append([]byte{}, m1...), m2...), m3...)

	f := NewFramer(ReaderFunc(bytes.NewReader(input)))
	editions := []uint8{}
	for {
		msg, err := f.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		editions = append(editions, msg.Edition)
	}
	want := []uint8{2, 1, 2}
	if len(editions) != len(want) {
		t.Fatalf("decoded %d messages, want %d", len(editions), len(want))
	}
	for i := range want {
		if editions[i] != want[i] {
			t.Errorf("message %d edition = %d, want %d", i, editions[i], want[i])
		}
	}
}

func TestCopyMessages(t *testing.T) {
	m1 := buildEdition2Shell(0, make([]byte, 8))
	m2 := buildEdition2Shell(0, make([]byte, 12))
	input := append([]byte("leading junk"), append(append([]byte{}, m1...), m2...)...)

	var out bytes.Buffer
	n, err := CopyMessages(ReaderFunc(bytes.NewReader(input)), WriterFunc(&out))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("copied %d messages, want 2", n)
	}
	if !bytes.Equal(out.Bytes(), append(append([]byte{}, m1...), m2...)) {
		t.Error("copied bytes differ from framed messages")
	}
}
