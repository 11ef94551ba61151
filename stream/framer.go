package stream

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// defaultMaxMessageSize caps the declared length of a message of any
// edition, guarding against corrupt length fields; WithMaxMessageSize
// overrides it.
const defaultMaxMessageSize = 1 << 31

// RawMessage is one complete GRIB message as framed from the stream: the
// bytes from the leading "GRIB" marker through the trailing "7777" marker,
// inclusive. The buffer is owned by the caller until the next Next call.
type RawMessage struct {
	// Data holds the full message, starting with "GRIB".
	Data []byte

	// Edition is the GRIB edition: 0 (legacy GRIB-0), 1, or 2.
	Edition uint8

	// Discipline is octet 7 of the indicator section. Meaningful only for
	// edition 2.
	Discipline uint8

	// TotalLength is the message length in bytes. For GRIB-0 this includes
	// the +7 adjustment covering the marker and the trailing section
	// length.
	TotalLength uint64
}

// Framer extracts GRIB messages of either edition from a byte stream.
//
// The framer resynchronises on the ASCII "GRIB" marker, so arbitrary
// leading or interstitial garbage (index records, padding) is skipped one
// byte at a time until a marker or the end of the stream is found.
type Framer struct {
	read    ReadFunc
	diag    io.Writer
	maxSize uint64
}

// FramerOption configures a Framer.
type FramerOption func(*Framer)

// WithDiagnostics directs warning-grade conditions (missing "7777" end
// marker, quirky section layouts) to w. Warnings never fail the decode.
func WithDiagnostics(w io.Writer) FramerOption {
	return func(f *Framer) { f.diag = w }
}

// WithMaxMessageSize caps the message length the framer will allocate for.
// Lengths beyond the cap are reported as stream corruption.
func WithMaxMessageSize(n uint64) FramerOption {
	return func(f *Framer) { f.maxSize = n }
}

// NewFramer creates a framer over the given read callback.
func NewFramer(read ReadFunc, opts ...FramerOption) *Framer {
	f := &Framer{
		read:    read,
		diag:    io.Discard,
		maxSize: defaultMaxMessageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Next reads the next GRIB message from the stream.
//
// It returns io.EOF when the stream ends cleanly at a message boundary, and
// a *ReadError when the stream ends or fails mid-message. A missing "7777"
// end marker is reported on the diagnostics writer and does not fail the
// message.
func (f *Framer) Next() (*RawMessage, error) {
	header := make([]byte, 16)

	// Read the first four bytes of the marker. Nothing read at all is a
	// clean end of stream.
	n, err := readFull(f.read, header[0:4])
	if err != nil {
		return nil, &ReadError{Message: "reading message header", Underlying: err}
	}
	if n == 0 {
		return nil, io.EOF
	}
	if n < 4 {
		return nil, &ReadError{Message: fmt.Sprintf("stream ended after %d bytes of header", n)}
	}

	// Resynchronise on "GRIB": slide the window forward one candidate 'G'
	// at a time, shifting the surviving prefix left and topping the window
	// up from the stream.
	for string(header[0:4]) != "GRIB" {
		shift := 4
		for i := 1; i < 4; i++ {
			if header[i] == 'G' {
				shift = i
				break
			}
		}
		copy(header, header[shift:4])
		n, err := readFull(f.read, header[4-shift:4])
		if err != nil {
			return nil, &ReadError{Message: "resynchronising on GRIB marker", Underlying: err}
		}
		if n < shift {
			return nil, io.EOF
		}
	}

	// Read the rest of the 8-byte prefix: length/discipline + edition.
	if n, err := readFull(f.read, header[4:8]); err != nil || n < 4 {
		return nil, &ReadError{Message: "reading indicator section", Underlying: err}
	}

	msg := &RawMessage{Edition: header[7]}
	headerLen := 8

	switch {
	case msg.Edition == 2:
		// Bytes 8-15 carry a 64-bit total length.
		if n, err := readFull(f.read, header[8:16]); err != nil || n < 8 {
			return nil, &ReadError{Message: "reading edition-2 message length", Underlying: err}
		}
		msg.Discipline = header[6]
		msg.TotalLength = uint64(header[8])<<56 | uint64(header[9])<<48 |
			uint64(header[10])<<40 | uint64(header[11])<<32 |
			uint64(header[12])<<24 | uint64(header[13])<<16 |
			uint64(header[14])<<8 | uint64(header[15])
		headerLen = 16
		if msg.TotalLength < 16 {
			return nil, &ReadError{Message: fmt.Sprintf("edition-2 message length %d below minimum", msg.TotalLength)}
		}

	default:
		// Edition 1: bytes 4-6 carry a 24-bit total length. A length of
		// exactly 24 marks the legacy GRIB-0 variant, which has only a
		// PDS; its length is extended by 7 to cover the marker and the
		// trailing section length.
		msg.TotalLength = uint64(header[4])<<16 | uint64(header[5])<<8 | uint64(header[6])
		if msg.TotalLength == 24 {
			msg.Edition = 0
			msg.TotalLength += 7
		} else {
			msg.Edition = 1
		}
		if msg.TotalLength < 8 {
			return nil, &ReadError{Message: fmt.Sprintf("edition-1 message length %d below minimum", msg.TotalLength)}
		}
	}

	if msg.TotalLength > f.maxSize {
		return nil, &ReadError{Message: fmt.Sprintf("message length %d exceeds limit %d", msg.TotalLength, f.maxSize)}
	}

	// Allocate the message buffer (with slack for the end-marker check on
	// short GRIB-0 messages), copy the header in, read the remainder.
	msg.Data = make([]byte, msg.TotalLength+4)[:msg.TotalLength]
	copy(msg.Data, header[:headerLen])
	remainder := int(msg.TotalLength) - headerLen
	if n, err := readFull(f.read, msg.Data[headerLen:]); err != nil || n < remainder {
		return nil, &ReadError{
			Message:    fmt.Sprintf("message truncated: wanted %d body bytes, got %d", remainder, n),
			Underlying: err,
		}
	}

	if string(msg.Data[msg.TotalLength-4:]) != "7777" {
		fmt.Fprintf(f.diag, "warning: no end section found\n")
	}
	return msg, nil
}

// CopyMessages frames every message out of read and forwards the raw bytes
// to write, stopping at end of stream. It reports the number of messages
// copied. Useful for splitting concatenated GRIB files without decoding.
func CopyMessages(read ReadFunc, write WriteFunc) (int, error) {
	f := NewFramer(read)
	count := 0
	for {
		msg, err := f.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if _, err := write(msg.Data); err != nil {
			return count, errors.Wrap(err, "writing framed message")
		}
		count++
	}
}
