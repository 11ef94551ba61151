package gribx

import (
	"fmt"

	"github.com/mmp/gribx/stream"
)

// Decoder reads GRIB2 messages one at a time from a byte stream, pulling
// bytes through a read callback. This is the synchronous streaming core;
// the Read/ReadWithOptions batch API layers parallel decoding on top of
// in-memory data.
type Decoder struct {
	framer *stream.Framer
}

// NewDecoder creates a decoder over the read callback. Framer options
// (diagnostics writer, message size cap) are passed through.
func NewDecoder(read stream.ReadFunc, opts ...stream.FramerOption) *Decoder {
	return &Decoder{framer: stream.NewFramer(read, opts...)}
}

// Next decodes the next message from the stream.
//
// It returns io.EOF when the stream ends cleanly at a message boundary and
// a *stream.ReadError on mid-message truncation; previously decoded
// messages remain valid. An edition-1 message in the stream is reported as
// an *InvalidFormatError — route such streams through the grib1 package.
func (d *Decoder) Next() (*Message, error) {
	raw, err := d.framer.Next()
	if err != nil {
		return nil, err
	}
	if raw.Edition != 2 {
		return nil, &InvalidFormatError{
			Message: fmt.Sprintf("edition-%d message in GRIB2 stream (use the grib1 package)", raw.Edition),
		}
	}
	return ParseMessage(raw.Data)
}
