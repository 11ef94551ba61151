// Package gribx is a codec for the WMO GRIdded Binary (GRIB) meteorological
// data interchange format.
//
// It decodes GRIB edition-1 and edition-2 messages from a byte stream into
// structured grids of floating-point values, and transcodes edition-2
// messages into edition-1 messages for consumers that only understand the
// older edition.
//
// Reading a file:
//
//	f, _ := os.Open("forecast.grib2")
//	defer f.Close()
//
//	fields, err := gribx.Read(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, field := range fields {
//	    fmt.Printf("%s at %s: %d points\n",
//	        field.Parameter, field.Level, field.NumPoints)
//	}
//
// Streaming with callbacks:
//
//	dec := gribx.NewDecoder(stream.ReaderFunc(f))
//	for {
//	    msg, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Edition-1 files go through the gribx/grib1 package, and the
// gribx/transcode package converts decoded edition-2 messages into
// edition-1 output.
//
// Messages in the batch API are parsed in parallel using goroutines. Use
// ReadWithOptions to control parallelism or apply filters.
package gribx

// MissingValue is the sentinel stored for grid cells masked out by a
// bitmap.
const MissingValue = 1e30
