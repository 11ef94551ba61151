// Package main provides a command-line tool that converts GRIB2 files to
// GRIB1 for consumers that only understand the older edition.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mmp/gribx/stream"
	"github.com/mmp/gribx/transcode"
)

var quietFlag = flag.Bool("q", false, "Suppress conversion notices on stderr")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <grib2-file> <grib1-file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Convert a GRIB2 file to GRIB1. Each grid of every GRIB2 message\n")
		fmt.Fprintf(os.Stderr, "becomes one GRIB1 message in the output.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	in, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	out, err := os.Create(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := out.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	var opts []transcode.Option
	if !*quietFlag {
		opts = append(opts, transcode.WithDiagnostics(os.Stderr))
	}

	n, err := transcode.TranscodeStream(
		stream.ReaderFunc(in), stream.WriterFunc(out), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error after %d grids: %v\n", n, err)
		os.Exit(1)
	}

	fmt.Printf("Number of GRIB1 grids written to output: %d\n", n)
}
