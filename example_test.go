package gribx_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	gribx "github.com/mmp/gribx"
)

// Example_basic demonstrates basic usage of the library.
func Example_basic() {
	// Read GRIB2 data from a file:
	// f, _ := os.Open("forecast.grib2")
	r := bytes.NewReader(nil) // placeholder for example

	fields, err := gribx.Read(r)
	if err != nil {
		log.Fatal(err)
	}

	for _, field := range fields {
		fmt.Printf("Parameter: %s\n", field.Parameter)
		fmt.Printf("Center: %s\n", field.Center)
		fmt.Printf("Time: %s\n", field.ReferenceTime)
		fmt.Printf("Grid points: %d\n", field.NumPoints)
		fmt.Printf("Data range: %.2f to %.2f\n", field.MinValue(), field.MaxValue())
	}
	// Output:
}

// Example_parallel demonstrates parallel parsing with a custom worker count.
func Example_parallel() {
	r := bytes.NewReader(nil) // placeholder

	fields, err := gribx.ReadWithOptions(r, gribx.WithWorkers(4))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Parsed %d fields with 4 workers\n", len(fields))
	// Output: Parsed 0 fields with 4 workers
}

// Example_filtering demonstrates filtering messages by parameter.
func Example_filtering() {
	r := bytes.NewReader(nil) // placeholder

	// Only read temperature fields (category 0).
	fields, err := gribx.ReadWithOptions(r,
		gribx.WithParameterCategory(0),
		gribx.WithParameterNumber(0),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found %d temperature fields\n", len(fields))
	// Output: Found 0 temperature fields
}

// Example_context demonstrates cancellation with a context.
func Example_context() {
	r := bytes.NewReader(nil) // placeholder

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fields, err := gribx.ReadWithOptions(r, gribx.WithContext(ctx))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Parsed %d fields\n", len(fields))
	// Output: Parsed 0 fields
}

// Example_customFilter demonstrates a custom message filter.
func Example_customFilter() {
	r := bytes.NewReader(nil) // placeholder

	// Keep only fields from messages with a grid definition.
	filter := func(msg *gribx.Message) bool {
		return msg.Section3() != nil
	}

	fields, err := gribx.ReadWithOptions(r, gribx.WithFilter(filter))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Kept %d fields\n", len(fields))
	// Output: Kept 0 fields
}
