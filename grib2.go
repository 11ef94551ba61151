package gribx

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/mmp/gribx/grid"
	"github.com/mmp/gribx/product"
	"github.com/mmp/gribx/tables"
)

// GRIB2 represents a single meteorological field from a GRIB2 message.
//
// This is the main public type returned by the Read function. It contains
// all the information needed to work with GRIB2 data: values, coordinates,
// and metadata. A multi-grid message produces one GRIB2 per grid.
type GRIB2 struct {
	// Data values in grid scan order
	Data []float64

	// Latitudes for each grid point (same length as Data)
	Latitudes []float64

	// Longitudes for each grid point (same length as Data)
	Longitudes []float64

	// Metadata from the message
	Discipline       string    // Meteorological, Hydrological, etc.
	Center           string    // Originating center (NCEP, ECMWF, etc.)
	ReferenceTime    time.Time // Reference time of the data
	ProductionStatus string    // Operational, Test, etc.
	DataType         string    // Forecast, Analysis, etc.

	// Parameter information
	Parameter ParameterID // WMO standard parameter identifier (D.C.P)

	// Level/surface information
	Level      string  // Level type name, followed by the level value when it is nonzero
	LevelValue float64 // Value of the level (e.g., 500 for 500 hPa)

	// Grid information
	GridType  string // Grid definition template, e.g. "Template 0" (lat/lon)
	GridNi    int    // Number of points in i direction
	GridNj    int    // Number of points in j direction
	NumPoints int    // Total number of grid points

	// Raw message and grid for advanced users
	message *Message
	grid    *Grid
}

// Read parses GRIB2 messages from an io.ReadSeeker.
//
// This is the main entry point for the library. It parses all GRIB2
// messages in the input stream and returns every field they carry as
// GRIB2 structs with decoded data and coordinates.
//
// Every message in the input is read into memory first; the messages are
// then parsed in parallel for performance.
// Use ReadWithOptions to control parallelism or apply filters.
func Read(r io.ReadSeeker) ([]*GRIB2, error) {
	return ReadWithOptions(r)
}

// gridKey uniquely identifies a grid configuration for coordinate caching
type gridKey struct {
	templateNumber uint16
	numDataPoints  uint32
	nx, ny         uint32
}

// createGridKey creates a unique key for a grid
func createGridKey(g *Grid) (gridKey, bool) {
	if g.Section3 == nil || g.Section3.Grid == nil {
		return gridKey{}, false
	}

	var nx, ny uint32
	switch gr := g.Section3.Grid.(type) {
	case *grid.LambertConformalGrid:
		nx, ny = gr.Nx, gr.Ny
	case *grid.LatLonGrid:
		nx, ny = gr.Ni, gr.Nj
	default:
		return gridKey{}, false
	}

	return gridKey{
		templateNumber: g.Section3.TemplateNumber,
		numDataPoints:  g.Section3.NumDataPoints,
		nx:             nx,
		ny:             ny,
	}, true
}

// coordinateCache stores pre-computed coordinates for unique grids
type coordinateCache struct {
	latitudes  []float64
	longitudes []float64
}

// fieldRef pairs a grid with its containing message.
type fieldRef struct {
	msg  *Message
	grid *Grid
}

// ReadWithOptions parses GRIB2 messages with configuration options.
//
// Options can control parallelism, apply filters, or configure other
// behavior. See ReadOption for available options.
//
// Example:
//
//	file, _ := os.Open("forecast.grib2")
//	defer file.Close()
//	fields, err := gribx.ReadWithOptions(file,
//	    gribx.WithWorkers(4),
//	    gribx.WithParameterCategory(0),
//	)
func ReadWithOptions(r io.ReadSeeker, opts ...ReadOption) ([]*GRIB2, error) {
	// Apply options
	config := defaultReadConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Parse messages
	var messages []*Message
	var err error

	if config.sequential {
		if config.skipErrors {
			messages, err = ParseMessagesFromStreamSequentialSkipErrors(r)
		} else {
			messages, err = ParseMessagesFromStreamSequential(r)
		}
	} else if config.ctx != nil {
		messages, err = ParseMessagesFromStreamWithContext(config.ctx, r, config.workers)
	} else {
		messages, err = ParseMessagesFromStreamWithWorkers(r, config.workers)
	}

	if err != nil && !config.skipErrors {
		return nil, err
	}

	// Phase 1: Flatten messages to fields and identify unique grids.
	var refs []fieldRef
	uniqueGrids := make(map[gridKey]*Grid)

	for _, msg := range messages {
		if !config.filter(msg) {
			continue
		}
		for _, g := range msg.Grids {
			refs = append(refs, fieldRef{msg: msg, grid: g})
			if key, ok := createGridKey(g); ok {
				if _, exists := uniqueGrids[key]; !exists {
					uniqueGrids[key] = g
				}
			}
		}
	}

	// Phase 2: Compute coordinates for unique grids in parallel
	coordCache := make(map[gridKey]*coordinateCache)
	var cacheMutex sync.Mutex
	var wg sync.WaitGroup

	for key, exampleGrid := range uniqueGrids {
		wg.Add(1)
		go func(k gridKey, g *Grid) {
			defer wg.Done()

			lats, lons, err := g.Coordinates()
			if err != nil {
				// Skip this grid if coordinates fail
				return
			}

			cacheMutex.Lock()
			coordCache[k] = &coordinateCache{
				latitudes:  lats,
				longitudes: lons,
			}
			cacheMutex.Unlock()
		}(key, exampleGrid)
	}
	wg.Wait()

	// Phase 3: Decode every field using cached coordinates (in parallel)
	type result struct {
		field *GRIB2
		err   error
	}

	results := make([]result, len(refs))
	var decodeWg sync.WaitGroup

	// Limit parallelism to 2 * NumCPU to reduce memory pressure
	maxWorkers := runtime.NumCPU() * 2
	semaphore := make(chan struct{}, maxWorkers)

	for i, ref := range refs {
		key, ok := createGridKey(ref.grid)
		if !ok {
			continue
		}
		cache, ok := coordCache[key]
		if !ok {
			// Coordinates failed for this grid, skip the field
			continue
		}

		decodeWg.Add(1)
		semaphore <- struct{}{}

		go func(i int, ref fieldRef, cache *coordinateCache) {
			defer decodeWg.Done()
			defer func() { <-semaphore }()
			field, err := gridToGRIB2(ref.msg, ref.grid, cache.latitudes, cache.longitudes)
			results[i] = result{field: field, err: err}
		}(i, ref, cache)
	}
	decodeWg.Wait()

	// Collect results in order, honoring skipErrors.
	fields := make([]*GRIB2, 0, len(refs))
	for _, res := range results {
		if res.err != nil {
			if !config.skipErrors {
				return nil, fmt.Errorf("failed to convert message: %w", res.err)
			}
			continue
		}
		if res.field != nil {
			fields = append(fields, res.field)
		}
	}

	return fields, nil
}

// gridToGRIB2 converts one grid of a message to a GRIB2 field using
// pre-computed coordinates.
func gridToGRIB2(msg *Message, g *Grid, lats, lons []float64) (*GRIB2, error) {
	values, err := g.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	g2 := &GRIB2{
		Data:       values,
		Latitudes:  lats,
		Longitudes: lons,
		NumPoints:  len(values),
		message:    msg,
		grid:       g,
	}

	return populateMetadata(g2, msg, g), nil
}

// populateMetadata extracts metadata from a message/grid pair into a GRIB2
// struct.
func populateMetadata(g2 *GRIB2, msg *Message, g *Grid) *GRIB2 {
	if msg.Section0 != nil {
		g2.Discipline = msg.Section0.DisciplineName()
	}

	if msg.Section1 != nil {
		g2.Center = msg.Section1.CenterName()
		g2.ReferenceTime = msg.Section1.ReferenceTime
		g2.ProductionStatus = msg.Section1.ProductionStatusName()
		g2.DataType = msg.Section1.DataTypeName()
	}

	if g.Section3 != nil && g.Section3.Grid != nil {
		gr := g.Section3.Grid
		g2.GridType = fmt.Sprintf("Template %d", gr.TemplateNumber())
		g2.GridNi, g2.GridNj = gr.Dimensions()
	}

	if g.Section4 != nil && g.Section4.Product != nil {
		p := g.Section4.Product
		discipline := msg.Section0.Discipline

		g2.Parameter = ParameterID{
			Discipline: discipline,
			Category:   p.GetParameterCategory(),
			Number:     p.GetParameterNumber(),
		}

		first, _ := p.Surfaces()
		g2.Level = tables.GetLevelName(int(first.Type))
		g2.LevelValue = first.Scaled()
		if first.Value != 0 {
			g2.Level = fmt.Sprintf("%s %g", g2.Level, g2.LevelValue)
		}
	}

	return g2
}

// String returns a human-readable summary of the field.
func (g *GRIB2) String() string {
	return fmt.Sprintf("GRIB2: %s from %s, %d points, ref time %s",
		g.Parameter, g.Center, g.NumPoints, g.ReferenceTime.Format(time.RFC3339))
}

// MinValue returns the minimum data value in the field.
func (g *GRIB2) MinValue() float64 {
	minVal := 0.0
	first := true
	for _, val := range g.Data {
		if val == MissingValue {
			continue
		}
		if first || val < minVal {
			minVal = val
			first = false
		}
	}
	return minVal
}

// MaxValue returns the maximum data value in the field.
func (g *GRIB2) MaxValue() float64 {
	maxVal := 0.0
	first := true
	for _, val := range g.Data {
		if val == MissingValue {
			continue
		}
		if first || val > maxVal {
			maxVal = val
			first = false
		}
	}
	return maxVal
}

// CountValid returns the number of valid (non-missing) data values.
func (g *GRIB2) CountValid() int {
	count := 0
	for _, val := range g.Data {
		if val != MissingValue {
			count++
		}
	}
	return count
}

// Product returns the product definition backing this field, for advanced
// users.
func (g *GRIB2) Product() product.Product {
	if g.grid == nil || g.grid.Section4 == nil {
		return nil
	}
	return g.grid.Section4.Product
}

// GetMessage returns the underlying parsed message for advanced users.
//
// This provides access to the raw section data and allows for custom
// processing beyond what the GRIB2 struct provides.
func (g *GRIB2) GetMessage() *Message {
	return g.message
}

// GetGrid returns the underlying grid for advanced users.
func (g *GRIB2) GetGrid() *Grid {
	return g.grid
}
