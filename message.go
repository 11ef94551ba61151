package gribx

import (
	"fmt"

	"github.com/mmp/gribx/section"
)

// Grid is one field within a GRIB2 message: a snapshot of the grid
// definition, product definition, data representation, bitmap, and packed
// data sections in effect when its data section was encountered.
//
// A message may carry several grids that share earlier sections; each Grid
// holds the sections that applied to it.
type Grid struct {
	Section3 *section.Section3 // Grid definition
	Section4 *section.Section4 // Product definition
	Section5 *section.Section5 // Data representation
	Section6 *section.Section6 // Bitmap (may be nil)
	Section7 *section.Section7 // Packed data

	// bitmap is the resolved bitmap for this grid: for indicator 254 it
	// is the previous grid's bitmap.
	bitmap []bool
}

// Bitmap returns the resolved bitmap for this grid, or nil when every
// point is valid.
func (g *Grid) Bitmap() []bool {
	return g.bitmap
}

// Decode unpacks this grid's data values.
//
// Returns a slice of float64 values in grid scan order. Cells masked out
// by the bitmap hold MissingValue.
func (g *Grid) Decode() ([]float64, error) {
	if g.Section5 == nil || g.Section5.Representation == nil {
		return nil, fmt.Errorf("grid has no data representation (Section 5)")
	}
	if g.Section7 == nil {
		return nil, fmt.Errorf("grid has no data section (Section 7)")
	}

	values, err := g.Section5.Representation.Decode(g.Section7.Data, g.bitmap)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return values, nil
}

// Coordinates returns the lat/lon coordinates for this grid in scan order,
// matching the order of values returned by Decode.
func (g *Grid) Coordinates() (latitudes, longitudes []float64, err error) {
	if g.Section3 == nil || g.Section3.Grid == nil {
		return nil, nil, fmt.Errorf("grid has no grid definition (Section 3)")
	}

	switch gr := g.Section3.Grid.(type) {
	case interface {
		Coordinates() ([]float64, []float64)
	}:
		lats, lons := gr.Coordinates()
		return lats, lons, nil
	default:
		return nil, nil, fmt.Errorf("grid type %T does not support coordinate generation", g.Section3.Grid)
	}
}

// Message represents a complete parsed GRIB2 message.
//
// A message carries identification metadata and one or more grids. Grids
// repeat sections 3-7 as needed; sections omitted before a repeated data
// section are inherited from the grid before it.
type Message struct {
	// Section0 contains the indicator section with discipline and message length
	Section0 *section.Section0

	// Section1 contains identification information (center, time, etc.)
	Section1 *section.Section1

	// Section2 contains local use data (optional, may be nil)
	Section2 *section.Section2

	// Grids holds every field in the message, in stream order.
	Grids []*Grid

	// RawData is the original message bytes (for debugging/analysis)
	RawData []byte
}

// ParseMessage parses a complete GRIB2 message from raw bytes.
//
// The input data should contain a single complete GRIB2 message starting
// with "GRIB" and ending with "7777".
//
// After the fixed sections 0-2, the parser walks sections 3-7 until the
// end marker, snapshotting a Grid at every data section. One message may
// therefore produce several grids that share grid/product/representation
// sections.
func ParseMessage(data []byte) (*Message, error) {
	if err := ValidateMessageStructure(data); err != nil {
		return nil, err
	}

	msg := &Message{
		RawData: data,
	}

	offset := 0

	// Parse Section 0 (always 16 bytes)
	sec0, err := section.ParseSection0(data[offset : offset+16])
	if err != nil {
		return nil, &ParseError{
			Section:    0,
			Offset:     offset,
			Message:    "failed to parse Section 0",
			Underlying: err,
		}
	}
	msg.Section0 = sec0
	offset += 16

	// Parse Section 1 (variable length)
	sec1Data := extractSectionData(data, offset)
	if sec1Data == nil {
		return nil, &ParseError{Section: 1, Offset: offset, Message: "failed to extract section 1 data"}
	}
	sec1, err := section.ParseSection1(sec1Data)
	if err != nil {
		return nil, &ParseError{Section: 1, Offset: offset, Message: "failed to parse Section 1", Underlying: err}
	}
	msg.Section1 = sec1
	offset += int(sec1.Length)

	// Pre-size the grid slice by counting data sections.
	numGrids, err := countDataSections(data, offset)
	if err != nil {
		return nil, err
	}
	msg.Grids = make([]*Grid, 0, numGrids)

	// Walk the remaining sections until the end marker, carrying the
	// sections each grid inherits.
	var cur Grid
	var prevBitmap []bool

	for {
		if offset+4 > len(data) {
			return nil, &ParseError{
				Section: -1,
				Offset:  offset,
				Message: "message ended without 7777 end marker",
			}
		}
		if string(data[offset:offset+4]) == "7777" {
			break
		}

		sectionData := extractSectionData(data, offset)
		if sectionData == nil || len(sectionData) < 5 {
			return nil, &ParseError{
				Section: -1,
				Offset:  offset,
				Message: "failed to extract section data",
			}
		}
		sectionNum := sectionData[4]

		switch sectionNum {
		case 2:
			sec2, err := section.ParseSection2(sectionData)
			if err != nil {
				return nil, &ParseError{Section: 2, Offset: offset, Message: "failed to parse Section 2", Underlying: err}
			}
			msg.Section2 = sec2

		case 3:
			sec3, err := section.ParseSection3(sectionData)
			if err != nil {
				return nil, &ParseError{Section: 3, Offset: offset, Message: "failed to parse Section 3", Underlying: err}
			}
			cur.Section3 = sec3

		case 4:
			sec4, err := section.ParseSection4(sectionData)
			if err != nil {
				return nil, &ParseError{Section: 4, Offset: offset, Message: "failed to parse Section 4", Underlying: err}
			}
			cur.Section4 = sec4

		case 5:
			sec5, err := section.ParseSection5(sectionData)
			if err != nil {
				return nil, &ParseError{Section: 5, Offset: offset, Message: "failed to parse Section 5", Underlying: err}
			}
			cur.Section5 = sec5

		case 6:
			if cur.Section3 == nil {
				return nil, &ParseError{Section: 6, Offset: offset, Message: "bitmap section before grid definition"}
			}
			sec6, err := section.ParseSection6(sectionData, cur.Section3.NumDataPoints)
			if err != nil {
				return nil, &ParseError{Section: 6, Offset: offset, Message: "failed to parse Section 6", Underlying: err}
			}
			cur.Section6 = sec6
			if sec6.InheritsBitmap() {
				cur.bitmap = prevBitmap
			} else {
				cur.bitmap = sec6.Bitmap
				prevBitmap = sec6.Bitmap
			}

		case 7:
			sec7, err := section.ParseSection7(sectionData)
			if err != nil {
				return nil, &ParseError{Section: 7, Offset: offset, Message: "failed to parse Section 7", Underlying: err}
			}
			if cur.Section3 == nil || cur.Section4 == nil || cur.Section5 == nil {
				return nil, &ParseError{Section: 7, Offset: offset, Message: "data section before grid/product/representation sections"}
			}
			snapshot := cur // the sections in effect for this grid
			snapshot.Section7 = sec7
			msg.Grids = append(msg.Grids, &snapshot)

		default:
			return nil, &ParseError{
				Section: int(sectionNum),
				Offset:  offset,
				Message: fmt.Sprintf("unexpected section number: %d", sectionNum),
			}
		}

		offset += len(sectionData)
	}

	if len(msg.Grids) == 0 {
		return nil, &ParseError{
			Section: -1,
			Offset:  offset,
			Message: "message contains no data sections",
		}
	}

	return msg, nil
}

// countDataSections scans the section chain from offset and counts
// section-7 occurrences, so the grid slice can be sized before parsing.
func countDataSections(data []byte, offset int) (int, error) {
	count := 0
	for {
		if offset+4 > len(data) {
			return 0, &ParseError{
				Section: -1,
				Offset:  offset,
				Message: "message ended without 7777 end marker",
			}
		}
		if string(data[offset:offset+4]) == "7777" {
			return count, nil
		}
		sectionData := extractSectionData(data, offset)
		if sectionData == nil || len(sectionData) < 5 {
			return 0, &ParseError{
				Section: -1,
				Offset:  offset,
				Message: "invalid section length while scanning for data sections",
			}
		}
		if sectionData[4] == 7 {
			count++
		}
		offset += len(sectionData)
	}
}

// extractSectionData reads a section's length and extracts its data.
func extractSectionData(data []byte, offset int) []byte {
	if offset+5 > len(data) {
		return nil
	}

	// Read section length (first 4 bytes)
	sectionLength := uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
		uint32(data[offset+2])<<8 | uint32(data[offset+3])

	// Validate we have enough data
	if sectionLength < 5 || offset+int(sectionLength) > len(data) {
		return nil
	}

	return data[offset : offset+int(sectionLength)]
}

// Section3 returns the grid definition of the first grid, for the common
// single-grid case. Returns nil for an empty message.
func (m *Message) Section3() *section.Section3 {
	if len(m.Grids) == 0 {
		return nil
	}
	return m.Grids[0].Section3
}

// Section4 returns the product definition of the first grid.
func (m *Message) Section4() *section.Section4 {
	if len(m.Grids) == 0 {
		return nil
	}
	return m.Grids[0].Section4
}

// Section5 returns the data representation of the first grid.
func (m *Message) Section5() *section.Section5 {
	if len(m.Grids) == 0 {
		return nil
	}
	return m.Grids[0].Section5
}

// DecodeData decodes the data values of the first grid.
//
// Returns a slice of float64 values in grid scan order. Cells masked out
// by the bitmap hold MissingValue. Use Grids to reach the other fields of
// a multi-grid message.
func (m *Message) DecodeData() ([]float64, error) {
	if len(m.Grids) == 0 {
		return nil, fmt.Errorf("message has no grids")
	}
	return m.Grids[0].Decode()
}

// Coordinates returns the lat/lon coordinates for the first grid.
func (m *Message) Coordinates() (latitudes, longitudes []float64, err error) {
	if len(m.Grids) == 0 {
		return nil, nil, fmt.Errorf("message has no grids")
	}
	return m.Grids[0].Coordinates()
}

// String returns a human-readable summary of the message.
func (m *Message) String() string {
	if m.Section0 == nil {
		return "Invalid GRIB2 message"
	}

	discipline := m.Section0.DisciplineName()

	grid := "Unknown"
	if s3 := m.Section3(); s3 != nil && s3.Grid != nil {
		grid = s3.Grid.String()
	}

	product := "Unknown"
	if s4 := m.Section4(); s4 != nil && s4.Product != nil {
		product = s4.Product.String()
	}

	return fmt.Sprintf("GRIB2 Message: Discipline=%s, Grids=%d, Grid=%s, Product=%s",
		discipline, len(m.Grids), grid, product)
}
