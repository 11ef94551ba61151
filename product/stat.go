package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// StatisticalBlock describes the statistical processing that produced a
// field: the end of the overall time interval and one or more time-range
// specifications (octets 35+ of templates 4.8/4.11/4.12).
type StatisticalBlock struct {
	EndYear   uint16 // Year of end of overall time interval
	EndMonth  uint8
	EndDay    uint8
	EndHour   uint8
	EndMinute uint8
	EndSecond uint8

	NumberOfTimeRanges uint8  // Number of time range specifications
	NumberMissing      uint32 // Values missing from the statistical process

	TimeRanges []StatisticalTimeRange
}

// StatisticalTimeRange describes one statistical processing specification.
// Each specification is 12 bytes.
type StatisticalTimeRange struct {
	StatisticalProcess uint8  // Type of statistical processing (Table 4.10)
	TimeIncrementType  uint8  // Type of time increment (Table 4.11)
	TimeRangeUnit      uint8  // Unit of time range (Table 4.4)
	TimeRangeLength    uint32 // Length of time range
	TimeIncrementUnit  uint8  // Unit of time increment (Table 4.4)
	TimeIncrement      uint32 // Time increment between successive fields
}

// EndTime returns the end-of-interval clock time packed as
// hour*10000 + minute*100 + second.
func (b *StatisticalBlock) EndTime() int {
	return int(b.EndHour)*10000 + int(b.EndMinute)*100 + int(b.EndSecond)
}

// parseStatisticalBlock reads the statistical-processing fields at the
// reader's position: the 12 fixed octets plus 12 octets per time range.
func parseStatisticalBlock(r *internal.Reader) (StatisticalBlock, error) {
	var b StatisticalBlock

	b.EndYear, _ = r.Uint16()
	b.EndMonth, _ = r.Uint8()
	b.EndDay, _ = r.Uint8()
	b.EndHour, _ = r.Uint8()
	b.EndMinute, _ = r.Uint8()
	b.EndSecond, _ = r.Uint8()
	b.NumberOfTimeRanges, _ = r.Uint8()
	var err error
	if b.NumberMissing, err = r.Uint32(); err != nil {
		return b, err
	}

	if r.Remaining() < int(b.NumberOfTimeRanges)*12 {
		return b, fmt.Errorf("statistical block with %d time ranges needs %d more bytes, have %d",
			b.NumberOfTimeRanges, int(b.NumberOfTimeRanges)*12, r.Remaining())
	}

	b.TimeRanges = make([]StatisticalTimeRange, b.NumberOfTimeRanges)
	for i := range b.TimeRanges {
		tr := &b.TimeRanges[i]
		tr.StatisticalProcess, _ = r.Uint8()
		tr.TimeIncrementType, _ = r.Uint8()
		tr.TimeRangeUnit, _ = r.Uint8()
		tr.TimeRangeLength, _ = r.Uint32()
		tr.TimeIncrementUnit, _ = r.Uint8()
		if tr.TimeIncrement, err = r.Uint32(); err != nil {
			return b, err
		}
	}
	return b, nil
}
