package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// Template48 represents Product Definition Template 4.8:
// Average, accumulation, extreme values or other statistically processed
// values at a horizontal level or in a horizontal layer in a continuous or
// non-continuous time interval.
type Template48 struct {
	PointInTime
	Stat StatisticalBlock
}

// ParseTemplate48 parses Product Definition Template 4.8.
//
// The template data should be at least 37 bytes: 25 bytes of Template 4.0
// fields plus the 12-byte statistical header, then 12 bytes per time range.
func ParseTemplate48(data []byte) (*Template48, error) {
	if len(data) < 37 {
		return nil, fmt.Errorf("template 4.8 requires at least 37 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	base, err := parsePointInTime(r)
	if err != nil {
		return nil, err
	}
	stat, err := parseStatisticalBlock(r)
	if err != nil {
		return nil, err
	}
	return &Template48{PointInTime: base, Stat: stat}, nil
}

// TemplateNumber returns 8 for Template 4.8.
func (t *Template48) TemplateNumber() int {
	return 8
}

// Statistical returns the statistical-processing block.
func (t *Template48) Statistical() *StatisticalBlock {
	return &t.Stat
}

// String returns a human-readable description.
func (t *Template48) String() string {
	return fmt.Sprintf("%s, %d time range(s)", t.describe(8), t.Stat.NumberOfTimeRanges)
}
