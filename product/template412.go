package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// Template412 represents Product Definition Template 4.12:
// Derived forecast based on all ensemble members, statistically processed
// over a time interval. It combines the derived-forecast fields of 4.2
// with the statistical block of 4.8.
type Template412 struct {
	PointInTime
	DerivedForecastCode uint8
	EnsembleSize        uint8
	Stat                StatisticalBlock
}

// ParseTemplate412 parses Product Definition Template 4.12.
//
// The template data should be at least 39 bytes: the 27 bytes of Template
// 4.2 plus the statistical header and time ranges.
func ParseTemplate412(data []byte) (*Template412, error) {
	if len(data) < 39 {
		return nil, fmt.Errorf("template 4.12 requires at least 39 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	base, err := parsePointInTime(r)
	if err != nil {
		return nil, err
	}

	t := &Template412{PointInTime: base}
	t.DerivedForecastCode, _ = r.Uint8()
	if t.EnsembleSize, err = r.Uint8(); err != nil {
		return nil, err
	}
	if t.Stat, err = parseStatisticalBlock(r); err != nil {
		return nil, err
	}
	return t, nil
}

// TemplateNumber returns 12 for Template 4.12.
func (t *Template412) TemplateNumber() int {
	return 12
}

// DerivedForecast returns the derived-forecast code and ensemble size.
func (t *Template412) DerivedForecast() (uint8, uint8, bool) {
	return t.DerivedForecastCode, t.EnsembleSize, true
}

// Statistical returns the statistical-processing block.
func (t *Template412) Statistical() *StatisticalBlock {
	return &t.Stat
}

// String returns a human-readable description.
func (t *Template412) String() string {
	return fmt.Sprintf("%s, derived code %d, %d time range(s)",
		t.describe(12), t.DerivedForecastCode, t.Stat.NumberOfTimeRanges)
}
