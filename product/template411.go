package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// Template411 represents Product Definition Template 4.11:
// Individual ensemble forecast, statistically processed over a time
// interval. It combines the ensemble fields of 4.1 with the statistical
// block of 4.8.
type Template411 struct {
	PointInTime
	EnsembleType       uint8
	PerturbationNumber uint8
	EnsembleSize       uint8
	Stat               StatisticalBlock
}

// ParseTemplate411 parses Product Definition Template 4.11.
//
// The template data should be at least 40 bytes: the 28 bytes of Template
// 4.1 plus the statistical header and time ranges.
func ParseTemplate411(data []byte) (*Template411, error) {
	if len(data) < 40 {
		return nil, fmt.Errorf("template 4.11 requires at least 40 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	base, err := parsePointInTime(r)
	if err != nil {
		return nil, err
	}

	t := &Template411{PointInTime: base}
	t.EnsembleType, _ = r.Uint8()
	t.PerturbationNumber, _ = r.Uint8()
	if t.EnsembleSize, err = r.Uint8(); err != nil {
		return nil, err
	}
	if t.Stat, err = parseStatisticalBlock(r); err != nil {
		return nil, err
	}
	return t, nil
}

// TemplateNumber returns 11 for Template 4.11.
func (t *Template411) TemplateNumber() int {
	return 11
}

// Ensemble returns the ensemble member descriptor.
func (t *Template411) Ensemble() *EnsembleInfo {
	return &EnsembleInfo{
		Type:               t.EnsembleType,
		PerturbationNumber: t.PerturbationNumber,
		Size:               t.EnsembleSize,
	}
}

// Statistical returns the statistical-processing block.
func (t *Template411) Statistical() *StatisticalBlock {
	return &t.Stat
}

// String returns a human-readable description.
func (t *Template411) String() string {
	return fmt.Sprintf("%s, member %d/%d, %d time range(s)",
		t.describe(11), t.PerturbationNumber, t.EnsembleSize, t.Stat.NumberOfTimeRanges)
}
