package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// Template42 represents Product Definition Template 4.2:
// Derived forecast based on all ensemble members at a horizontal level or
// layer at a point in time (ensemble mean, spread, and similar products).
type Template42 struct {
	PointInTime
	DerivedForecastCode uint8 // Table 4.7
	EnsembleSize        uint8 // Number of forecasts in ensemble
}

// ParseTemplate42 parses Product Definition Template 4.2.
//
// The template data should be 27 bytes.
func ParseTemplate42(data []byte) (*Template42, error) {
	if len(data) < 27 {
		return nil, fmt.Errorf("template 4.2 requires at least 27 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	base, err := parsePointInTime(r)
	if err != nil {
		return nil, err
	}

	t := &Template42{PointInTime: base}
	t.DerivedForecastCode, _ = r.Uint8()
	if t.EnsembleSize, err = r.Uint8(); err != nil {
		return nil, err
	}
	return t, nil
}

// TemplateNumber returns 2 for Template 4.2.
func (t *Template42) TemplateNumber() int {
	return 2
}

// DerivedForecast returns the derived-forecast code and ensemble size.
func (t *Template42) DerivedForecast() (uint8, uint8, bool) {
	return t.DerivedForecastCode, t.EnsembleSize, true
}

// String returns a human-readable description.
func (t *Template42) String() string {
	return fmt.Sprintf("%s, derived code %d over %d members",
		t.describe(2), t.DerivedForecastCode, t.EnsembleSize)
}
