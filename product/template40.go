package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// Template40 represents Product Definition Template 4.0:
// Analysis or forecast at a horizontal level or in a horizontal layer
// at a point in time.
//
// This is the most common product template, used for standard forecast
// and analysis data.
type Template40 struct {
	PointInTime
}

// ParseTemplate40 parses Product Definition Template 4.0.
//
// The template data should be 25 bytes for Template 4.0.
func ParseTemplate40(data []byte) (*Template40, error) {
	if len(data) < 25 {
		return nil, fmt.Errorf("template 4.0 requires at least 25 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	base, err := parsePointInTime(r)
	if err != nil {
		return nil, err
	}
	return &Template40{PointInTime: base}, nil
}

// TemplateNumber returns 0 for Template 4.0.
func (t *Template40) TemplateNumber() int {
	return 0
}

// String returns a human-readable description.
func (t *Template40) String() string {
	return t.describe(0)
}
