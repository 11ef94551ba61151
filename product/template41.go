package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// Template41 represents Product Definition Template 4.1:
// Individual ensemble forecast at a horizontal level or layer at a point
// in time. It extends Template 4.0 with the ensemble member identification.
type Template41 struct {
	PointInTime
	EnsembleType       uint8 // Type of ensemble forecast (Table 4.6)
	PerturbationNumber uint8 // Perturbation number of this member
	EnsembleSize       uint8 // Number of forecasts in ensemble
}

// ParseTemplate41 parses Product Definition Template 4.1.
//
// The template data should be 28 bytes.
func ParseTemplate41(data []byte) (*Template41, error) {
	if len(data) < 28 {
		return nil, fmt.Errorf("template 4.1 requires at least 28 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)
	base, err := parsePointInTime(r)
	if err != nil {
		return nil, err
	}

	t := &Template41{PointInTime: base}
	t.EnsembleType, _ = r.Uint8()
	t.PerturbationNumber, _ = r.Uint8()
	if t.EnsembleSize, err = r.Uint8(); err != nil {
		return nil, err
	}
	return t, nil
}

// TemplateNumber returns 1 for Template 4.1.
func (t *Template41) TemplateNumber() int {
	return 1
}

// Ensemble returns the ensemble member descriptor.
func (t *Template41) Ensemble() *EnsembleInfo {
	return &EnsembleInfo{
		Type:               t.EnsembleType,
		PerturbationNumber: t.PerturbationNumber,
		Size:               t.EnsembleSize,
	}
}

// String returns a human-readable description.
func (t *Template41) String() string {
	return fmt.Sprintf("%s, member %d/%d",
		t.describe(1), t.PerturbationNumber, t.EnsembleSize)
}
