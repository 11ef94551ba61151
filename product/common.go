package product

import (
	"fmt"

	"github.com/mmp/gribx/internal"
)

// PointInTime holds the fields shared by product templates 4.0 through
// 4.12: parameter identification, generating process, forecast time, and
// the two fixed surfaces (octets 10-34 of section 4).
type PointInTime struct {
	ParameterCategory  uint8  // Parameter category (Table 4.1)
	ParameterNumber    uint8  // Parameter number (Table 4.2)
	GeneratingProcess  uint8  // Type of generating process (Table 4.3)
	BackgroundProcess  uint8  // Background generating process
	ForecastProcess    uint8  // Analysis or forecast generating process
	HoursAfterCutoff   uint16 // Hours after data cutoff
	MinutesAfterCutoff uint8  // Minutes after data cutoff
	TimeRangeUnit      uint8  // Indicator of unit of time range (Table 4.4)
	ForecastTime       uint32 // Forecast time in units defined by TimeRangeUnit
	FirstSurface       FixedSurface
	SecondSurface      FixedSurface
}

// parsePointInTime reads the 25 shared octets at the reader's position.
func parsePointInTime(r *internal.Reader) (PointInTime, error) {
	var p PointInTime

	p.ParameterCategory, _ = r.Uint8()
	p.ParameterNumber, _ = r.Uint8()
	p.GeneratingProcess, _ = r.Uint8()
	p.BackgroundProcess, _ = r.Uint8()
	p.ForecastProcess, _ = r.Uint8()
	p.HoursAfterCutoff, _ = r.Uint16()
	p.MinutesAfterCutoff, _ = r.Uint8()
	p.TimeRangeUnit, _ = r.Uint8()
	p.ForecastTime, _ = r.Uint32()

	p.FirstSurface.Type, _ = r.Uint8()
	p.FirstSurface.ScaleFactor, _ = r.Uint8()
	var err error
	if p.FirstSurface.Value, err = r.Int32SignMagnitude(); err != nil {
		return p, err
	}
	p.SecondSurface.Type, _ = r.Uint8()
	p.SecondSurface.ScaleFactor, _ = r.Uint8()
	if p.SecondSurface.Value, err = r.Int32SignMagnitude(); err != nil {
		return p, err
	}
	return p, nil
}

// GetParameterCategory returns the parameter category code.
func (p *PointInTime) GetParameterCategory() uint8 {
	return p.ParameterCategory
}

// GetParameterNumber returns the parameter number code.
func (p *PointInTime) GetParameterNumber() uint8 {
	return p.ParameterNumber
}

// GetGeneratingProcess returns the generating process type.
func (p *PointInTime) GetGeneratingProcess() uint8 {
	return p.GeneratingProcess
}

// GetTimeUnit returns the forecast time unit.
func (p *PointInTime) GetTimeUnit() uint8 {
	return p.TimeRangeUnit
}

// GetForecastTime returns the forecast time.
func (p *PointInTime) GetForecastTime() uint32 {
	return p.ForecastTime
}

// Surfaces returns the two fixed-surface descriptors.
func (p *PointInTime) Surfaces() (first, second FixedSurface) {
	return p.FirstSurface, p.SecondSurface
}

// Ensemble returns nil; templates with ensemble data override this.
func (p *PointInTime) Ensemble() *EnsembleInfo {
	return nil
}

// DerivedForecast reports no derived-forecast data; templates 4.2/4.12
// override this.
func (p *PointInTime) DerivedForecast() (uint8, uint8, bool) {
	return 0, 0, false
}

// Statistical returns nil; statistically processed templates override this.
func (p *PointInTime) Statistical() *StatisticalBlock {
	return nil
}

func (p *PointInTime) describe(template int) string {
	return fmt.Sprintf("Template 4.%d: Category=%d, Parameter=%d, Surface Type=%d",
		template, p.ParameterCategory, p.ParameterNumber, p.FirstSurface.Type)
}
