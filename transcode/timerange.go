package transcode

import (
	"fmt"
	"time"

	"github.com/mmp/gribx/product"
)

// timeRange is the edition-1 time-range description packed into the PDS.
type timeRange struct {
	P1         int
	P2         int
	Indicator  int // Time range indicator (ON388 Table 5)
	NumAverage int
	NumMissing int
}

// ncepMonthlyRanges maps the NCEP local statistical process codes used by
// the CFSR monthly products to their GRIB1 time-range indicators.
var ncepMonthlyRanges = map[uint8]int{
	193: 113, 194: 123, 195: 128, 196: 129, 197: 130,
	198: 131, 199: 132, 200: 133, 201: 134, 202: 135,
	203: 136, 204: 137, 205: 138, 206: 139, 207: 140,
}

// statisticalEndOffset returns the distance from the reference time to the
// end of the statistical interval, expressed in the grid's forecast time
// unit, the way edition 1 counts it (component-wise difference).
func statisticalEndOffset(refTime time.Time, stat *product.StatisticalBlock, timeUnit uint8) (int, error) {
	switch timeUnit {
	case 0: // minute
		return int(stat.EndMinute) - refTime.Minute(), nil
	case 1: // hour
		return int(stat.EndHour) - refTime.Hour(), nil
	case 2: // day
		return int(stat.EndDay) - refTime.Day(), nil
	case 3: // month
		return int(stat.EndMonth) - int(refTime.Month()), nil
	case 4: // year
		return int(stat.EndYear) - refTime.Year(), nil
	default:
		return 0, &MappingError{
			Description: fmt.Sprintf("unable to map end time with units %d to GRIB1", timeUnit),
		}
	}
}

// mapTimeRange converts the product's time description into the edition-1
// P1/P2/time-range triple.
//
// Point-in-time templates (4.0/4.1/4.2) are instantaneous: indicator 0
// with P1 = forecast time. Statistically processed templates
// (4.8/4.11/4.12) map the statistical process code; a single range maps
// directly, and the two-range form is recognized only for NCEP's CFSR
// monthly products.
func mapTimeRange(p product.Product, refTime time.Time, discipline uint8, center int) (timeRange, error) {
	var tr timeRange

	stat := p.Statistical()
	if stat == nil {
		// Templates 4.0/4.1/4.2: a point in time.
		tr.Indicator = 0
		tr.P1 = int(p.GetForecastTime())
		return tr, nil
	}

	if stat.NumberOfTimeRanges == 0 {
		return tr, &MappingError{
			Description: "statistically processed product carries no time ranges",
		}
	}
	tr.NumMissing = int(stat.NumberMissing)
	proc := stat.TimeRanges[0]

	if stat.NumberOfTimeRanges > 1 {
		// NCEP CFSR monthly grids use a two-range encoding.
		if center != 7 || stat.NumberOfTimeRanges != 2 {
			return tr, &MappingError{
				Description: "unable to map multiple statistical processes to GRIB1",
			}
		}
		indicator, ok := ncepMonthlyRanges[proc.StatisticalProcess]
		if !ok {
			return tr, &MappingError{
				Description: fmt.Sprintf("unable to map NCEP statistical process code %d to GRIB1",
					proc.StatisticalProcess),
			}
		}
		tr.Indicator = indicator
		tr.P2 = int(proc.TimeIncrement)
		tr.P1 = tr.P2 - int(stat.TimeRanges[1].TimeRangeLength)
		tr.NumAverage = int(proc.TimeRangeLength)
		return tr, nil
	}

	mapContinuous := func(indicator int) (timeRange, error) {
		end, err := statisticalEndOffset(refTime, stat, p.GetTimeUnit())
		if err != nil {
			return tr, err
		}
		if proc.TimeIncrement != 0 {
			return tr, &MappingError{
				Description: "unable to map discrete processing to GRIB1",
			}
		}
		tr.Indicator = indicator
		tr.P1 = int(p.GetForecastTime())
		tr.P2 = end
		return tr, nil
	}

	switch proc.StatisticalProcess {
	case 0: // average
		return mapContinuous(3)
	case 1: // accumulation
		return mapContinuous(4)
	case 4: // difference
		return mapContinuous(5)
	case 2, 3: // maximum, minimum
		return mapContinuous(2)
	case 255:
		// NCEP max/min temperature grids carry a missing process code.
		if center == 7 && discipline == 0 && p.GetParameterCategory() == 0 {
			switch p.GetParameterNumber() {
			case 4, 5:
				return mapContinuous(2)
			}
		}
	}

	return tr, &MappingError{
		Description: fmt.Sprintf("unable to map statistical process %d to GRIB1",
			proc.StatisticalProcess),
	}
}
