package transcode

import (
	"fmt"

	"github.com/mmp/gribx/product"
)

// mapLevel converts the edition-2 fixed-surface pair into the edition-1
// {level type, level1, level2} triple (ON388 Table 3), applying the unit
// scalings the two editions disagree on (Pa vs hPa, m vs cm, fractions vs
// percent).
//
// Edition 1 cannot express a layer bounded by two different level types;
// that case is fatal.
func mapLevel(first, second product.FixedSurface, center int) (levelType, level1, level2 int, err error) {
	if !second.Missing() && first.Type != second.Type {
		return 0, 0, 0, &MappingError{
			Description: fmt.Sprintf(
				"unable to indicate a layer bounded by different level types %d and %d in GRIB1",
				first.Type, second.Type),
		}
	}

	lvl1 := first.Scaled()
	lvl2 := second.Scaled()
	single := second.Missing()

	switch first.Type {
	case 1, 2, 3, 4, 5, 6, 7, 8, 9:
		// Surface through nominal-top: identical codes in both editions.
		return int(first.Type), 0, 0, nil

	case 20: // isothermal level
		return 20, 0, 0, nil

	case 100: // isobaric surface, Pa -> hPa
		if single {
			return 100, int(lvl1 / 100), 0, nil
		}
		return 101, int(lvl1 / 1000), int(lvl2 / 1000), nil

	case 101: // mean sea level
		return 102, 0, 0, nil

	case 102: // altitude above MSL, m
		if single {
			return 103, int(lvl1), 0, nil
		}
		return 104, int(lvl1 / 100), int(lvl2 / 100), nil

	case 103: // height above ground, m
		if single {
			return 105, int(lvl1), 0, nil
		}
		return 106, int(lvl1 / 100), int(lvl2 / 100), nil

	case 104: // sigma level, fraction -> 1/10000 (layer: 1/100)
		if single {
			return 107, int(lvl1 * 10000), 0, nil
		}
		return 108, int(lvl1 * 100), int(lvl2 * 100), nil

	case 105: // hybrid level
		if single {
			return 109, int(lvl1), 0, nil
		}
		return 110, int(lvl1), int(lvl2), nil

	case 106: // depth below land surface, m -> cm
		if single {
			return 111, int(lvl1 * 100), 0, nil
		}
		return 112, int(lvl1 * 100), int(lvl2 * 100), nil

	case 107: // isentropic level, K
		if single {
			return 113, int(lvl1), 0, nil
		}
		return 114, int(475 - lvl1), int(475 - lvl2), nil

	case 108: // pressure difference from ground, Pa -> hPa
		if single {
			return 115, int(lvl1 / 100), 0, nil
		}
		return 116, int(lvl1 / 100), int(lvl2 / 100), nil

	case 109: // potential vorticity surface, K m^2 kg^-1 s^-1 -> 10^-9 units
		return 117, int(lvl1 * 1000000000), 0, nil

	case 111: // eta level
		if single {
			return 119, int(lvl1 * 10000), 0, nil
		}
		return 120, int(lvl1 * 100), int(lvl2 * 100), nil

	case 117:
		return 0, 0, 0, &MappingError{
			Description: "there is no GRIB1 level code for 'Mixed layer depth'",
		}

	case 160: // depth below sea level, m
		return 160, int(lvl1), 0, nil

	case 200: // entire atmosphere (NCEP local)
		if center == 7 {
			return 200, 0, 0, nil
		}
	}

	return 0, 0, 0, &MappingError{
		Description: fmt.Sprintf("unable to map level type %d to GRIB1", first.Type),
	}
}
