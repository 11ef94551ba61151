package transcode

import (
	"fmt"
	"strings"

	"github.com/mmp/gribx/tables"
)

// paramKey identifies a GRIB2 parameter: discipline, category, number.
type paramKey struct {
	discipline int
	category   int
	number     int
}

// wmoParameters maps WMO-standard GRIB2 parameters to GRIB1 parameter
// codes (ON388 Table 2, parameter table version 3).
var wmoParameters = map[paramKey]int{
	// Discipline 0: meteorological products.
	// Category 0: temperature.
	{0, 0, 0}: 11, {0, 0, 1}: 12, {0, 0, 2}: 13, {0, 0, 3}: 14,
	{0, 0, 4}: 15, {0, 0, 5}: 16, {0, 0, 6}: 17, {0, 0, 7}: 18,
	{0, 0, 8}: 19, {0, 0, 9}: 25, {0, 0, 10}: 121, {0, 0, 11}: 122,

	// Category 1: moisture.
	{0, 1, 0}: 51, {0, 1, 1}: 52, {0, 1, 2}: 53, {0, 1, 3}: 54,
	{0, 1, 4}: 55, {0, 1, 5}: 56, {0, 1, 6}: 57, {0, 1, 7}: 59,
	{0, 1, 8}: 61, {0, 1, 9}: 62, {0, 1, 10}: 63, {0, 1, 11}: 66,
	{0, 1, 12}: 64, {0, 1, 13}: 65, {0, 1, 14}: 78, {0, 1, 15}: 79,
	{0, 1, 16}: 99,

	// Category 2: momentum.
	{0, 2, 0}: 31, {0, 2, 1}: 32, {0, 2, 2}: 33, {0, 2, 3}: 34,
	{0, 2, 4}: 35, {0, 2, 5}: 36, {0, 2, 6}: 37, {0, 2, 7}: 38,
	{0, 2, 8}: 39, {0, 2, 9}: 40, {0, 2, 10}: 41, {0, 2, 11}: 42,
	{0, 2, 12}: 43, {0, 2, 13}: 44, {0, 2, 14}: 4, {0, 2, 15}: 45,
	{0, 2, 16}: 46, {0, 2, 17}: 124, {0, 2, 18}: 125, {0, 2, 19}: 126,
	{0, 2, 20}: 123,

	// Category 3: mass.
	{0, 3, 0}: 1, {0, 3, 1}: 2, {0, 3, 2}: 3, {0, 3, 3}: 5,
	{0, 3, 4}: 6, {0, 3, 5}: 7, {0, 3, 6}: 8, {0, 3, 7}: 9,
	{0, 3, 8}: 26, {0, 3, 9}: 27, {0, 3, 10}: 89,

	// Category 4: short-wave radiation.
	{0, 4, 0}: 111, {0, 4, 1}: 113, {0, 4, 2}: 116, {0, 4, 3}: 117,
	{0, 4, 4}: 118, {0, 4, 5}: 119, {0, 4, 6}: 120,

	// Category 5: long-wave radiation.
	{0, 5, 0}: 112, {0, 5, 1}: 114, {0, 5, 2}: 115,

	// Category 6: cloud.
	{0, 6, 0}: 58, {0, 6, 1}: 71, {0, 6, 2}: 72, {0, 6, 3}: 73,
	{0, 6, 4}: 74, {0, 6, 5}: 75, {0, 6, 6}: 76,

	// Category 7: thermodynamic stability indices.
	{0, 7, 0}: 24, {0, 7, 1}: 77,

	// Category 14: trace gases.
	{0, 14, 0}: 10,

	// Category 15: radar.
	{0, 15, 6}: 21, {0, 15, 7}: 22, {0, 15, 8}: 23,

	// Category 19: physical atmospheric properties.
	{0, 19, 0}: 20, {0, 19, 1}: 84, {0, 19, 2}: 60, {0, 19, 3}: 67,

	// Discipline 2: land surface products.
	// Category 0: vegetation/biomass.
	{2, 0, 0}: 81, {2, 0, 1}: 83, {2, 0, 2}: 85, {2, 0, 3}: 86,
	{2, 0, 4}: 87, {2, 0, 5}: 90,

	// Discipline 10: oceanographic products.
	// Category 0: waves.
	{10, 0, 0}: 28, {10, 0, 1}: 29, {10, 0, 2}: 30, {10, 0, 3}: 100,
	{10, 0, 4}: 101, {10, 0, 5}: 102, {10, 0, 6}: 103, {10, 0, 7}: 104,
	{10, 0, 8}: 105, {10, 0, 9}: 106, {10, 0, 10}: 107, {10, 0, 11}: 108,
	{10, 0, 12}: 109, {10, 0, 13}: 110,

	// Category 1: currents.
	{10, 1, 0}: 47, {10, 1, 1}: 48, {10, 1, 2}: 49, {10, 1, 3}: 50,

	// Category 2: ice.
	{10, 2, 0}: 91, {10, 2, 1}: 92, {10, 2, 2}: 93, {10, 2, 3}: 94,
	{10, 2, 4}: 95, {10, 2, 5}: 96, {10, 2, 6}: 97, {10, 2, 7}: 98,

	// Category 3: surface properties.
	{10, 3, 0}: 80, {10, 3, 1}: 82,

	// Category 4: sub-surface properties.
	{10, 4, 0}: 69, {10, 4, 1}: 70, {10, 4, 2}: 68, {10, 4, 3}: 88,
}

// ncepParameters maps NCEP (centre 7) local parameters — mostly the 192+
// range — to the GRIB1 codes NCEP assigns them. These layer on top of
// wmoParameters and apply only when the originating centre is 7.
var ncepParameters = map[paramKey]int{
	// Discipline 0.
	{0, 0, 192}: 229,

	{0, 1, 22}: 153, {0, 1, 192}: 140, {0, 1, 193}: 141, {0, 1, 194}: 142,
	{0, 1, 195}: 143, {0, 1, 196}: 214, {0, 1, 197}: 135, {0, 1, 199}: 228,
	{0, 1, 200}: 145, {0, 1, 201}: 238, {0, 1, 206}: 186, {0, 1, 207}: 198,
	{0, 1, 208}: 239, {0, 1, 213}: 243, {0, 1, 214}: 245, {0, 1, 215}: 249,
	{0, 1, 216}: 159,

	{0, 2, 22}: 180, {0, 2, 192}: 136, {0, 2, 193}: 172, {0, 2, 194}: 196,
	{0, 2, 195}: 197, {0, 2, 196}: 252, {0, 2, 197}: 253,

	{0, 3, 192}: 130, {0, 3, 193}: 222, {0, 3, 194}: 147, {0, 3, 195}: 148,
	{0, 3, 196}: 221, {0, 3, 197}: 230, {0, 3, 198}: 129, {0, 3, 199}: 137,

	{0, 4, 192}: 204, {0, 4, 193}: 211, {0, 4, 196}: 161,

	{0, 5, 192}: 205, {0, 5, 193}: 212,

	{0, 6, 192}: 213, {0, 6, 193}: 146,

	{0, 7, 6}: 157, {0, 7, 7}: 156, {0, 7, 8}: 190,
	{0, 7, 192}: 131, {0, 7, 193}: 132, {0, 7, 194}: 254,

	{0, 14, 192}: 154,

	{0, 19, 204}: 209,

	// Discipline 1: hydrological products.
	{1, 0, 192}: 234, {1, 0, 193}: 235,
	{1, 1, 192}: 194, {1, 1, 193}: 195,

	// Discipline 2.
	{2, 0, 192}: 144, {2, 0, 193}: 155, {2, 0, 194}: 207, {2, 0, 195}: 208,
	{2, 0, 196}: 223, {2, 0, 197}: 226, {2, 0, 198}: 225, {2, 0, 207}: 201,
}

// mapParameter yields the GRIB1 parameter code for a GRIB2
// {discipline, category, number} triple. Centre-specific codes (NCEP,
// centre 7) are consulted first. A missing mapping is fatal, with a
// diagnostic naming the parameter when the WMO tables know it.
func mapParameter(center int, discipline, category, number int) (int, error) {
	key := paramKey{discipline, category, number}

	if center == 7 {
		if code, ok := ncepParameters[key]; ok {
			return code, nil
		}
	}
	if code, ok := wmoParameters[key]; ok {
		return code, nil
	}

	// Name the parameter in the diagnostic when the tables can.
	name := tables.GetParameterName(discipline, category, number)
	if name != "" && !strings.HasPrefix(name, "Unknown") {
		return 0, &MappingError{
			Description: fmt.Sprintf("there is no GRIB1 parameter code for '%s'", name),
		}
	}
	return 0, &MappingError{
		Description: fmt.Sprintf(
			"there is no GRIB1 parameter code for discipline %d, parameter category %d, parameter number %d",
			discipline, category, number),
	}
}
