package tables

// GRIB1 Table 3: Fixed Levels or Layers
//
// Edition 1 uses its own level-type numbering, distinct from the edition-2
// fixed-surface codes in level.go. The transcoder emits these codes; the lookup
// here names them for diagnostics and tooling.

var grib1LevelEntries = []*Entry{
	{1, "Surface", "Ground or water surface", ""},
	{2, "Cloud Base", "Cloud base level", ""},
	{3, "Cloud Top", "Cloud top level", ""},
	{4, "0°C Isotherm", "Level of 0°C isotherm", ""},
	{5, "Condensation", "Level of adiabatic condensation lifted from the surface", ""},
	{6, "Max Wind", "Maximum wind level", ""},
	{7, "Tropopause", "Tropopause", ""},
	{8, "Nominal Top", "Nominal top of atmosphere", ""},
	{9, "Sea Bottom", "Sea bottom", ""},
	{20, "Isothermal", "Isothermal level", "1/100 K"},
	{100, "Isobaric", "Isobaric surface", "hPa"},
	{101, "Isobaric Layer", "Layer between two isobaric surfaces", "kPa"},
	{102, "MSL", "Mean sea level", ""},
	{103, "Altitude MSL", "Specified altitude above mean sea level", "m"},
	{104, "Altitude Layer", "Layer between two altitudes above mean sea level", "hm"},
	{105, "Height AGL", "Specified height above ground", "m"},
	{106, "Height Layer", "Layer between two heights above ground", "hm"},
	{107, "Sigma", "Sigma level", "1/10000"},
	{108, "Sigma Layer", "Layer between two sigma levels", "1/100"},
	{109, "Hybrid", "Hybrid level", ""},
	{110, "Hybrid Layer", "Layer between two hybrid levels", ""},
	{111, "Depth BG", "Depth below land surface", "cm"},
	{112, "Depth Layer", "Layer between two depths below land surface", "cm"},
	{113, "Isentropic", "Isentropic (theta) level", "K"},
	{114, "Isentropic Layer", "Layer between two isentropic levels", "475-K"},
	{115, "Pressure Diff", "Level at specified pressure difference from ground", "hPa"},
	{116, "Pressure Diff Layer", "Layer between two pressure differences from ground", "hPa"},
	{117, "Potential Vorticity", "Potential vorticity surface", "1e-9 K m²/(kg s)"},
	{119, "Eta", "Eta level", "1/10000"},
	{120, "Eta Layer", "Layer between two eta levels", "1/100"},
	{125, "Height AGL (cm)", "Specified height above ground (high precision)", "cm"},
	{160, "Depth BSL", "Depth below sea level", "m"},
	{200, "Entire Atmosphere", "Entire atmosphere (considered as a single layer)", ""},
	{201, "Entire Ocean", "Entire ocean (considered as a single layer)", ""},
}

// GRIB1LevelTable provides lookups for edition-1 level type codes.
var GRIB1LevelTable = NewSimpleTable(grib1LevelEntries, "Unknown level")

// GetGRIB1LevelName returns the short name for a GRIB1 level type code.
func GetGRIB1LevelName(code int) string {
	return GRIB1LevelTable.Name(code)
}

// GetGRIB1LevelUnit returns the unit the level value is expressed in.
func GetGRIB1LevelUnit(code int) string {
	if e := GRIB1LevelTable.Lookup(code); e != nil {
		return e.Unit
	}
	return ""
}
