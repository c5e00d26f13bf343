package domain

// uvtByYear maps a tax year to the statutory UVT value in COP for that
// year. Values are published annually by DIAN.
var uvtByYear = map[int]float64{
	2020: 35607,
	2021: 36308,
	2022: 38004,
	2023: 42412,
	2024: 47065,
	2025: 49799,
}

// UVTValue returns the UVT value in COP for the given tax year and
// whether the year is known.
func UVTValue(year int) (float64, bool) {
	v, ok := uvtByYear[year]
	return v, ok
}

// MovimientosThresholdUVT is the statutory number of UVT above which
// cumulative bank movements (consignaciones, consumos) oblige a
// natural person to file.
const MovimientosThresholdUVT = 1400

// MovimientosThresholdCOP returns the movements threshold in COP for
// the given tax year, or 0 when the year's UVT value is unknown.
func MovimientosThresholdCOP(year int) float64 {
	uvt, ok := UVTValue(year)
	if !ok {
		return 0
	}
	return uvt * MovimientosThresholdUVT
}
