package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rentacheck/internal/domain"
)

func TestManifest_Counts(t *testing.T) {
	m := domain.Manifest{
		Exogena:   []domain.FileRef{{StoragePath: "e1.xlsx"}},
		Prediales: []domain.FileRef{{StoragePath: "p1.jpg"}, {StoragePath: "p2.jpg"}},
	}
	assert.Equal(t, domain.FileCounts{Exogena: 1, Prediales: 2, Vehiculos: 0}, m.Counts())
}

func TestUVTValue_KnownYears(t *testing.T) {
	v, ok := domain.UVTValue(2024)
	assert.True(t, ok)
	assert.Equal(t, 47065.0, v)

	v, ok = domain.UVTValue(2025)
	assert.True(t, ok)
	assert.Equal(t, 49799.0, v)
}

func TestUVTValue_UnknownYear(t *testing.T) {
	_, ok := domain.UVTValue(1995)
	assert.False(t, ok)
}

func TestMovimientosThresholdCOP(t *testing.T) {
	assert.Equal(t, 1400*47065.0, domain.MovimientosThresholdCOP(2024))
	assert.Zero(t, domain.MovimientosThresholdCOP(1995))
}

func TestMovimientosSummary_Computed(t *testing.T) {
	assert.False(t, domain.MovimientosSummary{}.Computed())
	assert.True(t, domain.MovimientosSummary{SheetName: "Movimientos"}.Computed())
}
