// Package decision checks a candidate decision document against the
// renta_check decision schema. Only structural conformance lives here;
// business invariants are the correction supervisor's job.
package decision

import (
	"encoding/json"
	"fmt"

	"rentacheck/internal/domain"
)

// ValidationResult is the outcome of schema validation.
type ValidationResult struct {
	OK         bool     `json:"ok"`
	Violations []string `json:"violations,omitempty"`
}

// requiredKeys are the top-level members every decision must carry.
var requiredKeys = []string{
	"anio_gravable",
	"debe_declarar",
	"motivos",
	"resumen",
	"montos",
	"uvt",
	"prioridad_prediales_aplicada",
	"verificaciones_rag",
	"incertidumbres",
	"archivos_detectados",
}

// rule is one structural check over the decoded candidate.
type rule struct {
	name  string
	check func(c *domain.DecisionCandidate) []string
}

var rules = []rule{
	{"anio_gravable", checkYear},
	{"motivos", checkMotivos},
	{"resumen", checkResumen},
	{"montos", checkMontos},
	{"uvt", checkUVT},
	{"verificaciones_rag", checkVerificaciones},
	{"archivos_detectados", checkCounts},
}

// Validate checks the raw decision document. It is a pure function of
// its input: re-validating an accepted document yields OK again.
func Validate(raw json.RawMessage) ValidationResult {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return ValidationResult{Violations: []string{"decision is not a JSON object: " + err.Error()}}
	}

	var violations []string
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			violations = append(violations, fmt.Sprintf("missing required field %q", k))
		}
	}

	var c domain.DecisionCandidate
	if err := json.Unmarshal(raw, &c); err != nil {
		violations = append(violations, "field has wrong type: "+err.Error())
		return ValidationResult{Violations: violations}
	}

	for _, r := range rules {
		violations = append(violations, r.check(&c)...)
	}

	return ValidationResult{OK: len(violations) == 0, Violations: violations}
}

func checkYear(c *domain.DecisionCandidate) []string {
	if c.AnioGravable < 2000 || c.AnioGravable > 2100 {
		return []string{fmt.Sprintf("anio_gravable %d out of range [2000, 2100]", c.AnioGravable)}
	}
	return nil
}

func checkMotivos(c *domain.DecisionCandidate) []string {
	if len(c.Motivos) == 0 {
		return []string{"motivos must contain at least one entry"}
	}
	var out []string
	for i, m := range c.Motivos {
		if m == "" {
			out = append(out, fmt.Sprintf("motivos[%d] is empty", i))
		}
	}
	return out
}

func checkResumen(c *domain.DecisionCandidate) []string {
	if c.Resumen == "" {
		return []string{"resumen must not be empty"}
	}
	return nil
}

func checkMontos(c *domain.DecisionCandidate) []string {
	var out []string
	fields := []struct {
		name string
		v    float64
	}{
		{"patrimonio_predial_total_cop", c.Montos.PatrimonioPredialTotalCOP},
		{"patrimonio_exogena_cop", c.Montos.PatrimonioExogenaCOP},
		{"ingresos_brutos_cop", c.Montos.IngresosBrutosCOP},
		{"compras_consumos_cop", c.Montos.ComprasConsumosCOP},
		{"retenciones_cop", c.Montos.RetencionesCOP},
	}
	for _, f := range fields {
		if f.v < 0 {
			out = append(out, fmt.Sprintf("montos.%s must be >= 0, got %g", f.name, f.v))
		}
	}
	return out
}

func checkUVT(c *domain.DecisionCandidate) []string {
	var out []string
	if c.UVT.ValorUVTCOP <= 0 {
		out = append(out, fmt.Sprintf("uvt.valor_uvt_cop must be > 0, got %g", c.UVT.ValorUVTCOP))
	}
	if c.UVT.AnioUVT < 2000 || c.UVT.AnioUVT > 2100 {
		out = append(out, fmt.Sprintf("uvt.anio_uvt %d out of range [2000, 2100]", c.UVT.AnioUVT))
	}
	return out
}

func checkVerificaciones(c *domain.DecisionCandidate) []string {
	var out []string
	for i, v := range c.VerificacionesRag {
		if v.Fuente == "" {
			out = append(out, fmt.Sprintf("verificaciones_rag[%d].fuente is empty", i))
		}
		if v.Similitud < 0 || v.Similitud > 1 {
			out = append(out, fmt.Sprintf("verificaciones_rag[%d].similitud %g out of range [0, 1]", i, v.Similitud))
		}
	}
	return out
}

func checkCounts(c *domain.DecisionCandidate) []string {
	var out []string
	counts := []struct {
		name string
		v    int
	}{
		{"exogena", c.ArchivosDetectados.Exogena},
		{"prediales", c.ArchivosDetectados.Prediales},
		{"vehiculos", c.ArchivosDetectados.Vehiculos},
	}
	for _, f := range counts {
		if f.v < 0 {
			out = append(out, fmt.Sprintf("archivos_detectados.%s must be >= 0, got %d", f.name, f.v))
		}
	}
	return out
}
