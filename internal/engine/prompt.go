package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"rentacheck/internal/domain"
)

// systemPrompt is the fixed instruction for the decision model. The
// wire language of the product is Spanish.
const systemPrompt = "Eres RentaCheck, experto tributario colombiano. " +
	"Analiza archivos de exógena (.xlsx), prediales e impuestos de vehículo (imágenes/PDF). " +
	"Prioriza prediales sobre exógena para patrimonio. Usa umbrales por UVT del año solicitado. " +
	"Responde únicamente con JSON válido que cumpla el esquema renta_check_decision. " +
	"No incluyas prosa adicional ni razones fuera del JSON."

// buildUserPreamble renders the request facts the model must ground on:
// year, manifest paths, and the authoritative per-kind counts.
func buildUserPreamble(req domain.DecisionRequest) string {
	paths := map[string][]string{
		"exogena":   refPaths(req.Archivos.Exogena),
		"prediales": refPaths(req.Archivos.Prediales),
		"vehiculos": refPaths(req.Archivos.Vehiculos),
	}
	pathsJSON, _ := json.Marshal(paths)
	countsJSON, _ := json.Marshal(req.Archivos.Counts())

	lines := []string{
		fmt.Sprintf("Año gravable: %d.", req.AnioGravable),
		"Archivos disponibles para análisis:",
		string(pathsJSON),
		"Conteo de archivos detectados por tipo (si es 0, significa NO aportado y NO debe reportarse como faltante):",
		string(countsJSON),
		"Usa la función rag_search cuando necesites verificar topes UVT y reglas normativas.",
		"Devuelve únicamente un JSON válido que cumpla el esquema renta_check_decision. No agregues texto fuera del JSON.",
	}
	return strings.Join(lines, "\n")
}

// buildCorrectiveInstruction enumerates exactly the triggers that fired
// and tells the model how to repair its answer.
func buildCorrectiveInstruction(t triggers, truth domain.FileCounts, movSum, thresholdCOP float64) string {
	lines := []string{"Corrige y devuelve SOLO el JSON del esquema:"}
	if t.countsMismatch {
		countsJSON, _ := json.Marshal(truth)
		lines = append(lines, fmt.Sprintf("Ajusta 'archivos_detectados' EXACTAMENTE a %s.", countsJSON))
	}
	if t.missingGrounding {
		lines = append(lines, "Realiza AL MENOS una llamada a rag_search para validar umbrales y obligaciones y refleja la(s) verificación(es) en verificaciones_rag.")
	}
	if t.thresholdContradiction {
		lines = append(lines, fmt.Sprintf(
			"Reevalúa obligación: movimientos_sum_cop=%.0f >= umbral_1400UVT=%.0f. Aplica reglas y devuelve SOLO el JSON.",
			movSum, thresholdCOP))
	}
	return strings.Join(lines, "\n")
}

func refPaths(refs []domain.FileRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.StoragePath != "" {
			out = append(out, r.StoragePath)
		}
	}
	return out
}
