package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

// assembledContext is the model-ready content package for one attempt.
type assembledContext struct {
	messages []port.ChatMessage
	counts   domain.FileCounts
	mov      domain.MovimientosSummary
}

// assembleContext builds the conversation opening: system instruction,
// request facts, extracted exógena content, the server-side movements
// aggregate, and image references. All extraction is best-effort; a
// failed extraction degrades to a missing segment, never an error.
func (e *Engine) assembleContext(ctx context.Context, req domain.DecisionRequest, correlationID string) assembledContext {
	counts := req.Archivos.Counts()

	predialPaths := e.resolver.NormalizeImages(ctx, refPaths(req.Archivos.Prediales))
	vehiculoPaths := e.resolver.NormalizeImages(ctx, refPaths(req.Archivos.Vehiculos))

	allPaths := append([]string(nil), refPaths(req.Archivos.Exogena)...)
	allPaths = append(allPaths, predialPaths...)
	allPaths = append(allPaths, vehiculoPaths...)

	urlByPath := map[string]string{}
	if len(allPaths) > 0 {
		resolved, err := e.resolver.ResolveReadable(ctx, allPaths, e.presignTTL)
		if err != nil {
			log.Printf("[%s] assembleContext: resolving files: %v", correlationID, err)
		}
		for _, r := range resolved {
			if r.URL != "" {
				urlByPath[r.Path] = r.URL
			}
		}
	}

	parts := []port.ContentPart{{Type: "text", Text: buildUserPreamble(req)}}
	var mov domain.MovimientosSummary

	if exo := refPaths(req.Archivos.Exogena); len(exo) > 0 {
		url := urlByPath[exo[0]]
		parts = append(parts, e.exogenaParts(ctx, url, correlationID)...)
		mov = e.movimientosSummary(ctx, url, correlationID)
		if mov.Computed() {
			hint, _ := json.Marshal(mov)
			parts = append(parts, port.ContentPart{
				Type: "text",
				Text: fmt.Sprintf(
					"Resumen automático (servidor) exógena: %s\nPista del servidor: movimientos_sum_cop=%.0f y umbral_1400UVT=%.0f (verifica y usa como apoyo; NO ignores reglas).",
					hint, mov.SumCOP, e.movThreshold(req.AnioGravable)),
			})
		}
	}

	for _, p := range append(append([]string(nil), predialPaths...), vehiculoPaths...) {
		if url := urlByPath[p]; url != "" {
			parts = append(parts, port.ContentPart{Type: "image_url", ImageURL: url})
		}
	}

	log.Printf("[%s] assembleContext: exogena=%d prediales=%d vehiculos=%d resolved=%d parts=%d",
		correlationID, counts.Exogena, counts.Prediales, counts.Vehiculos, len(urlByPath), len(parts))

	return assembledContext{
		messages: []port.ChatMessage{
			{Role: port.RoleSystem, Content: systemPrompt},
			{Role: port.RoleUser, Parts: parts},
		},
		counts: counts,
		mov:    mov,
	}
}

// exogenaParts extracts text and HTML renditions of the workbook.
func (e *Engine) exogenaParts(ctx context.Context, url, correlationID string) []port.ContentPart {
	var parts []port.ContentPart

	text, err := e.extractor.ExtractText(ctx, url, e.cfg.ExogenaTextMaxChars)
	if err != nil {
		log.Printf("[%s] assembleContext: exogena text extraction degraded: %v", correlationID, err)
	} else if text != "" {
		parts = append(parts, port.ContentPart{Type: "text", Text: "Contenido exógena (CSV truncado):\n" + text})
	}

	html, err := e.extractor.ExtractHTML(ctx, url, e.cfg.ExogenaHTMLMaxChars)
	if err != nil {
		log.Printf("[%s] assembleContext: exogena html extraction degraded: %v", correlationID, err)
	} else if html != "" {
		parts = append(parts, port.ContentPart{Type: "text", Text: "HTML exógena (parcial):\n" + html})
	}

	return parts
}

func (e *Engine) movimientosSummary(ctx context.Context, url, correlationID string) domain.MovimientosSummary {
	mov, err := e.extractor.SumNumericCells(ctx, url)
	if err != nil {
		log.Printf("[%s] assembleContext: movimientos summary degraded: %v", correlationID, err)
		return domain.MovimientosSummary{}
	}
	return mov
}
