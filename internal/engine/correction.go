package engine

import (
	"context"
	"encoding/json"
	"log"

	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

// triggers records which business invariants a candidate violates.
type triggers struct {
	countsMismatch         bool
	missingGrounding       bool
	thresholdContradiction bool
}

func (t triggers) any() bool {
	return t.countsMismatch || t.missingGrounding || t.thresholdContradiction
}

// detectTriggers compares the candidate against server ground truth.
// The threshold contradiction only applies when the movements aggregate
// was actually computed (richer context path).
func detectTriggers(c *domain.DecisionCandidate, truth domain.FileCounts, mov domain.MovimientosSummary, thresholdCOP float64) triggers {
	return triggers{
		countsMismatch:   c.ArchivosDetectados != truth,
		missingGrounding: len(c.VerificacionesRag) == 0,
		thresholdContradiction: mov.Computed() && thresholdCOP > 0 &&
			mov.SumCOP >= thresholdCOP && !c.DebeDeclarar,
	}
}

// superviseCorrection inspects an accepted-parse candidate and issues
// at most one corrective round. The corrective instruction is appended
// to the existing conversation; if the corrected response parses as
// JSON it replaces the candidate, otherwise the original survives.
func (e *Engine) superviseCorrection(
	ctx context.Context,
	s *session,
	cand *domain.DecisionCandidate,
	raw json.RawMessage,
	truth domain.FileCounts,
	mov domain.MovimientosSummary,
	year int,
	correlationID string,
) (*domain.DecisionCandidate, json.RawMessage) {
	thresholdCOP := e.movThreshold(year)
	t := detectTriggers(cand, truth, mov, thresholdCOP)
	if !t.any() {
		return cand, raw
	}

	log.Printf("[%s] correction: counts_mismatch=%t missing_grounding=%t threshold_contradiction=%t",
		correlationID, t.countsMismatch, t.missingGrounding, t.thresholdContradiction)

	s.append(port.ChatMessage{
		Role:  port.RoleUser,
		Parts: []port.ContentPart{{Type: "text", Text: buildCorrectiveInstruction(t, truth, mov.SumCOP, thresholdCOP)}},
	})

	correctedRaw, err := s.run(ctx)
	if err != nil {
		log.Printf("[%s] correction: corrected response unusable, keeping original candidate: %v", correlationID, err)
		return cand, raw
	}

	corrected := &domain.DecisionCandidate{}
	if err := json.Unmarshal(correctedRaw, corrected); err != nil {
		log.Printf("[%s] correction: corrected response did not decode, keeping original candidate: %v", correlationID, err)
		return cand, raw
	}
	return corrected, correctedRaw
}
