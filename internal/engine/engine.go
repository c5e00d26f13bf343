// Package engine turns a file manifest and tax year into a schema-valid
// filing decision through a bounded model-call / tool-use / validate /
// self-correct / retry loop.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"rentacheck/internal/config"
	"rentacheck/internal/domain"
	"rentacheck/internal/port"
	"rentacheck/internal/validator/decision"
)

// Engine is the structured-decision orchestrator. It holds no mutable
// state across requests; every Decide call owns its own attempt
// sequence and conversation.
type Engine struct {
	cfg        config.EngineConfig
	chatModel  string
	chat       port.ChatModel
	retriever  Retriever
	resolver   port.FileResolver
	extractor  port.TabularExtractor
	presignTTL int64
}

// New creates an Engine from its collaborators and an immutable
// configuration value.
func New(
	cfg config.EngineConfig,
	chatModel string,
	chat port.ChatModel,
	retriever Retriever,
	resolver port.FileResolver,
	extractor port.TabularExtractor,
	presignTTL int64,
) *Engine {
	return &Engine{
		cfg:        cfg,
		chatModel:  chatModel,
		chat:       chat,
		retriever:  retriever,
		resolver:   resolver,
		extractor:  extractor,
		presignTTL: presignTTL,
	}
}

// TerminalError is returned when every attempt failed validation. It
// carries the last violations and the last candidate for diagnostics;
// the engine never fabricates a default decision.
type TerminalError struct {
	Violations []string
	Candidate  json.RawMessage
}

func (e *TerminalError) Error() string {
	return "structured output validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *TerminalError) Unwrap() error { return domain.ErrDecisionRejected }

// Decide runs up to MaxRetries attempts and returns the first
// validator-accepted candidate. On budget exhaustion it returns a
// *TerminalError.
func (e *Engine) Decide(ctx context.Context, req domain.DecisionRequest, correlationID string) (*domain.DecisionCandidate, error) {
	maxRetries := e.cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastViolations []string
	var lastRaw json.RawMessage

	for attempt := 1; attempt <= maxRetries; attempt++ {
		cand, raw, vr, err := e.runAttempt(ctx, req, correlationID, attempt)
		if err != nil {
			log.Printf("[%s] engine.Decide: attempt %d failed: %v", correlationID, attempt, err)
			lastViolations = append(lastViolations, fmt.Sprintf("attempt %d: %v", attempt, err))
			continue
		}
		if vr.OK {
			log.Printf("[%s] engine.Decide: accepted on attempt %d (debe_declarar=%t, motivos=%d, verificaciones_rag=%d)",
				correlationID, attempt, cand.DebeDeclarar, len(cand.Motivos), len(cand.VerificacionesRag))
			return cand, nil
		}
		log.Printf("[%s] engine.Decide: attempt %d rejected: %v", correlationID, attempt, vr.Violations)
		lastViolations = vr.Violations
		lastRaw = raw
	}

	log.Printf("[%s] engine.Decide: retry budget (%d) exhausted", correlationID, maxRetries)
	return nil, &TerminalError{Violations: lastViolations, Candidate: lastRaw}
}

// runAttempt performs one full attempt: assemble context, run the
// tool-calling session, supervise a correction round, validate. Any
// panic inside the attempt is converted to an attempt failure.
func (e *Engine) runAttempt(ctx context.Context, req domain.DecisionRequest, correlationID string, attempt int) (cand *domain.DecisionCandidate, raw json.RawMessage, vr decision.ValidationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("attempt %d panicked: %v", attempt, r)
		}
	}()

	asm := e.assembleContext(ctx, req, correlationID)

	s := newSession(e.chat, e.retriever, e.chatModel, e.cfg.MaxModelTurns, correlationID, asm.messages)
	raw, err = s.run(ctx)
	if err != nil {
		return nil, nil, decision.ValidationResult{}, err
	}

	cand = &domain.DecisionCandidate{}
	// Decode errors are not fatal here: a well-formed-but-wrongly-typed
	// document must reach the validator so the violation is recorded.
	_ = json.Unmarshal(raw, cand)

	cand, raw = e.superviseCorrection(ctx, s, cand, raw, asm.counts, asm.mov, req.AnioGravable, correlationID)
	cand, raw = backfillDefaults(cand, raw, asm.counts, req.AnioGravable)

	vr = decision.Validate(raw)
	if vr.OK {
		// Business invariants that survived the correction round fail
		// the attempt; acceptance must never contradict ground truth.
		if cand.ArchivosDetectados != asm.counts {
			vr = decision.ValidationResult{Violations: []string{
				fmt.Sprintf("archivos_detectados %+v disagrees with manifest counts %+v after correction", cand.ArchivosDetectados, asm.counts),
			}}
		} else if len(cand.VerificacionesRag) == 0 {
			vr = decision.ValidationResult{Violations: []string{
				"verificaciones_rag must contain at least one grounding citation",
			}}
		}
	}
	return cand, raw, vr, nil
}

// movThreshold returns the movements threshold in COP for the year,
// with the configured override taking precedence.
func (e *Engine) movThreshold(year int) float64 {
	if e.cfg.MovThresholdCOP > 0 {
		return e.cfg.MovThresholdCOP
	}
	return domain.MovimientosThresholdCOP(year)
}

// backfillDefaults fills archivos_detectados and anio_gravable when the
// model omitted them entirely, mirroring them into the raw document so
// validation sees the same bytes the caller will receive.
func backfillDefaults(cand *domain.DecisionCandidate, raw json.RawMessage, truth domain.FileCounts, year int) (*domain.DecisionCandidate, json.RawMessage) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return cand, raw
	}

	changed := false
	if _, ok := keys["archivos_detectados"]; !ok {
		cand.ArchivosDetectados = truth
		if b, err := json.Marshal(truth); err == nil {
			keys["archivos_detectados"] = b
			changed = true
		}
	}
	if _, ok := keys["anio_gravable"]; !ok || cand.AnioGravable == 0 {
		cand.AnioGravable = year
		if b, err := json.Marshal(year); err == nil {
			keys["anio_gravable"] = b
			changed = true
		}
	}
	if !changed {
		return cand, raw
	}
	patched, err := json.Marshal(keys)
	if err != nil {
		return cand, raw
	}
	return cand, patched
}
