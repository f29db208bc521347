package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nao1215/handletrace/internal/config"
	"github.com/nao1215/handletrace/internal/harvest"
	"github.com/nao1215/handletrace/internal/model"
)

// CandidateGenerator produces candidate handle variants for a seed.
type CandidateGenerator interface {
	Generate(ctx context.Context, seed string, maxVariants int) []model.Candidate
}

// ExistenceProber decides whether a handle exists on a platform.
type ExistenceProber interface {
	Probe(ctx context.Context, platform model.Platform, handle string) model.ProbeResult
}

// SignatureExtractor builds a behavioral signature from harvested content.
type SignatureExtractor interface {
	Extract(platformName string, content *model.HarvestedContent) *model.BehavioralSignature
}

// AccountCorrelator scores one account pair.
type AccountCorrelator interface {
	Correlate(a, b *model.Account) model.CorrelationEdge
}

// Engine runs investigations through the four stages and tracks them by
// ID so callers can poll progress while a run is in flight.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	generator  CandidateGenerator
	prober     ExistenceProber
	harvester  harvest.Harvester // nil degrades fingerprinting
	extractor  SignatureExtractor
	correlator AccountCorrelator
	platforms  []model.Platform

	mu   sync.Mutex
	runs map[string]*run
}

type run struct {
	inv    *model.Investigation
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine wires an engine from its stage components. The harvester
// may be nil; fingerprinting then records empty signatures with a note.
func NewEngine(
	cfg *config.Config,
	logger *slog.Logger,
	generator CandidateGenerator,
	prober ExistenceProber,
	harvester harvest.Harvester,
	extractor SignatureExtractor,
	correlator AccountCorrelator,
) *Engine {
	return &Engine{
		cfg:        cfg,
		logger:     logger,
		generator:  generator,
		prober:     prober,
		harvester:  harvester,
		extractor:  extractor,
		correlator: correlator,
		platforms:  cfg.EnabledPlatforms(),
		runs:       make(map[string]*run),
	}
}

// StartInvestigation launches an asynchronous run for the seed handle
// and returns the investigation ID immediately. Progress is available
// through GetInvestigation; Wait blocks until the run reaches a
// terminal status.
func (e *Engine) StartInvestigation(ctx context.Context, seedHandle string) (string, error) {
	if seedHandle == "" {
		return "", ErrNoSeed
	}

	id := uuid.NewString()
	inv := model.NewInvestigation(id, seedHandle)

	var runCtx context.Context
	var cancel context.CancelFunc
	if e.cfg.RunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.cfg.RunTimeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	r := &run{inv: inv, cancel: cancel, done: make(chan struct{})}
	e.mu.Lock()
	e.runs[id] = r
	e.mu.Unlock()

	go func() {
		defer cancel()
		defer close(r.done)
		e.execute(runCtx, inv)
	}()

	return id, nil
}

// execute drives the investigation through every stage in order.
// Stage failures move the run to failed; context cancellation keeps
// whatever was collected and still finalizes, so a partial run yields a
// partial report rather than nothing.
func (e *Engine) execute(ctx context.Context, inv *model.Investigation) {
	stages := []Stage{
		&discoverStage{engine: e},
		&fingerprintStage{engine: e},
		&correlateStage{engine: e},
		&finalizeStage{engine: e},
	}

	logger := e.logger.With("investigation", inv.ID, "seed", inv.SeedHandle)
	interrupted := false
	for _, stage := range stages {
		inv.SetStatus(stage.Status())
		logger.Info("stage started", "stage", stage.Name())

		if err := stage.Run(ctx, inv); err != nil {
			var failure *StageFailureError
			if !errors.As(err, &failure) {
				failure = &StageFailureError{Stage: stage.Name(), Reason: err.Error()}
			}
			logger.Warn("stage failed", "stage", stage.Name(), "reason", failure.Reason)
			inv.AddNote(failure.Error())
			inv.SetStatus(model.StatusFailed)
			return
		}
		if ctx.Err() != nil {
			inv.AddNote("run interrupted: " + ctx.Err().Error())
			interrupted = true
			break
		}
	}

	// An interrupted run skips remaining stages but still gets metrics
	// over what was collected.
	if interrupted {
		inv.SetMetrics(inv.ComputeMetrics(len(e.platforms)))
	}
	inv.SetStatus(model.StatusFinalized)
	logger.Info("investigation finished",
		"status", inv.CurrentStatus(),
		"accounts", len(inv.Snapshot().Accounts))
}

// GetInvestigation returns a point-in-time snapshot of the run. It is
// safe to call while the run is in flight.
func (e *Engine) GetInvestigation(id string) (*model.Investigation, error) {
	e.mu.Lock()
	r, ok := e.runs[id]
	e.mu.Unlock()
	if !ok {
		return nil, ErrUnknownInvestigation
	}
	return r.inv.Snapshot(), nil
}

// Wait blocks until the run reaches a terminal status or the context is
// done, and returns the final snapshot.
func (e *Engine) Wait(ctx context.Context, id string) (*model.Investigation, error) {
	e.mu.Lock()
	r, ok := e.runs[id]
	e.mu.Unlock()
	if !ok {
		return nil, ErrUnknownInvestigation
	}
	select {
	case <-r.done:
		return r.inv.Snapshot(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops an in-flight run. The run keeps partial results and
// finalizes; canceling an unknown ID returns ErrUnknownInvestigation.
func (e *Engine) Cancel(id string) error {
	e.mu.Lock()
	r, ok := e.runs[id]
	e.mu.Unlock()
	if !ok {
		return ErrUnknownInvestigation
	}
	r.cancel()
	return nil
}
