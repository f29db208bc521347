package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/handletrace/internal/correlate"
	"github.com/nao1215/handletrace/internal/model"
)

// Stage is one phase of an investigation run. Stages execute in
// sequence; a returned *StageFailureError fails the run, any other error
// is treated the same way after being wrapped.
//
// Design decision: We use an interface rather than function types
// because stages carry their own dependencies and a Name() keeps the
// log lines and failure notes uniform.
type Stage interface {
	// Name returns the stage name for logging and failure notes.
	Name() string

	// Status is the investigation status while this stage runs.
	Status() model.InvestigationStatus

	// Run executes the stage against the shared investigation.
	Run(ctx context.Context, inv *model.Investigation) error
}

// discoverStage generates candidates and probes every (platform,
// candidate) pair with bounded concurrency.
type discoverStage struct {
	engine *Engine
}

func (s *discoverStage) Name() string                      { return "discover" }
func (s *discoverStage) Status() model.InvestigationStatus { return model.StatusDiscovering }

func (s *discoverStage) Run(ctx context.Context, inv *model.Investigation) error {
	variants := s.engine.generator.Generate(ctx, inv.SeedHandle, s.engine.cfg.MaxVariants)
	if len(variants) == 0 {
		return &StageFailureError{Stage: s.Name(), Reason: "no valid candidate handles generated"}
	}

	// One candidate per (platform, variant) pair.
	candidates := make([]model.Candidate, 0, len(variants)*len(s.engine.platforms))
	for _, platform := range s.engine.platforms {
		for _, v := range variants {
			c := v
			c.Platform = platform.Name
			candidates = append(candidates, c)
		}
	}
	inv.SetCandidates(candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.engine.cfg.Workers)

	platformsByName := make(map[string]model.Platform, len(s.engine.platforms))
	for _, p := range s.engine.platforms {
		platformsByName[p.Name] = p
	}

	for _, candidate := range candidates {
		candidate := candidate
		g.Go(func() error {
			// Cancellation stops issuing new probes; collected results stay.
			if gctx.Err() != nil {
				return nil
			}
			platform := platformsByName[candidate.Platform]
			result := s.engine.prober.Probe(gctx, platform, candidate.Handle)
			inv.AddProbeResult(result)
			inv.AddAccount(model.NewAccount(platform, &result))
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; verdicts degrade instead

	s.noteDegradedPlatforms(inv)
	if len(inv.Snapshot().ProbeResults) == 0 && ctx.Err() == nil {
		return &StageFailureError{Stage: s.Name(), Reason: "no probes completed"}
	}
	return nil
}

// noteDegradedPlatforms records platforms whose probes were all
// inconclusive: their absence from the discoveries is a transport
// problem, not evidence of nonexistence.
func (s *discoverStage) noteDegradedPlatforms(inv *model.Investigation) {
	snapshot := inv.Snapshot()
	total := make(map[string]int)
	inconclusive := make(map[string]int)
	for _, r := range snapshot.ProbeResults {
		total[r.Platform]++
		if r.Inconclusive() {
			inconclusive[r.Platform]++
		}
	}
	for _, platform := range s.engine.platforms {
		n := total[platform.Name]
		if n > 0 && inconclusive[platform.Name] == n {
			inv.AddNote(fmt.Sprintf("platform %s: all %d probes inconclusive", platform.Name, n))
		}
	}
}

// fingerprintStage harvests content and extracts a behavioral signature
// for every confirmed account. Without a harvester the stage degrades to
// empty signatures.
type fingerprintStage struct {
	engine *Engine
}

func (s *fingerprintStage) Name() string                      { return "fingerprint" }
func (s *fingerprintStage) Status() model.InvestigationStatus { return model.StatusFingerprinting }

func (s *fingerprintStage) Run(ctx context.Context, inv *model.Investigation) error {
	accounts := inv.Snapshot().Accounts
	if len(accounts) == 0 {
		return nil
	}
	if s.engine.harvester == nil {
		inv.AddNote("fingerprinting degraded: no content harvester configured")
		for _, account := range accounts {
			inv.SetSignature(account.Key(), s.engine.extractor.Extract(account.Platform, nil))
		}
		return nil
	}

	platformsByName := make(map[string]model.Platform, len(s.engine.platforms))
	for _, p := range s.engine.platforms {
		platformsByName[p.Name] = p
	}

	for _, account := range accounts {
		if ctx.Err() != nil {
			return nil
		}
		content, err := s.engine.harvester.Harvest(ctx, platformsByName[account.Platform], account.Handle)
		if err != nil {
			inv.AddNote(fmt.Sprintf("harvest failed for %s: %v", account.Key(), err))
			content = nil
		}
		inv.SetSignature(account.Key(), s.engine.extractor.Extract(account.Platform, content))
	}
	return nil
}

// correlateStage scores all account pairs and clusters the matches.
// With fewer than two accounts it completes with empty results.
type correlateStage struct {
	engine *Engine
}

func (s *correlateStage) Name() string                      { return "correlate" }
func (s *correlateStage) Status() model.InvestigationStatus { return model.StatusCorrelating }

func (s *correlateStage) Run(_ context.Context, inv *model.Investigation) error {
	accounts := inv.Snapshot().Accounts
	if len(accounts) < 2 {
		inv.SetCorrelation(nil, nil)
		return nil
	}

	edges := make([]model.CorrelationEdge, 0, len(accounts)*(len(accounts)-1)/2)
	for i := 0; i < len(accounts); i++ {
		for j := i + 1; j < len(accounts); j++ {
			edges = append(edges, s.engine.correlator.Correlate(accounts[i], accounts[j]))
		}
	}
	inv.SetCorrelation(edges, correlate.Cluster(accounts, edges))
	return nil
}

// finalizeStage computes the aggregate metrics. The terminal transition
// itself happens in the engine, after this stage.
type finalizeStage struct {
	engine *Engine
}

func (s *finalizeStage) Name() string                      { return "finalize" }
func (s *finalizeStage) Status() model.InvestigationStatus { return model.StatusCorrelating }

func (s *finalizeStage) Run(_ context.Context, inv *model.Investigation) error {
	inv.SetMetrics(inv.ComputeMetrics(len(s.engine.platforms)))
	return nil
}
