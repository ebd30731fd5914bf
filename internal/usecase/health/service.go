package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every provider check failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// CorpusState is "empty" until a load succeeds with at least one chunk.
type CorpusState string

// Corpus states.
const (
	CorpusEmpty CorpusState = "empty"
	CorpusReady CorpusState = "ready"
)

// CorpusInfo summarizes the loaded corpus.
type CorpusInfo struct {
	State  CorpusState
	ID     string
	Source string
	Chunks int
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Corpus CorpusInfo
}

// Service coordinates health checks.
type Service struct {
	corpus     CorpusReader
	embedding  ProviderChecker
	completion ProviderChecker
}

// New creates a Service. embedding and completion can be nil.
func New(corpus CorpusReader, embedding, completion ProviderChecker) *Service {
	return &Service{corpus: corpus, embedding: embedding, completion: completion}
}

// Check runs provider checks and reports the corpus state.
// An empty corpus is a normal state and never degrades the status.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.embedding != nil {
		checks["embedding"] = run(ctx, s.embedding)
	}
	if s.completion != nil {
		checks["completion"] = run(ctx, s.completion)
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks, Corpus: s.corpusInfo()}
}

func (s *Service) corpusInfo() CorpusInfo {
	snap := s.corpus.Snapshot()
	if snap.Empty() {
		return CorpusInfo{State: CorpusEmpty, ID: snap.ID, Source: snap.Source}
	}
	return CorpusInfo{State: CorpusReady, ID: snap.ID, Source: snap.Source, Chunks: snap.Chunks}
}

func run(ctx context.Context, c ProviderChecker) CheckResult {
	if err := c.HealthCheck(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
