package ragchat

import "context"

// HealthStatus represents provider availability and the loaded corpus.
type HealthStatus struct {
	Status       string            // "ok", "degraded", "error"
	Checks       map[string]string // provider → "ok"/"error"
	CorpusState  string            // "empty" or "ready"
	CorpusChunks int
}

// Health checks the built-in providers and reports the corpus state.
// Custom providers set through options are not probed.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:       string(report.Status),
		Checks:       checks,
		CorpusState:  string(report.Corpus.State),
		CorpusChunks: report.Corpus.Chunks,
	}
}
