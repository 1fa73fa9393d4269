package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/matching"
)

type minimumRelevanceFilter struct {
	disabled bool
	reason   string
	minimum  float64
}

// NewMinimumRelevance creates a filter that drops matches scoring below the configured minimum.
func NewMinimumRelevance() Filter {
	return &minimumRelevanceFilter{}
}

func (f *minimumRelevanceFilter) Name() string { return "minimum_relevance" }

func (f *minimumRelevanceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumRelevanceFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumRelevanceFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumRelevance < 0 || cfg.MinimumRelevance > 1 {
		return fmt.Errorf("minimum relevance must be within [0, 1], got %v", cfg.MinimumRelevance)
	}
	f.minimum = cfg.MinimumRelevance
	return nil
}

func (f *minimumRelevanceFilter) Apply(_ context.Context, deps Deps, m *matching.Matches) (*matching.Matches, Step, error) {
	initial := m.Len()
	if f.minimum == 0 {
		return m, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded := m.Exclude(func(j *matching.ScoredJob) bool { return j.Score < f.minimum })
	if len(excluded) > 0 {
		deps.Logger.Debug("excluding jobs below minimum relevance",
			zap.Float64("minimum_relevance", f.minimum),
			zap.Strings("excluded_jobs", excluded),
		)
	}

	return m, Step{Initial: initial, Dropped: len(excluded), Left: m.Len()}, nil
}

func (f *minimumRelevanceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_relevance": fmt.Sprintf("%.2f", f.minimum)},
	}
}
