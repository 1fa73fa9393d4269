package filtering

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/matching"
)

type excludedSitesFilter struct {
	sites []string
}

// NewExcludedSites creates a filter that removes matches hosted on configured sites.
// A site matches its own host and every subdomain.
func NewExcludedSites() Filter {
	return &excludedSitesFilter{}
}

func (f *excludedSitesFilter) Name() string { return "excluded_sites" }

func (f *excludedSitesFilter) Disable(string) {}

func (f *excludedSitesFilter) IsEnabled() bool { return true }

func (f *excludedSitesFilter) Validate(cfg *Config) error {
	f.sites = nil
	if cfg == nil {
		return nil
	}
	for _, site := range cfg.ExcludedSites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site != "" {
			f.sites = append(f.sites, strings.TrimPrefix(site, "www."))
		}
	}
	return nil
}

func (f *excludedSitesFilter) Apply(_ context.Context, deps Deps, m *matching.Matches) (*matching.Matches, Step, error) {
	initial := m.Len()
	if len(f.sites) == 0 {
		return m, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded := m.Exclude(func(j *matching.ScoredJob) bool {
		return f.matches(j.Posting.Link)
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding jobs by site",
			zap.Strings("excluded_sites", f.sites),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", m.Len()),
		)
	}

	return m, Step{Initial: initial, Dropped: len(excluded), Left: m.Len()}, nil
}

func (f *excludedSitesFilter) matches(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, site := range f.sites {
		if host == site || strings.HasSuffix(host, "."+site) {
			return true
		}
	}
	return false
}

func (f *excludedSitesFilter) Status() Status {
	details := map[string]string{}
	if len(f.sites) > 0 {
		details["sites"] = strings.Join(f.sites, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
