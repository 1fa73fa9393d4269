package matching

import (
	"encoding/json"
	"os"

	"github.com/spigell/intern-scout/internal/search"
)

// ScoredJob pairs a posting with its relevance to the resume.
type ScoredJob struct {
	Score   float64         `json:"score"`
	Posting *search.Posting `json:"posting"`
}

// Matches is a ranked list of scored jobs, best first.
type Matches struct {
	Items []*ScoredJob
}

func (m *Matches) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Items)
}

func (m *Matches) Titles() []string {
	titles := make([]string, 0, m.Len())
	for _, item := range m.Items {
		titles = append(titles, item.Posting.Title)
	}
	return titles
}

// Exclude drops every item for which drop returns true, keeping the order of
// the rest, and returns the dropped titles.
func (m *Matches) Exclude(drop func(*ScoredJob) bool) []string {
	var excluded []string
	kept := m.Items[:0]
	for _, item := range m.Items {
		if drop(item) {
			excluded = append(excluded, item.Posting.Title)
			continue
		}
		kept = append(kept, item)
	}
	m.Items = kept
	return excluded
}

func (m *Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}
