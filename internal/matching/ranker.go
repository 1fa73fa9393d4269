package matching

import (
	"sort"

	"github.com/spigell/intern-scout/internal/search"
)

// Extractor turns text into lemma tokens.
type Extractor interface {
	Extract(text string) []string
}

type Ranker struct {
	extractor Extractor
}

func NewRanker(extractor Extractor) *Ranker {
	return &Ranker{extractor: extractor}
}

// Rank scores every posting against resumeTokens and sorts them by descending
// score. Ties keep the input order. An empty resume yields no matches.
func (r *Ranker) Rank(postings []*search.Posting, resumeTokens []string) *Matches {
	matches := &Matches{}
	if len(resumeTokens) == 0 {
		return matches
	}

	matches.Items = make([]*ScoredJob, 0, len(postings))
	for _, posting := range postings {
		tokens := r.extractor.Extract(posting.Text())
		matches.Items = append(matches.Items, &ScoredJob{
			Score:   Score(resumeTokens, tokens),
			Posting: posting,
		})
	}

	sort.SliceStable(matches.Items, func(i, j int) bool {
		return matches.Items[i].Score > matches.Items[j].Score
	})

	return matches
}
