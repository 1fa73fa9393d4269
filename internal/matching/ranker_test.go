package matching

import (
	"sort"
	"strings"
	"testing"

	"github.com/spigell/intern-scout/internal/search"
)

// splitExtractor lowercases and splits on whitespace.
type splitExtractor struct{}

func (splitExtractor) Extract(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func TestRankOrdersBestFirst(t *testing.T) {
	t.Parallel()

	postings := []*search.Posting{
		{Title: "Barista", Link: "https://cafe.example.com", Description: "coffee shop"},
		{Title: "Software Engineering Intern", Link: "https://jobs.example.com", Description: "python backend role"},
	}

	matches := NewRanker(splitExtractor{}).Rank(postings, []string{"software", "engineer", "python"})

	if matches.Len() != 2 {
		t.Fatalf("expected 2 matches, got %d", matches.Len())
	}

	first, last := matches.Items[0], matches.Items[1]
	if first.Posting.Title != "Software Engineering Intern" {
		t.Fatalf("expected software intern first, got %q", first.Posting.Title)
	}
	if last.Posting.Title != "Barista" {
		t.Fatalf("expected barista last, got %q", last.Posting.Title)
	}
	if first.Score <= last.Score {
		t.Fatalf("expected %v > %v", first.Score, last.Score)
	}
	if last.Score != 0 {
		t.Fatalf("expected barista to score 0, got %v", last.Score)
	}
}

func TestRankEmptyResume(t *testing.T) {
	t.Parallel()

	postings := []*search.Posting{{Title: "Intern", Description: "python"}}

	if got := NewRanker(splitExtractor{}).Rank(postings, nil); got.Len() != 0 {
		t.Fatalf("expected no matches, got %d", got.Len())
	}
}

func TestRankKeepsLengthAndIsStable(t *testing.T) {
	t.Parallel()

	postings := []*search.Posting{
		{Title: "A", Description: "nothing shared"},
		{Title: "B", Description: "go python"},
		{Title: "C", Description: "also nothing"},
		{Title: "D", Description: "python"},
		{Title: "E", Description: "unrelated"},
	}

	matches := NewRanker(splitExtractor{}).Rank(postings, []string{"python", "go"})

	if matches.Len() != len(postings) {
		t.Fatalf("expected %d matches, got %d", len(postings), matches.Len())
	}

	if !sort.SliceIsSorted(matches.Items, func(i, j int) bool {
		return matches.Items[i].Score > matches.Items[j].Score
	}) {
		t.Fatalf("expected non-increasing scores")
	}

	// zero-score postings keep their input order.
	var zeros []string
	for _, item := range matches.Items {
		if item.Score == 0 {
			zeros = append(zeros, item.Posting.Title)
		}
	}
	if strings.Join(zeros, ",") != "A,C,E" {
		t.Fatalf("expected ties in input order, got %v", zeros)
	}
}

func TestMatchesExcludeKeepsOrder(t *testing.T) {
	t.Parallel()

	m := &Matches{Items: []*ScoredJob{
		{Score: 0.9, Posting: &search.Posting{Title: "A"}},
		{Score: 0.5, Posting: &search.Posting{Title: "B"}},
		{Score: 0.1, Posting: &search.Posting{Title: "C"}},
	}}

	dropped := m.Exclude(func(j *ScoredJob) bool { return j.Posting.Title == "B" })

	if len(dropped) != 1 || dropped[0] != "B" {
		t.Fatalf("unexpected dropped titles: %v", dropped)
	}
	if strings.Join(m.Titles(), ",") != "A,C" {
		t.Fatalf("unexpected remaining titles: %v", m.Titles())
	}
}
