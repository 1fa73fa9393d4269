package scout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/filtering"
	"github.com/spigell/intern-scout/internal/ledger"
	"github.com/spigell/intern-scout/internal/matching"
	"github.com/spigell/intern-scout/internal/resume"
	"github.com/spigell/intern-scout/internal/search"
	"github.com/spigell/intern-scout/internal/util"
)

// Outcome classifies a run that finished without a fatal error.
type Outcome int

const (
	// OutcomeRecorded means matches were ranked and every new one was recorded.
	OutcomeRecorded Outcome = iota
	// OutcomeNoPostings means the search produced nothing to rank.
	OutcomeNoPostings
	// OutcomeNothingToMatch means the resume was missing or yielded no keywords.
	OutcomeNothingToMatch
	// OutcomeDeclined means the confirmation step refused to record the matches.
	OutcomeDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeNoPostings:
		return "no_postings"
	case OutcomeNothingToMatch:
		return "nothing_to_match"
	case OutcomeDeclined:
		return "declined"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Fetcher retrieves postings from the search API.
type Fetcher interface {
	Fetch(ctx context.Context, query, location string, desired int) ([]*search.Posting, error)
}

// Config is fixed for the duration of a run.
type Config struct {
	Query      string
	Location   string
	Results    int
	ResumePath string
	Filters    *filtering.Config
}

// Deps are the collaborators of a run.
type Deps struct {
	Fetcher   Fetcher
	Extractor matching.Extractor
	Ledger    ledger.Ledger
	Filters   []filtering.Filter
	// Confirm is asked once before anything is recorded. Nil means yes.
	Confirm func(ctx context.Context, m *matching.Matches) (bool, error)
	Report  io.Writer
	Logger  *zap.Logger
}

// Result summarizes a completed run.
type Result struct {
	Outcome Outcome
	Fetched int
	Ranked  int
	Added   []*matching.ScoredJob
	Skipped []string
	// Upstream holds the search API failure that cut the fetch short, if any.
	Upstream *search.UpstreamError
}

type Runner struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Runner {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Report == nil {
		deps.Report = io.Discard
	}
	return &Runner{cfg: cfg, deps: deps}
}

// Run executes one pass: init ledger, fetch, rank, filter, then record every
// match whose title is not in the ledger yet. Appends are independent; an error
// stops the run without undoing earlier appends.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.deps.Logger
	result := &Result{}

	if err := r.deps.Ledger.Init(ctx); err != nil {
		return nil, fmt.Errorf("initializing ledger: %w", err)
	}

	postings, err := r.deps.Fetcher.Fetch(ctx, r.cfg.Query, r.cfg.Location, r.cfg.Results)
	if err != nil {
		var upstream *search.UpstreamError
		if !errors.As(err, &upstream) {
			return nil, fmt.Errorf("fetching postings: %w", err)
		}
		result.Upstream = upstream
		log.Warn("search stopped early", zap.Error(err), zap.Int("collected", len(postings)))
	}
	result.Fetched = len(postings)

	if len(postings) == 0 {
		log.Info("no job descriptions found")
		result.Outcome = OutcomeNoPostings
		return result, nil
	}

	resumeTokens, err := r.resumeTokens()
	if err != nil {
		return nil, err
	}

	matches := matching.NewRanker(r.deps.Extractor).Rank(postings, resumeTokens)
	result.Ranked = matches.Len()
	if matches.Len() == 0 {
		log.Info("nothing to match", zap.String("reason", "resume has no keywords"))
		result.Outcome = OutcomeNothingToMatch
		return result, nil
	}

	matches, err = filtering.Run(ctx, r.cfg.Filters, filtering.Deps{Logger: log}, r.deps.Filters, matches)
	if err != nil {
		return nil, fmt.Errorf("filtering matches: %w", err)
	}

	if r.deps.Confirm != nil && matches.Len() > 0 {
		ok, err := r.deps.Confirm(ctx, matches)
		if err != nil {
			return nil, fmt.Errorf("confirming matches: %w", err)
		}
		if !ok {
			result.Outcome = OutcomeDeclined
			return result, nil
		}
	}

	for _, job := range matches.Items {
		exists, err := r.deps.Ledger.Exists(ctx, job.Posting.Title)
		if err != nil {
			return result, fmt.Errorf("checking ledger for %q: %w", job.Posting.Title, err)
		}
		if exists {
			log.Info("job already listed", zap.String("title", job.Posting.Title))
			result.Skipped = append(result.Skipped, job.Posting.Title)
			continue
		}

		entry := ledger.Entry{Title: job.Posting.Title, Link: job.Posting.Link}
		if err := r.deps.Ledger.Append(ctx, entry); err != nil {
			return result, fmt.Errorf("recording %q: %w", job.Posting.Title, err)
		}
		result.Added = append(result.Added, job)

		log.Debug("recorded job",
			zap.Float64("relevance", job.Score),
			zap.String("title", job.Posting.Title),
			zap.String("description", util.TruncateForLog(job.Posting.Description, 80)),
		)

		if err := WriteReport(r.deps.Report, job); err != nil {
			return result, fmt.Errorf("writing report: %w", err)
		}
	}

	log.Info("run completed",
		zap.Int("fetched", result.Fetched),
		zap.Int("added", len(result.Added)),
		zap.Int("already_listed", len(result.Skipped)),
	)

	result.Outcome = OutcomeRecorded
	return result, nil
}

// resumeTokens loads the resume. A missing resume is not an error: it yields no tokens.
func (r *Runner) resumeTokens() ([]string, error) {
	text, err := resume.Load(r.cfg.ResumePath)
	if errors.Is(err, fs.ErrNotExist) {
		r.deps.Logger.Error("resume not found", zap.String("path", r.cfg.ResumePath))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return r.deps.Extractor.Extract(text), nil
}
