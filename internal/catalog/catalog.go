// Package catalog fans mood search terms out to the track catalog and
// resolves track ids back to full metadata.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
)

const (
	// MaxTerms is how many interpreted terms are searched.
	MaxTerms = 3
	// MaxResults caps the merged search result.
	MaxResults = 20
	// DefaultLimit is the per-term search limit.
	DefaultLimit = 10
	// DefaultMarket is the search market.
	DefaultMarket = "US"
	// DefaultConcurrency is the number of concurrent term searches.
	DefaultConcurrency = 3
	// ChunkSize is the number of ids per lookup request.
	ChunkSize = spotify.MaxIDsPerLookup

	maxLimit = 50
)

// Searcher abstracts the catalog client for testing.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int, market string) ([]spotify.Track, error)
	GetTracks(ctx context.Context, ids []string) ([]spotify.Track, error)
}

// Orchestrator runs searches and lookups against a Searcher.
type Orchestrator struct {
	searcher    Searcher
	limit       int
	market      string
	concurrency int
	log         *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLimit sets the per-term result limit. Values outside 1..50 are ignored.
func WithLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 && n <= maxLimit {
			o.limit = n
		}
	}
}

// WithMarket sets the search market.
func WithMarket(code string) Option {
	return func(o *Orchestrator) {
		if code != "" {
			o.market = code
		}
	}
}

// WithConcurrency sets the number of concurrent term searches.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an Orchestrator.
func New(searcher Searcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searcher:    searcher,
		limit:       DefaultLimit,
		market:      DefaultMarket,
		concurrency: DefaultConcurrency,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// termResult holds the outcome of one term search.
type termResult struct {
	term   string
	tracks []spotify.Track
	err    error
}

// SearchByTerms searches the first MaxTerms terms concurrently and merges
// the results in term order. A failing term is skipped. Duplicates are
// removed keeping the first occurrence, and at most MaxResults tracks are
// returned. An empty merge is a NoResults error.
func (o *Orchestrator) SearchByTerms(ctx context.Context, terms []string) ([]spotify.Track, error) {
	if len(terms) > MaxTerms {
		terms = terms[:MaxTerms]
	}
	if len(terms) == 0 {
		return nil, apperr.NoResults("catalog.search", "no search terms", nil)
	}

	results := o.searchAll(ctx, terms)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lastErr error
	seen := make(map[string]bool)
	tracks := make([]spotify.Track, 0, MaxResults)

merge:
	for _, r := range results {
		if r.err != nil {
			o.log.Warn("search term failed",
				zap.String("term", r.term),
				zap.Error(r.err))
			lastErr = r.err
			continue
		}
		for _, t := range r.tracks {
			if !t.Valid() || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tracks = append(tracks, t)
			if len(tracks) == MaxResults {
				break merge
			}
		}
	}

	if len(tracks) == 0 {
		return nil, apperr.NoResults("catalog.search", "no tracks found for mood", lastErr)
	}

	o.log.Debug("search merged",
		zap.Strings("terms", terms),
		zap.Int("tracks", len(tracks)))
	return tracks, nil
}

// searchAll runs one search per term on a worker pool. Results are indexed
// by term position regardless of completion order.
func (o *Orchestrator) searchAll(ctx context.Context, terms []string) []termResult {
	results := make([]termResult, len(terms))

	type workItem struct {
		index int
		term  string
	}
	workCh := make(chan workItem, len(terms))
	for i, term := range terms {
		workCh <- workItem{index: i, term: term}
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < min(o.concurrency, len(terms)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				if err := ctx.Err(); err != nil {
					results[work.index] = termResult{term: work.term, err: err}
					continue
				}

				tracks, err := o.searcher.SearchTracks(ctx, work.term, o.limit, o.market)
				results[work.index] = termResult{term: work.term, tracks: tracks, err: err}
			}
		}()
	}

	wg.Wait()
	return results
}

// LookupByIDs resolves ids to tracks in chunks of ChunkSize, one request per
// chunk in order. Any failed chunk fails the lookup. Unknown or incomplete
// tracks are dropped.
func (o *Orchestrator) LookupByIDs(ctx context.Context, ids []string) ([]spotify.Track, error) {
	tracks := make([]spotify.Track, 0, len(ids))

	for i := 0; i < len(ids); i += ChunkSize {
		end := min(i+ChunkSize, len(ids))

		batch, err := o.searcher.GetTracks(ctx, ids[i:end])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, apperr.UpstreamRequest("catalog.lookup",
				fmt.Errorf("looking up tracks (batch %d-%d): %w", i+1, end, err))
		}

		for _, t := range batch {
			if t.Valid() {
				tracks = append(tracks, t)
			}
		}
	}

	o.log.Debug("lookup complete",
		zap.Int("requested", len(ids)),
		zap.Int("found", len(tracks)))
	return tracks, nil
}
