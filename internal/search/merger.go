package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	coreconfig "github.com/vokin23/channelsearch/core/config"
	"github.com/vokin23/channelsearch/core/logger"
	"github.com/vokin23/channelsearch/internal/directory"
)

// termLimit caps how many candidates a single per-term directory call may return.
const termLimit = 50

// Options tunes a search Service.
type Options struct {
	// MaxResults caps the merged result set; reaching it short-circuits
	// remaining strategies and terms.
	MaxResults int
	// StrategyOrder lists strategies to run, in priority order.
	StrategyOrder []string
	// CallTimeout bounds every individual directory call; 0 disables the bound.
	CallTimeout time.Duration
	// DialogScanLimit caps how many dialogs the dialog strategy inspects.
	DialogScanLimit int
}

// Service runs the layered channel search across directory strategies and
// merges candidates into a deduplicated, capped result list.
type Service struct {
	dir  directory.Client
	opts Options
}

// NewService builds a search service over the given directory client.
func NewService(dir directory.Client, opts Options) *Service {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 100
	}
	if len(opts.StrategyOrder) == 0 {
		opts.StrategyOrder = []string{
			coreconfig.StrategyGlobal,
			coreconfig.StrategyMessages,
			coreconfig.StrategyDialogs,
			coreconfig.StrategyDirect,
		}
	}
	if opts.DialogScanLimit <= 0 {
		opts.DialogScanLimit = 200
	}
	return &Service{dir: dir, opts: opts}
}

// Run executes the search for the given terms. It returns directory.ErrAuthRequired
// when the elevated account is not authorized, and *TransientError when every
// strategy call failed without yielding a single candidate.
func (s *Service) Run(ctx context.Context, terms []string) ([]directory.Candidate, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	authorized, err := s.dir.IsAuthorized(ctx)
	if err != nil {
		if errors.Is(err, directory.ErrAuthRequired) {
			return nil, directory.ErrAuthRequired
		}
		return nil, &TransientError{Err: err}
	}
	if !authorized {
		return nil, directory.ErrAuthRequired
	}

	start := time.Now()
	m := newMerger(s.opts.MaxResults)
	var (
		callErrs int
		lastErr  error
	)

	for _, strategy := range s.opts.StrategyOrder {
		if m.full() {
			break
		}
		errCount, err := s.runStrategy(ctx, strategy, terms, m)
		callErrs += errCount
		if err != nil {
			if errors.Is(err, directory.ErrAuthRequired) {
				return nil, directory.ErrAuthRequired
			}
			lastErr = err
		}
	}

	results := m.results()
	logger.Info(ctx, "service.search", "search.done",
		slog.String("terms", strings.Join(terms, ",")),
		slog.Int("results", len(results)),
		slog.Int("call_errors", callErrs),
		slog.Duration("took", logger.RoundMS(time.Since(start))),
	)

	if len(results) == 0 && callErrs > 0 {
		return nil, &TransientError{Err: lastErr}
	}
	return results, nil
}

// runStrategy feeds one strategy's candidates into the merger.
// It returns the number of failed directory calls and the last error seen.
func (s *Service) runStrategy(ctx context.Context, strategy string, terms []string, m *merger) (int, error) {
	switch strategy {
	case coreconfig.StrategyGlobal:
		return s.runPerTerm(ctx, strategy, terms, m, s.dir.SearchGlobal)
	case coreconfig.StrategyMessages:
		return s.runPerTerm(ctx, strategy, terms, m, s.dir.SearchMessages)
	case coreconfig.StrategyDialogs:
		return s.runDialogs(ctx, terms, m)
	case coreconfig.StrategyDirect:
		joined := strings.Join(terms, " ")
		cands, err := s.call(ctx, strategy, joined, func(callCtx context.Context) ([]directory.Candidate, error) {
			return s.dir.SearchGlobal(callCtx, joined, termLimit)
		})
		if err != nil {
			return 1, err
		}
		m.add(cands...)
		return 0, nil
	default:
		logger.Warn(ctx, "service.search", "strategy.unknown", slog.String("strategy", strategy))
		return 0, nil
	}
}

func (s *Service) runPerTerm(
	ctx context.Context,
	strategy string,
	terms []string,
	m *merger,
	fn func(context.Context, string, int) ([]directory.Candidate, error),
) (int, error) {
	var (
		errCount int
		lastErr  error
	)
	for _, term := range terms {
		if m.full() {
			break
		}
		cands, err := s.call(ctx, strategy, term, func(callCtx context.Context) ([]directory.Candidate, error) {
			return fn(callCtx, term, termLimit)
		})
		if err != nil {
			if errors.Is(err, directory.ErrAuthRequired) {
				return errCount + 1, err
			}
			errCount++
			lastErr = err
			continue
		}
		m.add(cands...)
	}
	return errCount, lastErr
}

func (s *Service) runDialogs(ctx context.Context, terms []string, m *merger) (int, error) {
	cands, err := s.call(ctx, coreconfig.StrategyDialogs, "", func(callCtx context.Context) ([]directory.Candidate, error) {
		return s.dir.ListOwnDialogs(callCtx, s.opts.DialogScanLimit)
	})
	if err != nil {
		return 1, err
	}
	for _, c := range cands {
		if m.full() {
			break
		}
		if Relevant(c, terms) {
			m.add(c)
		}
	}
	return 0, nil
}

// call runs a single directory call under the configured timeout.
// Failed calls are logged and skipped; the strategy loop continues.
func (s *Service) call(
	ctx context.Context,
	strategy, term string,
	fn func(context.Context) ([]directory.Candidate, error),
) ([]directory.Candidate, error) {
	callCtx := ctx
	if s.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()
	}

	cands, err := fn(callCtx)
	if err != nil {
		attrs := []slog.Attr{
			slog.String("strategy", strategy),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		}
		if term != "" {
			attrs = append(attrs, slog.String("term", term))
		}
		logger.Warn(ctx, "service.search", "strategy.call_failed", attrs...)
		return nil, err
	}
	return cands, nil
}

// merger accumulates candidates with handle-based deduplication and a hard cap.
// The first occurrence of a handle wins; later duplicates are dropped.
type merger struct {
	max   int
	seen  map[string]struct{}
	items []directory.Candidate
}

func newMerger(max int) *merger {
	return &merger{
		max:  max,
		seen: make(map[string]struct{}),
	}
}

func (m *merger) add(cands ...directory.Candidate) {
	for _, c := range cands {
		if m.full() {
			return
		}
		if c.Handle == "" || !c.Broadcast {
			continue
		}
		key := strings.ToLower(c.Handle)
		if _, dup := m.seen[key]; dup {
			continue
		}
		m.seen[key] = struct{}{}
		m.items = append(m.items, c)
	}
}

func (m *merger) full() bool {
	return len(m.items) >= m.max
}

func (m *merger) results() []directory.Candidate {
	return m.items
}
