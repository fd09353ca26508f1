// Package pipeline drives batch metadata enhancement over a documentation
// tree. Each document flows through parse, candidate generation, merge and
// serialize; failures are collected per document and never abort the batch.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/frontmatter"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/suggest"
)

// Status classifies the outcome of one document.
type Status string

const (
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusPreviewed Status = "previewed"
	StatusFailed    Status = "failed"
)

// Source names where a document's candidate metadata came from.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceStatic = "static"
)

// DocResult records what happened to a single document.
type DocResult struct {
	Path      string                 `json:"path"`
	Status    Status                 `json:"status"`
	Source    string                 `json:"source,omitempty"`
	Changes   []frontmatter.Change   `json:"changes,omitempty"`
	Conflicts []frontmatter.Conflict `json:"conflicts,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Summary aggregates a whole run.
type Summary struct {
	Mode      string        `json:"mode"`
	Preview   bool          `json:"preview"`
	Target    string        `json:"target"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Failed    int           `json:"failed"`
	Results   []DocResult   `json:"results"`
}

// Options tune a Pipeline. Zero values select sensible defaults.
type Options struct {
	// Preview computes and reports changes without writing any file.
	Preview bool
	// Workers bounds concurrent document processing. Defaults to 4.
	Workers int
	// Policy controls per-key merge behavior. A nil Keys map selects
	// frontmatter.DefaultPolicy.
	Policy frontmatter.Policy
	// Schedule orders well-known keys in serialized front matter.
	Schedule []string
}

// Pipeline is an immutable batch processor. Construct with New.
type Pipeline struct {
	store    storage.Provider
	remote   suggest.Suggester // optional, may be nil
	fallback suggest.Suggester
	cache    cache.Store // optional, may be nil
	logger   *slog.Logger
	opts     Options
}

// New builds a Pipeline. store and fallback are required; remote and cache
// may be nil, in which case candidates always come from the fallback.
func New(store storage.Provider, remote, fallback suggest.Suggester, cacheStore cache.Store, logger *slog.Logger, opts Options) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if fallback == nil {
		return nil, errors.New("pipeline: fallback suggester is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Policy.Keys == nil {
		opts.Policy = frontmatter.DefaultPolicy()
	}
	if opts.Schedule == nil {
		opts.Schedule = frontmatter.DefaultKeySchedule
	}
	return &Pipeline{
		store:    store,
		remote:   remote,
		fallback: fallback,
		cache:    cacheStore,
		logger:   logger,
		opts:     opts,
	}, nil
}

// Run processes every Markdown document under target (a path relative to the
// docs root; "" means the whole tree) and returns a Summary. Individual
// document failures are recorded in the summary, not returned as an error.
func (p *Pipeline) Run(ctx context.Context, target string) (Summary, error) {
	started := time.Now()
	docs, err := p.store.List(target)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: list documents: %w", err)
	}

	results := make([]DocResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processDoc(gctx, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("pipeline: run aborted: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	sum := Summary{
		Mode:      "enhance",
		Preview:   p.opts.Preview,
		Target:    target,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Processed: len(results),
		Results:   results,
	}
	for _, r := range results {
		switch r.Status {
		case StatusUpdated, StatusPreviewed:
			sum.Updated++
		case StatusUnchanged:
			sum.Unchanged++
		case StatusFailed:
			sum.Failed++
		}
	}
	p.recordRun(sum)
	p.logger.Info("batch finished",
		"target", target,
		"processed", sum.Processed,
		"updated", sum.Updated,
		"unchanged", sum.Unchanged,
		"failed", sum.Failed,
		"preview", sum.Preview,
		"duration", sum.Duration.Round(time.Millisecond).String())
	return sum, nil
}

func (p *Pipeline) processDoc(ctx context.Context, doc storage.DocInfo) DocResult {
	res := DocResult{Path: doc.Path}

	data, err := p.store.Read(doc.Path)
	if err != nil {
		return fail(res, fmt.Errorf("read: %w", err))
	}
	block, body, err := frontmatter.Parse(data)
	if err != nil {
		return fail(res, err)
	}

	cand, source, err := p.candidate(ctx, doc.Path, body, block)
	if err != nil {
		return fail(res, err)
	}
	res.Source = source

	merged, conflicts := frontmatter.Merge(block, cand.Block(), p.opts.Policy)
	res.Conflicts = conflicts
	res.Changes = frontmatter.Diff(block, merged)
	if len(res.Changes) == 0 {
		res.Status = StatusUnchanged
		return res
	}

	text, err := frontmatter.Serialize(merged, body, p.opts.Schedule)
	if err != nil {
		return fail(res, err)
	}
	if p.opts.Preview {
		res.Status = StatusPreviewed
		return res
	}
	if err := p.store.Write(doc.Path, []byte(text)); err != nil {
		return fail(res, fmt.Errorf("write: %w", err))
	}
	res.Status = StatusUpdated
	return res
}

// candidate resolves metadata for one document: cache first, then the remote
// suggester, then the static fallback when the remote is unavailable.
func (p *Pipeline) candidate(ctx context.Context, path, body string, existing *frontmatter.Block) (suggest.Candidate, string, error) {
	bodySum := checksum.SumString(body)

	if p.cache != nil {
		cand, ok, err := p.cache.GetSuggestion(path, bodySum)
		if err != nil {
			p.logger.Warn("suggestion cache lookup failed", "path", path, "error", err)
		} else if ok {
			return cand, SourceCache, nil
		}
	}

	if p.remote != nil {
		cand, err := p.remote.Suggest(ctx, path, body, existing)
		if err == nil {
			if p.cache != nil {
				if err := p.cache.PutSuggestion(path, bodySum, cand); err != nil {
					p.logger.Warn("suggestion cache store failed", "path", path, "error", err)
				}
			}
			return cand, SourceRemote, nil
		}
		if !errors.Is(err, apperr.ErrSuggestUnavailable) {
			return suggest.Candidate{}, "", err
		}
		p.logger.Warn("remote suggester unavailable, using static fallback", "path", path, "error", err)
	}

	cand, err := p.fallback.Suggest(ctx, path, body, existing)
	if err != nil {
		return suggest.Candidate{}, "", err
	}
	return cand, SourceStatic, nil
}

func (p *Pipeline) recordRun(sum Summary) {
	if p.cache == nil {
		return
	}
	report, err := json.Marshal(struct {
		Target  string `json:"target"`
		Preview bool   `json:"preview"`
	}{sum.Target, sum.Preview})
	if err != nil {
		report = []byte("{}")
	}
	rec := cache.RunRecord{
		Mode:      sum.Mode,
		StartedAt: sum.StartedAt,
		Duration:  sum.Duration,
		Processed: sum.Processed,
		Updated:   sum.Updated,
		Skipped:   sum.Unchanged,
		Failed:    sum.Failed,
		Report:    report,
	}
	if err := p.cache.RecordRun(rec); err != nil {
		p.logger.Warn("run history store failed", "error", err)
	}
}

// WriteReport writes the summary as indented JSON to dir/enhance_report.json.
func WriteReport(sum Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pipeline: create report dir: %w", err)
	}
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return "", fmt.Errorf("pipeline: marshal report: %w", err)
	}
	path := filepath.Join(dir, "enhance_report.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("pipeline: write report: %w", err)
	}
	return path, nil
}

func fail(res DocResult, err error) DocResult {
	res.Status = StatusFailed
	res.Error = err.Error()
	return res
}
