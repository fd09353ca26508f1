// Package server implements the local report server: a chi REST API over the
// latest SEO analysis, run history and live update events.
package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/starford/ansuz/internal/analyzer"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/storage"
)

// Service runs analysis passes on demand and caches the latest report.
type Service struct {
	store  storage.Provider
	runs   cache.Store // optional, may be nil
	limits analyzer.Limits

	mu     sync.RWMutex
	latest *analyzer.Report
}

// NewService creates a Service. runs may be nil when no cache is configured.
func NewService(store storage.Provider, runs cache.Store, limits analyzer.Limits) *Service {
	return &Service{store: store, runs: runs, limits: limits}
}

// Analyze walks the whole docs tree, rebuilds the report and caches it.
func (s *Service) Analyze() (*analyzer.Report, error) {
	docs, err := s.store.List("")
	if err != nil {
		return nil, fmt.Errorf("server: list documents: %w", err)
	}
	a := analyzer.New(s.limits)
	for _, doc := range docs {
		data, err := s.store.Read(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("server: read %s: %w", doc.Path, err)
		}
		a.AnalyzeDocument(doc.Path, data)
	}
	report := a.Report()

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()
	return report, nil
}

// Report returns the cached report, running a first analysis when none
// exists yet.
func (s *Service) Report() (*analyzer.Report, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}
	return s.Analyze()
}

// Documents lists every Markdown document under the docs root.
func (s *Service) Documents() ([]storage.DocInfo, error) {
	return s.store.List("")
}

// Document analyzes a single document and returns its issues.
func (s *Service) Document(path string) (analyzer.DocReport, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return analyzer.DocReport{}, fmt.Errorf("%w: %s", apperr.ErrNotFound, path)
	}
	a := analyzer.New(s.limits)
	a.AnalyzeDocument(path, data)
	report := a.Report()
	if len(report.DocReports) == 0 {
		return analyzer.DocReport{Path: path}, nil
	}
	return report.DocReports[0], nil
}

// Runs returns recent batch run history, newest first.
func (s *Service) Runs(limit int) ([]cache.RunRecord, error) {
	if s.runs == nil {
		return nil, errors.New("server: run history is not configured")
	}
	return s.runs.ListRuns(limit)
}

// HasRunHistory reports whether a run-history store is configured.
func (s *Service) HasRunHistory() bool { return s.runs != nil }
