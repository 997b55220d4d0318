package pipeline

import (
	"context"

	"github.com/nao1215/jsonsweep/internal/model"
	"github.com/nao1215/jsonsweep/internal/transform"
)

// Step names, as recorded in reports and the history database.
const (
	SiteFilterStepName = "site-filter"
	URLRewriteStepName = "url-rewrite"
)

// SiteFilterStep removes marked records from the sites list and persists
// the file when it removed any.
type SiteFilterStep struct {
	rule      transform.SiteRule
	persister Persister
	observer  Observer
}

// NewSiteFilterStep creates a Site Filter step.
// A nil observer is replaced by NopObserver.
func NewSiteFilterStep(rule transform.SiteRule, persister Persister, observer Observer) *SiteFilterStep {
	if observer == nil {
		observer = NopObserver{}
	}
	return &SiteFilterStep{
		rule:      rule,
		persister: persister,
		observer:  observer,
	}
}

// Name returns the step name.
func (s *SiteFilterStep) Name() string {
	return SiteFilterStepName
}

// Do executes the Site Filter step.
func (s *SiteFilterStep) Do(ctx context.Context, fc *FileContext) error {
	removed, err := transform.FilterSites(fc.Document, s.rule)
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}

	if err := s.persister.Persist(ctx, fc, s.Name()); err != nil {
		fc.restore()
		return err
	}

	fc.Report.SitesRemoved += removed
	s.observer.SitesFiltered(fc, removed)
	return nil
}

// URLRewriteStep applies the URL Rewriter and persists the file when it
// changed anything.
type URLRewriteStep struct {
	rewriter  *transform.URLRewriter
	persister Persister
	observer  Observer
}

// NewURLRewriteStep creates a URL Rewriter step.
// A nil observer is replaced by NopObserver.
func NewURLRewriteStep(rewriter *transform.URLRewriter, persister Persister, observer Observer) *URLRewriteStep {
	if observer == nil {
		observer = NopObserver{}
	}
	return &URLRewriteStep{
		rewriter:  rewriter,
		persister: persister,
		observer:  observer,
	}
}

// Name returns the step name.
func (s *URLRewriteStep) Name() string {
	return URLRewriteStepName
}

// Do executes the URL Rewriter step.
func (s *URLRewriteStep) Do(ctx context.Context, fc *FileContext) error {
	var (
		removed      int
		removedNames []string
		changes      []model.URLChange
	)

	changed, err := s.rewriter.Rewrite(fc.Document, fc.Base, func(e transform.Event) {
		switch e.Kind {
		case transform.EventURLRemoved:
			removedNames = append(removedNames, e.Name)
		case transform.EventURLsRemovedTotal:
			removed = e.Count
		case transform.EventURLUpdated:
			changes = append(changes, model.URLChange{Before: e.Before, After: e.After})
		}
		s.observer.URLEvent(fc, e)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := s.persister.Persist(ctx, fc, s.Name()); err != nil {
		fc.restore()
		return err
	}

	fc.Report.URLsRemoved += removed
	fc.Report.RemovedNames = append(fc.Report.RemovedNames, removedNames...)
	fc.Report.Changes = append(fc.Report.Changes, changes...)
	s.observer.URLsRewritten(fc)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Sites configures the Site Filter step.
	Sites transform.SiteRule

	// URLs configures the URL Rewriter step. URLs.Owner is required.
	URLs transform.URLRule

	// Persister writes changed files. Required.
	Persister Persister

	// Observer receives progress notifications. Optional.
	Observer Observer
}

// DefaultPipeline creates the standard pipeline: Site Filter, then URL
// Rewriter. Steps keep running after a failed step unless opts override it.
//
// It returns an error when the URL rule is invalid, so a misconfigured run
// is rejected before any file is touched.
func DefaultPipeline(cfg DefaultPipelineConfig, opts ...Option) (*Pipeline, error) {
	rewriter, err := transform.NewURLRewriter(cfg.URLs)
	if err != nil {
		return nil, err
	}

	p := New(append([]Option{WithContinueOnError(true)}, opts...)...)
	p.AddSteps(
		NewSiteFilterStep(cfg.Sites, cfg.Persister, cfg.Observer),
		NewURLRewriteStep(rewriter, cfg.Persister, cfg.Observer),
	)
	return p, nil
}
