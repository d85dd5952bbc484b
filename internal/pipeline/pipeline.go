// Package pipeline is the build session: it accepts page requests, resolves
// their models, registers the resulting pages and renders them.
//
// A session is single-use per build; its stack only grows. Requests may be
// queued at any time, including from the Generate callback.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/pagebuilder/internal/assets"
	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/controller"
	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/expand"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/model"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/render"
	"git.home.luguber.info/inful/pagebuilder/internal/render/engine"
	"git.home.luguber.info/inful/pagebuilder/internal/stack"
	"git.home.luguber.info/inful/pagebuilder/internal/util/sets"
)

// OnComplete runs once every queued model has settled. results holds the
// successfully resolved models in request order.
type OnComplete func(ctx context.Context, p *Pipeline, results []model.Resolved)

// Pipeline is one build session.
type Pipeline struct {
	cfg      *config.Config
	fs       afero.Fs
	logger   *slog.Logger
	recorder metrics.Recorder
	registry *controller.Registry
	client   *http.Client

	engine   *engine.Engine
	resolver *model.Resolver
	applier  *controller.Applier
	stack    *stack.Stack
	renderer *render.Renderer
	assets   *assets.Copier

	mu        sync.Mutex
	requested sets.Set[string]
	errs      []error
	results   []model.Resolved
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFs replaces the OS file system.
func WithFs(afs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = afs }
}

// WithLogger sets the logger used by every stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(m metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = m }
}

// WithRegistry supplies the named controllers.
func WithRegistry(r *controller.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithHTTPClient overrides the client used for URL models.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.client = c }
}

// New creates a session for cfg.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		fs:        afero.NewOsFs(),
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		requested: sets.New[string](),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = controller.NewRegistry()
	}
	if p.client == nil {
		p.client = model.NewHTTPClient(cfg.Models.Timeout)
	}

	f := cfg.Folders
	p.engine = engine.New()
	p.resolver = model.NewResolver(p.fs, f.Models,
		model.WithHTTPClient(p.client),
		model.WithMaxBytes(cfg.Models.MaxBytes),
		model.WithLogger(p.logger),
		model.WithRecorder(p.recorder))
	p.applier = controller.NewApplier(p.registry, cfg.TemplateExt, p.report, p.logger)
	p.stack = stack.New(p.logger, p.recorder, p.report)
	p.renderer = render.New(p.fs, p.engine, render.Config{
		PagesDir:    f.Pages,
		BuildDir:    f.Build,
		TemplateExt: cfg.TemplateExt,
		Dev:         cfg.Dev,
		Site:        cfg.Site,
	}, render.WithLogger(p.logger), render.WithRecorder(p.recorder), render.WithReporter(p.report))
	p.assets = assets.NewCopier(p.fs, f.Assets, f.Build, p.logger)
	return p
}

// Prepare creates the source folders, resets the build folder unless
// KeepBuild is set, copies assets and registers partials.
func (p *Pipeline) Prepare() error {
	f := p.cfg.Folders
	for _, dir := range []string{f.Src, f.Assets, f.Layouts, f.Pages, f.Components, f.Models} {
		if err := p.fs.MkdirAll(dir, 0o750); err != nil {
			return derrors.FileSystemError("create source folder", err).WithContext("path", dir)
		}
	}
	if !p.cfg.KeepBuild {
		if err := p.fs.RemoveAll(f.Build); err != nil {
			return derrors.FileSystemError("clean build folder", err).WithContext("path", f.Build)
		}
	}
	if err := p.fs.MkdirAll(f.Build, 0o750); err != nil {
		return derrors.FileSystemError("create build folder", err).WithContext("path", f.Build)
	}
	if _, err := p.assets.CopyAll(); err != nil {
		return err
	}
	return p.RegisterPartials()
}

// RegisterPartials (re)loads components and layouts into the engine.
// Layouts are registered last and win on a name clash. Renders running
// meanwhile keep the previous partials until the new set is complete.
func (p *Pipeline) RegisterPartials() error {
	dirs := []string{p.cfg.Folders.Components, p.cfg.Folders.Layouts}
	n, err := p.engine.ReplacePartials(p.fs, p.cfg.TemplateExt, dirs...)
	if err != nil {
		return derrors.FileSystemError("register partials", err).WithContext("path", strings.Join(dirs, ","))
	}
	p.logger.Debug("Registered partials", logfields.Count(n))
	return nil
}

// Page queues one request. The returned future settles after the request's
// pages have been registered.
func (p *Pipeline) Page(ctx context.Context, req page.Request) *model.Future {
	opts := page.New(req, p.cfg.PageDefaults())
	if !opts.IsInline() {
		p.markRequested(opts.Source)
	}

	return p.resolver.ResolveThen(ctx, req.Model, func(res model.Resolved, err error) {
		if err != nil {
			p.logger.Error("Model resolution failed", logfields.ShortView(opts.View), logfields.Error(err))
			p.report(err)
			return
		}
		pages, err := expand.Expand(ctx, opts, res.Data, p.applier.Apply)
		if err != nil {
			p.logger.Error("Page expansion failed", logfields.ShortView(opts.View), logfields.Error(err))
			p.report(err)
		}
		for _, o := range pages {
			p.stack.Register(o)
		}
	})
}

// Pages queues a dynamic request: one page per element of the model array.
func (p *Pipeline) Pages(ctx context.Context, req page.Request) *model.Future {
	req.Dynamic = true
	return p.Page(ctx, req)
}

// PageAll queues several requests in order.
func (p *Pipeline) PageAll(ctx context.Context, reqs ...page.Request) []*model.Future {
	out := make([]*model.Future, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, p.Page(ctx, req))
	}
	return out
}

// Scan queues every template in the pages folder that has not been requested
// and returns how many were found.
func (p *Pipeline) Scan(ctx context.Context) (int, error) {
	p.mu.Lock()
	requested := p.requested.Clone()
	p.mu.Unlock()

	reqs, err := stack.Scan(p.fs, p.cfg.Folders.Pages, p.cfg.Folders.Models, p.cfg.TemplateExt, requested)
	if err != nil {
		return 0, derrors.FileSystemError("scan pages", err).WithContext("path", p.cfg.Folders.Pages)
	}
	p.PageAll(ctx, reqs...)
	p.logger.Debug("Scanned pages", logfields.Count(len(reqs)))
	return len(reqs), nil
}

// GetModelByID looks up a settled model by id.
func (p *Pipeline) GetModelByID(id string, results []model.Resolved) (model.Resolved, bool) {
	return model.FindByID(id, results)
}

// Registry returns the controller registry of the session.
func (p *Pipeline) Registry() *controller.Registry { return p.registry }

// Stack returns the build stack.
func (p *Pipeline) Stack() *stack.Stack { return p.stack }

// Config returns the session configuration.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Errors returns every per-page failure reported so far.
func (p *Pipeline) Errors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.errs...)
}

func (p *Pipeline) report(err error) {
	p.mu.Lock()
	p.errs = append(p.errs, err)
	p.mu.Unlock()
}

func (p *Pipeline) markRequested(view string) {
	p.mu.Lock()
	p.requested.Add(view)
	p.mu.Unlock()
}
