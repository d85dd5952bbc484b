// Package render turns finalized pages into files in the build folder.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/util/textutil"
)

// Executor compiles and runs template source.
type Executor interface {
	Execute(source string, data map[string]any) (string, error)
}

// Config locates views and output.
type Config struct {
	PagesDir    string
	BuildDir    string
	TemplateExt string
	Dev         bool
	Site        map[string]any
}

// Renderer renders pages and writes them to the build folder.
type Renderer struct {
	fs       afero.Fs
	exec     Executor
	cfg      Config
	post     *postProcessor
	recorder metrics.Recorder
	logger   *slog.Logger
	report   func(error)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRecorder sets the metrics recorder.
func WithRecorder(m metrics.Recorder) Option {
	return func(r *Renderer) {
		if m != nil {
			r.recorder = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithReporter receives every render failure.
func WithReporter(fn func(error)) Option {
	return func(r *Renderer) { r.report = fn }
}

// New creates a renderer writing through afs.
func New(afs afero.Fs, exec Executor, cfg Config, opts ...Option) *Renderer {
	r := &Renderer{
		fs:       afs,
		exec:     exec,
		cfg:      cfg,
		post:     newPostProcessor(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate renders p, post-processes the result and writes it. Failures are
// logged and reported; they never affect other pages.
func (r *Renderer) Generate(ctx context.Context, p *Page) error {
	start := time.Now()
	err := r.generate(ctx, p)
	elapsed := time.Since(start)

	r.recorder.ObserveRenderDuration(elapsed)
	r.recorder.IncPageRendered(metrics.ResultFor(err))
	if err != nil {
		r.logger.Error("Page render failed",
			logfields.ShortView(p.opts.View),
			logfields.Output(p.output),
			logfields.Error(err))
		if r.report != nil {
			r.report(err)
		}
		return err
	}
	r.logger.Debug("Page rendered",
		logfields.Output(p.output),
		logfields.RunCount(p.RunCount()),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}

func (r *Renderer) generate(ctx context.Context, p *Page) error {
	out, err := p.Render(ctx, r)
	if err != nil {
		return derrors.RenderFailed(p.opts.View, err).WithContext("output", p.output)
	}

	if isHTML(p.opts.Ext) {
		if r.cfg.Dev {
			out = injectLiveReload(out)
		} else {
			out = r.post.process(textutil.TrimLines(out))
		}
	}

	target := filepath.Join(r.cfg.BuildDir, filepath.FromSlash(p.output))
	if err := r.write(target, []byte(out)); err != nil {
		return derrors.RenderFailed(p.opts.View, err).WithContext("output", p.output)
	}

	if r.cfg.Dev && !strings.EqualFold(p.opts.Ext, "json") {
		sidecar, err := json.MarshalIndent(p.opts, "", "  ")
		if err != nil {
			return derrors.RenderFailed(p.opts.View, err).WithContext("output", p.output)
		}
		if err := r.write(strings.TrimSuffix(target, filepath.Ext(target))+".json", sidecar); err != nil {
			return derrors.RenderFailed(p.opts.View, err).WithContext("output", p.output)
		}
	}
	return nil
}

// execute compiles the view of opts and runs it with the page context.
func (r *Renderer) execute(ctx context.Context, opts page.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := r.source(opts)
	if err != nil {
		return "", err
	}
	return r.exec.Execute(src, r.context(opts))
}

func (r *Renderer) source(opts page.Options) (string, error) {
	if opts.IsInline() {
		return opts.View, nil
	}
	view := filepath.Join(r.cfg.PagesDir, filepath.FromSlash(opts.View))
	data, err := afero.ReadFile(r.fs, view)
	if errors.Is(err, fs.ErrNotExist) && r.cfg.TemplateExt != "" && !strings.HasSuffix(view, r.cfg.TemplateExt) {
		data, err = afero.ReadFile(r.fs, view+r.cfg.TemplateExt)
	}
	if err != nil {
		return "", fmt.Errorf("read view: %w", err)
	}
	return string(data), nil
}

// context builds the template context. Later entries win: base fields
// derived from the slug, then page fields, then extra data keys.
func (r *Renderer) context(opts page.Options) map[string]any {
	ctx := map[string]any{
		"title": textutil.TitleCase(opts.Slug),
		"path":  opts.Path,
		"slug":  opts.Slug,
	}
	ctx["view"] = opts.View
	ctx["model"] = opts.Model
	ctx["ext"] = opts.Ext
	ctx["dev"] = r.cfg.Dev
	ctx["config"] = r.cfg.Site
	if opts.Title != "" {
		ctx["title"] = opts.Title
	}
	for k, v := range opts.Data {
		ctx[k] = v
	}
	return ctx
}

func (r *Renderer) write(target string, data []byte) error {
	if err := r.fs.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	// Public site output; readable by others is intended.
	if err := afero.WriteFile(r.fs, target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func isHTML(ext string) bool {
	switch strings.ToLower(page.NormalizeExt(ext)) {
	case "html", "htm":
		return true
	default:
		return false
	}
}
