package render

import (
	"context"
	"path"
	"sync/atomic"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Page is a finalized page ready to be rendered.
type Page struct {
	opts   page.Options
	output string
	runs   atomic.Int64
}

// NewPage fixes the options and output path of a page.
func NewPage(opts page.Options) *Page {
	return &Page{opts: opts.Clone(), output: OutputPath(opts)}
}

// OutputPath returns the slash separated output path relative to the build
// folder: path/slug.ext, or path/slug/index.ext for extension-less pages
// whose slug is not index.
func OutputPath(opts page.Options) string {
	ext := page.NormalizeExt(opts.Ext)
	if opts.ExtensionLess && opts.Slug != page.DefaultSlug {
		return path.Join(opts.Path, opts.Slug, "index."+ext)
	}
	return path.Join(opts.Path, opts.Slug+"."+ext)
}

// Options returns a copy of the page options.
func (p *Page) Options() page.Options { return p.opts.Clone() }

// OutputPath returns the output path relative to the build folder.
func (p *Page) OutputPath() string { return p.output }

// RunCount is the number of times Render was invoked.
func (p *Page) RunCount() int64 { return p.runs.Load() }

// Render executes the page view and returns the output before
// post-processing. Every call counts as a run, including failed ones.
func (p *Page) Render(ctx context.Context, r *Renderer) (string, error) {
	p.runs.Add(1)
	return r.execute(ctx, p.opts)
}
