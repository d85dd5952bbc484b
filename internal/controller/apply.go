package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/util/textutil"
)

const inlineName = "inline"

// Applier runs a page's controllers and merges their patches.
type Applier struct {
	registry    *Registry
	templateExt string
	report      func(error)
	logger      *slog.Logger
}

// NewApplier creates an applier. report receives every controller failure;
// it may be nil.
func NewApplier(reg *Registry, templateExt string, report func(error), logger *slog.Logger) *Applier {
	if reg == nil {
		reg = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{registry: reg, templateExt: templateExt, report: report, logger: logger}
}

// Apply returns opts with every applicable controller patch merged in order:
// the named controller, the inline transform, then (only when the page names
// none) a controller auto-discovered by view name. A failing controller is
// reported and leaves the options as they were before it ran. Finally the
// model title is copied when the page has no title.
func (a *Applier) Apply(ctx context.Context, opts page.Options) page.Options {
	ref := opts.Controller

	if ref.Name != "" {
		if fn, ok := a.registry.Lookup(ref.Name); ok {
			opts = a.run(ctx, opts, ref.Name, fn)
		} else {
			a.logger.Warn("Unknown controller", logfields.Controller(ref.Name), logfields.ShortView(opts.View))
		}
	}
	if ref.Func != nil {
		opts = a.run(ctx, opts, inlineName, ref.Func)
	}
	if ref.IsZero() {
		if name, fn, ok := a.discover(opts); ok {
			opts = a.run(ctx, opts, name, fn)
		}
	}

	if opts.Title == "" {
		if title, ok := opts.ModelTitle(); ok {
			opts = opts.Merge(page.Patch{"title": title})
		}
	}
	return opts
}

// discover finds a controller registered under the view path or basename
// without template suffix.
func (a *Applier) discover(opts page.Options) (string, page.Transform, bool) {
	if opts.IsInline() {
		return "", nil, false
	}
	view := strings.ReplaceAll(opts.View, "\\", "/")
	for _, name := range []string{textutil.StripExt(view, a.templateExt), textutil.BaseName(view, a.templateExt)} {
		if fn, ok := a.registry.Lookup(name); ok {
			return name, fn, true
		}
	}
	return "", nil, false
}

func (a *Applier) run(ctx context.Context, opts page.Options, name string, fn page.Transform) (out page.Options) {
	defer func() {
		if r := recover(); r != nil {
			a.fail(opts, name, fmt.Errorf("panic: %v", r))
			out = opts
		}
	}()

	patch, err := fn(ctx, opts.Clone())
	if err != nil {
		a.fail(opts, name, err)
		return opts
	}
	return opts.Merge(patch)
}

func (a *Applier) fail(opts page.Options, name string, cause error) {
	err := derrors.ControllerFailed(opts.View, name, cause)
	a.logger.Warn("Controller failed", logfields.Controller(name), logfields.ShortView(opts.View), logfields.Error(cause))
	if a.report != nil {
		a.report(err)
	}
}
