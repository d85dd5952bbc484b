package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

var defaults = page.Defaults{TemplateExt: ".tpl"}

type collector struct{ errs []error }

func (c *collector) report(err error) { c.errs = append(c.errs, err) }

func newApplier(reg *Registry) (*Applier, *collector) {
	c := &collector{}
	return NewApplier(reg, ".tpl", c.report, nil), c
}

func TestApply_NamedThenInline(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stamp", func(_ context.Context, o page.Options) (page.Patch, error) {
		return page.Patch{"stamp": "named", "title": "Named"}, nil
	})
	a, c := newApplier(reg)

	opts := page.New(page.Request{
		View: "about.tpl",
		Controller: page.ControllerRef{
			Name: "stamp",
			Func: func(_ context.Context, o page.Options) (page.Patch, error) {
				// Sees the named controller's output.
				return page.Patch{"stamp": o.Data["stamp"].(string) + "+inline"}, nil
			},
		},
	}, defaults)

	out := a.Apply(context.Background(), opts)
	assert.Equal(t, "named+inline", out.Data["stamp"])
	assert.Equal(t, "Named", out.Title)
	assert.Empty(t, c.errs)
}

func TestApply_AutoDiscoversByViewName(t *testing.T) {
	reg := NewRegistry()
	reg.Register("about", func(context.Context, page.Options) (page.Patch, error) {
		return page.Patch{"title": "Discovered"}, nil
	})
	reg.Register("blog/post", func(context.Context, page.Options) (page.Patch, error) {
		return page.Patch{"kind": "post"}, nil
	})
	a, _ := newApplier(reg)

	out := a.Apply(context.Background(), page.New(page.Request{View: "about.tpl"}, defaults))
	assert.Equal(t, "Discovered", out.Title)

	out = a.Apply(context.Background(), page.New(page.Request{View: "blog/post.tpl"}, defaults))
	assert.Equal(t, "post", out.Data["kind"])

	// An explicit controller disables discovery.
	out = a.Apply(context.Background(), page.New(page.Request{
		View:       "about.tpl",
		Controller: page.ControllerRef{Name: ModelSlug},
	}, defaults))
	assert.Empty(t, out.Title)
}

func TestApply_FailuresKeepPreviousOptions(t *testing.T) {
	tests := []struct {
		name string
		fn   page.Transform
	}{
		{"error", func(context.Context, page.Options) (page.Patch, error) {
			return page.Patch{"title": "ignored"}, errors.New("boom")
		}},
		{"panic", func(context.Context, page.Options) (page.Patch, error) {
			panic("controller exploded")
		}},
		{"mutating panic", func(_ context.Context, o page.Options) (page.Patch, error) {
			o.Data["leak"] = true
			panic("after mutation")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, c := newApplier(nil)
			opts := page.New(page.Request{
				View:       "about.tpl",
				Title:      "Original",
				Data:       map[string]any{"keep": 1},
				Controller: page.ControllerRef{Func: tt.fn},
			}, defaults)

			var out page.Options
			require.NotPanics(t, func() { out = a.Apply(context.Background(), opts) })

			assert.Equal(t, "Original", out.Title)
			assert.Equal(t, map[string]any{"keep": 1}, out.Data)
			require.Len(t, c.errs, 1)
			assert.True(t, derrors.IsCategory(c.errs[0], derrors.CategoryController))
		})
	}
}

func TestApply_UnknownNameIsIgnored(t *testing.T) {
	a, c := newApplier(nil)
	opts := page.New(page.Request{View: "x.tpl", Controller: page.ControllerRef{Name: "nope"}}, defaults)
	out := a.Apply(context.Background(), opts)
	assert.Equal(t, opts.Slug, out.Slug)
	assert.Empty(t, c.errs)
}

func TestApply_CopiesModelTitle(t *testing.T) {
	a, _ := newApplier(nil)
	opts := page.New(page.Request{View: "x.tpl"}, defaults).WithModel(map[string]any{"title": "From Model"})
	assert.Equal(t, "From Model", a.Apply(context.Background(), opts).Title)

	opts = page.New(page.Request{View: "x.tpl", Title: "Mine"}, defaults).WithModel(map[string]any{"title": "From Model"})
	assert.Equal(t, "Mine", a.Apply(context.Background(), opts).Title)
}

func TestBuiltins(t *testing.T) {
	a, c := newApplier(nil)
	opts := page.New(page.Request{
		View:       "posts/post.tpl",
		Controller: page.ControllerRef{Name: ModelSlug},
	}, defaults).WithModel(map[string]any{"title": "Hello World"})

	out := a.Apply(context.Background(), opts)
	assert.Equal(t, "hello-world", out.Slug)

	_ = a.Apply(context.Background(), opts.WithModel([]any{1}))
	require.Len(t, c.errs, 1)

	assert.Equal(t, []string{ModelSlug, ModelTitle}, NewRegistry().Names())
}
