package expand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

var defaults = page.Defaults{TemplateExt: ".tpl"}

func TestExpand_Single(t *testing.T) {
	opts := page.New(page.Request{View: "about.tpl"}, defaults)
	calls := 0
	out, err := Expand(context.Background(), opts, map[string]any{"a": 1}, func(_ context.Context, o page.Options) page.Options {
		calls++
		return o
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]any{"a": 1}, out[0].Model)
	assert.Equal(t, "about", out[0].Slug)
}

func TestExpand_DynamicArray(t *testing.T) {
	opts := page.New(page.Request{View: "posts/post.tpl", Dynamic: true}, defaults)
	data := []any{
		map[string]any{"n": 1},
		map[string]any{"n": 2},
		map[string]any{"n": 3},
	}
	calls := 0
	out, err := Expand(context.Background(), opts, data, func(_ context.Context, o page.Options) page.Options {
		calls++
		return o
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 3, calls)
	for i, o := range out {
		assert.Equal(t, []string{"post-1", "post-2", "post-3"}[i], o.Slug)
		assert.Equal(t, data[i], o.Model)
		assert.Equal(t, "posts", o.Path)
	}
}

func TestExpand_DynamicUsesExplicitSlug(t *testing.T) {
	opts := page.New(page.Request{View: "posts/post.tpl", Slug: "entry", Dynamic: true}, defaults)
	out, err := Expand(context.Background(), opts, []string{"a", "b"}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "entry-2", out[1].Slug)
	assert.Equal(t, "b", out[1].Model)
}

func TestExpand_DynamicNonArray(t *testing.T) {
	opts := page.New(page.Request{View: "posts/post.tpl", Dynamic: true}, defaults)
	for _, data := range []any{map[string]any{"a": 1}, nil, "text"} {
		out, err := Expand(context.Background(), opts, data, nil)
		require.Error(t, err)
		assert.Empty(t, out)
		assert.True(t, derrors.IsCategory(err, derrors.CategoryDynamicModel))
	}
}

func TestExpand_DynamicEmptyArray(t *testing.T) {
	opts := page.New(page.Request{View: "posts/post.tpl", Dynamic: true}, defaults)
	out, err := Expand(context.Background(), opts, []any{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
