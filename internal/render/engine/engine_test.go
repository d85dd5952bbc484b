package engine

import (
	"sort"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Inline(t *testing.T) {
	e := New()
	out, err := e.Execute("Hello {{ model.name }}", map[string]any{"model": map[string]any{"name": "world"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestExecute_ParseError(t *testing.T) {
	_, err := New().Execute("{% if %}", nil)
	require.Error(t, err)
}

func TestExecute_IncludeAndExtends(t *testing.T) {
	e := New()
	e.RegisterPartial("components/nav", `<nav>{{ title }}</nav>`)
	e.RegisterPartial("layouts/base", `<body>{% block content %}{% endblock %}</body>`)

	out, err := e.Execute(`{% extends "layouts/base" %}{% block content %}{% include "components/nav" %}{% endblock %}`,
		map[string]any{"title": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "<body><nav>Home</nav></body>", out)
}

func TestExecute_MissingPartial(t *testing.T) {
	_, err := New().Execute(`{% include "nope" %}`, nil)
	require.Error(t, err)
}

func TestRegisterPartials(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/components/nav.tpl", []byte("nav"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/components/forms/input.tpl", []byte("input"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/components/readme.md", []byte("skip"), 0o644))

	e := New()
	n, err := e.RegisterPartials(fs, "src/components", ".tpl")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names := e.Partials()
	sort.Strings(names)
	assert.Equal(t, []string{"forms/input", "forms/input.tpl", "nav", "nav.tpl"}, names)

	out, err := e.Execute(`{% include "forms/input" %}|{% include "nav.tpl" %}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "input|nav", out)

	n, err = e.RegisterPartials(fs, "src/missing", ".tpl")
	require.NoError(t, err)
	assert.Zero(t, n)

	e.ResetPartials()
	assert.Empty(t, e.Partials())
}

func TestReplacePartials_LaterDirsWin(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/components/nav.tpl", []byte("component"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/layouts/nav.tpl", []byte("layout"), 0o644))

	e := New()
	e.RegisterPartial("stale", "old")
	n, err := e.ReplacePartials(fs, ".tpl", "src/components", "src/layouts")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out, err := e.Execute(`{% include "nav" %}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "layout", out)
	assert.NotContains(t, e.Partials(), "stale")
}

func TestReplacePartials_ConcurrentRendersSeePartials(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/components/nav.tpl", []byte("nav"), 0o644))

	e := New()
	_, err := e.ReplacePartials(fs, ".tpl", "src/components")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			_, _ = e.ReplacePartials(fs, ".tpl", "src/components")
		}
	}()

	for range 50 {
		out, err := e.Execute(`{% include "nav" %}`, nil)
		require.NoError(t, err)
		require.Equal(t, "nav", out)
	}
	wg.Wait()
}

func TestFilters(t *testing.T) {
	e := New()
	data := map[string]any{
		"body": "# Title\n\n*hi* <script>alert(1)</script>",
		"name": "Hello World",
		"obj":  map[string]any{"a": 1},
	}

	out, err := e.Execute(`{{ body|markdown }}`, data)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>hi</em>")
	assert.NotContains(t, out, "<script>")

	out, err = e.Execute(`{{ name|slugify }} {{ "about us"|titlecase }}`, data)
	require.NoError(t, err)
	assert.Equal(t, "hello-world About Us", out)

	out, err = e.Execute(`{% autoescape off %}{{ obj|stringify }}{% endautoescape %}`, data)
	require.NoError(t, err)
	assert.Equal(t, "{\n   \"a\": 1\n}", out)
}
