package render

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/render/engine"
)

var defaults = page.Defaults{TemplateExt: ".tpl"}

func newRenderer(t *testing.T, dev bool, files map[string]string) (*Renderer, afero.Fs, *[]error) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	var reported []error
	r := New(fs, engine.New(), Config{
		PagesDir:    "src/pages",
		BuildDir:    "public",
		TemplateExt: ".tpl",
		Dev:         dev,
		Site:        map[string]any{"name": "Demo"},
	}, WithReporter(func(err error) { reported = append(reported, err) }))
	return r, fs, &reported
}

func read(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name string
		req  page.Request
		d    page.Defaults
		want string
	}{
		{"plain", page.Request{View: "about.tpl"}, defaults, "about.html"},
		{"nested", page.Request{View: "blog/post.tpl", Ext: "xml"}, defaults, "blog/post.xml"},
		{"extension-less", page.Request{View: "about.tpl", Path: "about-us"}, page.Defaults{TemplateExt: ".tpl", ExtensionLess: true}, "about-us/about/index.html"},
		{"extension-less index", page.Request{View: "index.tpl", Path: "about-us"}, page.Defaults{TemplateExt: ".tpl", ExtensionLess: true}, "about-us/index.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(page.New(tt.req, tt.d)))
		})
	}
}

func TestGenerate_InlineView(t *testing.T) {
	r, fs, reported := newRenderer(t, false, nil)
	opts := page.New(page.Request{View: "Hello {{model.name}}", Ext: "txt"}, defaults).
		WithModel(map[string]any{"name": "world"})
	p := NewPage(opts)

	require.NoError(t, r.Generate(context.Background(), p))
	assert.Contains(t, read(t, fs, "public/index.txt"), "Hello world")
	assert.Equal(t, int64(1), p.RunCount())
	assert.Empty(t, *reported)
}

func TestGenerate_FileViewContext(t *testing.T) {
	r, fs, _ := newRenderer(t, false, map[string]string{
		"src/pages/blog/about-us.tpl": "{{ title }}|{{ path }}|{{ slug }}|{{ config.name }}|{{ extra }}",
	})
	opts := page.New(page.Request{View: "blog/about-us.tpl", Ext: "txt", Data: map[string]any{"extra": "x"}}, defaults)

	require.NoError(t, r.Generate(context.Background(), NewPage(opts)))
	assert.Equal(t, "About-us|blog|about-us|Demo|x", read(t, fs, "public/blog/about-us.txt"))

	// Explicit title wins over the slug derived one.
	opts.Title = "About"
	require.NoError(t, r.Generate(context.Background(), NewPage(opts)))
	assert.Equal(t, "About|blog|about-us|Demo|x", read(t, fs, "public/blog/about-us.txt"))
}

func TestGenerate_ViewWithoutSuffix(t *testing.T) {
	r, fs, _ := newRenderer(t, false, map[string]string{"src/pages/about.tpl": "about"})
	opts := page.New(page.Request{View: "about", Ext: "txt"}, defaults)
	require.NoError(t, r.Generate(context.Background(), NewPage(opts)))
	assert.Equal(t, "about", read(t, fs, "public/about.txt"))
}

func TestGenerate_ProductionPostProcessing(t *testing.T) {
	src := "<html>\n   <head>\n<!-- drop me -->\n<style>\n body {  color : red ; }\n</style>\n" +
		"<script>\n var answer = 40 + 2 ;\n</script>\n</head>\n  <body>  <p>Hi</p>  </body>\n</html>"
	r, fs, _ := newRenderer(t, false, map[string]string{"src/pages/index.tpl": src})

	require.NoError(t, r.Generate(context.Background(), NewPage(page.New(page.Request{View: "index.tpl"}, defaults))))
	out := read(t, fs, "public/index.html")

	assert.NotContains(t, out, "drop me")
	assert.Contains(t, out, "body{color:red}")
	assert.NotContains(t, out, "40 + 2")
	assert.Contains(t, out, "<body>  <p>Hi</p>  </body>")
	assert.NotContains(t, out, "livereload")

	exists, err := afero.Exists(fs, "public/index.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerate_DevInjectsLiveReloadAndSidecar(t *testing.T) {
	r, fs, _ := newRenderer(t, true, map[string]string{
		"src/pages/index.tpl": "<html><body><!-- keep --></body></html>",
	})
	opts := page.New(page.Request{View: "index.tpl", Title: "Home"}, defaults)

	require.NoError(t, r.Generate(context.Background(), NewPage(opts)))
	out := read(t, fs, "public/index.html")
	assert.Contains(t, out, `<script src="/livereload.js"></script>`+"\n</body>")
	assert.Contains(t, out, "<!-- keep -->")

	var sidecar map[string]any
	require.NoError(t, json.Unmarshal([]byte(read(t, fs, "public/index.json")), &sidecar))
	assert.Equal(t, "Home", sidecar["title"])
	assert.Equal(t, "index.tpl", sidecar["view"])
}

func TestGenerate_Failure(t *testing.T) {
	r, fs, reported := newRenderer(t, false, nil)
	p := NewPage(page.New(page.Request{View: "missing.tpl"}, defaults))

	err := r.Generate(context.Background(), p)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryRender))
	require.Len(t, *reported, 1)
	assert.Equal(t, int64(1), p.RunCount())

	exists, _ := afero.Exists(fs, "public/missing.html")
	assert.False(t, exists)
}

func TestGenerate_Canceled(t *testing.T) {
	r, _, _ := newRenderer(t, false, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Generate(ctx, NewPage(page.New(page.Request{View: "x {{ a }}"}, defaults)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestInjectLiveReload(t *testing.T) {
	assert.Equal(t, "<p>x</p>\n"+liveReloadTag+"\n", injectLiveReload("<p>x</p>"))
	already := `<body><script src="/livereload.js"></script></body>`
	assert.Equal(t, already, injectLiveReload(already))
	assert.Equal(t, "<BODY>"+liveReloadTag+"\n</BODY>", injectLiveReload("<BODY></BODY>"))
}

func TestPostProcess_LeavesDataScripts(t *testing.T) {
	doc := `<script type="application/ld+json">{ "a" : 1 }</script>`
	assert.Equal(t, doc, newPostProcessor().process(doc))
}
