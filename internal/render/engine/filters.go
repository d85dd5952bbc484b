package engine

import (
	"bytes"
	"encoding/json"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/pagebuilder/internal/util/textutil"
)

var (
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
)

// Filters are process global in pongo2; register each name once.
func registerDefaultFilters() {
	filters := map[string]pongo2.FilterFunction{
		"markdown":  filterMarkdown,
		"stringify": filterStringify,
		"slugify":   filterSlugify,
		"titlecase": filterTitleCase,
	}
	for name, fn := range filters {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

// filterMarkdown converts markdown to sanitized HTML.
func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(in.String()), &buf); err != nil {
		return nil, &pongo2.Error{Sender: "filter:markdown", OrigError: err}
	}
	return pongo2.AsSafeValue(sanitizer.Sanitize(buf.String())), nil
}

func filterStringify(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	data, err := json.MarshalIndent(in.Interface(), "", "   ")
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:stringify", OrigError: err}
	}
	return pongo2.AsValue(string(data)), nil
}

func filterSlugify(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(textutil.Slugify(in.String())), nil
}

func filterTitleCase(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(textutil.TitleCase(in.String())), nil
}
