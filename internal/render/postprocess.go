package render

import (
	"bytes"
	"io"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
	"golang.org/x/net/html"
)

const (
	mediaCSS = "text/css"
	mediaJS  = "application/javascript"
)

// postProcessor strips HTML comments and minifies embedded style and script
// blocks. Markup outside those blocks is copied byte for byte.
type postProcessor struct {
	m *minify.M
}

func newPostProcessor() *postProcessor {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.AddFunc(mediaJS, js.Minify)
	return &postProcessor{m: m}
}

func (p *postProcessor) process(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var out bytes.Buffer
	out.Grow(len(doc))

	media := ""
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return out.String()
			}
			// Malformed input; keep what could not be tokenized.
			return doc
		}
		// Raw is only valid until the next call on z.
		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.CommentToken:
			continue
		case html.StartTagToken:
			media = embeddedMedia(z)
		case html.EndTagToken, html.SelfClosingTagToken:
			media = ""
		case html.TextToken:
			if media != "" {
				if minified, err := p.m.Bytes(media, raw); err == nil {
					raw = minified
				}
			}
		}
		out.Write(raw)
	}
}

// embeddedMedia returns the media type of a style or script element whose
// body should be minified, or "" for any other tag.
func embeddedMedia(z *html.Tokenizer) string {
	name, hasAttr := z.TagName()
	switch string(name) {
	case "style":
		return mediaCSS
	case "script":
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) != "type" {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(string(val))) {
			case "", "text/javascript", "application/javascript", "module":
			default:
				return ""
			}
		}
		return mediaJS
	default:
		return ""
	}
}

const liveReloadTag = `<script src="/livereload.js"></script>`

// injectLiveReload adds the live reload client before the closing body tag,
// or appends it when there is none. Documents that already load it are
// returned unchanged.
func injectLiveReload(doc string) string {
	if strings.Contains(doc, "/livereload.js") {
		return doc
	}
	idx := strings.LastIndex(strings.ToLower(doc), "</body>")
	if idx == -1 {
		return doc + "\n" + liveReloadTag + "\n"
	}
	return doc[:idx] + liveReloadTag + "\n" + doc[idx:]
}
