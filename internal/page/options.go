// Package page defines the page request accepted by the pipeline and the
// immutable option record that flows between pipeline stages.
//
// Field precedence, lowest to highest:
//
//  1. render base context: title (from slug), path, slug
//  2. request fields (view, path, slug, ext, title, data)
//  3. resolved model, stored as Model
//  4. controller patches, applied in order (named, inline, auto-discovered)
//  5. model title, copied only when Title is still empty
//
// Every stage returns a new Options value; Data is copied on write.
package page

import (
	"context"
	"maps"
	"path"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/util/textutil"
)

// DefaultExt is the output suffix used when a request names none.
const DefaultExt = "html"

// DefaultSlug is the slug given to inline views that carry no explicit slug.
const DefaultSlug = "index"

// Patch is the partial option bag a controller returns. Well-known keys
// (title, slug, path, ext, model) update the matching Options field, every
// other key lands in Options.Data.
type Patch map[string]any

// Transform derives a Patch from the options of a page. Returning an error
// leaves the options untouched.
type Transform func(ctx context.Context, opts Options) (Patch, error)

// ControllerRef names a registered controller, carries an inline transform, or
// both. The zero value asks for auto-discovery by view name.
type ControllerRef struct {
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
	Func Transform `json:"-" yaml:"-"`
}

// IsZero reports whether neither a name nor an inline transform is set.
func (c ControllerRef) IsZero() bool {
	return c.Name == "" && c.Func == nil
}

// Request is a caller supplied page request. Model is a model specifier:
// nil, inline data, a "*.json" file name, a models directory name or a URL.
type Request struct {
	View          string
	Model         any
	Controller    ControllerRef
	Path          string
	Slug          string
	Ext           string
	Title         string
	Dynamic       bool
	ExtensionLess *bool
	Data          map[string]any
}

// Defaults carries the site wide settings a request falls back to.
type Defaults struct {
	TemplateExt   string
	ExtensionLess bool
}

// Options is the finalized option bag of one page.
type Options struct {
	View          string         `json:"view"`
	Source        string         `json:"source,omitempty"`
	Model         any            `json:"model,omitempty"`
	Controller    ControllerRef  `json:"controller,omitzero"`
	Path          string         `json:"path"`
	Slug          string         `json:"slug"`
	Ext           string         `json:"ext"`
	Title         string         `json:"title,omitempty"`
	Dynamic       bool           `json:"dynamic,omitempty"`
	ExtensionLess bool           `json:"extensionLess,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// New builds the initial options of a request. The model is left empty; it is
// filled in by the expander once the specifier has been resolved.
func New(req Request, d Defaults) Options {
	opts := Options{
		View:          req.View,
		Controller:    req.Controller,
		Path:          textutil.SanitizePath(req.Path),
		Slug:          textutil.Slugify(req.Slug),
		Ext:           NormalizeExt(req.Ext),
		Title:         req.Title,
		Dynamic:       req.Dynamic,
		ExtensionLess: d.ExtensionLess,
		Data:          maps.Clone(req.Data),
	}
	if req.ExtensionLess != nil {
		opts.ExtensionLess = *req.ExtensionLess
	}

	inline := textutil.IsInlineTemplate(req.View)
	if !inline {
		opts.Source = CanonicalView(req.View, d.TemplateExt)
	}
	if opts.Slug == "" {
		if inline {
			opts.Slug = DefaultSlug
		} else {
			opts.Slug = textutil.Slugify(textutil.BaseName(opts.Source, d.TemplateExt))
		}
	}
	if opts.Path == "" && !inline {
		if i := strings.LastIndex(opts.Source, "/"); i > 0 {
			opts.Path = textutil.SanitizePath(opts.Source[:i])
		}
	}
	return opts
}

// CanonicalView returns a file view as a clean slash separated path relative
// to the pages folder that always ends in templateExt, e.g. "./blog/post"
// becomes "blog/post.tpl".
func CanonicalView(view, templateExt string) string {
	v := strings.TrimSpace(strings.ReplaceAll(view, "\\", "/"))
	if v == "" {
		return ""
	}
	v = strings.TrimPrefix(path.Clean("/"+v), "/")
	if templateExt != "" && !strings.HasSuffix(v, templateExt) {
		v += templateExt
	}
	return v
}

// SourceView is the template file a page renders from: Source when set,
// otherwise View.
func (o Options) SourceView() string {
	if o.Source != "" {
		return o.Source
	}
	return o.View
}

// NormalizeExt strips a leading dot and falls back to DefaultExt.
func NormalizeExt(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return DefaultExt
	}
	return ext
}

// Clone returns a copy whose Data map can be modified independently.
func (o Options) Clone() Options {
	o.Data = maps.Clone(o.Data)
	return o
}

// WithModel returns a copy carrying model as its resolved data.
func (o Options) WithModel(model any) Options {
	out := o.Clone()
	out.Model = model
	return out
}

// WithSlug returns a copy with a new slug.
func (o Options) WithSlug(slug string) Options {
	out := o.Clone()
	out.Slug = textutil.Slugify(slug)
	return out
}

// Merge shallow-merges p over o; keys in p win. Values of the wrong type for a
// well-known key are ignored.
func (o Options) Merge(p Patch) Options {
	out := o.Clone()
	for key, value := range p {
		switch key {
		case "title":
			if s, ok := value.(string); ok {
				out.Title = s
			}
		case "slug":
			if s, ok := value.(string); ok && s != "" {
				out.Slug = textutil.Slugify(s)
			}
		case "path":
			if s, ok := value.(string); ok {
				out.Path = textutil.SanitizePath(s)
			}
		case "ext":
			if s, ok := value.(string); ok {
				out.Ext = NormalizeExt(s)
			}
		case "model":
			out.Model = value
		default:
			if out.Data == nil {
				out.Data = make(map[string]any, len(p))
			}
			out.Data[key] = value
		}
	}
	return out
}

// ModelTitle returns the "title" field of a map model.
func (o Options) ModelTitle() (string, bool) {
	m, ok := o.Model.(map[string]any)
	if !ok {
		return "", false
	}
	title, ok := m["title"].(string)
	return title, ok && title != ""
}

// IsInline reports whether View holds template text.
func (o Options) IsInline() bool {
	return textutil.IsInlineTemplate(o.View)
}
