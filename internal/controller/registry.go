// Package controller applies option transforms to pages before they are
// registered for rendering.
//
// Controllers are registered ahead of time in a Registry. A page either names
// one, carries an inline transform, or neither, in which case a controller
// named after the view (without template suffix) is used when registered.
package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Built-in controller names.
const (
	ModelTitle = "model-title"
	ModelSlug  = "model-slug"
)

// Registry holds named transforms.
type Registry struct {
	mu         sync.RWMutex
	transforms map[string]page.Transform
}

// NewRegistry returns a registry with the built-in controllers.
func NewRegistry() *Registry {
	r := &Registry{transforms: make(map[string]page.Transform)}
	r.Register(ModelTitle, modelTitle)
	r.Register(ModelSlug, modelSlug)
	return r
}

// Register adds or replaces a named transform.
func (r *Registry) Register(name string, fn page.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = fn
}

// Lookup returns the transform registered under name.
func (r *Registry) Lookup(name string) (page.Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

// Names lists registered controllers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// modelTitle copies the model's title onto the page.
func modelTitle(_ context.Context, opts page.Options) (page.Patch, error) {
	title, ok := opts.ModelTitle()
	if !ok {
		return nil, nil
	}
	return page.Patch{"title": title}, nil
}

// modelSlug derives the slug from the model's slug field, then its title.
func modelSlug(_ context.Context, opts page.Options) (page.Patch, error) {
	m, ok := opts.Model.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("model is %T, want object", opts.Model)
	}
	for _, key := range []string{"slug", "title"} {
		if s, ok := m[key].(string); ok && s != "" {
			return page.Patch{"slug": s}, nil
		}
	}
	return nil, nil
}
