// Package engine adapts pongo2 to the renderer. Views are compiled from source
// text; layouts and components are registered as named partials and are
// reachable from views through include and extends.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Engine compiles and executes pongo2 templates against a set of partials.
type Engine struct {
	mu     sync.RWMutex
	loader *partialLoader
	set    *pongo2.TemplateSet
}

// New constructs an engine with no partials registered.
func New() *Engine {
	loader := newPartialLoader()
	e := &Engine{
		loader: loader,
		set:    pongo2.NewSet("pagebuilder", loader),
	}
	registerDefaultFilters()
	return e
}

// RegisterPartial makes source available under name to include and extends.
// Registering a name again replaces the previous source.
func (e *Engine) RegisterPartial(name, source string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.loader.put(name, source)
}

// ResetPartials drops every registered partial. The template set is
// replaced too, so nothing parsed from the old partials is reused.
func (e *Engine) ResetPartials() {
	e.swap(newPartialLoader())
}

// swap installs loader together with a fresh template set. Renders in flight
// keep the set they started with.
func (e *Engine) swap(loader *partialLoader) {
	set := pongo2.NewSet("pagebuilder", loader)
	e.mu.Lock()
	e.loader, e.set = loader, set
	e.mu.Unlock()
}

// Partials returns the registered partial names.
func (e *Engine) Partials() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loader.names()
}

// Execute compiles source and renders it with data.
func (e *Engine) Execute(source string, data map[string]any) (string, error) {
	if e == nil {
		return "", errors.New("engine: engine is nil")
	}

	e.mu.RLock()
	set := e.set
	e.mu.RUnlock()
	if set == nil {
		return "", errors.New("engine: template set is nil")
	}

	tmpl, err := set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("engine: parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("engine: execute template: %w", err)
	}
	return buf.String(), nil
}

// partialLoader is a pongo2.TemplateLoader backed by registered sources.
// Names are forward slash relative paths without template suffix.
type partialLoader struct {
	mu      sync.RWMutex
	sources map[string]string
}

func newPartialLoader() *partialLoader {
	return &partialLoader{sources: make(map[string]string)}
}

func (l *partialLoader) Abs(_, name string) string {
	return path.Clean(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
}

func (l *partialLoader) Get(name string) (io.Reader, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src, ok := l.sources[l.Abs("", name)]
	if !ok {
		return nil, fmt.Errorf("partial %q is not registered", name)
	}
	return strings.NewReader(src), nil
}

func (l *partialLoader) put(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[l.Abs("", name)] = source
}

func (l *partialLoader) names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.sources))
	for name := range l.sources {
		out = append(out, name)
	}
	return out
}
