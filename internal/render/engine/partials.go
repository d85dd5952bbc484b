package engine

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// RegisterPartials registers every template under dir whose name ends in ext.
// A partial is named by its slash separated path relative to dir, once with
// and once without ext, so both {% include "nav" %} and
// {% include "nav.tpl" %} resolve. A missing dir registers nothing.
func (e *Engine) RegisterPartials(afs afero.Fs, dir, ext string) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return loadPartials(afs, dir, ext, e.loader)
}

// ReplacePartials loads every partial from dirs, in order, into a new set and
// installs it once loading is done. Later dirs win on a name clash. On error
// the current partials stay in place.
func (e *Engine) ReplacePartials(afs afero.Fs, ext string, dirs ...string) (int, error) {
	loader := newPartialLoader()
	total := 0
	for _, dir := range dirs {
		n, err := loadPartials(afs, dir, ext, loader)
		if err != nil {
			return total, fmt.Errorf("%s: %w", dir, err)
		}
		total += n
	}
	e.swap(loader)
	return total, nil
}

func loadPartials(afs afero.Fs, dir, ext string, into *partialLoader) (int, error) {
	if ok, err := afero.DirExists(afs, dir); err != nil || !ok {
		return 0, err
	}

	matcher, err := glob.Compile("**"+ext, '/')
	if err != nil {
		return 0, fmt.Errorf("compile partial pattern: %w", err)
	}

	count := 0
	err = afero.Walk(afs, dir, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matcher.Match(rel) {
			return nil
		}
		src, err := afero.ReadFile(afs, p)
		if err != nil {
			return fmt.Errorf("read partial %s: %w", p, err)
		}
		into.put(rel, string(src))
		into.put(strings.TrimSuffix(rel, ext), string(src))
		count++
		return nil
	})
	return count, err
}
