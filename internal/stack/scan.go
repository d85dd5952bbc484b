package stack

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/util/sets"
)

// ScanController is the controller given to discovered pages.
const ScanController = "model-title"

// Scan finds templates under pagesDir that were not explicitly requested and
// returns a minimal request for each, sorted by view. A template a/b<ext> is
// paired with the model a/b.json when that file exists in modelsDir.
func Scan(afs afero.Fs, pagesDir, modelsDir, templateExt string, requested sets.Set[string]) ([]page.Request, error) {
	if ok, err := afero.DirExists(afs, pagesDir); err != nil || !ok {
		return nil, err
	}
	matcher, err := glob.Compile("**"+templateExt, '/')
	if err != nil {
		return nil, fmt.Errorf("compile scan pattern: %w", err)
	}

	var views []string
	err = afero.Walk(afs, pagesDir, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if p != pagesDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(pagesDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matcher.Match(rel) && !requested.Has(rel) {
			views = append(views, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pagesDir, err)
	}
	sort.Strings(views)

	reqs := make([]page.Request, 0, len(views))
	for _, view := range views {
		req := page.Request{View: view, Controller: page.ControllerRef{Name: ScanController}}
		modelName := strings.TrimSuffix(view, templateExt) + ".json"
		if ok, _ := afero.Exists(afs, filepath.Join(modelsDir, filepath.FromSlash(modelName))); ok {
			req.Model = modelName
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
