// Package watch maps source changes to the pages that must be rebuilt and
// wraps fsnotify to deliver those changes.
package watch

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/stack"
)

// Plan is the rebuild decision for one change. Full means partials are
// registered again and every descriptor is rendered in order.
type Plan struct {
	Targets []*stack.Descriptor
	Full    bool
}

// Map selects the descriptors whose view is the changed file. A change that
// matches nothing, including one outside pagesRoot, yields a full rebuild.
func Map(changedPath, pagesRoot string, snapshot []*stack.Descriptor) Plan {
	rel, ok := relativeTo(pagesRoot, changedPath)
	if !ok {
		return Plan{Full: true}
	}
	var targets []*stack.Descriptor
	for _, d := range snapshot {
		if filepath.ToSlash(d.SourceView) == rel {
			targets = append(targets, d)
		}
	}
	if len(targets) == 0 {
		return Plan{Full: true}
	}
	return Plan{Targets: targets}
}

// Kind classifies a changed path by source folder.
type Kind string

const (
	KindAsset   Kind = "asset"
	KindPage    Kind = "page"
	KindPartial Kind = "partial"
	KindModel   Kind = "model"
	KindOther   Kind = "other"
)

// Classify reports which source folder a changed path belongs to.
func Classify(changedPath string, folders config.Folders) Kind {
	switch {
	case within(folders.Assets, changedPath):
		return KindAsset
	case within(folders.Pages, changedPath):
		return KindPage
	case within(folders.Layouts, changedPath), within(folders.Components, changedPath):
		return KindPartial
	case within(folders.Models, changedPath):
		return KindModel
	default:
		return KindOther
	}
}

func within(root, p string) bool {
	if root == "" {
		return false
	}
	_, ok := relativeTo(root, p)
	return ok
}

// relativeTo returns p relative to root with forward slashes, and false when
// p is not inside root.
func relativeTo(root, p string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
