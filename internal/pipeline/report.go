package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/pagebuilder/internal/manifest"
	"git.home.luguber.info/inful/pagebuilder/internal/version"
)

// Manifest describes the current state of the session.
func (p *Pipeline) Manifest() *manifest.BuildManifest {
	m := manifest.New(version.Version)
	if raw, err := json.Marshal(p.cfg); err == nil {
		m.Inputs.ConfigHash = fmt.Sprintf("%x", sha256.Sum256(raw))
	}

	p.mu.Lock()
	for _, r := range p.results {
		if r.ID != "" {
			m.Inputs.Models = append(m.Inputs.Models, r.ID)
		}
	}
	p.mu.Unlock()

	for _, d := range p.stack.Snapshot() {
		opts := d.Page.Options()
		m.Pages = append(m.Pages, manifest.Page{
			View:     d.SourceView,
			Output:   d.OutputPath,
			Slug:     opts.Slug,
			Dynamic:  opts.Dynamic,
			RunCount: d.RunCount(),
		})
	}
	if m.Errors = len(p.Errors()); m.Errors > 0 {
		m.Status = "completed_with_errors"
	}
	return m
}

// WriteManifest writes the manifest to the build folder and returns its path.
func (p *Pipeline) WriteManifest() (string, error) {
	return p.Manifest().Write(p.fs, p.cfg.Folders.Build)
}
