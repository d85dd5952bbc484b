// Package manifest records what a build produced. The manifest is written to
// the build root in verbose mode and is meant for debugging, not for
// incremental builds.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FileName is the manifest file written to the build root.
const FileName = "pagebuilder-manifest.json"

// BuildManifest represents a complete record of a build's inputs and outputs.
type BuildManifest struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Inputs    Inputs    `json:"inputs"`
	Pages     []Page    `json:"pages"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
	Errors    int       `json:"error_count"`
}

// Inputs captures the build inputs.
type Inputs struct {
	ConfigHash string   `json:"config_hash,omitempty"`
	Models     []string `json:"models,omitempty"`
}

// Page is one generated artifact.
type Page struct {
	View     string `json:"view"`
	Output   string `json:"output"`
	Slug     string `json:"slug"`
	Dynamic  bool   `json:"dynamic,omitempty"`
	RunCount int64  `json:"run_count"`
}

// New starts a manifest with a fresh build id.
func New(version string) *BuildManifest {
	return &BuildManifest{
		ID:        uuid.NewString(),
		Version:   version,
		Timestamp: time.Now().UTC(),
		Status:    "success",
	}
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Write stores the manifest as FileName under dir.
func (m *BuildManifest) Write(fs afero.Fs, dir string) (string, error) {
	data, err := m.ToJSON()
	if err != nil {
		return "", err
	}
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create manifest dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Hash computes a deterministic hash of the manifest's inputs and page set.
// Run counts, timing and the build id are excluded, so two builds of the
// same site hash equal.
func (m *BuildManifest) Hash() (string, error) {
	type hashPage struct {
		View   string `json:"view"`
		Output string `json:"output"`
	}
	pages := make([]hashPage, 0, len(m.Pages))
	for _, p := range m.Pages {
		pages = append(pages, hashPage{View: p.View, Output: p.Output})
	}
	hashInput := struct {
		Inputs Inputs     `json:"inputs"`
		Pages  []hashPage `json:"pages"`
	}{m.Inputs, pages}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
