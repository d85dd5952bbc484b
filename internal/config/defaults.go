package config

import (
	"path/filepath"
	"strings"
	"time"
)

// DefaultTemplateExt is the suffix of page, layout and component templates.
const DefaultTemplateExt = ".tpl"

const (
	defaultSrc          = "./src"
	defaultBuild        = "./public"
	defaultModelTimeout = 10 * time.Second
	defaultModelBytes   = 10 * 1024 * 1024
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// FolderDefaultApplier derives every source folder from src unless set explicitly.
type FolderDefaultApplier struct{}

func (FolderDefaultApplier) Domain() string { return "folders" }

func (FolderDefaultApplier) ApplyDefaults(cfg *Config) error {
	f := &cfg.Folders
	if f.Src == "" {
		f.Src = defaultSrc
	}
	derive := func(dst *string, name string) {
		if *dst == "" {
			*dst = filepath.Join(f.Src, name)
		}
	}
	derive(&f.Assets, "assets")
	derive(&f.Layouts, "layouts")
	derive(&f.Pages, "pages")
	derive(&f.Components, "components")
	derive(&f.Models, "models")
	if f.Build == "" {
		f.Build = defaultBuild
	}
	for _, p := range []*string{&f.Src, &f.Assets, &f.Layouts, &f.Pages, &f.Components, &f.Models, &f.Build} {
		*p = filepath.Clean(*p)
	}
	return nil
}

// RenderDefaultApplier normalizes the template suffix.
type RenderDefaultApplier struct{}

func (RenderDefaultApplier) Domain() string { return "render" }

func (RenderDefaultApplier) ApplyDefaults(cfg *Config) error {
	ext := strings.TrimSpace(cfg.TemplateExt)
	if ext == "" {
		ext = DefaultTemplateExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	cfg.TemplateExt = ext
	return nil
}

// ModelDefaultApplier bounds remote model fetching.
type ModelDefaultApplier struct{}

func (ModelDefaultApplier) Domain() string { return "models" }

func (ModelDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Models.Timeout <= 0 {
		cfg.Models.Timeout = defaultModelTimeout
	}
	if cfg.Models.MaxBytes <= 0 {
		cfg.Models.MaxBytes = defaultModelBytes
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	FolderDefaultApplier{},
	RenderDefaultApplier{},
	ModelDefaultApplier{},
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
