package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Config represents the site configuration
type Config struct {
	Folders       Folders        `yaml:"folders"`
	Dev           bool           `yaml:"dev"`
	Verbose       bool           `yaml:"verbose"`
	ExtensionLess bool           `yaml:"extension_less"`
	TemplateExt   string         `yaml:"template_ext"`
	AutoScan      *bool          `yaml:"auto_scan,omitempty"`
	KeepBuild     bool           `yaml:"keep_build"`
	Site          map[string]any `yaml:"site,omitempty"`
	Models        ModelsConfig   `yaml:"models"`
	Metrics       MetricsConfig  `yaml:"metrics"`
	Pages         []PageConfig   `yaml:"pages,omitempty"`
}

// Folders locates the source tree and the build output.
type Folders struct {
	Src        string `yaml:"src"`
	Assets     string `yaml:"assets"`
	Layouts    string `yaml:"layouts"`
	Pages      string `yaml:"pages"`
	Components string `yaml:"components"`
	Models     string `yaml:"models"`
	Build      string `yaml:"build"`
}

// ModelsConfig tunes remote model fetching.
type ModelsConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

// MetricsConfig controls the Prometheus textfile written after a build.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// PageConfig is one page request declared in the config file.
type PageConfig struct {
	View          string         `yaml:"view"`
	Model         any            `yaml:"model,omitempty"`
	Controller    string         `yaml:"controller,omitempty"`
	Path          string         `yaml:"path,omitempty"`
	Slug          string         `yaml:"slug,omitempty"`
	Ext           string         `yaml:"ext,omitempty"`
	Title         string         `yaml:"title,omitempty"`
	Dynamic       bool           `yaml:"dynamic,omitempty"`
	ExtensionLess *bool          `yaml:"extension_less,omitempty"`
	Data          map[string]any `yaml:"data,omitempty"`
}

// Request converts a configured page into a pipeline request.
func (p PageConfig) Request() page.Request {
	return page.Request{
		View:          p.View,
		Model:         p.Model,
		Controller:    page.ControllerRef{Name: p.Controller},
		Path:          p.Path,
		Slug:          p.Slug,
		Ext:           p.Ext,
		Title:         p.Title,
		Dynamic:       p.Dynamic,
		ExtensionLess: p.ExtensionLess,
		Data:          p.Data,
	}
}

// ScanEnabled reports whether unrequested templates are auto-discovered.
func (c *Config) ScanEnabled() bool {
	return c.AutoScan == nil || *c.AutoScan
}

// PageDefaults returns the site wide fallbacks applied to every request.
func (c *Config) PageDefaults() page.Defaults {
	return page.Defaults{TemplateExt: c.TemplateExt, ExtensionLess: c.ExtensionLess}
}

// Default returns a configuration with every default applied and no pages.
func Default() *Config {
	cfg := &Config{}
	_ = ApplyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// A missing .env file is not an error.
	_ = loadEnvFile()

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	return Parse(data)
}

// Parse decodes YAML configuration after expanding ${VAR} references.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to unmarshal config")
	}

	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	scan := true
	exampleConfig := Config{
		Folders:     Folders{Src: "./src", Build: "./public"},
		TemplateExt: DefaultTemplateExt,
		AutoScan:    &scan,
		Site: map[string]any{
			"name": "My Site",
		},
		Pages: []PageConfig{
			{View: "index.tpl"},
			{View: "about.tpl", Model: "about.json", Controller: "model-title"},
			{View: "posts/post.tpl", Model: "posts", Dynamic: true, Controller: "model-slug"},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
