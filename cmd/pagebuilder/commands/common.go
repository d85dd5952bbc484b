// Package commands implements the pagebuilder command line.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"site.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging and write the build manifest"`
	Dev     bool             `short:"d" help:"Development build: live reload tag, option sidecars, no minification"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build every configured and discovered page"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild affected pages when sources change"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file and source folders"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the config file and applies global flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Dev {
		cfg.Dev = true
	}
	if c.Verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func logger(g *Global) *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
