package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	NoScan          bool   `name:"no-scan" help:"Only build pages listed in the config"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after the build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	b.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = RunBuild(ctx, cfg, logger(g))
	return err
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.NoScan {
		off := false
		cfg.AutoScan = &off
	}
	if b.MetricsTextfile != "" {
		cfg.Metrics.Textfile = b.MetricsTextfile
	}
}

// RunBuild performs one complete build and returns the finished session.
// Per-page failures are logged and counted; only setup failures are returned.
func RunBuild(ctx context.Context, cfg *config.Config, log *slog.Logger) (*pipeline.Pipeline, error) {
	start := time.Now()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prometheus *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		prometheus = metrics.NewPrometheusRecorder(prom.NewRegistry())
		recorder = prometheus
	}

	log.Info("Starting build",
		logfields.Path(cfg.Folders.Src),
		logfields.Output(cfg.Folders.Build),
		"dev", cfg.Dev,
		"pages", len(cfg.Pages))

	p := pipeline.New(cfg, pipeline.WithLogger(log), pipeline.WithRecorder(recorder))
	if err := p.Prepare(); err != nil {
		return nil, err
	}

	for _, pc := range cfg.Pages {
		p.Page(ctx, pc.Request())
	}
	if cfg.ScanEnabled() {
		if _, err := p.Scan(ctx); err != nil {
			return nil, err
		}
	}
	if err := p.Generate(ctx, nil); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if cfg.Verbose {
		path, err := p.WriteManifest()
		if err != nil {
			log.Warn("Failed to write build manifest", logfields.Error(err))
		} else {
			log.Debug("Wrote build manifest", logfields.Path(path))
		}
	}
	if prometheus != nil {
		if err := prometheus.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}

	log.Info("Build finished",
		logfields.Count(p.Stack().Len()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
		"errors", len(p.Errors()))
	return p, nil
}
