package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	NoScan bool `name:"no-scan" help:"Only build pages listed in the config"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if w.NoScan {
		off := false
		cfg.AutoScan = &off
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, cfg, logger(g))
}

// RunWatch builds once and then handles source changes until ctx is done.
func RunWatch(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	p, err := RunBuild(ctx, cfg, log)
	if err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(cfg.Folders.Src, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	log.Info("Watching for changes", logfields.Path(cfg.Folders.Src))
	err = watcher.Run(ctx, p.HandleEvent)
	log.Info("Watch stopped")
	return err
}
