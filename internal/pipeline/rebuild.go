package pipeline

import (
	"context"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/watch"
)

// Rebuild re-renders what a change to changedPath affects: the pages built
// from that view, or, when none match, every page after partials have been
// registered again.
func (p *Pipeline) Rebuild(ctx context.Context, changedPath string) watch.Plan {
	plan := watch.Map(changedPath, p.cfg.Folders.Pages, p.stack.Snapshot())
	p.recorder.IncRebuild(plan.Full)

	targets := plan.Targets
	if plan.Full {
		if err := p.RegisterPartials(); err != nil {
			p.logger.Error("Partial registration failed", logfields.Error(err))
		}
		targets = p.stack.Snapshot()
	}
	for _, d := range targets {
		if ctx.Err() != nil {
			break
		}
		_ = p.renderer.Generate(ctx, d.Page)
	}

	p.logger.Info("Rebuilt pages", logfields.Path(changedPath), logfields.Count(len(targets)), "full", plan.Full)
	return plan
}

// HandleEvent routes one watch event: asset changes are mirrored into the
// build folder, everything else triggers Rebuild.
func (p *Pipeline) HandleEvent(ctx context.Context, ev watch.Event) {
	switch watch.Classify(ev.Path, p.cfg.Folders) {
	case watch.KindAsset:
		if err := p.assets.Sync(ev.Path); err != nil {
			p.logger.Warn("Asset sync failed", logfields.Path(ev.Path), logfields.Error(err))
		}
	default:
		p.Rebuild(ctx, ev.Path)
	}
}
