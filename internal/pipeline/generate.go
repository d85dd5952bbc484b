package pipeline

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/model"
)

// Generate waits for every queued model, renders every page not rendered yet
// and then runs onComplete. Pages queued by onComplete are settled and
// rendered before Generate returns.
func (p *Pipeline) Generate(ctx context.Context, onComplete OnComplete) error {
	start := time.Now()
	defer func() {
		p.recorder.ObserveBuildDuration(time.Since(start))
	}()

	results, err := p.flush(ctx)
	if err != nil {
		return err
	}
	if onComplete != nil {
		onComplete(ctx, p, results)
		if results, err = p.flush(ctx); err != nil {
			return err
		}
	}
	p.setResults(results)

	p.logger.Info("Generated pages",
		logfields.Count(p.stack.Len()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
		"errors", len(p.Errors()))
	return nil
}

// Complete waits for every queued model and runs onComplete without
// rendering anything.
func (p *Pipeline) Complete(ctx context.Context, onComplete OnComplete) ([]model.Resolved, error) {
	results, err := p.resolver.Pending().Settle(ctx)
	if err != nil {
		return results, err
	}
	p.setResults(results)
	if onComplete != nil {
		onComplete(ctx, p, results)
	}
	return results, nil
}

// flush settles models and renders pending pages until neither produces
// new work.
func (p *Pipeline) flush(ctx context.Context) ([]model.Resolved, error) {
	for {
		results, err := p.resolver.Pending().Settle(ctx)
		if err != nil {
			return results, err
		}
		pending := p.stack.Pending()
		if len(pending) == 0 {
			return results, nil
		}
		for _, d := range pending {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			// Failures are logged and reported by the renderer.
			_ = p.renderer.Generate(ctx, d.Page)
		}
	}
}

func (p *Pipeline) setResults(results []model.Resolved) {
	p.mu.Lock()
	p.results = results
	p.mu.Unlock()
}
