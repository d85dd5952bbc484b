// Package stack holds the pages of a build session in registration order,
// keyed by output path.
package stack

import (
	"log/slog"
	"sync"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/render"
)

// Descriptor is one registered page.
type Descriptor struct {
	SourceView string
	OutputPath string
	Page       *render.Page
}

// RunCount is the number of times the page has been rendered.
func (d *Descriptor) RunCount() int64 { return d.Page.RunCount() }

// Stack is an append-only, ordered set of descriptors with unique output
// paths. The first registration of an output path wins.
type Stack struct {
	mu       sync.RWMutex
	entries  []*Descriptor
	byOutput map[string]*Descriptor
	logger   *slog.Logger
	recorder metrics.Recorder
	report   func(error)
}

// New creates an empty stack. report receives duplicate output warnings; it
// may be nil.
func New(logger *slog.Logger, recorder metrics.Recorder, report func(error)) *Stack {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Stack{
		byOutput: make(map[string]*Descriptor),
		logger:   logger,
		recorder: recorder,
		report:   report,
	}
}

// Register adds a page for opts. When another page already owns the output
// path the new one is dropped, a warning is logged and false is returned
// along with the existing descriptor.
func (s *Stack) Register(opts page.Options) (*Descriptor, bool) {
	p := render.NewPage(opts)
	out := p.OutputPath()

	s.mu.Lock()
	if existing, ok := s.byOutput[out]; ok {
		size := len(s.entries)
		s.mu.Unlock()
		s.duplicate(opts.SourceView(), existing)
		s.recorder.SetStackSize(size)
		return existing, false
	}
	d := &Descriptor{SourceView: opts.SourceView(), OutputPath: out, Page: p}
	s.entries = append(s.entries, d)
	s.byOutput[out] = d
	size := len(s.entries)
	s.mu.Unlock()

	s.recorder.SetStackSize(size)
	return d, true
}

func (s *Stack) duplicate(view string, existing *Descriptor) {
	err := derrors.DuplicateOutput(view, existing.OutputPath).WithContext("registered_by", existing.SourceView)
	s.logger.Warn("Page already registered for output",
		logfields.ShortView(view),
		logfields.Output(existing.OutputPath))
	s.recorder.IncDuplicateOutput()
	if s.report != nil {
		s.report(err)
	}
}

// Snapshot returns the descriptors in registration order.
func (s *Stack) Snapshot() []*Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Descriptor, len(s.entries))
	copy(out, s.entries)
	return out
}

// Pending returns descriptors that have never been rendered, in order.
func (s *Stack) Pending() []*Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Descriptor
	for _, d := range s.entries {
		if d.RunCount() == 0 {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the descriptor owning an output path.
func (s *Stack) Lookup(outputPath string) (*Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byOutput[outputPath]
	return d, ok
}

// Len returns the number of descriptors.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
