package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// ResultFor maps an error to a ResultLabel.
func ResultFor(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

// Recorder defines observability hooks for the page pipeline.
type Recorder interface {
	// IncModelResolution counts one settled model; kind is none, inline, url, file or dir.
	IncModelResolution(kind string, result ResultLabel)
	IncPageRendered(result ResultLabel)
	ObserveRenderDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncDuplicateOutput()
	IncRebuild(full bool)
	SetStackSize(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncModelResolution(string, ResultLabel) {}
func (NoopRecorder) IncPageRendered(ResultLabel)            {}
func (NoopRecorder) ObserveRenderDuration(time.Duration)    {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)     {}
func (NoopRecorder) IncDuplicateOutput()                    {}
func (NoopRecorder) IncRebuild(bool)                        {}
func (NoopRecorder) SetStackSize(int)                       {}
