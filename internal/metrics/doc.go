// Package metrics provides build metrics for the page pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	p := pipeline.New(cfg) // NoopRecorder
//	p := pipeline.New(cfg, pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The Prometheus implementation is exported after a build as a node-exporter
// textfile (see PrometheusRecorder.WriteTextfile); pagebuilder runs no HTTP
// endpoint.
package metrics
