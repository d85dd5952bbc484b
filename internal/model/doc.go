// Package model resolves page model specifiers into data.
//
// A specifier is one of:
//
//   - nil: an empty object
//   - inline data (map, slice, struct): used as is, identified by a content hash
//   - "http://..." or "https://...": fetched and decoded as JSON
//   - "name.json": a file in the models folder
//   - "name": a folder under the models folder whose *.json files become an array
//
// Resolution is asynchronous. Every Future is tracked by a Pending set, which
// is the barrier the pipeline waits on before generating output.
package model
