package model

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
)

// readDir loads every *.json file directly inside a models subfolder, sorted
// by file name. Entries that fail to read or parse are logged and skipped.
func (r *Resolver) readDir(ctx context.Context, spec string) ([]any, error) {
	dir, err := r.localPath(spec)
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, derrors.ResolutionFailed(spec, err).WithContext("path", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	slots := make([]any, len(names))
	ok := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.readLimit)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := filepath.Join(dir, name)
			raw, err := afero.ReadFile(r.fs, p)
			if err != nil {
				r.skip(spec, p, err)
				return nil
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				r.skip(spec, p, err)
				return nil
			}
			slots[i], ok[i] = v, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, derrors.ResolutionFailed(spec, err)
	}

	data := make([]any, 0, len(names))
	for i, v := range slots {
		if ok[i] {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return nil, derrors.InvalidModel(spec).WithContext("path", dir)
	}
	return data, nil
}
