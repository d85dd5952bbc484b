// Package expand turns a page with a resolved model into the pages it
// produces: one for a regular page, one per element for a dynamic page.
package expand

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// ApplyFunc runs the controllers of one page.
type ApplyFunc func(ctx context.Context, opts page.Options) page.Options

// Expand attaches data to opts and applies controllers. Dynamic pages need an
// array model; element i (1-indexed) gets the slug "<slug>-i" and the element
// as its model. A dynamic page with a non-array model yields no pages.
func Expand(ctx context.Context, opts page.Options, data any, apply ApplyFunc) ([]page.Options, error) {
	if apply == nil {
		apply = func(_ context.Context, o page.Options) page.Options { return o }
	}

	if !opts.Dynamic {
		return []page.Options{apply(ctx, opts.WithModel(data))}, nil
	}

	items, ok := asSlice(data)
	if !ok {
		return nil, derrors.InvalidDynamicModel(opts.View, fmt.Sprintf("%T", data))
	}

	out := make([]page.Options, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		el := opts.WithModel(item).WithSlug(opts.Slug + "-" + strconv.Itoa(i+1))
		out = append(out, apply(ctx, el))
	}
	return out, nil
}

func asSlice(data any) ([]any, bool) {
	if s, ok := data.([]any); ok {
		return s, true
	}
	if data == nil {
		return nil, false
	}
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, true
}
