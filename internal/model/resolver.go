package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
)

// Specifier kinds, used as metric labels.
const (
	KindNone   = "none"
	KindInline = "inline"
	KindURL    = "url"
	KindFile   = "file"
	KindDir    = "dir"
)

// Resolved is a settled model. ID is empty for an absent model, a hex sha256
// of the JSON encoding for inline data and the specifier itself otherwise.
type Resolved struct {
	ID   string `json:"id"`
	Spec any    `json:"-"`
	Data any    `json:"data"`
}

// Resolver turns specifiers into Resolved models.
type Resolver struct {
	fs        afero.Fs
	modelsDir string
	client    *http.Client
	maxBytes  int64
	readLimit int
	logger    *slog.Logger
	recorder  metrics.Recorder
	pending   *Pending
	fetches   singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the client used for URL specifiers.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithMaxBytes bounds the size of a fetched model.
func WithMaxBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithLogger sets the logger used for skipped directory entries.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(m metrics.Recorder) Option {
	return func(r *Resolver) {
		if m != nil {
			r.recorder = m
		}
	}
}

// NewResolver creates a resolver reading local models from modelsDir on fs.
func NewResolver(fs afero.Fs, modelsDir string, opts ...Option) *Resolver {
	r := &Resolver{
		fs:        fs,
		modelsDir: modelsDir,
		client:    NewHTTPClient(0),
		maxBytes:  defaultMaxBytes,
		readLimit: 8,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		pending:   &Pending{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pending returns the set tracking every future this resolver produced.
func (r *Resolver) Pending() *Pending { return r.pending }

// Resolve starts resolving spec and returns its Future.
func (r *Resolver) Resolve(ctx context.Context, spec any) *Future {
	return r.ResolveThen(ctx, spec, nil)
}

// ResolveThen starts resolving spec and runs then with the outcome. The
// returned Future settles only after then has returned, so work queued by
// then is visible to Pending.Settle.
func (r *Resolver) ResolveThen(ctx context.Context, spec any, then func(Resolved, error)) *Future {
	f := newFuture()
	r.pending.Add(f)

	run := func() {
		res, err := r.resolve(ctx, spec)
		if then != nil {
			then(res, err)
		}
		f.settle(res, err)
	}

	// Inline and absent models settle without I/O.
	if k := kindOf(spec); k == KindNone || k == KindInline {
		run()
		return f
	}
	go run()
	return f
}

func (r *Resolver) resolve(ctx context.Context, spec any) (res Resolved, err error) {
	kind := kindOf(spec)
	defer func() {
		r.recorder.IncModelResolution(kind, metrics.ResultFor(err))
	}()

	switch kind {
	case KindNone:
		return Resolved{ID: "", Spec: nil, Data: map[string]any{}}, nil
	case KindInline:
		id, err := contentID(spec)
		if err != nil {
			return Resolved{}, derrors.ResolutionFailed(fmt.Sprintf("%T", spec), err)
		}
		return Resolved{ID: id, Spec: spec, Data: spec}, nil
	case KindURL:
		s := spec.(string)
		data, err := r.fetchShared(ctx, s)
		if err != nil {
			return Resolved{}, derrors.ResolutionFailed(s, err)
		}
		return Resolved{ID: s, Spec: spec, Data: data}, nil
	case KindFile:
		s := spec.(string)
		data, err := r.readFile(s)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{ID: s, Spec: spec, Data: data}, nil
	case KindDir:
		s := spec.(string)
		data, err := r.readDir(ctx, s)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{ID: s, Spec: spec, Data: data}, nil
	default:
		return Resolved{}, derrors.UnexpectedModelType(fmt.Sprintf("%T", spec))
	}
}

// fetchShared collapses concurrent fetches of one URL into a single request.
// Callers receive the same decoded value.
func (r *Resolver) fetchShared(ctx context.Context, rawURL string) (any, error) {
	v, err, _ := r.fetches.Do(rawURL, func() (any, error) {
		return fetchJSON(ctx, r.client, rawURL, r.maxBytes)
	})
	return v, err
}

func (r *Resolver) localPath(spec string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(spec, "\\", "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", derrors.InvalidModel(spec).WithContext("reason", "path escapes models folder")
	}
	return filepath.Join(r.modelsDir, filepath.FromSlash(clean)), nil
}

func (r *Resolver) readFile(spec string) (any, error) {
	p, err := r.localPath(spec)
	if err != nil {
		return nil, err
	}
	raw, err := afero.ReadFile(r.fs, p)
	if err != nil {
		return nil, derrors.ResolutionFailed(spec, err).WithContext("path", p)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, derrors.ResolutionFailed(spec, err).WithContext("path", p)
	}
	return data, nil
}

func kindOf(spec any) string {
	if spec == nil {
		return KindNone
	}
	if s, ok := spec.(string); ok {
		switch {
		case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
			return KindURL
		case strings.HasSuffix(s, ".json"):
			return KindFile
		case strings.TrimSpace(s) != "":
			return KindDir
		default:
			return ""
		}
	}
	v := reflect.ValueOf(spec)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return KindNone
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return KindInline
	default:
		return ""
	}
}

func contentID(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// FindByID returns the first settled model with the given id.
func FindByID(id string, results []Resolved) (Resolved, bool) {
	for _, r := range results {
		if r.ID == id {
			return r, true
		}
	}
	return Resolved{}, false
}

func (r *Resolver) skip(spec, name string, err error) {
	r.logger.Warn("Skipping model entry", logfields.Model(spec), logfields.Path(name), logfields.Error(err))
}
