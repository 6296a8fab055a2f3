// Package templatedb exports finished designs as reusable template records
// and stores them.
//
// A [Record] keeps only what a parent design needs: the cell's boundary and
// its named pins. [FromDesign] builds a record from a design, and
// [Record.Template] turns a record back into a fixed template that can be
// instantiated hierarchically.
//
// Records are persisted through a [Store]. The default store is a YAML file
// keyed by cell name:
//
//	nand_2x:
//	  library: logic_generated
//	  bounds: [[0, 0], [400, 2000]]
//	  pins:
//	    - name: A
//	      layer: M3
//	      grid: routing_23_cmos
//	      mn: [[5, 3], [5, 17]]
//	      xy: [[250, 300], [250, 1700]]
//	      net: A
//	  digest: 3f2a...
//
// Redis and MongoDB stores hold the same records for shared build caches.
// Every store honors the three write modes: [ModeWrite] truncates,
// [ModeAppend] refuses to replace an existing cell, and [ModeOverwrite]
// replaces it.
package templatedb

import (
	"context"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/observability"
)

// Store persists template records.
type Store interface {
	// Put stores rec under mode. A failed Put leaves the store unchanged.
	Put(ctx context.Context, rec Record, mode Mode) error
	// Get returns the record for cell, or a NOT_FOUND error.
	Get(ctx context.Context, cell string) (Record, error)
	// List returns every record, sorted by cell name.
	List(ctx context.Context) ([]Record, error)
	// Close releases connections held by the store.
	Close() error
}

// Option configures stores created by [Open].
type Option func(*storeOptions)

type storeOptions struct {
	logger *log.Logger
}

// WithLogger sets the logger stores report writes to.
func WithLogger(l *log.Logger) Option {
	return func(o *storeOptions) { o.logger = l }
}

func buildOptions(opts []Option) storeOptions {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// Open opens a store from a location:
//
//   - a plain path or file:///path/templates.yaml: a YAML file
//   - redis://host:6379/0?key=cellforge:templates: a Redis hash
//   - mongodb://host:27017/cellforge?collection=templates: a MongoDB collection
func Open(ctx context.Context, location string, opts ...Option) (Store, error) {
	o := buildOptions(opts)
	if !strings.Contains(location, "://") {
		fs, err := NewFileStore(location, opts...)
		return asStore("file", fs, err)
	}
	u, err := parseLocation(location)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "file":
		fs, err := NewFileStore(u.Path, opts...)
		return asStore("file", fs, err)
	case "redis", "rediss":
		rs, err := OpenRedis(ctx, location, opts...)
		return asStore("redis", rs, err)
	case "mongodb", "mongodb+srv":
		ms, err := OpenMongo(ctx, location, opts...)
		return asStore("mongodb", ms, err)
	}
	o.logger.Debug("unsupported store", "scheme", u.Scheme)
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported store scheme %q", u.Scheme)
}

// asStore keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer, and reports traffic to the store hooks.
func asStore[S Store](backend string, s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return instrumented{Store: s, backend: backend}, nil
}

// instrumented forwards to a store and reports every Put and Get to
// [observability.Store].
type instrumented struct {
	Store
	backend string
}

func (s instrumented) Put(ctx context.Context, rec Record, mode Mode) error {
	err := s.Store.Put(ctx, rec, mode)
	observability.Store().OnPut(ctx, s.backend, rec.Cell, mode.String(), err)
	return err
}

func (s instrumented) Get(ctx context.Context, cell string) (Record, error) {
	rec, err := s.Store.Get(ctx, cell)
	observability.Store().OnGet(ctx, s.backend, cell, err == nil)
	return rec, err
}

// Backend names the kind of store behind s: "file", "redis", or "mongodb".
// Stores not created by [Open] report "custom".
func Backend(s Store) string {
	switch v := s.(type) {
	case instrumented:
		return v.backend
	case *FileStore:
		return "file"
	case *RedisStore:
		return "redis"
	case *MongoStore:
		return "mongodb"
	}
	return "custom"
}

func parseLocation(location string) (*url.URL, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse store location")
	}
	return u, nil
}

// FileStore keeps records in a YAML file.
type FileStore struct {
	path   string
	logger *log.Logger
}

// NewFileStore returns a store backed by the YAML file at path. The file is
// created on the first Put.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &FileStore{path: path, logger: buildOptions(opts).logger}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Put(_ context.Context, rec Record, mode Mode) error {
	if err := Export(rec, s.path, mode); err != nil {
		return err
	}
	s.logger.Debug("stored template", "cell", rec.Cell, "file", s.path, "mode", mode)
	return nil
}

func (s *FileStore) Get(_ context.Context, cell string) (Record, error) {
	return Import(s.path, cell)
}

func (s *FileStore) List(_ context.Context) ([]Record, error) {
	recs, err := readFile(s.path)
	if err != nil {
		return nil, err
	}
	return sortedRecords(recs), nil
}

func (s *FileStore) Close() error { return nil }

func sortedRecords(m map[string]Record) []Record {
	out := make([]Record, 0, len(m))
	for _, cell := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[cell])
	}
	return out
}
