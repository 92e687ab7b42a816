package dataset

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/internal/observability"
	"github.com/recipestore/recipestore/internal/storage"
)

// DefaultKey is the object key of the recipe dataset.
const DefaultKey = "recipes.csv"

// Store loads and saves the whole recipe table.
type Store interface {
	// Load fetches and parses the full table.
	Load(ctx context.Context) (*Table, error)

	// Save replaces the stored table with t in a single write.
	Save(ctx context.Context, t *Table) error
}

// ObjectStore keeps the recipe table as one object in an ObjectStorage.
// Every Load reads the object again; every Save overwrites it completely.
type ObjectStore struct {
	storage     storage.ObjectStorage
	key         string
	encoding    Encoding
	conditional bool
	logger      *zap.SugaredLogger
	metrics     *observability.Metrics
}

// Option configures an ObjectStore.
type Option func(*ObjectStore)

// WithEncoding sets the encoding of the stored object.
func WithEncoding(e Encoding) Option {
	return func(s *ObjectStore) { s.encoding = e }
}

// WithConditionalWrites makes Save fail with a write conflict when the
// object changed since the table was loaded.
func WithConditionalWrites(enabled bool) Option {
	return func(s *ObjectStore) { s.conditional = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *ObjectStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *ObjectStore) { s.metrics = m }
}

// NewObjectStore creates a store for the object at key.
func NewObjectStore(objects storage.ObjectStorage, key string, opts ...Option) *ObjectStore {
	if key == "" {
		key = DefaultKey
	}
	s := &ObjectStore{
		storage:  objects,
		key:      key,
		encoding: EncodingNone,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the object key.
func (s *ObjectStore) Key() string {
	return s.key
}

// Exists reports whether the dataset object is present.
func (s *ObjectStore) Exists(ctx context.Context) (bool, error) {
	return s.storage.Exists(ctx, s.key)
}

// Load implements Store.
func (s *ObjectStore) Load(ctx context.Context) (*Table, error) {
	table, err := s.load(ctx)
	rows := 0
	if table != nil {
		rows = table.Len()
	}
	s.metrics.ObserveDatasetOp("load", rows, err)
	return table, err
}

func (s *ObjectStore) load(ctx context.Context) (*Table, error) {
	raw, version, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, rerrors.NewStorageError(rerrors.CodeObjectNotFound,
				fmt.Sprintf("recipe dataset %s not found", s.key), err)
		}
		return nil, rerrors.NewStorageError(rerrors.CodeDownloadFailed,
			fmt.Sprintf("failed to read recipe dataset %s", s.key), err)
	}

	plain, err := s.encoding.unwrap(raw)
	if err != nil {
		return nil, err
	}

	recipes, err := Decode(plain)
	if err != nil {
		return nil, err
	}

	s.logger.Debugw("Loaded recipe dataset", "key", s.key, "rows", len(recipes), "bytes", len(raw), "version", version)
	return &Table{Recipes: recipes, version: version}, nil
}

// Save implements Store. On success the table carries the new version.
func (s *ObjectStore) Save(ctx context.Context, t *Table) error {
	err := s.save(ctx, t)
	s.metrics.ObserveDatasetOp("save", t.Len(), err)
	return err
}

func (s *ObjectStore) save(ctx context.Context, t *Table) error {
	plain, err := Encode(t.Recipes)
	if err != nil {
		return rerrors.NewInternalError("failed to encode recipe dataset", err)
	}

	raw, err := s.encoding.wrap(plain)
	if err != nil {
		return rerrors.NewInternalError(fmt.Sprintf("failed to apply %s encoding", s.encoding), err)
	}

	var version string
	if s.conditional {
		version, err = s.storage.ConditionalPut(ctx, s.key, raw, t.version)
	} else {
		version, err = s.storage.Put(ctx, s.key, raw)
	}
	if err != nil {
		if errors.Is(err, storage.ErrPreconditionFailed) {
			return rerrors.NewStorageError(rerrors.CodeWriteConflict,
				fmt.Sprintf("recipe dataset %s was modified concurrently", s.key), err)
		}
		return rerrors.NewStorageError(rerrors.CodeUploadFailed,
			fmt.Sprintf("failed to write recipe dataset %s", s.key), err)
	}

	t.version = version
	s.logger.Debugw("Saved recipe dataset", "key", s.key, "rows", t.Len(), "bytes", len(raw), "version", version)
	return nil
}
