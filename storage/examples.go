// Package storage keeps training examples after their search session is gone.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"regi/searcher"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const examplePrefix = "ex/"

type Config struct {
	// Path is the database directory, ignored in memory
	Path              string
	InMemory          bool
	SyncWrites        bool
	NumVersionsToKeep int
	Logger            *zerolog.Logger // Nil silences badger
}

func DefaultConfig(path string) Config {
	return Config{
		Path:              path,
		SyncWrites:        true,
		NumVersionsToKeep: 1,
	}
}

func InMemoryConfig() Config {
	return Config{
		InMemory:          true,
		NumVersionsToKeep: 1,
	}
}

// badgerLogger adapts zerolog to badger's Logger interface.
type badgerLogger struct {
	logger *zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// ExampleStore is an append-only buffer of training examples. It is safe
// for concurrent use.
type ExampleStore struct {
	db *badger.DB
}

func Open(cfg Config) (*ExampleStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(max(cfg.NumVersionsToKeep, 1))
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &ExampleStore{db: db}, nil
}

func (s *ExampleStore) Close() error {
	return s.db.Close()
}

func exampleKey(episode string, i int) []byte {
	return []byte(fmt.Sprintf("%s%s/%05d", examplePrefix, episode, i))
}

// Put stores the examples of one episode in order, in a single transaction.
func (s *ExampleStore) Put(episode string, examples []searcher.Example) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for i, ex := range examples {
			data, err := json.Marshal(ex)
			if err != nil {
				return fmt.Errorf("failed to encode example %s: %w", ex.ID, err)
			}
			if err := txn.Set(exampleKey(episode, i), data); err != nil {
				return fmt.Errorf("failed to store example %s: %w", ex.ID, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored examples.
func (s *ExampleStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(examplePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// ForEach calls fn for every stored example in key order, grouped by
// episode. An error from fn stops the iteration and is returned.
func (s *ExampleStore) ForEach(fn func(episode string, ex searcher.Example) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(examplePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			var ex searcher.Example
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ex)
			})
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
			episode := key[len(examplePrefix) : len(key)-6]
			if err := fn(episode, ex); err != nil {
				return err
			}
		}
		return nil
	})
}
