// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package badger provides a BadgerDB-backed vector store.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/vectorstore"
)

const documentPrefix = "doc:"

// Store persists documents in a BadgerDB database and answers
// similarity queries with a full scan over the stored vectors.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB-backed store at the specified path.
// Creates the directory if it doesn't exist.
func Open(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "badgerstore"),
	}, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (s *Store) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

func documentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// Add stores the documents, overwriting existing ids.
func (s *Store) Add(ctx context.Context, docs []core.Document) error {
	if err := vectorstore.ValidateDocuments(docs); err != nil {
		return err
	}

	return s.withTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal document %q: %w", doc.ID, err)
			}
			if err := tx.Set(documentKey(doc.ID), data); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Delete removes documents by id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	return s.withTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(documentKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single document by id.
func (s *Store) Get(ctx context.Context, id string) (*core.Document, error) {
	var doc core.Document
	err := s.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get(documentKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return vectorstore.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Search scans every stored document and ranks by cosine similarity.
func (s *Store) Search(ctx context.Context, req vectorstore.SearchRequest) ([]vectorstore.ScoredDocument, error) {
	if len(req.Vector) == 0 {
		return nil, core.Precondition(vectorstore.ErrEmptyVector)
	}

	var hits []vectorstore.ScoredDocument

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc core.Document
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return err
			}

			if len(doc.Vector) == 0 {
				continue
			}
			if !vectorstore.MatchesFilter(doc, req.Filter) {
				continue
			}

			hits = append(hits, vectorstore.ScoredDocument{
				Document: doc,
				Score:    vectorstore.CosineSimilarity(req.Vector, doc.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	return vectorstore.Rank(req, hits), nil
}
