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

// Package redis provides a Redis-backed vector store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "modelkit:doc:"

// scanCount is the COUNT hint passed to SCAN while iterating documents.
const scanCount = 200

// Store keeps each document as a JSON value under a prefixed key and
// answers similarity queries with a SCAN plus client-side scoring.
type Store struct {
	client *redis.Client
	logger *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a store backed by the given Redis client.
func New(client *redis.Client, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, core.Preconditionf("redis client is required")
	}

	s := &Store{
		client: client,
		logger: slog.Default().With("component", "redisstore"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Open connects to a Redis server at the given address.
func Open(addr string, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return New(client, opts...)
}

func documentKey(id string) string {
	return keyPrefix + id
}

// Add stores the documents, overwriting existing ids.
func (s *Store) Add(ctx context.Context, docs []core.Document) error {
	if err := vectorstore.ValidateDocuments(docs); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document %q: %w", doc.ID, err)
		}
		pipe.Set(ctx, documentKey(doc.ID), data, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Delete removes documents by id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = documentKey(id)
	}
	return s.client.Del(ctx, keys...).Err()
}

// Search scans every stored document and ranks by cosine similarity.
func (s *Store) Search(ctx context.Context, req vectorstore.SearchRequest) ([]vectorstore.ScoredDocument, error) {
	if len(req.Vector) == 0 {
		return nil, core.Precondition(vectorstore.ErrEmptyVector)
	}

	var hits []vectorstore.ScoredDocument

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				// Key expired between SCAN and GET
				continue
			}
			return nil, err
		}

		var doc core.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Warn("skipping undecodable document", "key", iter.Val(), "err", err)
			continue
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
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return vectorstore.Rank(req, hits), nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
