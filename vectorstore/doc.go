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


// Package vectorstore provides embedding-based similarity search over
// stored documents.
//
// The Store interface is the backend boundary: add, delete and search
// by vector. Backends live in sub-packages:
//
//   - vectorstore/badger: BadgerDB-backed persistent store
//   - vectorstore/redis: Redis-backed store
//   - vectorstore/memory: in-process store for tests and small corpora
//
// Stores operate on vectors. Searcher composes an Embedder with a
// Store so callers can search by query text directly.
//
// All backends score with cosine similarity over normalized vectors;
// Normalize and CosineSimilarity are shared here so every backend
// ranks identically.
package vectorstore
