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

// Package config loads the YAML configuration file and maps it onto
// the provider and store settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/provider"
	"github.com/poiesic/modelkit/retry"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/poiesic/modelkit/vectorstore/badger"
	"github.com/poiesic/modelkit/vectorstore/memory"
	"github.com/poiesic/modelkit/vectorstore/redis"
	"gopkg.in/yaml.v3"
)

// Store backend names accepted in the store block.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

// File is the top-level configuration document.
type File struct {
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

// ProviderConfig is the provider block.
type ProviderConfig struct {
	Name            string         `yaml:"name"`
	APIKey          string         `yaml:"apiKey"`
	APIKeyEnv       string         `yaml:"apiKeyEnv"`
	BaseURL         string         `yaml:"baseURL"`
	Model           string         `yaml:"model"`
	EmbeddingModel  string         `yaml:"embeddingModel"`
	MaxToolRounds   int            `yaml:"maxToolRounds"`
	EmbedBatchLimit int            `yaml:"embedBatchLimit"`
	Defaults        DefaultsConfig `yaml:"defaults"`
	Retry           RetryConfig    `yaml:"retry"`
}

// DefaultsConfig is the chat options block merged under every prompt.
type DefaultsConfig struct {
	Temperature   *float64 `yaml:"temperature"`
	TopP          *float64 `yaml:"topP"`
	MaxTokens     *int     `yaml:"maxTokens"`
	StopSequences []string `yaml:"stopSequences"`
	Tools         []string `yaml:"tools"`
}

// RetryConfig is the retry policy block. Zero fields keep the policy
// defaults.
type RetryConfig struct {
	MaxAttempts     int      `yaml:"maxAttempts"`
	InitialInterval Duration `yaml:"initialInterval"`
	Multiplier      float64  `yaml:"multiplier"`
	MaxInterval     Duration `yaml:"maxInterval"`
	OnStatusCodes   []int    `yaml:"onStatusCodes"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "500ms" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// StoreConfig is the vector store block.
type StoreConfig struct {
	// Backend selects "memory", "badger" or "redis".
	Backend string `yaml:"backend"`

	// Path is the database directory for the badger backend.
	Path string `yaml:"path"`

	// Addr is the server address for the redis backend.
	Addr string `yaml:"addr"`
}

// IngestConfig is the ingestion block.
type IngestConfig struct {
	BatchSize int `yaml:"batchSize"`
	PoolSize  int `yaml:"poolSize"`
}

// Load reads a YAML file into a File.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, core.Preconditionf("config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate ensures the configuration is internally consistent.
func (f *File) Validate() error {
	if f.Provider.Name == "" {
		return core.Precondition(errors.New("provider name cannot be empty"))
	}
	switch f.Store.Backend {
	case "", StoreMemory:
	case StoreBadger:
		if f.Store.Path == "" {
			return core.Precondition(errors.New("store path cannot be empty for the badger backend"))
		}
	case StoreRedis:
		if f.Store.Addr == "" {
			return core.Precondition(errors.New("store addr cannot be empty for the redis backend"))
		}
	default:
		return core.Preconditionf("unknown store backend %q", f.Store.Backend)
	}
	return nil
}

// ProviderConfig maps the provider block onto the factory config.
// APIKeyEnv takes precedence over the inline key when the variable is
// set.
func (f *File) ProviderConfig() *provider.Config {
	p := f.Provider

	apiKey := p.APIKey
	if p.APIKeyEnv != "" {
		if env := os.Getenv(p.APIKeyEnv); env != "" {
			apiKey = env
		}
	}

	return &provider.Config{
		Provider:        p.Name,
		APIKey:          apiKey,
		BaseURL:         p.BaseURL,
		Model:           p.Model,
		EmbeddingModel:  p.EmbeddingModel,
		Defaults:        p.Defaults.chatOptions(),
		Retry:           p.Retry.policy(),
		MaxToolRounds:   p.MaxToolRounds,
		EmbedBatchLimit: p.EmbedBatchLimit,
	}
}

// OpenStore opens the vector store declared by the store block.
// An empty backend means the in-memory store.
func (f *File) OpenStore() (vectorstore.Store, error) {
	switch f.Store.Backend {
	case "", StoreMemory:
		return memory.New(), nil
	case StoreBadger:
		return badger.Open(f.Store.Path, false)
	case StoreRedis:
		return redis.Open(f.Store.Addr)
	default:
		return nil, core.Preconditionf("unknown store backend %q", f.Store.Backend)
	}
}

func (d DefaultsConfig) chatOptions() *core.ChatOptions {
	if d.Temperature == nil && d.TopP == nil && d.MaxTokens == nil &&
		len(d.StopSequences) == 0 && len(d.Tools) == 0 {
		return nil
	}
	return &core.ChatOptions{
		Temperature:   d.Temperature,
		TopP:          d.TopP,
		MaxTokens:     d.MaxTokens,
		StopSequences: d.StopSequences,
		Tools:         d.Tools,
	}
}

func (r RetryConfig) policy() retry.Policy {
	policy := retry.DefaultPolicy()
	if r.MaxAttempts > 0 {
		policy.MaxAttempts = r.MaxAttempts
	}
	if r.InitialInterval > 0 {
		policy.InitialInterval = time.Duration(r.InitialInterval)
	}
	if r.Multiplier > 0 {
		policy.Multiplier = r.Multiplier
	}
	if r.MaxInterval > 0 {
		policy.MaxInterval = time.Duration(r.MaxInterval)
	}
	if len(r.OnStatusCodes) > 0 {
		policy.OnStatusCodes = r.OnStatusCodes
	}
	return policy
}
