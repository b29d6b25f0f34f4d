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

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/modelkit/config"
	"github.com/poiesic/modelkit/core"
	"github.com/poiesic/modelkit/ingest"
	"github.com/poiesic/modelkit/provider"
	"github.com/poiesic/modelkit/vectorstore"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "modelkit",
		Usage: "Uniform chat, embedding and vector search over AI providers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "modelkit.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "chat",
				Usage:     "Send a prompt and print the completion",
				ArgsUsage: "<message>",
				Action:    chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "system",
						Usage: "System instruction framing the conversation",
					},
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Stream the completion chunk by chunk",
					},
				},
			},
			{
				Name:      "embed",
				Usage:     "Embed a text and print the vector as JSON",
				ArgsUsage: "<text>",
				Action:    embedCommand,
			},
			{
				Name:      "index",
				Usage:     "Embed documents from a file and add them to the store",
				ArgsUsage: "<file>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Value for the documents' source metadata field",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the store by query text",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   4,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Drop results scoring below the threshold",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.File, error) {
	return config.Load(c.String("config"))
}

func chatCommand(c *cli.Context) error {
	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("message argument required")
	}

	file, err := loadConfig(c)
	if err != nil {
		return err
	}

	model, err := provider.NewChatModel(file.ProviderConfig())
	if err != nil {
		return err
	}

	var messages []core.Message
	if system := c.String("system"); system != "" {
		messages = append(messages, core.NewSystemMessage(system))
	}
	messages = append(messages, core.NewUserMessage(message))
	prompt := core.NewPrompt(messages...)

	ctx := c.Context
	if c.Bool("stream") {
		for response, err := range model.Stream(ctx, prompt) {
			if err != nil {
				return err
			}
			fmt.Print(response.Text())
		}
		fmt.Println()
		return nil
	}

	response, err := model.Call(ctx, prompt)
	if err != nil {
		return err
	}
	fmt.Println(response.Text())
	return nil
}

func embedCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("text argument required")
	}

	file, err := loadConfig(c)
	if err != nil {
		return err
	}

	embedder, err := provider.NewEmbedder(file.ProviderConfig())
	if err != nil {
		return err
	}

	vector, err := embedder.EmbedText(c.Context, text)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(vector)
}

// indexCommand reads one document per line and ingests the batch.
func indexCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file argument required")
	}

	file, err := loadConfig(c)
	if err != nil {
		return err
	}

	embedder, err := provider.NewEmbedder(file.ProviderConfig())
	if err != nil {
		return err
	}

	store, err := file.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := readDocuments(path, c.String("source"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "no documents to index")
		return nil
	}

	opts := []ingest.Option{}
	if file.Ingest.BatchSize > 0 {
		opts = append(opts, ingest.WithBatchSize(file.Ingest.BatchSize))
	}
	if file.Ingest.PoolSize > 0 {
		opts = append(opts, ingest.WithPoolSize(file.Ingest.PoolSize))
	}

	pipeline, err := ingest.NewPipeline(store, embedder, opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if err := pipeline.Ingest(c.Context, docs); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "indexed %d documents\n", len(docs))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument required")
	}

	file, err := loadConfig(c)
	if err != nil {
		return err
	}

	embedder, err := provider.NewEmbedder(file.ProviderConfig())
	if err != nil {
		return err
	}

	store, err := file.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, err := vectorstore.NewSearcher(store, embedder)
	if err != nil {
		return err
	}

	results, err := searcher.Search(c.Context, query, vectorstore.SearchRequest{
		TopK:     c.Int("top-k"),
		MinScore: float32(c.Float64("min-score")),
	})
	if err != nil {
		return err
	}

	for _, hit := range results {
		fmt.Printf("%.4f  %s  %s\n", hit.Score, hit.Document.ID, firstLine(hit.Document.Content))
	}
	return nil
}

// readDocuments loads one document per non-empty line.
func readDocuments(path, source string) ([]core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []core.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		doc := core.Document{
			ID:      core.DocumentID(line),
			Content: line,
		}
		if source != "" {
			doc.Metadata = map[string]any{"source": source}
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
