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
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/attestor"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/ingestion"
	"github.com/poiesic/attestor/search"
	"github.com/urfave/cli/v2"
)

// newEngine opens the engine behind every command.
var newEngine = attestor.NewEngine

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB corpus directory",
		Required: required,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "attestor",
		Usage: "Answer compliance questions with evidence from policy documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load a directory of policy files into the corpus",
				Action: ingestCommand,
				Flags: []cli.Flag{
					dbFlag(true),
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory of .txt and .md policy files",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "default-category",
						Usage: "Category for files whose front matter names none",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of files parsed concurrently",
						Value: 4,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List the policies in the corpus",
				Action: listCommand,
				Flags: []cli.Flag{
					dbFlag(true),
					&cli.StringSliceFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Only list policies in these categories",
					},
				},
			},
			{
				Name:   "categories",
				Usage:  "Print the known policy categories",
				Action: categoriesCommand,
			},
			{
				Name:   "search",
				Usage:  "Answer a file of questions against the corpus",
				Action: searchCommand,
				Flags: []cli.Flag{
					dbFlag(false),
					&cli.StringFlag{
						Name:     "questions",
						Aliases:  []string{"q"},
						Usage:    "YAML or JSON list of {number, text} questions",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML config file; explicit flags override it",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Only answer the first N questions (0 answers all)",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Inference service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Inference model name",
						Value: "qwen2.5:7b",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Inference service API token",
					},
					&cli.Float64Flag{
						Name:  "temperature",
						Usage: "Sampling temperature",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Documents per scanner batch",
						Value: search.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Scanner batches running at once",
						Value: search.DefaultPoolSize,
					},
					&cli.IntFlag{
						Name:  "question-concurrency",
						Usage: "Questions searched at once",
						Value: search.DefaultQuestionConcurrency,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout for a single inference call",
						Value: search.DefaultCallTimeout,
					},
					&cli.DurationFlag{
						Name:  "request-timeout",
						Usage: "HTTP client timeout (0 disables it)",
					},
					&cli.IntFlag{
						Name:  "retries",
						Usage: "Retries after an inference transport failure",
						Value: search.DefaultRetries,
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Usage: "Lifetime of cached match verdicts",
						Value: time.Hour,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write results to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report progress on stderr",
					},
				},
			},
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []ingestion.Option{ingestion.WithPoolSize(c.Int("pool-size"))}
	if name := c.String("default-category"); name != "" {
		category, err := core.ParseCategory(name)
		if err != nil {
			return err
		}
		opts = append(opts, ingestion.WithDefaultCategory(category))
	}

	engine, err := newEngine(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	report, err := pipeline.IngestDirectory(ctx, c.String("dir"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Ingested %d policies\n", len(report.Added))
	for _, skipped := range report.Skipped {
		fmt.Fprintf(out, "Skipped %s: %v\n", skipped.Path, skipped.Err)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := newEngine(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer engine.Close()

	var docs []*core.PolicyDocument
	if names := c.StringSlice("category"); len(names) > 0 {
		categories := make([]core.Category, 0, len(names))
		for _, name := range names {
			category, err := core.ParseCategory(name)
			if err != nil {
				return err
			}
			categories = append(categories, category)
		}
		docs, err = engine.Corpus().ListByCategories(ctx, categories...)
	} else {
		docs, err = engine.Corpus().ListDocuments(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}

	out := c.App.Writer
	for _, doc := range docs {
		fmt.Fprintf(out, "%s\t%s\t%s\t%d chars\n", doc.Category, doc.PolicyNumber, doc.PolicyName, len(doc.Content))
	}
	return nil
}

func categoriesCommand(c *cli.Context) error {
	for _, category := range core.Categories() {
		fmt.Fprintln(c.App.Writer, category)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	settings, err := resolveSearchSettings(c, cfg)
	if err != nil {
		return err
	}

	questions, err := loadQuestions(c.String("questions"))
	if err != nil {
		return err
	}

	engine, err := newEngine(settings.db,
		attestor.WithAIConfig(settings.aiConfig),
		attestor.WithCacheConfig(settings.cacheConfig),
	)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer engine.Close()

	opts := settings.options
	if c.Bool("progress") {
		opts = append(opts, search.WithProgress(c.App.ErrWriter))
	}

	coordinator, err := engine.NewCoordinator(opts...)
	if err != nil {
		return fmt.Errorf("failed to create search coordinator: %w", err)
	}
	defer coordinator.Close()

	slog.Info("searching", "host", settings.aiConfig.Host, "model", settings.aiConfig.Model, "questions", len(questions))
	results := coordinator.SearchAll(ctx, questions, c.Int("limit"))

	out := c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
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
