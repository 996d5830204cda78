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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/docflow"
	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/pipeline"
	"github.com/poiesic/docflow/prompt"
	"github.com/poiesic/docflow/search"
	"github.com/urfave/cli/v2"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docflow",
		Usage: "Document processing pipeline with fingerprint memoization and semantic search",
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
				Name:      "pipeline",
				Usage:     "Run the full convert/validate/analyze/embed pipeline over a source tree",
				ArgsUsage: "<source-dir>",
				Action:    stageCommand(""),
				Flags:     pipelineFlags(),
			},
			{
				Name:      "convert",
				Usage:     "Run only the conversion stage",
				ArgsUsage: "<source-dir>",
				Action:    stageCommand(core.StepConvert),
				Flags:     pipelineFlags(),
			},
			{
				Name:      "validate",
				Usage:     "Run only the validation stage",
				ArgsUsage: "<source-dir>",
				Action:    stageCommand(core.StepValidate),
				Flags:     pipelineFlags(),
			},
			{
				Name:      "analyze",
				Usage:     "Run only the analysis stage",
				ArgsUsage: "<source-dir>",
				Action:    stageCommand(core.StepAnalyze),
				Flags:     pipelineFlags(),
			},
			{
				Name:      "embed",
				Usage:     "Run only the embedding stage",
				ArgsUsage: "<source-dir>",
				Action:    stageCommand(core.StepEmbed),
				Flags:     pipelineFlags(),
			},
			{
				Name:      "search",
				Usage:     "Search the vector index for documents similar to a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Path to BadgerDB vector index directory",
						EnvVars:  []string{"DOCFLOW_INDEX"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						EnvVars: []string{"DOCFLOW_EMBEDDING_HOST"},
						Value:   "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						EnvVars: []string{"DOCFLOW_EMBEDDING_MODEL"},
						Value:   "embeddinggemma",
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Similarity threshold for matches",
						Value: 0.60,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Conversion output format (repeatable): markdown, html, json, text, doctags",
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Halt the run on the first failure",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of concurrent document workers",
			Value:   1,
		},
		&cli.StringFlag{
			Name:  "resume-from",
			Usage: "Skip stages before this step (conversion, validation, analysis, embedding)",
		},
		&cli.StringSliceFlag{
			Name:  "skip",
			Usage: "Omit a step (repeatable)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Log would-run decisions without calling services or writing files",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Bypass step memoization for this invocation",
		},
		&cli.StringFlag{
			Name:    "index",
			Aliases: []string{"i"},
			Usage:   "Path to BadgerDB vector index directory (omit to skip indexing)",
			EnvVars: []string{"DOCFLOW_INDEX"},
		},
		&cli.StringFlag{
			Name:    "convert-host",
			Usage:   "Document rendering service host URL",
			EnvVars: []string{"DOCFLOW_CONVERT_HOST"},
			Value:   docflow.DefaultConvertHost,
		},
		&cli.StringFlag{
			Name:    "model-host",
			Usage:   "Chat model service host URL",
			EnvVars: []string{"DOCFLOW_MODEL_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"DOCFLOW_EMBEDDING_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "model",
			Usage:   "Chat model for validation and analysis",
			EnvVars: []string{"DOCFLOW_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"DOCFLOW_EMBEDDING_MODEL"},
			Value:   "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "embed-dimensions",
			Usage:   "Expected embedding vector length (positive integer)",
			EnvVars: []string{"DOCFLOW_EMBED_DIMENSIONS"},
		},
		&cli.StringFlag{
			Name:  "validate-prompt",
			Usage: "Fallback validation prompt path",
		},
		&cli.StringFlag{
			Name:  "analysis-prompt",
			Usage: "Fallback analysis prompt path",
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum embedding attempts",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for embedding backoff",
			Value: 2 * time.Second,
		},
	}
}

// stageCommand builds the action for one pipeline entry point. An empty
// stage runs the whole pipeline; a named stage isolates itself by combining
// resume-from and skip.
func stageCommand(stage core.Step) cli.ActionFunc {
	return func(c *cli.Context) error {
		source := c.Args().First()
		if source == "" {
			return fmt.Errorf("source directory is required")
		}

		// Structural/config errors fail here, before any document is touched.
		dimensions, err := ai.ParseDimensions(c.String("embed-dimensions"))
		if err != nil {
			return err
		}

		formats, err := core.ParseOutputFormats(c.StringSlice("format"))
		if err != nil {
			return err
		}

		aiConfig := ai.NewConfig(
			ai.WithModelHost(c.String("model-host")),
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithModel(c.String("model")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithEmbedDimensions(dimensions),
		)
		if err := aiConfig.Validate(); err != nil {
			return fmt.Errorf("invalid AI configuration: %w", err)
		}

		libOpts := []docflow.LibraryOption{
			docflow.WithAIConfig(aiConfig),
			docflow.WithConvertHost(c.String("convert-host")),
		}
		if c.String("index") != "" {
			libOpts = append(libOpts, docflow.WithVectorIndex(c.String("index")))
		}

		lib, err := docflow.NewLibrary(libOpts...)
		if err != nil {
			return err
		}
		defer lib.Close()

		opts := []pipeline.Option{
			pipeline.WithWorkers(c.Int("workers")),
			pipeline.WithFailFast(c.Bool("fail-fast")),
			pipeline.WithDryRun(c.Bool("dry-run")),
			pipeline.WithForce(c.Bool("force")),
			pipeline.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
			pipeline.WithProgressWriter(os.Stderr),
		}
		if len(formats) > 0 {
			opts = append(opts, pipeline.WithFormats(formats...))
		}
		// An explicitly configured fallback prompt must parse before any
		// document is touched.
		if path := c.String("validate-prompt"); path != "" {
			if _, err := prompt.Load(path); err != nil {
				return err
			}
			opts = append(opts, pipeline.WithValidatePrompt(path))
		}
		if path := c.String("analysis-prompt"); path != "" {
			if _, err := prompt.Load(path); err != nil {
				return err
			}
			opts = append(opts, pipeline.WithAnalysisPrompt(path))
		}

		stageOpts, err := stageOptions(stage, c.String("resume-from"), c.StringSlice("skip"))
		if err != nil {
			return err
		}
		opts = append(opts, stageOpts...)

		p, err := lib.NewPipeline(opts...)
		if err != nil {
			return err
		}
		defer p.Release()

		return p.Run(context.Background(), source)
	}
}

// stageOptions resolves the resume/skip configuration. Stage commands pin
// both; the pipeline command takes them from flags.
func stageOptions(stage core.Step, resumeFrom string, skips []string) ([]pipeline.Option, error) {
	if stage != "" {
		var others []core.Step
		for _, step := range core.StepOrder {
			if step != stage {
				others = append(others, step)
			}
		}
		return []pipeline.Option{
			pipeline.WithResumeFrom(stage),
			pipeline.WithSkip(others...),
		}, nil
	}

	var opts []pipeline.Option
	if resumeFrom != "" {
		opts = append(opts, pipeline.WithResumeFrom(core.Step(resumeFrom)))
	}
	if len(skips) > 0 {
		steps := make([]core.Step, len(skips))
		for i, s := range skips {
			steps[i] = core.Step(s)
		}
		opts = append(opts, pipeline.WithSkip(steps...))
	}
	return opts, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	lib, err := docflow.NewLibrary(
		docflow.WithAIConfig(aiConfig),
		docflow.WithVectorIndex(c.String("index")),
	)
	if err != nil {
		return err
	}
	defer lib.Close()

	searcher, err := lib.NewSearcher(
		search.WithMinSimilarity(float32(c.Float64("min-similarity"))),
	)
	if err != nil {
		return err
	}

	matches, err := searcher.FindSimilar(context.Background(), query, c.Int("max-hits"))
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, match := range matches {
		fmt.Printf("%.3f  %s  (model %s, indexed %s)\n",
			match.Score, match.Entry.Path, match.Entry.Model,
			match.Entry.IndexedAt.Format(time.RFC3339))
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
