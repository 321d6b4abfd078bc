package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"taxrag/internal/analyzer"
	"taxrag/internal/chunker"
	"taxrag/internal/config"
	"taxrag/internal/embedding"
	"taxrag/internal/embedding/hash"
	"taxrag/internal/embedding/openai"
	"taxrag/internal/generator"
	"taxrag/internal/retriever"
	"taxrag/internal/service"
	"taxrag/internal/tui"
	"taxrag/internal/vectorstore"
	"taxrag/internal/vectorstore/memory"
	"taxrag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()
	logger := &log.DefaultLogger

	var (
		cfgPath string
		clearDB bool
		analyze bool
		out     string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/taxrag/config.yaml if not provided)")
	flag.BoolVar(&clearDB, "clear", false, "Clear the vector collection before doing anything else")
	flag.BoolVar(&analyze, "analyze", false, "Run the tax risk analysis battery and write a markdown report")
	flag.StringVar(&out, "out", "report.md", "Report output path (with --analyze)")
	flag.Parse()
	inputs := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Assemble components
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "hash", "":
		emb = hash.NewEmbedder(cfg.Embedder.Dimension)
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			logger.Fatal().Msg("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("openai embedder init failed")
		}
		emb = client
	default:
		logger.Fatal().Str("type", cfg.Embedder.Type).Msg("unknown embedder")
	}

	var index vectorstore.Index
	switch cfg.VectorStore.Type {
	case "memory", "":
		index = memory.NewIndex(emb)
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			logger.Fatal().Msg("qdrant config missing")
		}
		qidx, err := qdrant.NewIndex(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
		}, emb, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("qdrant init failed")
		}
		defer qidx.Close()
		index = qidx
	default:
		logger.Fatal().Str("type", cfg.VectorStore.Type).Msg("unknown vector store")
	}

	gen, err := generator.NewGroqClient(generator.GroqConfig{
		BaseURL:     cfg.Generator.BaseURL,
		APIKeyEnv:   cfg.Generator.APIKeyEnv,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		Timeout:     time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("generation client init failed")
	}

	ch := chunker.NewRecursiveChunker(cfg.Chunker.Size, cfg.Chunker.Overlap)
	ret := retriever.New(index, cfg.Retriever.TopK)
	svc := service.New(ch, index, ret, generator.New(gen, logger), logger)

	ctx := context.Background()

	if clearDB {
		if err := svc.ClearAll(ctx); err != nil {
			logger.Fatal().Err(err).Msg("clear failed")
		}
		logger.Info().Msg("index cleared")
		if len(inputs) == 0 && !analyze {
			return
		}
	}

	var summaryLine string
	for _, path := range inputs {
		res, err := svc.IngestFile(ctx, path)
		if err != nil {
			logger.Fatal().Err(err).Str("file", path).Msg("ingest failed")
		}
		logger.Info().Str("file", res.Name).Int("chunks", res.Chunks).
			Int("words", res.Overview.Words).Msg("ingested")
		summaryLine = res.Overview.Summary
	}

	if svc.Count(ctx) == 0 {
		fmt.Println("Usage: taxrag [--config=config.yaml] [--clear] [--analyze [--out=report.md]] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

	if analyze {
		report := svc.ReportMarkdown(ctx, analyzer.DefaultSections())
		if err := os.WriteFile(out, []byte(report), 0o644); err != nil {
			logger.Fatal().Err(err).Str("path", out).Msg("failed to write report")
		}
		logger.Info().Str("path", out).Msg("report written")
		return
	}

	m := tui.New(svc, summaryLine)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Fatal().Err(err).Msg("tui failed")
	}
}
