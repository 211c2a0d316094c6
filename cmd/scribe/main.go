package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/scribe/internal/api"
	"github.com/MikeSquared-Agency/scribe/internal/config"
	"github.com/MikeSquared-Agency/scribe/internal/embedding"
	"github.com/MikeSquared-Agency/scribe/internal/index"
	"github.com/MikeSquared-Agency/scribe/internal/ingest"
	"github.com/MikeSquared-Agency/scribe/internal/search"
	"github.com/MikeSquared-Agency/scribe/internal/turns"
)

func main() {
	cmd := &cli.Command{
		Name:  "scribe",
		Usage: "Ingest chat-assistant conversation exports and search them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "vendor",
				Usage:   "Export vendor label (openai, claude, ...)",
				Value:   "openai",
				Sources: cli.EnvVars("SCRIBE_VENDOR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Parse export files and print the ingestion report",
				ArgsUsage: "<export.json> [more...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "messages",
						Usage: "Also print the canonical message stream",
					},
				},
				Action: runIngest,
			},
			{
				Name:      "serve",
				Usage:     "Ingest export files and serve the search API",
				ArgsUsage: "<export.json> [more...]",
				Action:    runServe,
			},
			{
				Name:      "search",
				Usage:     "Lexical-only search over export files, no server",
				ArgsUsage: "<query> <export.json> [more...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "k",
						Usage: "Maximum results",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Substring/identifier pre-filter on candidates",
					},
					&cli.BoolFlag{
						Name:  "regex",
						Usage: "Treat the filter as a regular expression",
					},
				},
				Action: runSearch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("scribe error", "error", err)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("at least one export file is required")
	}

	msgs, reports, err := parseFiles(cmd.String("vendor"), cmd.Args().Slice())
	if err != nil {
		return err
	}

	grouped := turns.Group(msgs, cfg.TurnGap)
	summaries := index.Build(msgs)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	out := map[string]any{
		"reports":       reports,
		"turns":         len(grouped),
		"conversations": summaries,
	}
	if cmd.Bool("messages") {
		out["messages"] = msgs
	}
	return enc.Encode(out)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("scribe starting", "port", cfg.Port)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("at least one export file is required")
	}

	msgs, _, err := parseFiles(cmd.String("vendor"), cmd.Args().Slice())
	if err != nil {
		return err
	}

	embedder := embedding.NewClient(cfg.EmbedBaseURL, cfg.EmbedModel, cfg.EmbedAPIKey,
		embedding.Flavor(cfg.EmbedFlavor), slog.Default())
	corpus := buildCorpus(ctx, msgs, embedder, cfg.EmbedChunkSize)

	ranker := search.NewHybridRanker(embedder, slog.Default())
	srv := api.NewServer(cfg.Port, corpus, ranker, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("scribe ready",
		"port", cfg.Port,
		"documents", len(corpus.Documents),
		"vectors", len(corpus.Vectors),
		"conversations", len(corpus.Summaries))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if cmd.Args().Len() < 2 {
		return fmt.Errorf("usage: scribe search <query> <export.json> [more...]")
	}
	query := cmd.Args().First()

	msgs, _, err := parseFiles(cmd.String("vendor"), cmd.Args().Tail())
	if err != nil {
		return err
	}

	docs := make([]search.Document, 0, len(msgs))
	for _, m := range msgs {
		docs = append(docs, search.DocumentFromMessage(m))
	}
	if filter := cmd.String("filter"); filter != "" {
		kept := docs[:0]
		for _, d := range docs {
			if search.Matches(d.Title, d.Body, filter, cmd.Bool("regex")) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	results := search.NewLexicalScorer().Rank(query, docs, int(cmd.Int("k")))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func parseFiles(vendor string, paths []string) ([]ingest.ParsedMessage, []*ingest.Report, error) {
	parser := ingest.NewParser(vendor, slog.Default())

	var msgs []ingest.ParsedMessage
	var reports []*ingest.Report
	for _, path := range paths {
		m, report, err := parser.ParseFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
		msgs = append(msgs, m...)
		reports = append(reports, report)
	}
	return msgs, reports, nil
}

// buildCorpus projects messages onto the search surface and embeds them.
// A partial or failed embedding run degrades to lexical-only coverage for
// the unembedded tail rather than aborting startup.
func buildCorpus(ctx context.Context, msgs []ingest.ParsedMessage, embedder *embedding.Client, chunkSize int) *api.Corpus {
	docs := make([]search.Document, 0, len(msgs))
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		d := search.DocumentFromMessage(m)
		docs = append(docs, d)
		texts = append(texts, m.Text)
	}

	vectors := make(map[string][]float64, len(docs))
	vecs, err := embedder.EmbedBatch(ctx, texts, chunkSize)
	if err != nil {
		slog.Warn("embedding incomplete, continuing with partial vectors",
			"embedded", len(vecs), "total", len(texts), "error", err)
	}
	for i, v := range vecs {
		if len(v) > 0 {
			vectors[docs[i].ID] = v
		}
	}

	return &api.Corpus{
		Documents: docs,
		Vectors:   vectors,
		Summaries: index.Build(msgs),
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
