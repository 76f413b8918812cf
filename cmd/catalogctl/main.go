// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command catalogctl is the matcher's admin CLI: rebuild the Pattern
// Index from an endpoint declaration file, or run a single non-interactive
// match without standing up the server (the Go analogue of the original
// Rust implementation's `cli.rs` one-shot mode).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/bennekrouf/matcher/internal/config"
	"github.com/bennekrouf/matcher/internal/embedding"
	"github.com/bennekrouf/matcher/internal/extract"
	"github.com/bennekrouf/matcher/internal/index"
	"github.com/bennekrouf/matcher/internal/matcherapi"
	"github.com/bennekrouf/matcher/internal/publish"
	"github.com/bennekrouf/matcher/internal/result"
	"github.com/bennekrouf/matcher/internal/search"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath   string
		badgerPath   string
		embedderKind string
		ollamaURL    string
		ollamaMod    string
	)

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Administer the natural-language endpoint matcher's Pattern Index",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "endpoints.yaml", "Path to the endpoint declaration file")
	root.PersistentFlags().StringVar(&badgerPath, "badger-path", "./matcher-data", "BadgerDB directory for the embedded vector store")
	root.PersistentFlags().StringVar(&embedderKind, "embedder", "ollama", "Embedder backend: \"ollama\" (direct HTTP client) or \"langchain\" (langchaingo-routed)")
	root.PersistentFlags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama base URL used for embeddings")
	root.PersistentFlags().StringVar(&ollamaMod, "ollama-model", "all-minilm", "Ollama embedding model name")

	root.AddCommand(newBuildCmd(&configPath, &badgerPath, &embedderKind, &ollamaURL, &ollamaMod))
	root.AddCommand(newQueryCmd(&configPath, &badgerPath, &embedderKind, &ollamaURL, &ollamaMod))
	root.AddCommand(newServeCmd(&configPath, &badgerPath, &embedderKind, &ollamaURL, &ollamaMod))
	return root
}

func newBuildCmd(configPath, badgerPath, embedderKind, ollamaURL, ollamaMod *string) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Rebuild the Pattern Index from the endpoint declaration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load endpoint declaration: %w", err)
			}
			db, store, closeStore, err := openBadger(*badgerPath)
			if err != nil {
				return err
			}
			defer closeStore()
			_ = db

			embedder, err := embedding.New(*embedderKind, *ollamaURL, *ollamaMod, vectorstore.Dimension)
			if err != nil {
				return fmt.Errorf("construct embedder: %w", err)
			}
			builder := index.NewBuilder(embedder, store, slog.Default())

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			if err := builder.Build(ctx, cat); err != nil {
				return fmt.Errorf("build pattern index: %w", err)
			}
			fmt.Printf("rebuilt pattern index: %d endpoints\n", cat.Len())
			return nil
		},
	}
}

func newQueryCmd(configPath, badgerPath, embedderKind, ollamaURL, ollamaMod *string) *cobra.Command {
	var (
		query     string
		language  string
		all       bool
		doReload  bool
		indentOut bool
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single non-interactive match without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load endpoint declaration: %w", err)
			}
			_, store, closeStore, err := openBadger(*badgerPath)
			if err != nil {
				return err
			}
			defer closeStore()

			embedder, err := embedding.New(*embedderKind, *ollamaURL, *ollamaMod, vectorstore.Dimension)
			if err != nil {
				return fmt.Errorf("construct embedder: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if doReload {
				builder := index.NewBuilder(embedder, store, slog.Default())
				if err := builder.Build(ctx, cat); err != nil {
					return fmt.Errorf("reload pattern index: %w", err)
				}
			}

			searcher := search.NewSearcher(embedder, store)
			processor := result.NewProcessor(cat, extract.NewDefaultRegistry(), result.DefaultThreshold, slog.Default())
			svc := matcherapi.NewService(cat, searcher, processor, slog.Default())

			results, best, isNegated, err := svc.Match(ctx, query, language, all)
			if err != nil {
				return fmt.Errorf("match query: %w", err)
			}

			out := map[string]any{
				"score":       best,
				"has_matches": len(results) > 0,
				"is_negated":  isNegated,
				"matches":     results,
			}
			enc := json.NewEncoder(os.Stdout)
			if indentOut {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "The natural-language query to match")
	cmd.Flags().StringVar(&language, "language", "en", "Language code of the query")
	cmd.Flags().BoolVar(&all, "all", false, "Return up to 5 candidates instead of best-only")
	cmd.Flags().BoolVar(&doReload, "reload", false, "Force a full Pattern Index rebuild before matching")
	cmd.Flags().BoolVar(&indentOut, "pretty", false, "Pretty-print the JSON result")
	cmd.MarkFlagRequired("query")
	return cmd
}

// newServeCmd starts the same Matcher Service RPC surface as matcherd,
// sharing matcherapi.NewRouter so the two entrypoints cannot drift: this
// is catalogctl's "everything in one binary" mode, the cobra analogue of
// the teacher's cmd_chat.go subcommands bootstrapping their own clients.
func newServeCmd(configPath, badgerPath, embedderKind, ollamaURL, ollamaMod *string) *cobra.Command {
	var (
		port     int
		natsURL  string
		stream   string
		topic    string
		debugLog bool
		reload   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the matcher HTTP/WebSocket server (equivalent to matcherd)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelInfo
			if debugLog {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			cat, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load endpoint declaration: %w", err)
			}
			logger.Info("catalogctl serve: endpoint declaration loaded", slog.Int("endpoints", cat.Len()))

			embedder, err := embedding.New(*embedderKind, *ollamaURL, *ollamaMod, vectorstore.Dimension)
			if err != nil {
				return fmt.Errorf("construct embedder: %w", err)
			}

			_, store, closeStore, err := openBadger(*badgerPath)
			if err != nil {
				return err
			}
			defer closeStore()

			if reload {
				buildCtx, buildCancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
				err := index.NewBuilder(embedder, store, logger).Build(buildCtx, cat)
				buildCancel()
				if err != nil {
					return fmt.Errorf("build pattern index: %w", err)
				}
			}

			nc, err := nats.Connect(natsURL)
			if err != nil {
				return fmt.Errorf("connect to nats: %w", err)
			}
			defer nc.Close()
			natsPublisher, err := publish.NewNatsPublisher(nc)
			if err != nil {
				return fmt.Errorf("jetstream context unavailable: %w", err)
			}

			searcher := search.NewSearcher(embedder, store)
			processor := result.NewProcessor(cat, extract.NewDefaultRegistry(), result.DefaultThreshold, logger)
			svc := matcherapi.NewService(cat, searcher, processor, logger)
			handlers := matcherapi.NewHandlers(svc, natsPublisher, store, stream, topic, logger)
			router := matcherapi.NewRouter(handlers, debugLog)

			addr := fmt.Sprintf(":%d", port)
			srv := &http.Server{Addr: addr, Handler: router}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("catalogctl serve: listening", slog.String("address", addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
				logger.Info("catalogctl serve: shutting down")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&natsURL, "nats-url", nats.DefaultURL, "NATS server URL for the Action Publisher")
	cmd.Flags().StringVar(&stream, "stream", "actions", "NATS stream name")
	cmd.Flags().StringVar(&topic, "topic", "matched", "NATS topic name")
	cmd.Flags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&reload, "reload", false, "Rebuild the Pattern Index on startup before serving")
	return cmd
}

func openBadger(path string) (*badger.DB, vectorstore.Store, func(), error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open badger store at %q: %w", path, err)
	}
	store := vectorstore.NewBadgerStore(db, slog.Default())
	return db, store, func() { db.Close() }, nil
}
