// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command matcherd starts the natural-language endpoint matcher service:
// it loads the endpoint declaration file, rebuilds the Pattern Index when
// -reload is given, and serves the Matcher Service RPC surface (one-shot MatchQuery over
// HTTP, InteractiveMatch over a WebSocket, and a health check) with Gin.
//
// Usage:
//
//	matcherd -config endpoints.yaml
//	matcherd -config endpoints.yaml -debug -reload
//	matcherd -config endpoints.yaml -embedder langchain
//
// Exit codes:
//
//	0 - clean shutdown
//	1 - endpoint declaration invalid, or an unknown -embedder value
//	2 - vector store or embedding model unreachable at startup
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/nats-io/nats.go"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/config"
	"github.com/bennekrouf/matcher/internal/embedding"
	"github.com/bennekrouf/matcher/internal/extract"
	"github.com/bennekrouf/matcher/internal/index"
	"github.com/bennekrouf/matcher/internal/matcherapi"
	"github.com/bennekrouf/matcher/internal/publish"
	"github.com/bennekrouf/matcher/internal/result"
	"github.com/bennekrouf/matcher/internal/search"
	"github.com/bennekrouf/matcher/internal/telemetry"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "endpoints.yaml", "Path to the endpoint declaration file")
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug logging and Gin debug mode")
	reload := flag.Bool("reload", false, "Rebuild the Pattern Index on startup before serving")
	watch := flag.Bool("watch", false, "Watch the endpoint declaration file and rebuild the index on change")
	badgerPath := flag.String("badger-path", "./matcher-data", "BadgerDB directory for the embedded vector store")
	embedderKind := flag.String("embedder", "ollama", "Embedder backend: \"ollama\" (direct HTTP client) or \"langchain\" (langchaingo-routed)")
	ollamaURL := flag.String("ollama-url", "http://localhost:11434", "Ollama base URL used for embeddings")
	ollamaModel := flag.String("ollama-model", "all-minilm", "Ollama embedding model name")
	natsURL := flag.String("nats-url", nats.DefaultURL, "NATS server URL for the Action Publisher")
	streamName := flag.String("stream", "actions", "NATS stream name completed matches are published to")
	topicName := flag.String("topic", "matched", "NATS subject/topic under stream a completed match is published to")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	shutdownTelemetry, err := telemetry.Init("matcherd")
	if err != nil {
		logger.Error("matcherd: telemetry init failed", slog.Any("error", err))
		return 2
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error("matcherd: telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	cat, err := config.Load(*configPath)
	if err != nil {
		logger.Error("matcherd: invalid endpoint declaration", slog.Any("error", err))
		return 1
	}
	logger.Info("matcherd: endpoint declaration loaded", slog.Int("endpoints", cat.Len()))

	embedder, err := embedding.New(*embedderKind, *ollamaURL, *ollamaModel, vectorstore.Dimension)
	if err != nil {
		logger.Error("matcherd: embedder construction failed", slog.Any("error", err))
		return 1
	}

	db, err := badger.Open(badger.DefaultOptions(*badgerPath))
	if err != nil {
		logger.Error("matcherd: badger store unreachable", slog.Any("error", err))
		return 2
	}
	defer db.Close()
	store := vectorstore.NewBadgerStore(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if *reload {
		builder := index.NewBuilder(embedder, store, logger)
		if err := builder.Build(ctx, cat); err != nil {
			cancel()
			logger.Error("matcherd: pattern index build failed", slog.Any("error", err))
			return 2
		}
	}
	cancel()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		logger.Error("matcherd: nats unreachable", slog.Any("error", err))
		return 2
	}
	defer nc.Close()
	natsPublisher, err := publish.NewNatsPublisher(nc)
	if err != nil {
		logger.Error("matcherd: jetstream context unavailable", slog.Any("error", err))
		return 2
	}

	searcher := search.NewSearcher(embedder, store)
	processor := result.NewProcessor(cat, extract.NewDefaultRegistry(), result.DefaultThreshold, logger)
	svc := matcherapi.NewService(cat, searcher, processor, logger)
	handlers := matcherapi.NewHandlers(svc, natsPublisher, store, *streamName, *topicName, logger)

	if *watch {
		watchDone := make(chan struct{})
		defer close(watchDone)
		builder := index.NewBuilder(embedder, store, logger)
		go func() {
			err := config.Watch(*configPath, logger, func(newCat *catalog.Catalog) {
				buildCtx, buildCancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer buildCancel()
				if err := builder.Build(buildCtx, newCat); err != nil {
					logger.Error("matcherd: rebuild on config change failed", slog.Any("error", err))
				}
			}, watchDone)
			if err != nil {
				logger.Error("matcherd: config watcher stopped", slog.Any("error", err))
			}
		}()
	}

	router := matcherapi.NewRouter(handlers, *debug)

	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{Addr: addr, Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("matcherd: listening", slog.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("matcherd: server failed", slog.Any("error", err))
		return 2
	case <-quit:
		logger.Info("matcherd: shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("matcherd: graceful shutdown failed", slog.Any("error", err))
		return 2
	}
	return 0
}
