package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coursechat/coursechat"
	"github.com/coursechat/coursechat/config"
	"github.com/coursechat/coursechat/embedding"
	"github.com/coursechat/coursechat/flow"
	"github.com/coursechat/coursechat/httpapi"
	"github.com/coursechat/coursechat/ingest"
	"github.com/coursechat/coursechat/logging"
	"github.com/coursechat/coursechat/model/anthropic"
	"github.com/coursechat/coursechat/observability"
	"github.com/coursechat/coursechat/session"
	"github.com/coursechat/coursechat/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.NewDefaultSlogLogger()
	metrics := observability.NewMetrics("coursechat", prometheus.DefaultRegisterer)

	ctx := context.Background()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	vs := store.New(embedder, func(o *store.Options) {
		o.MatchThreshold = cfg.CourseMatchThreshold
		o.Logger = logger
	})

	docs, err := ingest.LoadDir(cfg.DocsDir)
	if err != nil {
		log.Fatalf("loading course documents failed: %v", err)
	}
	if err := ingest.Populate(ctx, vs, docs, logger); err != nil {
		log.Fatalf("populating vector store failed: %v", err)
	}
	metrics.ActiveCourses.Set(float64(vs.CourseCount()))
	log.Printf("catalog loaded: %d courses, %d chunks", vs.CourseCount(), vs.ChunkCount())

	llm := anthropic.NewModel(func(o *anthropic.Options) {
		o.APIKey = cfg.AnthropicAPIKey
		o.Model = sdk.Model(cfg.AnthropicModel)
		o.MaxTokens = int64(cfg.MaxTokens)
		o.Temperature = cfg.Temperature
	})

	var sessions session.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := session.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.HistoryWindow)
		if err != nil {
			log.Fatalf("session store init failed: %v", err)
		}
		defer pgStore.Close()
		sessions = pgStore
		log.Printf("session store: postgres")
	} else {
		sessions = session.NewInMemoryStore(cfg.HistoryWindow)
		log.Printf("session store: in-memory")
	}

	chat, err := coursechat.New(llm, vs, func(o *coursechat.Options) {
		o.MaxResults = cfg.MaxResults
		o.MaxToolRounds = cfg.MaxToolRounds
		o.HistoryWindow = cfg.HistoryWindow
		o.SystemPrompt = flow.DefaultSystemPrompt
		o.Sessions = sessions
		o.Metrics = metrics
		o.Logger = logger
	})
	if err != nil {
		log.Fatalf("chat init failed: %v", err)
	}

	api := httpapi.New(chat, logger)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

func newEmbedder(cfg config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return embedding.NewOpenAIEmbedder(func(o *embedding.OpenAIOptions) {
			o.APIKey = cfg.OpenAIAPIKey
			if cfg.EmbeddingModel != "" {
				o.Model = openai.EmbeddingModel(cfg.EmbeddingModel)
			}
		}), nil
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.EmbeddingModel, 0), nil
	case "mock":
		log.Printf("embedding provider: mock (development only)")
		return embedding.NewMockEmbedder(0), nil
	default:
		return nil, errors.New("unknown embedding provider")
	}
}
