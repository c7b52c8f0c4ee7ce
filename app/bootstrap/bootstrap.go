package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/config"
	"github.com/aihub/rag-qa-go/internal/knowledge"
	"github.com/aihub/rag-qa-go/internal/logger"
	"github.com/aihub/rag-qa-go/internal/preprocess"
	"github.com/aihub/rag-qa-go/internal/storage"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	Indexer   *knowledge.Indexer
	Generator *knowledge.Generator
	Store     knowledge.VectorStore
	Embedder  knowledge.Embedder
	Archiver  *storage.BatchArchiver

	cleanupTasks []func() error
}

// Init bootstraps configuration, logger and the indexing/retrieval services.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig

	app := &App{}
	app.cleanupTasks = append(app.cleanupTasks, func() error {
		logger.Sync()
		return nil
	})

	// Redis是可选的，只服务嵌入缓存
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			DB:   cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			redisClient = client
			app.cleanupTasks = append(app.cleanupTasks, client.Close)
			logger.Info("Redis connected", zap.String("host", cfg.Redis.Host))
		}
		cancel()
	}

	store, err := newVectorStore(cfg.Knowledge.VectorStore)
	if err != nil {
		return nil, err
	}
	app.Store = store

	embedder := knowledge.NewOpenAIEmbedder(cfg.Knowledge.Embedding.APIKey, cfg.Knowledge.Embedding.Model)
	if cfg.Knowledge.Embedding.Cache.Enabled && redisClient != nil {
		ttl := time.Duration(cfg.Knowledge.Embedding.Cache.TTL) * time.Second
		embedder = knowledge.NewCachedEmbedder(embedder, redisClient, ttl)
	}
	app.Embedder = embedder

	chat := knowledge.NewOpenAIChatModel(cfg.Knowledge.Answer.APIKey, cfg.Knowledge.Answer.Model)

	pipeline := preprocess.NewPipeline(cfg.Preprocess)
	app.Indexer = knowledge.NewIndexer(pipeline, embedder, store)
	app.Generator = knowledge.NewGenerator(embedder, store, chat, cfg.Knowledge.Answer.TopK, cfg.Knowledge.Answer.Prompt)

	if cfg.Storage.Enabled {
		archiver, err := storage.NewBatchArchiver(cfg.Storage)
		if err != nil {
			logger.Warn("Batch archiver unavailable", zap.Error(err))
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := archiver.EnsureBucket(ctx); err != nil {
				logger.Warn("Archive bucket unavailable, archiving disabled", zap.Error(err))
			} else {
				app.Archiver = archiver
			}
			cancel()
		}
	}

	logger.Info("Application bootstrapped",
		zap.String("vector_store", cfg.Knowledge.VectorStore.Provider),
		zap.Bool("embedding_cache", cfg.Knowledge.Embedding.Cache.Enabled && redisClient != nil),
		zap.Bool("batch_archiving", app.Archiver != nil))
	return app, nil
}

func newVectorStore(cfg config.VectorStoreConfig) (knowledge.VectorStore, error) {
	switch cfg.Provider {
	case "milvus":
		return knowledge.NewMilvusVectorStore(knowledge.MilvusOptions{
			Address:    cfg.Milvus.Address,
			Username:   cfg.Milvus.Username,
			Password:   cfg.Milvus.Password,
			Collection: cfg.Milvus.Collection,
			Database:   cfg.Milvus.Database,
			Distance:   cfg.Milvus.Distance,
			VectorSize: cfg.Milvus.VectorSize,
			UseTLS:     cfg.Milvus.TLS,
		})
	default:
		return knowledge.NewMemoryVectorStore(cfg.Milvus.Distance), nil
	}
}

// Shutdown runs cleanup tasks in reverse order.
func (a *App) Shutdown() {
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			logger.Warn("Cleanup task failed", zap.Error(err))
		}
	}
}
