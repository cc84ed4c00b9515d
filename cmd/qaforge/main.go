package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/qaforge/internal/ai"
	"github.com/xxxsen/qaforge/internal/chunker"
	"github.com/xxxsen/qaforge/internal/ci"
	"github.com/xxxsen/qaforge/internal/config"
	"github.com/xxxsen/qaforge/internal/db"
	"github.com/xxxsen/qaforge/internal/embedcache"
	"github.com/xxxsen/qaforge/internal/filestore"
	"github.com/xxxsen/qaforge/internal/generator"
	"github.com/xxxsen/qaforge/internal/handler"
	"github.com/xxxsen/qaforge/internal/job"
	"github.com/xxxsen/qaforge/internal/middleware"
	"github.com/xxxsen/qaforge/internal/pipeline"
	"github.com/xxxsen/qaforge/internal/repo"
	"github.com/xxxsen/qaforge/internal/schedule"
	"github.com/xxxsen/qaforge/internal/service"
	"github.com/xxxsen/qaforge/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "qaforge",
		Short: "qaforge backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run qaforge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database, cfg.Database.Driver); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	defer database.Close()
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("file_store", cfg.FileStore.Type),
	)

	cacheRepo := repo.NewEmbeddingCacheRepo(database, cfg.Database.Driver)
	store := vectorstore.New(database, cfg.Database.Driver)
	chk := chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	pipe := pipeline.New(chk, store, cfg.Retrieval.Collection, buildEmbedderFactory(cfg, cacheRepo))
	if err := pipe.Init(context.Background()); err != nil {
		return fmt.Errorf("init vector collection: %w", err)
	}

	gen := generator.New(buildModelChain(cfg.AI), time.Duration(cfg.AI.Timeout)*time.Second)

	uploadStore, err := filestore.New(cfg.FileStore, "uploads")
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}
	scriptStore, err := filestore.New(cfg.FileStore, "scripts")
	if err != nil {
		return fmt.Errorf("init script store: %w", err)
	}
	publicURL := cfg.FileStore.PublicURL
	if cfg.FileStore.Type == "s3" && cfg.FileStore.S3.PublicURL != "" {
		publicURL = cfg.FileStore.S3.PublicURL
	}

	knowledge := service.NewKnowledgeService(pipe, uploadStore)
	artifacts := service.NewArtifactService(pipe, gen, scriptStore, publicURL, cfg.Retrieval.DefaultResults)

	deps := handler.RouterDeps{
		System:     handler.NewSystemHandler(knowledge, artifacts),
		Documents:  handler.NewDocumentHandler(knowledge, artifacts, int64(cfg.Server.MaxUploadMB)*1024*1024),
		TestCases:  handler.NewTestCaseHandler(artifacts),
		Scripts:    handler.NewScriptHandler(knowledge, artifacts),
		CI:         handler.NewCIHandler(ci.New(cfg.CI)),
		RateWindow: time.Duration(cfg.Server.RateLimitWindowSecs) * time.Second,
	}

	bind := cfg.Bind
	if bind == "" {
		bind = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", bind, cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.Server.CORSOrigins),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	sched := schedule.NewCronScheduler()
	if cfg.Embedding.Cache.Persist {
		if err := sched.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Cleanup.CacheMaxAgeDays), cfg.Cleanup.Schedule); err != nil {
			return fmt.Errorf("schedule cache cleanup: %w", err)
		}
	}
	if cfg.FileStore.Type == "local" {
		if err := sched.AddJob(job.NewUploadCleanupJob(uploadStore, cfg.Cleanup.UploadMaxAgeDays), cfg.Cleanup.Schedule); err != nil {
			return fmt.Errorf("schedule upload cleanup: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sched.Start(ctx)

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	sched.Stop()
	return nil
}

// buildEmbedderFactory assembles the embedding chain lazily: configured
// providers in order, then the deterministic hash embedder so retrieval keeps
// working without any external provider. Cache layers wrap the chain when
// enabled.
func buildEmbedderFactory(cfg *config.Config, cacheRepo *repo.EmbeddingCacheRepo) pipeline.EmbedderFactory {
	return func(ctx context.Context) (ai.IEmbedder, error) {
		items := make([]ai.EmbedderEntry, 0, len(cfg.Embedding.Providers)+1)
		for _, ref := range cfg.Embedding.Providers {
			provider, err := ai.NewEmbedProvider(ref.Provider, ref.Data)
			if err != nil {
				logutil.GetLogger(ctx).Warn("init embed provider failed", zap.String("provider", ref.Provider), zap.Error(err))
				continue
			}
			items = append(items, ai.EmbedderEntry{Name: ref.Provider, Embedder: ai.NewEmbedder(provider, ref.Model)})
		}
		simple, err := ai.NewEmbedProvider("simple", map[string]interface{}{"dim": cfg.Embedding.Dim})
		if err != nil {
			return nil, err
		}
		items = append(items, ai.EmbedderEntry{Name: "simple", Embedder: ai.NewEmbedder(simple, "hash")})
		embedder := ai.NewGroupEmbedder(items)
		if cfg.Embedding.Cache.Persist {
			embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
		}
		if cfg.Embedding.Cache.MemSize > 0 {
			embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.Embedding.Cache.MemSize, time.Duration(cfg.Embedding.Cache.MemTTLSecs)*time.Second)
		}
		return embedder, nil
	}
}

// buildModelChain returns nil when no model providers are configured, which
// puts the generator on its template path.
func buildModelChain(cfg config.AIConfig) ai.IGenerator {
	items := make([]ai.GeneratorEntry, 0, len(cfg.Providers))
	for _, ref := range cfg.Providers {
		provider, err := ai.NewProvider(ref.Provider, ref.Data)
		if err != nil {
			logutil.GetLogger(context.Background()).Warn("init ai provider failed", zap.String("provider", ref.Provider), zap.Error(err))
			continue
		}
		items = append(items, ai.GeneratorEntry{Name: ref.Provider, Generator: ai.NewGenerator(provider, ref.Model)})
	}
	return ai.NewGroupGenerator(items)
}
