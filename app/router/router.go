package router

import (
	"github.com/beego/beego/v2/server/web"

	"github.com/aihub/rag-qa-go/app/controllers"
	"github.com/aihub/rag-qa-go/internal/config"
	"github.com/aihub/rag-qa-go/internal/knowledge"
	"github.com/aihub/rag-qa-go/internal/storage"
)

// Init 注册所有HTTP路由
func Init(indexer *knowledge.Indexer, generator *knowledge.Generator, store knowledge.VectorStore, embedder knowledge.Embedder, archiver *storage.BatchArchiver) {
	controllers.BindServices(controllers.ServiceSet{
		Indexer:   indexer,
		Generator: generator,
		Store:     store,
		Embedder:  embedder,
		Archiver:  archiver,
	})

	indexController := &controllers.IndexController{}
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Router("/index_text", indexController, "post:IndexText")
	web.Router("/index_file", indexController, "post:IndexFile")
	web.Router("/query", &controllers.QueryController{}, "post:Query")

	if config.AppConfig != nil && config.AppConfig.Prometheus.Enabled {
		web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")
	}
}
