package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/app/bootstrap"
	"github.com/aihub/rag-qa-go/app/router"
	"github.com/aihub/rag-qa-go/internal/config"
	"github.com/aihub/rag-qa-go/internal/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	router.Init(app.Indexer, app.Generator, app.Store, app.Embedder, app.Archiver)

	web.BConfig.AppName = "RAG QA Service"
	web.BConfig.CopyRequestBody = true
	if port, err := strconv.Atoi(config.AppConfig.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = port
	}

	logger.Info("🚀 Starting RAG QA Service", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
