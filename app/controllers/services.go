package controllers

import (
	"github.com/aihub/rag-qa-go/internal/knowledge"
	"github.com/aihub/rag-qa-go/internal/storage"
)

// ServiceSet 控制器依赖的已装配服务
type ServiceSet struct {
	Indexer   *knowledge.Indexer
	Generator *knowledge.Generator
	Store     knowledge.VectorStore
	Embedder  knowledge.Embedder
	Archiver  *storage.BatchArchiver
}

// beego按请求反射新建控制器实例，实例字段到请求时都是零值，
// 依赖统一放在包级registry，由各控制器的Prepare绑定
var services ServiceSet

// BindServices 注册服务，路由初始化时调用一次
func BindServices(set ServiceSet) {
	services = set
}
