package knowledge

import "context"

// VectorStore 内容寻址的持久向量存储
// 全库维持每个指纹至多一条记录的不变量；AddUniqueByFingerprint是唯一的写入口
type VectorStore interface {
	// ListIDs 返回当前所有id，底层即使有重复也做去重
	ListIDs(ctx context.Context) ([]string, error)

	// ExistingFingerprints 返回记录元数据中已登记的全部指纹
	ExistingFingerprints(ctx context.Context) (map[string]struct{}, error)

	// AddUniqueByFingerprint 逐条计算texts[i]的指纹：
	// 指纹已存在于库中、或在本次调用中已被先前的文档占用时跳过整条记录，
	// 否则以 {id, text, embedding, metadata ∪ {content_fingerprint}} 持久化
	AddUniqueByFingerprint(ctx context.Context, ids []string, texts []string, embeddings [][]float32, metadatas []map[string]interface{}) error

	// Query 返回至多topK条最近记录，按距离升序
	// topK <= 0 或空库返回空结果而非错误
	Query(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error)

	// DeleteByID 按id删除记录并返回剩余数量；删除不存在的id是no-op
	DeleteByID(ctx context.Context, ids []string) (int, error)

	// Clear 清空所有记录，幂等
	Clear(ctx context.Context) error

	Ready() bool
}
