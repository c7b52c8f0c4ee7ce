package knowledge

// Document 摄取请求中的文档
// uid与text之外的信息通过Metadata携带，不经过任何文本变换阶段
type Document struct {
	UID      string                 `json:"uid"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// FingerprintKey 向量库控制的保留元数据键，调用方不得覆盖
const FingerprintKey = "content_fingerprint"

// SearchResult 相似度检索结果
type SearchResult struct {
	Text     string                 `json:"text"`
	Distance float64                `json:"distance"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
