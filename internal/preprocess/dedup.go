package preprocess

import "github.com/aihub/rag-qa-go/internal/hashutil"

// DedupeByID 去除批内uid重复的文档，保留首次出现，顺序不变
func DedupeByID(docs []Document) []Document {
	seen := make(map[string]struct{}, len(docs))
	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if _, ok := seen[doc.UID]; ok {
			continue
		}
		seen[doc.UID] = struct{}{}
		result = append(result, doc)
	}
	return result
}

// DedupeByContentHash 按当前文本的指纹去重，保留首次出现，顺序不变
// 只作用于本批次，跨批次去重由向量库负责
func DedupeByContentHash(docs []Document) []Document {
	seen := make(map[string]struct{}, len(docs))
	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		fingerprint := hashutil.TextHash(doc.Text)
		if _, ok := seen[fingerprint]; ok {
			continue
		}
		seen[fingerprint] = struct{}{}
		result = append(result, doc)
	}
	return result
}
