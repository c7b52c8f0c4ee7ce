package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDocs(t *testing.T, store VectorStore, docs map[string]string) {
	t.Helper()
	ids := make([]string, 0, len(docs))
	texts := make([]string, 0, len(docs))
	embeddings := make([][]float32, 0, len(docs))
	metadatas := make([]map[string]interface{}, 0, len(docs))
	for id, text := range docs {
		ids = append(ids, id)
		texts = append(texts, text)
		embeddings = append(embeddings, []float32{1, 0})
		metadatas = append(metadatas, map[string]interface{}{"uid": id})
	}
	require.NoError(t, store.AddUniqueByFingerprint(context.Background(), ids, texts, embeddings, metadatas))
}

func TestMemoryStoreFingerprintUniqueAcrossCalls(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	addDocs(t, store, map[string]string{"1": "alpha"})
	// 相同文本第二次写入必须被跳过，即使id不同
	addDocs(t, store, map[string]string{"2": "alpha"})

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, "1", ids[0])

	fingerprints, err := store.ExistingFingerprints(ctx)
	require.NoError(t, err)
	assert.Len(t, fingerprints, 1)
}

func TestMemoryStoreFingerprintUniqueWithinCall(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	err := store.AddUniqueByFingerprint(ctx,
		[]string{"1", "2"},
		[]string{"same text", "same text"},
		[][]float32{{1, 0}, {0, 1}},
		[]map[string]interface{}{nil, nil})
	require.NoError(t, err)

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
}

func TestMemoryStoreQueryBoundAndOrder(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	require.NoError(t, store.AddUniqueByFingerprint(ctx,
		[]string{"near", "far"},
		[]string{"near text", "far text"},
		[][]float32{{1, 0}, {0, 1}},
		nil))

	results, err := store.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	// 只有2条记录，topK=5也只返回2条
	require.Len(t, results, 2)
	assert.Equal(t, "near text", results[0].Text)
	assert.Equal(t, "far text", results[1].Text)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestMemoryStoreQueryEdgeCases(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	// 空库不报错
	results, err := store.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	addDocs(t, store, map[string]string{"1": "text"})

	// topK <= 0 返回空结果
	results, err = store.Query(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.Query(ctx, []float32{1, 0}, -1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreDeleteFreesFingerprint(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	addDocs(t, store, map[string]string{"1": "reusable text"})

	remaining, err := store.DeleteByID(ctx, []string{"1"})
	require.NoError(t, err)
	assert.Zero(t, remaining)

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "1")

	// 删除后指纹可以重新使用
	addDocs(t, store, map[string]string{"2": "reusable text"})
	ids, err = store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids)
}

func TestMemoryStoreDeleteNonexistentIsNoop(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	addDocs(t, store, map[string]string{"1": "text"})

	remaining, err := store.DeleteByID(ctx, []string{"ghost"})
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestMemoryStoreClearIdempotent(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	addDocs(t, store, map[string]string{"1": "one", "2": "two"})

	require.NoError(t, store.Clear(ctx))
	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Clear(ctx))
}

func TestMemoryStoreOwnsFingerprintKey(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	ctx := context.Background()

	// 调用方写入的content_fingerprint必须被库自己的值覆盖
	require.NoError(t, store.AddUniqueByFingerprint(ctx,
		[]string{"1"},
		[]string{"some text"},
		[][]float32{{1, 0}},
		[]map[string]interface{}{{FingerprintKey: "forged", "source": "test"}}))

	results, err := store.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEqual(t, "forged", results[0].Metadata[FingerprintKey])
	assert.Equal(t, "test", results[0].Metadata["source"])
}
