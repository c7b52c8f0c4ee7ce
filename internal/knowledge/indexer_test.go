package knowledge

import (
	"context"
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihub/rag-qa-go/internal/config"
	"github.com/aihub/rag-qa-go/internal/preprocess"
)

// stubEmbedder 由文本内容确定性生成向量
type stubEmbedder struct {
	dims int
}

func (s *stubEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		sum := md5.Sum([]byte(text))
		vec := make([]float32, s.dims)
		for j := range vec {
			vec[j] = float32(sum[j%len(sum)]) / 255
		}
		result[i] = vec
	}
	return result, nil
}

func (s *stubEmbedder) Dimensions() int {
	return s.dims
}

func (s *stubEmbedder) Ready() bool {
	return true
}

func pipelineConfig(minLength int) config.PreprocessConfig {
	return config.PreprocessConfig{
		QualityCheck: config.StageConfig{Enabled: true},
		Lowercase:    config.StageConfig{Enabled: true},
		CleanText: config.CleanTextConfig{
			Enabled:               true,
			StripHTML:             true,
			RemoveBrokenGlyphs:    true,
			RemoveInvisibleSpaces: true,
			RemoveTabsNewlines:    true,
			CollapseWhitespace:    true,
		},
		DedupeByID:   config.StageConfig{Enabled: true},
		DedupeByHash: config.StageConfig{Enabled: true},
		FilterByLength: config.LengthFilterConfig{
			Enabled:   true,
			MinLength: minLength,
		},
	}
}

func newTestIndexer(minLength int) (*Indexer, *MemoryVectorStore) {
	store := NewMemoryVectorStore("cosine")
	pipeline := preprocess.NewPipeline(pipelineConfig(minLength))
	return NewIndexer(pipeline, &stubEmbedder{dims: 8}, store), store
}

func TestIndexerIdempotent(t *testing.T) {
	indexer, _ := newTestIndexer(5)
	ctx := context.Background()

	batch := []Document{
		{UID: "1", Text: "The first document talks about databases."},
		{UID: "2", Text: "The second document talks about networks."},
	}

	added, err := indexer.Index(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// 重复索引同一批次不能新增任何记录
	added, err = indexer.Index(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestIndexerEndToEnd(t *testing.T) {
	indexer, store := newTestIndexer(5)
	ctx := context.Background()

	added, err := indexer.Index(ctx, []Document{{UID: "1", Text: "Hello <b>World</b>!"}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	results, err := store.Query(ctx, []float32{1, 1, 1, 1, 1, 1, 1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hello world!", results[0].Text)

	// 相同输入再摄取一遍，指纹命中，新增为0
	added, err = indexer.Index(ctx, []Document{{UID: "1", Text: "Hello <b>World</b>!"}})
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestIndexerAllEmptyBatch(t *testing.T) {
	indexer, store := newTestIndexer(0)
	ctx := context.Background()

	added, err := indexer.Index(ctx, []Document{
		{UID: "1", Text: "   "},
		{UID: "2", Text: ""},
	})
	require.NoError(t, err)
	assert.Zero(t, added)

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexerRejectsInvalidBatch(t *testing.T) {
	indexer, _ := newTestIndexer(0)

	_, err := indexer.Index(context.Background(), []Document{{Text: "document without uid"}})
	assert.ErrorIs(t, err, preprocess.ErrBatchRejected)
}

func TestIndexerEmptyInput(t *testing.T) {
	indexer, _ := newTestIndexer(0)

	added, err := indexer.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestIndexerCarriesMetadata(t *testing.T) {
	indexer, store := newTestIndexer(5)
	ctx := context.Background()

	added, err := indexer.Index(ctx, []Document{{
		UID:      "42",
		Text:     "Document with metadata attached.",
		Metadata: map[string]interface{}{"source": "unit-test"},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, added)

	results, err := store.Query(ctx, []float32{1, 1, 1, 1, 1, 1, 1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unit-test", results[0].Metadata["source"])
	assert.Equal(t, "42", results[0].Metadata["uid"])
	assert.NotEmpty(t, results[0].Metadata[FingerprintKey])
}

func TestIndexerCrossBatchFingerprint(t *testing.T) {
	indexer, _ := newTestIndexer(5)
	ctx := context.Background()

	added, err := indexer.Index(ctx, []Document{{UID: "a", Text: "Shared content body here."}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	// 不同uid、相同内容：批内去重看不见，由向量库的全局指纹挡下
	added, err = indexer.Index(ctx, []Document{{UID: "b", Text: "Shared content body here."}})
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestIndexerEmbedderFailure(t *testing.T) {
	store := NewMemoryVectorStore("cosine")
	pipeline := preprocess.NewPipeline(pipelineConfig(0))
	indexer := NewIndexer(pipeline, &NoopEmbedder{}, store)

	_, err := indexer.Index(context.Background(), []Document{{UID: "1", Text: "some document text"}})
	require.Error(t, err)

	// 嵌入失败时不得写入任何记录
	ids, listErr := store.ListIDs(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, ids)
}
