package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopEmbedder(t *testing.T) {
	embedder := &NoopEmbedder{}

	_, err := embedder.Encode(context.Background(), []string{"text"})
	assert.Error(t, err)
	assert.Zero(t, embedder.Dimensions())
	assert.False(t, embedder.Ready())
}

func TestNewOpenAIEmbedderWithoutKey(t *testing.T) {
	// 无API key时退化为占位实现
	embedder := NewOpenAIEmbedder("", "text-embedding-3-small")
	assert.False(t, embedder.Ready())

	embedder = NewOpenAIEmbedder("   ", "")
	assert.False(t, embedder.Ready())
}

func TestNewOpenAIEmbedderDimensions(t *testing.T) {
	embedder := NewOpenAIEmbedder("sk-test", "text-embedding-3-large")
	assert.Equal(t, 3072, embedder.Dimensions())

	embedder = NewOpenAIEmbedder("sk-test", "unknown-model")
	assert.Equal(t, 1536, embedder.Dimensions())
}

func TestCachedEmbedderPassthroughWithoutRedis(t *testing.T) {
	inner := &stubEmbedder{dims: 4}
	cached := NewCachedEmbedder(inner, nil, 0)

	result, err := cached.Encode(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, result, 2)

	direct, err := inner.Encode(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, direct, result)

	assert.Equal(t, 4, cached.Dimensions())
	assert.True(t, cached.Ready())
}

// shortEmbedder 返回比输入少一条的向量，模拟违约的内层实现
type shortEmbedder struct{}

func (shortEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	result := make([][]float32, len(texts)-1)
	for i := range result {
		result[i] = []float32{1, 0}
	}
	return result, nil
}

func (shortEmbedder) Dimensions() int { return 2 }
func (shortEmbedder) Ready() bool     { return true }

func TestCachedEmbedderRejectsCountMismatch(t *testing.T) {
	cached := NewCachedEmbedder(shortEmbedder{}, nil, 0)

	_, err := cached.Encode(context.Background(), []string{"alpha", "beta"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 1 vectors for 2 texts")
}

func TestCachedEmbedderEmptyInput(t *testing.T) {
	cached := NewCachedEmbedder(&stubEmbedder{dims: 4}, nil, 0)

	result, err := cached.Encode(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestNewOpenAIChatModelWithoutKey(t *testing.T) {
	chat := NewOpenAIChatModel("", "")
	assert.False(t, chat.Ready())

	_, err := chat.Invoke(context.Background(), "prompt")
	assert.Error(t, err)
}
