package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	require.NoError(t, LoadConfig())
	require.NotNil(t, AppConfig)

	assert.Equal(t, "8000", AppConfig.Server.Port)

	// 流水线默认全部启用
	assert.True(t, AppConfig.Preprocess.QualityCheck.Enabled)
	assert.True(t, AppConfig.Preprocess.Lowercase.Enabled)
	assert.True(t, AppConfig.Preprocess.CleanText.Enabled)
	assert.True(t, AppConfig.Preprocess.CleanText.StripHTML)
	assert.True(t, AppConfig.Preprocess.DedupeByID.Enabled)
	assert.True(t, AppConfig.Preprocess.DedupeByHash.Enabled)
	assert.True(t, AppConfig.Preprocess.FilterByLength.Enabled)
	assert.Equal(t, 20, AppConfig.Preprocess.FilterByLength.MinLength)

	// 向量库默认使用内存实现
	assert.Equal(t, "memory", AppConfig.Knowledge.VectorStore.Provider)
	assert.Equal(t, 1536, AppConfig.Knowledge.VectorStore.Milvus.VectorSize)
	assert.Equal(t, 5, AppConfig.Knowledge.Answer.TopK)

	// 可选组件默认关闭
	assert.False(t, AppConfig.Redis.Enabled)
	assert.False(t, AppConfig.Storage.Enabled)
	assert.False(t, AppConfig.Knowledge.Embedding.Cache.Enabled)
}
