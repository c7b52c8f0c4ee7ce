package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Preprocess PreprocessConfig
	Knowledge  KnowledgeConfig
	Storage    ObjectStorageConfig
	Prometheus PrometheusConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Host    string
	Port    string
	DB      int
	Enabled bool
}

// PreprocessConfig 预处理流水线各阶段开关
type PreprocessConfig struct {
	QualityCheck   StageConfig
	Lowercase      StageConfig
	CleanText      CleanTextConfig
	DedupeByID     StageConfig
	DedupeByHash   StageConfig
	FilterByLength LengthFilterConfig
}

type StageConfig struct {
	Enabled bool
}

// CleanTextConfig 文本清洗子步骤开关
type CleanTextConfig struct {
	Enabled               bool
	StripHTML             bool
	RemoveBrokenGlyphs    bool
	RemoveInvisibleSpaces bool
	RemoveTabsNewlines    bool
	CollapseWhitespace    bool
}

type LengthFilterConfig struct {
	Enabled   bool
	MinLength int
}

type KnowledgeConfig struct {
	VectorStore VectorStoreConfig
	Embedding   EmbeddingConfig
	Answer      AnswerConfig
}

type VectorStoreConfig struct {
	Provider string
	Milvus   MilvusConfig
}

type MilvusConfig struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	Distance   string
	VectorSize int
	TLS        bool
}

type EmbeddingConfig struct {
	Model  string
	APIKey string
	Cache  EmbeddingCacheConfig
}

// EmbeddingCacheConfig Redis嵌入缓存配置，TTL单位为秒
type EmbeddingCacheConfig struct {
	Enabled bool
	TTL     int
}

// AnswerConfig 答案生成配置
type AnswerConfig struct {
	TopK   int
	Model  string
	APIKey string
	Prompt string
}

type ObjectStorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type PrometheusConfig struct {
	Enabled bool
}

var AppConfig *Config

// LoadConfig 加载配置：默认值优先被环境变量覆盖
func LoadConfig() error {
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)

	// 预处理流水线默认全部启用，缺失的键视为关闭
	viper.SetDefault("preprocess.quality_check.enabled", true)
	viper.SetDefault("preprocess.lowercase.enabled", true)
	viper.SetDefault("preprocess.clean_text.enabled", true)
	viper.SetDefault("preprocess.clean_text.strip_html", true)
	viper.SetDefault("preprocess.clean_text.remove_broken_glyphs", true)
	viper.SetDefault("preprocess.clean_text.remove_invisible_spaces", true)
	viper.SetDefault("preprocess.clean_text.remove_tabs_newlines", true)
	viper.SetDefault("preprocess.clean_text.collapse_whitespace", true)
	viper.SetDefault("preprocess.dedupe_by_id.enabled", true)
	viper.SetDefault("preprocess.dedupe_by_hash.enabled", true)
	viper.SetDefault("preprocess.filter_by_length.enabled", true)
	viper.SetDefault("preprocess.filter_by_length.min_length", 20)

	viper.SetDefault("knowledge.vector_store.provider", "memory")
	viper.SetDefault("knowledge.vector_store.milvus.address", "localhost:19530")
	viper.SetDefault("knowledge.vector_store.milvus.collection", "documents")
	viper.SetDefault("knowledge.vector_store.milvus.database", "default")
	viper.SetDefault("knowledge.vector_store.milvus.distance", "cosine")
	viper.SetDefault("knowledge.vector_store.milvus.vector_size", 1536)
	viper.SetDefault("knowledge.vector_store.milvus.tls", false)
	viper.SetDefault("knowledge.embedding.model", "text-embedding-3-small")
	viper.SetDefault("knowledge.embedding.cache.enabled", false)
	viper.SetDefault("knowledge.embedding.cache.ttl", 3600)
	viper.SetDefault("knowledge.answer.top_k", 5)
	viper.SetDefault("knowledge.answer.model", "gpt-4o-mini")
	viper.SetDefault("knowledge.answer.prompt", "Answer the question using only the context above. If the context is not enough, say so.")

	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.bucket", "rag-batches")
	viper.SetDefault("storage.use_ssl", false)

	viper.SetDefault("prometheus.enabled", true)

	// 读取环境变量
	viper.SetEnvPrefix("RAGQA")
	viper.AutomaticEnv()

	if port := os.Getenv("PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		viper.Set("redis.host", redisHost)
		viper.Set("redis.enabled", true)
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		viper.Set("redis.port", redisPort)
	}
	if milvusAddress := os.Getenv("MILVUS_ADDRESS"); milvusAddress != "" {
		viper.Set("knowledge.vector_store.milvus.address", milvusAddress)
		viper.Set("knowledge.vector_store.provider", "milvus")
	}
	if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
		viper.Set("knowledge.embedding.api_key", openaiKey)
		viper.Set("knowledge.answer.api_key", openaiKey)
	}
	if minioEndpoint := os.Getenv("MINIO_ENDPOINT"); minioEndpoint != "" {
		viper.Set("storage.endpoint", minioEndpoint)
		viper.Set("storage.enabled", true)
	}
	if minioAccessKey := os.Getenv("MINIO_ACCESS_KEY"); minioAccessKey != "" {
		viper.Set("storage.access_key", minioAccessKey)
	}
	if minioSecretKey := os.Getenv("MINIO_SECRET_KEY"); minioSecretKey != "" {
		viper.Set("storage.secret_key", minioSecretKey)
	}
	if minioBucket := os.Getenv("MINIO_BUCKET"); minioBucket != "" {
		viper.Set("storage.bucket", minioBucket)
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Host:    viper.GetString("redis.host"),
			Port:    viper.GetString("redis.port"),
			DB:      viper.GetInt("redis.db"),
			Enabled: viper.GetBool("redis.enabled"),
		},
		Preprocess: PreprocessConfig{
			QualityCheck: StageConfig{Enabled: viper.GetBool("preprocess.quality_check.enabled")},
			Lowercase:    StageConfig{Enabled: viper.GetBool("preprocess.lowercase.enabled")},
			CleanText: CleanTextConfig{
				Enabled:               viper.GetBool("preprocess.clean_text.enabled"),
				StripHTML:             viper.GetBool("preprocess.clean_text.strip_html"),
				RemoveBrokenGlyphs:    viper.GetBool("preprocess.clean_text.remove_broken_glyphs"),
				RemoveInvisibleSpaces: viper.GetBool("preprocess.clean_text.remove_invisible_spaces"),
				RemoveTabsNewlines:    viper.GetBool("preprocess.clean_text.remove_tabs_newlines"),
				CollapseWhitespace:    viper.GetBool("preprocess.clean_text.collapse_whitespace"),
			},
			DedupeByID:   StageConfig{Enabled: viper.GetBool("preprocess.dedupe_by_id.enabled")},
			DedupeByHash: StageConfig{Enabled: viper.GetBool("preprocess.dedupe_by_hash.enabled")},
			FilterByLength: LengthFilterConfig{
				Enabled:   viper.GetBool("preprocess.filter_by_length.enabled"),
				MinLength: viper.GetInt("preprocess.filter_by_length.min_length"),
			},
		},
		Knowledge: KnowledgeConfig{
			VectorStore: VectorStoreConfig{
				Provider: viper.GetString("knowledge.vector_store.provider"),
				Milvus: MilvusConfig{
					Address:    viper.GetString("knowledge.vector_store.milvus.address"),
					Username:   viper.GetString("knowledge.vector_store.milvus.username"),
					Password:   viper.GetString("knowledge.vector_store.milvus.password"),
					Collection: viper.GetString("knowledge.vector_store.milvus.collection"),
					Database:   viper.GetString("knowledge.vector_store.milvus.database"),
					Distance:   viper.GetString("knowledge.vector_store.milvus.distance"),
					VectorSize: viper.GetInt("knowledge.vector_store.milvus.vector_size"),
					TLS:        viper.GetBool("knowledge.vector_store.milvus.tls"),
				},
			},
			Embedding: EmbeddingConfig{
				Model:  viper.GetString("knowledge.embedding.model"),
				APIKey: viper.GetString("knowledge.embedding.api_key"),
				Cache: EmbeddingCacheConfig{
					Enabled: viper.GetBool("knowledge.embedding.cache.enabled"),
					TTL:     viper.GetInt("knowledge.embedding.cache.ttl"),
				},
			},
			Answer: AnswerConfig{
				TopK:   viper.GetInt("knowledge.answer.top_k"),
				Model:  viper.GetString("knowledge.answer.model"),
				APIKey: viper.GetString("knowledge.answer.api_key"),
				Prompt: viper.GetString("knowledge.answer.prompt"),
			},
		},
		Storage: ObjectStorageConfig{
			Enabled:   viper.GetBool("storage.enabled"),
			Endpoint:  viper.GetString("storage.endpoint"),
			AccessKey: viper.GetString("storage.access_key"),
			SecretKey: viper.GetString("storage.secret_key"),
			Bucket:    viper.GetString("storage.bucket"),
			UseSSL:    viper.GetBool("storage.use_ssl"),
		},
		Prometheus: PrometheusConfig{
			Enabled: viper.GetBool("prometheus.enabled"),
		},
	}

	return nil
}
