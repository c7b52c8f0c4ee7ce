package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/logger"
	"github.com/aihub/rag-qa-go/internal/metrics"
)

// Generator 基于检索增强的问答生成器
type Generator struct {
	embedder Embedder
	store    VectorStore
	chat     ChatModel
	topK     int
	prompt   string
	log      *zap.Logger
}

// NewGenerator 创建生成器，prompt作为末尾指令拼进完整提示词
func NewGenerator(embedder Embedder, store VectorStore, chat ChatModel, topK int, prompt string) *Generator {
	if topK <= 0 {
		topK = 5
	}
	return &Generator{
		embedder: embedder,
		store:    store,
		chat:     chat,
		topK:     topK,
		prompt:   prompt,
		log:      logger.Named("generator"),
	}
}

// Retrieve 检索与问题最相关的文档文本
// 保持向量库返回的升序距离顺序，空文本静默丢弃
func (g *Generator) Retrieve(ctx context.Context, question string, topK int) ([]string, error) {
	metrics.QueriesTotal.Inc()

	embeddings, err := g.embedder.Encode(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one question", len(embeddings))
	}

	results, err := g.store.Query(ctx, embeddings[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector store query failed: %w", err)
	}

	chunks := make([]string, 0, len(results))
	for _, result := range results {
		if strings.TrimSpace(result.Text) == "" {
			continue
		}
		chunks = append(chunks, result.Text)
	}

	g.log.Debug("Retrieved relevant chunks", zap.Int("chunks", len(chunks)), zap.Int("top_k", topK))
	return chunks, nil
}

// Generate 对用户问题执行检索增强生成
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	if g.chat == nil || !g.chat.Ready() {
		g.log.Error("Chat model not initialized, cannot generate answer")
		return "", fmt.Errorf("chat model not initialized")
	}

	chunks, err := g.Retrieve(ctx, question, g.topK)
	if err != nil {
		return "", err
	}

	fullPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n%s",
		strings.Join(chunks, "\n"), question, g.prompt)

	answer, err := g.chat.Invoke(ctx, fullPrompt)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return answer, nil
}
