package knowledge

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatModel 答案生成模型接口
type ChatModel interface {
	Invoke(ctx context.Context, prompt string) (string, error)
	Ready() bool
}

// NoopChatModel 默认占位实现
type NoopChatModel struct{}

func (n *NoopChatModel) Invoke(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("chat model not configured")
}

func (n *NoopChatModel) Ready() bool {
	return false
}

// OpenAIChatModel 使用OpenAI Chat Completion API
type OpenAIChatModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIChatModel 创建OpenAI答案生成模型
func NewOpenAIChatModel(apiKey, model string) ChatModel {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopChatModel{}
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIChatModel{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (m *OpenAIChatModel) Invoke(ctx context.Context, prompt string) (string, error) {
	if m.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion response empty")
	}
	return resp.Choices[0].Message.Content, nil
}

func (m *OpenAIChatModel) Ready() bool {
	return m.client != nil
}
