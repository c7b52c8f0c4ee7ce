package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/aihub/rag-qa-go/internal/errors"
	"github.com/aihub/rag-qa-go/internal/knowledge"
	"github.com/aihub/rag-qa-go/internal/logger"
)

// QueryController 问答控制器
type QueryController struct {
	BaseController
	generator *knowledge.Generator
}

func (c *QueryController) Prepare() {
	if c.generator == nil {
		c.generator = services.Generator
	}
}

// QueryRequest 问答请求
type QueryRequest struct {
	Question string `json:"question"`
}

// Query 基于已索引文档回答用户问题
func (c *QueryController) Query() {
	var req QueryRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSONError(http.StatusBadRequest, "question is required")
		return
	}

	answer, err := c.generator.Generate(c.Ctx.Request.Context(), req.Question)
	if err != nil {
		logger.Error("Answer generation failed", zap.Error(err))
		c.JSONAppError(apperrors.NewExternalError(apperrors.ErrCodeGenerationFailed, "failed to generate answer").WithCause(err))
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"answer": answer,
	})
}
