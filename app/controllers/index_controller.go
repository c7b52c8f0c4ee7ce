package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/aihub/rag-qa-go/internal/errors"
	"github.com/aihub/rag-qa-go/internal/knowledge"
	"github.com/aihub/rag-qa-go/internal/logger"
	"github.com/aihub/rag-qa-go/internal/preprocess"
	"github.com/aihub/rag-qa-go/internal/storage"
)

// IndexController 文档索引控制器
type IndexController struct {
	BaseController
	indexer  *knowledge.Indexer
	archiver *storage.BatchArchiver
}

func (c *IndexController) Prepare() {
	if c.indexer == nil {
		c.indexer = services.Indexer
		c.archiver = services.Archiver
	}
}

// IndexText 索引请求体中的JSON文档列表
func (c *IndexController) IndexText() {
	var docs []knowledge.Document
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &docs); err != nil {
		c.JSONError(http.StatusBadRequest, "request body must be a JSON list of documents")
		return
	}

	c.index(docs)
}

// IndexFile 索引上传的JSON文件中的文档
func (c *IndexController) IndexFile() {
	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".json") {
		c.JSONAppError(apperrors.NewValidationError(apperrors.ErrCodeInvalidFileFormat, "only .json files are supported"))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSONError(http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	// 归档失败不阻断索引
	if c.archiver != nil {
		if err := c.archiver.Archive(c.Ctx.Request.Context(), header.Filename, content); err != nil {
			logger.Warn("Failed to archive batch file", zap.String("filename", header.Filename), zap.Error(err))
		}
	}

	var docs []knowledge.Document
	if err := json.Unmarshal(content, &docs); err != nil {
		c.JSONError(http.StatusBadRequest, "uploaded file must contain a JSON list of documents")
		return
	}

	c.index(docs)
}

func (c *IndexController) index(docs []knowledge.Document) {
	added, err := c.indexer.Index(c.Ctx.Request.Context(), docs)
	if err != nil {
		if errors.Is(err, preprocess.ErrBatchRejected) {
			c.JSONAppError(apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, err.Error()))
			return
		}
		logger.Error("Indexing failed", zap.Error(err))
		c.JSONAppError(apperrors.NewExternalError(apperrors.ErrCodeStorageError, "indexing failed").WithCause(err))
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"added": added,
	})
}
