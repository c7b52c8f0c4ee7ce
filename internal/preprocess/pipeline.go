package preprocess

import (
	"errors"

	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/config"
	"github.com/aihub/rag-qa-go/internal/logger"
)

// ErrBatchRejected 批次存在结构性错误（uid缺失），整批拒绝
var ErrBatchRejected = errors.New("batch rejected: documents missing uid")

// Pipeline 预处理流水线
// 阶段顺序固定，每个阶段由配置独立开关；阶段只会缩小文档序列，不会改变相对顺序
type Pipeline struct {
	cfg  config.PreprocessConfig
	gate *QualityGate
	log  *zap.Logger
}

// NewPipeline 按配置创建流水线
func NewPipeline(cfg config.PreprocessConfig) *Pipeline {
	return &Pipeline{
		cfg:  cfg,
		gate: NewQualityGate(cfg.FilterByLength.MinLength),
		log:  logger.Named("preprocess"),
	}
}

type stage struct {
	name    string
	enabled bool
	apply   func([]Document) []Document
}

// Run 运行流水线
// 结构性错误返回ErrBatchRejected；全空批次返回空序列而不报错
func (p *Pipeline) Run(docs []Document) ([]Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	if p.cfg.QualityCheck.Enabled {
		report, ok := p.gate.Check(docs)
		if !ok {
			if report.StructuralErrors > 0 {
				p.log.Warn("Batch rejected by quality gate",
					zap.Int("total", report.Total),
					zap.Int("structural_errors", report.StructuralErrors))
				return nil, ErrBatchRejected
			}
			p.log.Warn("All documents in batch are empty", zap.Int("total", report.Total))
			return []Document{}, nil
		}
		p.log.Debug("Quality report",
			zap.Int("total", report.Total),
			zap.Int("empty_texts", report.EmptyTexts),
			zap.Int("duplicate_uids", report.DuplicateUIDs),
			zap.Int("duplicate_texts", report.DuplicateTexts),
			zap.Int("below_min_length", report.BelowMinLength),
			zap.Int("broken_glyphs", report.BrokenGlyphs))
	}

	stages := []stage{
		{"lowercase", p.cfg.Lowercase.Enabled, mapText(ToLowercase)},
		{"clean_text", p.cfg.CleanText.Enabled, mapText(p.cleanText)},
		{"dedupe_by_id", p.cfg.DedupeByID.Enabled, DedupeByID},
		{"dedupe_by_hash", p.cfg.DedupeByHash.Enabled, DedupeByContentHash},
		{"filter_by_length", p.cfg.FilterByLength.Enabled, p.filterByLength},
	}

	for _, s := range stages {
		if !s.enabled {
			continue
		}
		before := len(docs)
		docs = s.apply(docs)
		if len(docs) != before {
			p.log.Debug("Stage dropped documents",
				zap.String("stage", s.name),
				zap.Int("before", before),
				zap.Int("after", len(docs)))
		}
	}

	return docs, nil
}

// cleanText 按子步骤开关执行文本清洗
func (p *Pipeline) cleanText(text string) string {
	cfg := p.cfg.CleanText
	if cfg.StripHTML {
		text = StripHTML(text)
	}
	if cfg.RemoveBrokenGlyphs {
		text = RemoveBrokenGlyphs(text)
	}
	if cfg.RemoveInvisibleSpaces {
		text = RemoveInvisibleSpaces(text)
	}
	if cfg.RemoveTabsNewlines {
		text = RemoveTabsNewlines(text)
	}
	if cfg.CollapseWhitespace {
		text = CollapseWhitespace(text)
	}
	return text
}

// filterByLength 保留文本长度不小于配置下限的文档，边界包含
func (p *Pipeline) filterByLength(docs []Document) []Document {
	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if len([]rune(doc.Text)) >= p.cfg.FilterByLength.MinLength {
			result = append(result, doc)
		}
	}
	return result
}

func mapText(fn func(string) string) func([]Document) []Document {
	return func(docs []Document) []Document {
		result := make([]Document, len(docs))
		for i, doc := range docs {
			doc.Text = fn(doc.Text)
			result[i] = doc
		}
		return result
	}
}
