package preprocess

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Report 批次质量检查报告
// 只有结构性错误与全空批次会导致不通过，其余字段仅作诊断
type Report struct {
	Total            int `json:"total"`
	StructuralErrors int `json:"structural_errors"`
	EmptyTexts       int `json:"empty_texts"`
	DuplicateUIDs    int `json:"duplicate_uids"`
	DuplicateTexts   int `json:"duplicate_texts"`
	BelowMinLength   int `json:"below_min_length"`
	BrokenGlyphs     int `json:"broken_glyphs"`
}

// QualityGate 批次质量门
type QualityGate struct {
	minLength int
	validate  *validator.Validate
}

// NewQualityGate 创建质量门，minLength仅用于诊断计数
func NewQualityGate(minLength int) *QualityGate {
	return &QualityGate{
		minLength: minLength,
		validate:  validator.New(),
	}
}

// Check 按序校验批次：结构性错误立刻失败，全空批次失败，其余仅计数
func (g *QualityGate) Check(docs []Document) (Report, bool) {
	report := Report{Total: len(docs)}

	// 结构校验：uid缺失拒绝整批，后续检查不再执行
	for i := range docs {
		if err := g.validate.Struct(&docs[i]); err != nil {
			report.StructuralErrors++
		}
	}
	if report.StructuralErrors > 0 {
		return report, false
	}

	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			report.EmptyTexts++
		}
	}
	// 仅当字面上每一篇文档都为空才硬失败
	if len(docs) > 0 && report.EmptyTexts == len(docs) {
		return report, false
	}

	seenUIDs := make(map[string]struct{}, len(docs))
	seenTexts := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if _, ok := seenUIDs[doc.UID]; ok {
			report.DuplicateUIDs++
		} else {
			seenUIDs[doc.UID] = struct{}{}
		}
		if _, ok := seenTexts[doc.Text]; ok {
			report.DuplicateTexts++
		} else {
			seenTexts[doc.Text] = struct{}{}
		}
		if len([]rune(doc.Text)) < g.minLength {
			report.BelowMinLength++
		}
		report.BrokenGlyphs += strings.Count(doc.Text, "�")
	}

	return report, true
}
