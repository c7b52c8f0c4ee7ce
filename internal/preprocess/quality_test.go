package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleDocs() []Document {
	return []Document{
		{UID: "1", Text: "Hello World! <b>HTML</b>   "},
		{UID: "2", Text: "     "},
		{UID: "3", Text: "This is a clean text."},
		{UID: "3", Text: "This is a clean text."},
		{UID: "4", Text: "Short"},
		{UID: "5", Text: "Another document with � broken char."},
	}
}

func TestQualityGateValid(t *testing.T) {
	gate := NewQualityGate(20)

	report, ok := gate.Check(sampleDocs())
	assert.True(t, ok)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 1, report.EmptyTexts)
	assert.Equal(t, 1, report.DuplicateUIDs)
	assert.Equal(t, 1, report.DuplicateTexts)
	assert.Equal(t, 2, report.BelowMinLength)
	assert.Equal(t, 1, report.BrokenGlyphs)
}

func TestQualityGateInvalidStructure(t *testing.T) {
	gate := NewQualityGate(0)

	// uid缺失拒绝整批
	report, ok := gate.Check([]Document{{Text: "Bad structure"}})
	assert.False(t, ok)
	assert.Equal(t, 1, report.StructuralErrors)
}

func TestQualityGateAllEmpty(t *testing.T) {
	gate := NewQualityGate(0)

	report, ok := gate.Check([]Document{
		{UID: "1", Text: "   "},
		{UID: "2", Text: ""},
	})
	assert.False(t, ok)
	assert.Equal(t, 2, report.EmptyTexts)
	assert.Zero(t, report.StructuralErrors)
}

func TestQualityGateSingleEmptyPasses(t *testing.T) {
	gate := NewQualityGate(0)

	// 并非全部为空，只计数不失败
	_, ok := gate.Check([]Document{
		{UID: "1", Text: ""},
		{UID: "2", Text: "content"},
	})
	assert.True(t, ok)
}
