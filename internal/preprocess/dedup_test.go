package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeByIDKeepsFirst(t *testing.T) {
	docs := []Document{
		{UID: "x", Text: "a"},
		{UID: "x", Text: "b"},
	}

	unique := DedupeByID(docs)
	assert.Len(t, unique, 1)
	assert.Equal(t, "a", unique[0].Text)
}

func TestDedupeByContentHashKeepsFirst(t *testing.T) {
	docs := []Document{
		{UID: "1", Text: "Same text"},
		{UID: "2", Text: "Same text"},
		{UID: "3", Text: "Different text"},
	}

	unique := DedupeByContentHash(docs)
	assert.Len(t, unique, 2)
	assert.Equal(t, "1", unique[0].UID)
	assert.Equal(t, "3", unique[1].UID)
}

func TestDedupePreservesOrder(t *testing.T) {
	docs := []Document{
		{UID: "a", Text: "one"},
		{UID: "b", Text: "two"},
		{UID: "a", Text: "three"},
		{UID: "c", Text: "four"},
	}

	unique := DedupeByID(docs)
	assert.Equal(t, []string{"a", "b", "c"}, []string{unique[0].UID, unique[1].UID, unique[2].UID})
}
