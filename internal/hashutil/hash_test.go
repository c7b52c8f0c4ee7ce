package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextHash(t *testing.T) {
	// 对相同输入必须产生相同指纹
	assert.Equal(t, TextHash("hello world!"), TextHash("hello world!"))
	assert.NotEqual(t, TextHash("hello"), TextHash("world"))

	// 已知的MD5向量
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", TextHash(""))
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", TextHash("hello world"))
}
