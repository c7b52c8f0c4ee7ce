package hashutil

import (
	"crypto/md5"
	"encoding/hex"
)

// TextHash 计算文本的MD5指纹，作为内容去重的键
func TextHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
