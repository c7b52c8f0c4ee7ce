package preprocess

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ToLowercase 将文本转为小写
func ToLowercase(text string) string {
	return strings.ToLower(text)
}

// StripHTML 先解码HTML实体，再去除标签span
func StripHTML(text string) string {
	return htmlTagPattern.ReplaceAllString(html.UnescapeString(text), "")
}

// RemoveBrokenGlyphs 去除Unicode替换符
func RemoveBrokenGlyphs(text string) string {
	return strings.ReplaceAll(text, "�", "")
}

// RemoveInvisibleSpaces 去除不换行空格与零宽空格
func RemoveInvisibleSpaces(text string) string {
	text = strings.ReplaceAll(text, " ", "")
	return strings.ReplaceAll(text, "​", "")
}

// RemoveTabsNewlines 将制表符与换行符替换为空格
func RemoveTabsNewlines(text string) string {
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	return replacer.Replace(text)
}

// CollapseWhitespace 将连续空白折叠为单个空格并去掉首尾空白
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
