// Package tokenize 是分类核心的前置清洗协作方：把原始评论文本转为词元流。
// 清洗策略刻意保持简单——小写化、按非字母切分、最短长度与停用词过滤；
// 更复杂的词形还原等策略可在上游替换，分类核心只消费词元流。
package tokenize

import (
	"strings"
	"unicode"
)

// Tokenizer 定义词元化参数。零值可用：不过滤长度、无停用词。
type Tokenizer struct {
	stopwords   map[string]struct{}
	minTokenLen int
}

// Option 定义配置选项。
type Option func(*Tokenizer)

// WithMinTokenLen 设置词元的最短长度，短于该长度的词元被丢弃。
func WithMinTokenLen(n int) Option {
	return func(t *Tokenizer) {
		t.minTokenLen = n
	}
}

// WithStopwords 设置停用词表。
func WithStopwords(words ...string) Option {
	return func(t *Tokenizer) {
		t.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			t.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// New 创建词元化器。
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize 将文本转为有序词元序列。
// 小写化后按非字母字符切分；空文本返回 nil。
func (t *Tokenizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < t.minTokenLen {
			continue
		}
		if _, stop := t.stopwords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}

	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
