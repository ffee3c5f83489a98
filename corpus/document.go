// Package corpus 定义了分类核心的数据模型：文档、类别标签和词元记录，
// 以及语料库的组装、稀有词过滤和训练/测试集划分。
package corpus

import (
	"github.com/wyfcoding/toxfilter/xerrors"
)

// Label 表示二分类的类别标签。
type Label string

const (
	// Toxic 有毒评论。
	Toxic Label = "toxic"
	// NonToxic 无毒评论。
	NonToxic Label = "non-toxic"
	// Unlabeled 表示待推断的未标注文档。
	Unlabeled Label = ""
)

// ParseLabel 将字符串解析为 Label。
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case Toxic:
		return Toxic, nil
	case NonToxic:
		return NonToxic, nil
	default:
		return Unlabeled, xerrors.ErrUnknownLabel.WithContext("label", s)
	}
}

// LabelFromRatings 根据多位标注者毒性评分之和推导类别标签。
// 评分和严格小于阈值视为有毒；等于阈值（含 0 分平局）归为无毒。
// 这一边界约定是上游数据契约的一部分，必须精确保持。
func LabelFromRatings(ratingSum, threshold int) Label {
	if ratingSum < threshold {
		return Toxic
	}
	return NonToxic
}

// Document 表示一条已清洗的评论：唯一标识、有序词元序列和可选的类别标签。
// 构造后不可变；Tokens 在构造时复制，调用方后续修改原切片不影响文档。
type Document struct {
	ID     string
	Tokens []string
	Label  Label
}

// NewDocument 创建一个未标注的文档。
func NewDocument(id string, tokens []string) Document {
	return Document{ID: id, Tokens: cloneTokens(tokens)}
}

// NewLabeledDocument 创建一个带标签的训练文档。
func NewLabeledDocument(id string, tokens []string, label Label) Document {
	return Document{ID: id, Tokens: cloneTokens(tokens), Label: label}
}

// Labeled 报告文档是否带有类别标签。
func (d Document) Labeled() bool {
	return d.Label == Toxic || d.Label == NonToxic
}

// Len 返回文档的词元数量。
func (d Document) Len() int {
	return len(d.Tokens)
}

func cloneTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	cloned := make([]string, len(tokens))
	copy(cloned, tokens)
	return cloned
}

// TokenRecord 是"长表"输入格式的一行：一次词元出现对应一条记录。
type TokenRecord struct {
	DocumentID string
	Token      string
	Label      Label
}
