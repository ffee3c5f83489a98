package corpus

import (
	"github.com/wyfcoding/toxfilter/xerrors"
)

// Corpus 是一次训练运行的不可变文档集合。
// 内部维护一次性构建的文档 ID 索引，供按 ID 查询复用；构建后不再变更。
type Corpus struct {
	docs  []Document
	index map[string]int
}

// New 从文档切片构建语料库。
// 文档顺序保持输入顺序；同一文档 ID 重复出现时仅保留首次出现，
// 重复项标签不一致则视为标签连接错误。
func New(docs []Document) (*Corpus, error) {
	if len(docs) == 0 {
		return nil, xerrors.ErrEmptyCorpus
	}

	kept := make([]Document, 0, len(docs))
	index := make(map[string]int, len(docs))
	for _, doc := range docs {
		if prev, ok := index[doc.ID]; ok {
			if kept[prev].Label != doc.Label {
				return nil, xerrors.ErrLabelConflict.WithContext("document_id", doc.ID)
			}
			continue
		}
		index[doc.ID] = len(kept)
		kept = append(kept, doc)
	}

	return &Corpus{docs: kept, index: index}, nil
}

// FromRecords 从"长表"词元记录组装语料库：按文档 ID 连接，保持记录内的词元顺序。
// 同一文档的记录不要求连续，但其标签必须一致。
func FromRecords(records []TokenRecord) (*Corpus, error) {
	if len(records) == 0 {
		return nil, xerrors.ErrEmptyCorpus
	}

	index := make(map[string]int, len(records)/4)
	docs := make([]Document, 0, len(records)/4)

	for _, rec := range records {
		i, ok := index[rec.DocumentID]
		if !ok {
			index[rec.DocumentID] = len(docs)
			docs = append(docs, Document{ID: rec.DocumentID, Label: rec.Label})
			i = len(docs) - 1
		} else if docs[i].Label != rec.Label {
			return nil, xerrors.ErrLabelConflict.WithContext("document_id", rec.DocumentID)
		}
		docs[i].Tokens = append(docs[i].Tokens, rec.Token)
	}

	return &Corpus{docs: docs, index: index}, nil
}

// Documents 返回语料库中的全部文档（按组装顺序）。
// 返回的切片不应被调用方修改。
func (c *Corpus) Documents() []Document {
	return c.docs
}

// Len 返回语料库中的文档数量。
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Get 按文档 ID 查找文档。
func (c *Corpus) Get(id string) (Document, bool) {
	i, ok := c.index[id]
	if !ok {
		return Document{}, false
	}
	return c.docs[i], true
}

// PruneRareTokens 删除全语料出现次数低于 minFreq 的词元，返回新语料库。
// 语料库本身不可变，过滤通过重建完成；过滤后可能产生空文档，
// 空文档保留在语料库中，由分类端按单文档错误处理。
func (c *Corpus) PruneRareTokens(minFreq int) *Corpus {
	if minFreq <= 1 {
		return c
	}

	freq := make(map[string]int)
	for _, doc := range c.docs {
		for _, token := range doc.Tokens {
			freq[token]++
		}
	}

	docs := make([]Document, len(c.docs))
	index := make(map[string]int, len(c.docs))
	for i, doc := range c.docs {
		kept := make([]string, 0, len(doc.Tokens))
		for _, token := range doc.Tokens {
			if freq[token] >= minFreq {
				kept = append(kept, token)
			}
		}
		docs[i] = Document{ID: doc.ID, Tokens: kept, Label: doc.Label}
		index[doc.ID] = i
	}

	return &Corpus{docs: docs, index: index}
}

// Partition 按类别标签划分文档，未标注文档被忽略。
func (c *Corpus) Partition() (toxic, nonToxic []Document) {
	for _, doc := range c.docs {
		switch doc.Label {
		case Toxic:
			toxic = append(toxic, doc)
		case NonToxic:
			nonToxic = append(nonToxic, doc)
		}
	}
	return toxic, nonToxic
}
