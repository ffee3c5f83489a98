// Package bayes 实现了基于词频生成模型的朴素贝叶斯二分类器。
// 训练阶段从单一类别的文档集合统计词频表并推导对数概率表；
// 分类阶段用两张概率表加类别先验，通过对数似然比的符号决定标签。
// 模型为最大似然估计，刻意不做平滑，训练集中未出现的词元
// 在对应类别的求和中贡献为零（见 Classifier 的缺词策略说明）。
package bayes

import (
	"github.com/wyfcoding/toxfilter/corpus"
)

// FrequencyTable 是单一类别的词频表：词元到出现次数的映射。
// 训练集中未出现的词元不在表中（不会以 0 计数出现）。
// 表在一次训练运行内构建一次且不再变更，需要更新时整表重建。
type FrequencyTable map[string]int

// BuildFrequencyTable 统计给定文档集合中全部词元的出现次数。
// 输入应已按目标类别过滤；本函数是对 (文档, 词元) 对的纯折叠，
// 不做任何词元级过滤（稀有词过滤发生在语料组装阶段）。
// 零篇文档产出空表，不视为错误；错误在概率推导阶段（N=0）才出现。
func BuildFrequencyTable(docs []corpus.Document) FrequencyTable {
	table := make(FrequencyTable)
	for _, doc := range docs {
		for _, token := range doc.Tokens {
			table[token]++
		}
	}
	return table
}

// Total 返回词频表中全部计数之和，即该类别的总词数 N。
func (t FrequencyTable) Total() int {
	total := 0
	for _, count := range t {
		total += count
	}
	return total
}
