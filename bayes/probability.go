package bayes

import (
	"math"

	"github.com/wyfcoding/toxfilter/xerrors"
)

// ProbabilityTable 是单一类别的对数概率表：词元到 ln(n_i / N) 的映射。
// 每个值均 ≤ 0；exp(值) 落在 (0, 1] 区间。
// 只有训练集中出现过的词元有条目；缺失词元的处理由分类器的缺词策略决定。
type ProbabilityTable map[string]float64

// DeriveProbabilities 从词频表推导对数概率表。
// N 为该类别的总词数；每个词元的条目为 ln(count / N)。
// 最大似然估计，不加平滑项——这是与原始模型行为保持一致的刻意选择。
// N = 0（类别分区为空）时返回 ErrDegenerateClass，
// 整个训练流程必须保证划分后两个类别均非空。
func DeriveProbabilities(freq FrequencyTable) (ProbabilityTable, error) {
	total := freq.Total()
	if total == 0 {
		return nil, xerrors.ErrDegenerateClass
	}

	table := make(ProbabilityTable, len(freq))
	n := float64(total)
	for token, count := range freq {
		table[token] = math.Log(float64(count) / n)
	}
	return table, nil
}
