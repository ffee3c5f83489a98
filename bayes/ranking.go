package bayes

import (
	"sort"
)

// TokenRank 是词元诊断排名中的一项。
// Ratio 为两类对数概率的商 logprob_toxic / logprob_good——注意这是
// 两个负数相除，而非对数比。该算式被刻意原样保留（而不是"修正"为
// 对数几率比），下游排名依赖这一精确算术。
type TokenRank struct {
	Token string
	Ratio float64
}

// RankTokens 计算词元诊断排名，按 Ratio 升序返回。
// 仅统计同时出现在两张概率表中、且在两个类别的词频均大于 1 的词元。
// Ratio 越小表示词元在有毒类中相对越常见，排在前面的即最具毒性
// 指示性的词元；切片尾部为最具无毒指示性的词元。
// 纯探索性输出，不参与分类决策。
func RankTokens(probToxic, probGood ProbabilityTable, freqToxic, freqGood FrequencyTable) []TokenRank {
	ranks := make([]TokenRank, 0, len(probToxic))
	for token, lpToxic := range probToxic {
		lpGood, ok := probGood[token]
		if !ok {
			continue
		}
		if freqToxic[token] <= 1 || freqGood[token] <= 1 {
			continue
		}
		ranks = append(ranks, TokenRank{Token: token, Ratio: lpToxic / lpGood})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Ratio != ranks[j].Ratio {
			return ranks[i].Ratio < ranks[j].Ratio
		}
		return ranks[i].Token < ranks[j].Token
	})

	return ranks
}

// MostToxic 返回排名前 k 的毒性指示词元。
// k 被收敛到 [0, len(ranks)] 区间内，越界不报错。
func MostToxic(ranks []TokenRank, k int) []TokenRank {
	k = clampTopK(k, len(ranks))
	return ranks[:k]
}

// MostNonToxic 返回排名前 k 的无毒指示词元（按 Ratio 降序）。
func MostNonToxic(ranks []TokenRank, k int) []TokenRank {
	k = clampTopK(k, len(ranks))
	out := make([]TokenRank, 0, k)
	for i := len(ranks) - 1; i >= len(ranks)-k; i-- {
		out = append(out, ranks[i])
	}
	return out
}

func clampTopK(k, n int) int {
	if k < 0 {
		return 0
	}
	if k > n {
		return n
	}
	return k
}
