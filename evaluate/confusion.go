// Package evaluate 提供了预测结果与真实标签的对比评估：混淆矩阵与准确率。
package evaluate

import (
	"fmt"
	"strings"

	"github.com/wyfcoding/toxfilter/corpus"
)

// ConfusionMatrix 是 2×2 的计数表：实际标签 × 预测标签。
// 全部单元格之和等于被评分的测试文档数，对角线为预测正确的数量。
type ConfusionMatrix struct {
	counts [2][2]int
}

func labelIndex(label corpus.Label) (int, bool) {
	switch label {
	case corpus.Toxic:
		return 0, true
	case corpus.NonToxic:
		return 1, true
	default:
		return 0, false
	}
}

// Add 记录一次 (实际, 预测) 标签对。未知标签被忽略。
func (m *ConfusionMatrix) Add(actual, predicted corpus.Label) {
	i, ok := labelIndex(actual)
	if !ok {
		return
	}
	j, ok := labelIndex(predicted)
	if !ok {
		return
	}
	m.counts[i][j]++
}

// Cell 返回 (实际, 预测) 组合的计数。
func (m *ConfusionMatrix) Cell(actual, predicted corpus.Label) int {
	i, ok := labelIndex(actual)
	if !ok {
		return 0
	}
	j, ok := labelIndex(predicted)
	if !ok {
		return 0
	}
	return m.counts[i][j]
}

// Total 返回全部单元格计数之和。
func (m *ConfusionMatrix) Total() int {
	total := 0
	for i := range m.counts {
		for j := range m.counts[i] {
			total += m.counts[i][j]
		}
	}
	return total
}

// Correct 返回对角线计数之和，即预测正确的文档数。
func (m *ConfusionMatrix) Correct() int {
	return m.counts[0][0] + m.counts[1][1]
}

// Accuracy 返回准确率；空矩阵返回 0。
func (m *ConfusionMatrix) Accuracy() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.Correct()) / float64(total)
}

// String 渲染一个便于日志输出的小表格。
func (m *ConfusionMatrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s %10s %10s\n", "actual \\ predicted", corpus.Toxic, corpus.NonToxic)
	fmt.Fprintf(&b, "%-18s %10d %10d\n", corpus.Toxic, m.counts[0][0], m.counts[0][1])
	fmt.Fprintf(&b, "%-18s %10d %10d", corpus.NonToxic, m.counts[1][0], m.counts[1][1])
	return b.String()
}
