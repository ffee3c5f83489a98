package corpus

import (
	"math/rand/v2"

	"github.com/wyfcoding/toxfilter/xerrors"
)

// Splitter 按固定比例将文档集划分为训练/测试两部分。
// 随机源由显式种子注入，同一种子和输入顺序下划分结果完全可复现。
type Splitter struct {
	random *rand.Rand
	ratio  float64
}

// NewSplitter 创建划分器。ratio 为训练集占比，必须落在 (0, 1) 区间。
func NewSplitter(ratio float64, seed uint64) (*Splitter, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, xerrors.ErrInvalidSplitRatio.WithContext("ratio", ratio)
	}

	//nolint:gosec // 数据集划分使用非加密安全随机数即可.
	return &Splitter{
		ratio:  ratio,
		random: rand.New(rand.NewPCG(seed, 0)),
	}, nil
}

// Split 洗牌后按比例切分文档。输入切片不被修改。
// 按类别独立划分时，对每个类别的分区各调用一次。
func (s *Splitter) Split(docs []Document) (train, test []Document) {
	shuffled := make([]Document, len(docs))
	copy(shuffled, docs)
	s.random.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * s.ratio)
	return shuffled[:cut], shuffled[cut:]
}
