package xerrors

var (
	// ErrEmptyCorpus 语料库为空。
	ErrEmptyCorpus = New(ErrInvalidArg, 400001, "empty corpus", "corpus must contain at least one document", nil)
	// ErrDegenerateClass 某个类别的训练分区没有任何词元，无法估计该类的分布。
	ErrDegenerateClass = New(ErrInvalidArg, 400002, "degenerate class", "training partition for the class contains no tokens", nil)
	// ErrEmptyDocument 文档在上游过滤后没有可评分的词元。
	ErrEmptyDocument = New(ErrInvalidArg, 400003, "empty document", "document has no scorable tokens", nil)
	// ErrInvalidSplitRatio 训练集比例不在 (0, 1) 区间内。
	ErrInvalidSplitRatio = New(ErrInvalidArg, 400004, "invalid split ratio", "train ratio must be in range (0, 1)", nil)
	// ErrUnknownLabel 未知的类别标签。
	ErrUnknownLabel = New(ErrInvalidArg, 400005, "unknown class label", "supported labels: toxic, non-toxic", nil)
	// ErrLabelConflict 同一文档 ID 在输入记录中出现了互相矛盾的标签。
	ErrLabelConflict = New(ErrInvalidArg, 400008, "label conflict", "document appears with conflicting class labels", nil)
	// ErrInvalidPrior 先验概率必须为正且两类先验之和为 1。
	ErrInvalidPrior = New(ErrInvalidArg, 400006, "invalid class prior", "priors must be positive and sum to 1.0", nil)
	// ErrEmptyMessage 在线分类请求的消息内容为空。
	ErrEmptyMessage = New(ErrInvalidArg, 400007, "empty message", "message text must not be empty", nil)
	// ErrModelNotTrained 模型尚未训练完成。
	ErrModelNotTrained = New(ErrUnavailable, 500101, "model not trained", "train the model before classifying", nil)
)
