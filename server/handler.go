package server

import (
	"crypto/md5" //nolint:gosec // 仅用于生成预测缓存键的非安全哈希。
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/toxfilter/bayes"
	"github.com/wyfcoding/toxfilter/cache"
	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/logging"
	"github.com/wyfcoding/toxfilter/metrics"
	"github.com/wyfcoding/toxfilter/pipeline"
	"github.com/wyfcoding/toxfilter/response"
	"github.com/wyfcoding/toxfilter/tokenize"
	"github.com/wyfcoding/toxfilter/xerrors"
)

// Handler 持有分类 API 所需的依赖：分类器、词元化器、预测缓存和指标。
// 模型通过 SetModel 原子替换，请求处理只读，支持任意并发。
type Handler struct {
	logger    *logging.Logger
	metrics   *metrics.Metrics
	cache     cache.Cache // 可为 nil，表示禁用预测缓存
	tokenizer *tokenize.Tokenizer

	mu         sync.RWMutex
	classifier *bayes.Classifier
	model      *pipeline.Model
}

// NewHandler 创建分类 API 处理器。metrics 与 cache 均可为 nil。
func NewHandler(logger *logging.Logger, m *metrics.Metrics, c cache.Cache, tok *tokenize.Tokenizer) *Handler {
	return &Handler{
		logger:    logger,
		metrics:   m,
		cache:     c,
		tokenizer: tok,
	}
}

// SetModel 装载（或热替换）训练好的模型。
func (h *Handler) SetModel(model *pipeline.Model) error {
	classifier, err := model.NewClassifier()
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.model = model
	h.classifier = classifier
	h.mu.Unlock()

	return nil
}

func (h *Handler) snapshot() (*bayes.Classifier, *pipeline.Model) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.classifier, h.model
}

// RegisterRoutes 注册分类 API 路由。
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/v1")
	v1.POST("/classify", h.classify)
	v1.GET("/rankings", h.rankings)
	engine.GET("/healthz", h.health)
}

// classifyRequest 是在线分类请求体。
type classifyRequest struct {
	// MessageID 可选，回显在响应中，便于调用方关联。
	MessageID string `json:"message_id"`
	Message   string `json:"message" binding:"required"`
}

// classifyResponse 是在线分类响应体。
type classifyResponse struct {
	MessageID string  `json:"message_id,omitempty"`
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Cached    bool    `json:"cached"`
}

func cacheKey(message string) string {
	sum := md5.Sum([]byte(message)) //nolint:gosec
	return "pred:" + hex.EncodeToString(sum[:])
}

func (h *Handler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, xerrors.ErrEmptyMessage)
		return
	}

	classifier, _ := h.snapshot()
	if classifier == nil {
		response.Error(c, xerrors.ErrModelNotTrained)
		return
	}

	ctx := c.Request.Context()
	key := cacheKey(req.Message)

	// 同一消息的预测结果完全确定，可安全缓存复用。
	if h.cache != nil {
		var cached classifyResponse
		if err := h.cache.Get(ctx, key, &cached); err == nil {
			if h.metrics != nil {
				h.metrics.CacheHitsTotal.Inc()
			}
			cached.MessageID = req.MessageID
			cached.Cached = true
			response.Success(c, cached)
			return
		}
		if h.metrics != nil {
			h.metrics.CacheMissesTotal.Inc()
		}
	}

	tokens := h.tokenizer.Tokenize(req.Message)
	doc := corpus.NewDocument(req.MessageID, tokens)

	pred, err := classifier.Classify(doc)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ClassificationErrors.Inc()
		}
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ClassificationsTotal.WithLabelValues(string(pred.Label)).Inc()
		h.metrics.ClassificationScore.Observe(pred.Score)
	}

	resp := classifyResponse{
		MessageID: req.MessageID,
		Label:     string(pred.Label),
		Score:     pred.Score,
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, resp, time.Hour); err != nil {
			h.logger.WarnContext(ctx, "failed to cache prediction", "error", err)
		}
	}

	response.Success(c, resp)
}

// rankingsResponse 是词元诊断排名响应体。
type rankingsResponse struct {
	MostToxic    []bayes.TokenRank `json:"most_toxic"`
	MostNonToxic []bayes.TokenRank `json:"most_non_toxic"`
}

const defaultRankingLimit = 20

func (h *Handler) rankings(c *gin.Context) {
	_, model := h.snapshot()
	if model == nil {
		response.Error(c, xerrors.ErrModelNotTrained)
		return
	}

	limit := defaultRankingLimit
	if v, ok := c.GetQuery("limit"); ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ranks := model.Rankings()
	response.Success(c, rankingsResponse{
		MostToxic:    bayes.MostToxic(ranks, limit),
		MostNonToxic: bayes.MostNonToxic(ranks, limit),
	})
}

func (h *Handler) health(c *gin.Context) {
	_, model := h.snapshot()
	status := gin.H{"status": "ok", "model_loaded": model != nil}
	if model != nil {
		status["trained_at"] = model.TrainedAt
	}
	response.SuccessWithRawData(c, status)
}
