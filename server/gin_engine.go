package server

import (
	"github.com/gin-gonic/gin"
)

// NewDefaultGinEngine 创建一个新的 Gin 引擎实例。
// 引擎不内置任何默认中间件，由调用方显式注入 Recovery/Logger 等治理中间件，
// 以便精准控制中间件的集合与顺序。
func NewDefaultGinEngine(middlewares ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()

	engine.Use(middlewares...)

	return engine
}
