// Package router はHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	barhandler "stock_pipeline/internal/feature/bars/transport/handler"
	platformhandler "stock_pipeline/internal/platform/http/handler"
)

// NewRouter は参照系APIのルーターを生成します。書き込みはバッチパイプライン
// （cmd/pipeline）専用で、HTTP経由の取り込みエンドポイントは提供しません。
func NewRouter(bars *barhandler.BarHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	// 保存済み時系列データの参照
	r.GET("/bars/:symbol", bars.GetBarsHandler)

	return r
}
