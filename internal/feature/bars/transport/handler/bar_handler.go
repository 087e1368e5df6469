// Package handler はbarsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/feature/bars/transport/http/dto"
)

// timestampLayout はレスポンス内のタイムスタンプ表記です（UTC）。
const timestampLayout = "2006-01-02 15:04:05"

// BarsUsecase は永続化済みBarの参照ユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type BarsUsecase interface {
	GetBars(ctx context.Context, symbol string, limit int) ([]entity.Bar, error)
}

// BarHandler は保存済み時系列データのHTTPリクエストを処理します。
type BarHandler struct {
	uc BarsUsecase
}

// NewBarHandler は指定されたusecaseでBarHandlerの新しいインスタンスを生成します。
func NewBarHandler(uc BarsUsecase) *BarHandler {
	return &BarHandler{uc: uc}
}

// GetBarsHandler は銘柄シンボルを受け取り、Barデータを新しい順のJSONで返します。
//
// エンドポイント例:
// GET /bars/:symbol?limit=200
func (h *BarHandler) GetBarsHandler(c *gin.Context) {
	symbol := c.Param("symbol")
	// 未指定の場合はデフォルト値を使用
	limitStr := c.DefaultQuery("limit", "200")
	// 文字列を整数に変換
	limit, _ := strconv.Atoi(limitStr)

	bars, err := h.uc.GetBars(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	// データをフォーマット
	out := make([]dto.BarResponse, 0, len(bars))
	for _, x := range bars {
		out = append(out, dto.BarResponse{
			Timestamp: x.Timestamp.UTC().Format(timestampLayout),
			Open:      x.Open.StringFixed(entity.PriceScale),
			High:      x.High.StringFixed(entity.PriceScale),
			Low:       x.Low.StringFixed(entity.PriceScale),
			Close:     x.Close.StringFixed(entity.PriceScale),
			Volume:    x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}
