package usecase

import (
	"context"

	"stock_pipeline/internal/feature/bars/domain/entity"
)

const (
	// DefaultLimit はBarクエリのデフォルト返却件数です。
	DefaultLimit = 200
	// MaxLimit はBarクエリの最大返却件数です。
	MaxLimit = 5000
)

// barsUsecase は永続化済みBarの参照ユースケースを定義します。
type barsUsecase struct {
	bars BarRepository
}

// NewBarsUsecase はbarsUsecaseの新しいインスタンスを生成します。
func NewBarsUsecase(bars BarRepository) *barsUsecase {
	return &barsUsecase{bars: bars}
}

// GetBars は指定された銘柄のBarを新しい順に取得します。
func (bu *barsUsecase) GetBars(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	bs, err := bu.bars.Find(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	return bs, nil
}
