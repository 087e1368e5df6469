package alphavantage

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/feature/bars/usecase"
)

// プロバイダーのタイムスタンプ形式。タイムゾーン情報を持たないため、
// UTCとして解釈します（一意性制約がタイムスタンプの等価性に依存するため固定）。
const (
	timestampLayout = "2006-01-02 15:04:05"
	dateOnlyLayout  = "2006-01-02"
)

// Normalizer はプロバイダー固有のペイロードを型付きのBarの列に変換します。
type Normalizer struct{}

// NormalizerがSeriesNormalizerを実装していることをコンパイル時に検証します。
var _ usecase.SeriesNormalizer = (*Normalizer)(nil)

// NewNormalizer はNormalizerの新しいインスタンスを生成します。
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize はRawSeriesの各行をパースしてBarのスライスと、
// 不正のためスキップした行数を返します。行単位の不正は致命的ではありません:
// パースできた行はすべて出力され、スキップ数は呼び出し元がログに残します。
// 出力順は保証しません。下流の書き込みは(symbol, timestamp)キーで冪等です。
func (n *Normalizer) Normalize(raw *entity.RawSeries, symbol string) ([]entity.Bar, int) {
	if raw == nil || len(raw.Rows) == 0 {
		return []entity.Bar{}, 0
	}

	bars := make([]entity.Bar, 0, len(raw.Rows))
	skipped := 0
	for ts, row := range raw.Rows {
		bar, err := parseRow(symbol, ts, row)
		if err != nil {
			slog.Debug("skipping malformed row", "symbol", symbol, "timestamp", ts, "error", err)
			skipped++
			continue
		}
		bars = append(bars, bar)
	}
	return bars, skipped
}

// parseRow は1行分のOHLCVをパースします。フィールドの欠落・非数値・負値はエラーです。
func parseRow(symbol, ts string, row entity.RawBar) (entity.Bar, error) {
	// タイムスタンプをパース（日足形式へのフォールバック付き）
	tm, err := time.Parse(timestampLayout, ts)
	if err != nil {
		tm, err = time.Parse(dateOnlyLayout, ts)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse time %q: %w", ts, err)
		}
	}

	o, err := parsePrice("open", row.Open)
	if err != nil {
		return entity.Bar{}, err
	}
	h, err := parsePrice("high", row.High)
	if err != nil {
		return entity.Bar{}, err
	}
	l, err := parsePrice("low", row.Low)
	if err != nil {
		return entity.Bar{}, err
	}
	c, err := parsePrice("close", row.Close)
	if err != nil {
		return entity.Bar{}, err
	}

	vol, err := strconv.ParseInt(row.Volume, 10, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse volume %q: %w", row.Volume, err)
	}
	if vol < 0 {
		return entity.Bar{}, fmt.Errorf("negative volume %d", vol)
	}

	return entity.Bar{
		Symbol:    symbol,
		Timestamp: tm,
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    vol,
	}, nil
}

// parsePrice は価格文字列を固定精度のdecimalに変換します。
// 丸めはこの正規化境界で一度だけ行い、DB側では行いません。
func parsePrice(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative %s %q", field, s)
	}
	return d.Round(entity.PriceScale), nil
}
