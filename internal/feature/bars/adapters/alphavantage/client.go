package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"stock_pipeline/internal/feature/bars/adapters/alphavantage/dto"
	"stock_pipeline/internal/feature/bars/domain"
	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/feature/bars/usecase"
)

// Client はAlpha Vantage外部APIから株価時系列データを取得するMarketRepository実装です。
// リトライは行いません。レート制限時の再試行はバッチコーディネーター側の責務です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// FetchIntraday はTIME_SERIES_INTRADAYエンドポイントを1回呼び出し、
// プロバイダー固有の形のままの時系列ペイロードを返します。
// 失敗はこの境界で一度だけ分類されます:
//   - 接続失敗・非2xx応答      → domain.ErrNetwork
//   - デコード不能なボディ     → domain.ErrMalformedResponse
//   - レート制限通知 (Note等)  → domain.ErrRateLimited
//   - プロバイダーエラー       → domain.ErrInvalidSymbol（元のメッセージ付き）
//
// 時系列マッピングが存在しない正常応答は空のRawSeriesとして返します（エラーではない）。
func (c *Client) FetchIntraday(ctx context.Context, symbol, interval string) (*entity.RawSeries, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("apikey", c.cfg.APIKey)

	// URLを生成
	u := fmt.Sprintf("%s/query?%s", c.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrNetwork, err)
	}

	// リクエストを実行
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: alphavantage http %d", domain.ErrNetwork, res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	// 正常なボディに埋め込まれたソフトエラーを検出
	if body.Note != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, body.Note)
	}
	if body.Information != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, body.Information)
	}
	if body.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSymbol, body.ErrorMessage)
	}

	rows := make(map[string]entity.RawBar, len(body.Series))
	for ts, v := range body.Series {
		rows[ts] = entity.RawBar{
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		}
	}

	return &entity.RawSeries{
		Interval: body.Interval(interval),
		Rows:     rows,
	}, nil
}
