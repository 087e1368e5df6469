// Package usecase は株価時系列データの取り込みと参照のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stock_pipeline/internal/feature/bars/domain"
	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/shared/ratelimiter"
	"stock_pipeline/internal/shared/retry"
)

// maxSymbolLen はティッカーシンボルの最大長です。
const maxSymbolLen = 10

// ValidIntervals は取り込み対象として許可される時間足の集合です。
var ValidIntervals = map[string]struct{}{
	"1min":  {},
	"5min":  {},
	"15min": {},
	"30min": {},
	"60min": {},
}

// MarketRepository は外部プロバイダーから生の時系列ペイロードを取得するリポジトリの
// インターフェイスです。失敗はdomainのセンチネルエラーで分類済みであることを前提とします。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	FetchIntraday(ctx context.Context, symbol, interval string) (*entity.RawSeries, error)
}

// SeriesNormalizer はプロバイダー固有のペイロードを型付きBarに変換し、
// スキップした不正行数を返します。
type SeriesNormalizer interface {
	Normalize(raw *entity.RawSeries, symbol string) ([]entity.Bar, int)
}

// BarRepository はBarの永続化レイヤーを抽象化します。
type BarRepository interface {
	// UpsertBatch は1銘柄分のBarを1トランザクションで書き込み、書き込んだ行数を返します。
	UpsertBatch(ctx context.Context, bars []entity.Bar) (int64, error)
	// Find はデータベースからBarを新しい順に検索します。
	Find(ctx context.Context, symbol string, limit int) ([]entity.Bar, error)
}

// PipelineUsecase は銘柄リストに対して 取得 → 正規化 → 永続化 のパイプラインを
// 1銘柄ずつ順に実行するバッチコーディネーターです。
// ある銘柄の失敗は記録するだけで、残りの銘柄の処理は続行します。
type PipelineUsecase struct {
	market      MarketRepository
	norm        SeriesNormalizer
	bars        BarRepository
	rateLimiter ratelimiter.RateLimiterInterface
	backoff     retry.Policy // レート制限時に同一銘柄のフェッチを再試行するポリシー
}

// NewPipelineUsecase は新しい PipelineUsecase を作成します。
func NewPipelineUsecase(market MarketRepository, norm SeriesNormalizer, bars BarRepository,
	rateLimiter ratelimiter.RateLimiterInterface, backoff retry.Policy) *PipelineUsecase {
	if backoff.MaxAttempts < 1 {
		backoff.MaxAttempts = 1
	}
	return &PipelineUsecase{
		market:      market,
		norm:        norm,
		bars:        bars,
		rateLimiter: rateLimiter,
		backoff:     backoff,
	}
}

// Run は銘柄リスト全体を処理し、銘柄ごとの結果を入力と同じ順序で持つRunSummaryを返します。
// エラーを返すのは設定ミス（空の銘柄リスト、不正な時間足）のときだけで、
// その場合はネットワークアクセスを一切行いません。個々の銘柄の失敗はRunSummaryに
// 記録されるため、部分的に失敗したバッチも正常なRun呼び出しです。
func (p *PipelineUsecase) Run(ctx context.Context, symbols []string, interval string) (*entity.RunSummary, error) {
	syms, err := validateSymbols(symbols)
	if err != nil {
		return nil, err
	}
	if _, ok := ValidIntervals[interval]; !ok {
		return nil, fmt.Errorf("invalid interval %q", interval)
	}

	summary := &entity.RunSummary{
		Interval:  interval,
		StartedAt: time.Now(),
		Results:   make([]entity.SymbolResult, 0, len(syms)),
	}
	slog.Info("starting batch run", "symbols", len(syms), "interval", interval)

	canceled := false
	for _, s := range syms {
		// 銘柄間の協調キャンセルポイント。中断後も残りの銘柄の結果は必ず記録します。
		if canceled || ctx.Err() != nil {
			canceled = true
			summary.Results = append(summary.Results, entity.SymbolResult{
				Symbol: s,
				Status: entity.StatusFailed,
				Err:    context.Cause(ctx),
			})
			continue
		}

		res := p.processSymbol(ctx, s, interval)
		if res.Status == entity.StatusDone {
			slog.Info("symbol ingested", "symbol", s, "rows", res.RowsWritten, "skipped", res.SkippedRows)
		} else {
			slog.Error("symbol abandoned", "symbol", s, "error", res.Err)
		}
		summary.Results = append(summary.Results, res)
	}

	summary.Elapsed = time.Since(summary.StartedAt)
	slog.Info("batch run finished",
		"succeeded", summary.Succeeded(),
		"failed", summary.Failed(),
		"rows", summary.TotalRows(),
		"elapsed", summary.Elapsed)
	return summary, nil
}

// processSymbol は1銘柄分のパイプラインを実行します。どの段階の失敗もここで捕捉され、
// 結果として返されるだけで、呼び出し元のループを止めることはありません。
func (p *PipelineUsecase) processSymbol(ctx context.Context, symbol, interval string) entity.SymbolResult {
	raw, err := p.fetchWithBackoff(ctx, symbol, interval)
	if err != nil {
		return entity.SymbolResult{Symbol: symbol, Status: entity.StatusFailed, Err: err}
	}

	bars, skipped := p.norm.Normalize(raw, symbol)
	if skipped > 0 {
		slog.Warn("skipped malformed rows", "symbol", symbol, "skipped", skipped)
	}

	rows, err := p.bars.UpsertBatch(ctx, bars)
	if err != nil {
		return entity.SymbolResult{Symbol: symbol, Status: entity.StatusFailed, SkippedRows: skipped, Err: err}
	}

	return entity.SymbolResult{
		Symbol:      symbol,
		Status:      entity.StatusDone,
		RowsWritten: rows,
		SkippedRows: skipped,
	}
}

// fetchWithBackoff はレートリミッターを通してフェッチを実行します。
// プロバイダーがレート制限を通知した場合のみ、固定間隔で同一銘柄を再試行します。
// それ以外のエラーは即座に返します（InvalidSymbol等は再試行しても無駄なため）。
func (p *PipelineUsecase) fetchWithBackoff(ctx context.Context, symbol, interval string) (*entity.RawSeries, error) {
	for attempt := 1; ; attempt++ {
		if err := p.rateLimiter.WaitIfNeeded(ctx); err != nil {
			return nil, err
		}

		raw, err := p.market.FetchIntraday(ctx, symbol, interval)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, domain.ErrRateLimited) || attempt >= p.backoff.MaxAttempts {
			return nil, err
		}

		slog.Warn("provider rate limit hit, backing off",
			"symbol", symbol, "attempt", attempt, "delay", p.backoff.Delay)
		if werr := p.backoff.Wait(ctx); werr != nil {
			return nil, werr
		}
	}
}

// validateSymbols は銘柄リストを検証し、大文字化・空白除去済みのリストを返します。
func validateSymbols(symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, errors.New("symbols list is empty")
	}
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return nil, errors.New("symbols list contains an empty symbol")
		}
		if len(s) > maxSymbolLen {
			return nil, fmt.Errorf("symbol %q exceeds %d characters", s, maxSymbolLen)
		}
		out = append(out, s)
	}
	return out, nil
}
