package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stock_pipeline/internal/app/di"
	"stock_pipeline/internal/feature/bars/adapters"
	"stock_pipeline/internal/feature/bars/adapters/alphavantage"
	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/feature/bars/usecase"
	"stock_pipeline/internal/platform/db"
	"stock_pipeline/internal/shared/ratelimiter"
	"stock_pipeline/internal/shared/retry"
)

// Alpha Vantage無料枠は5リクエスト/分。レートリミッターとバックオフの既定値はこれに合わせます。
const (
	apiCallsPerMinute = 5
	rateLimitAttempts = 3
	rateLimitDelay    = time.Minute
	dbRetryAttempts   = 3
	dbRetryDelay      = 5 * time.Second
	defaultSymbolsCSV = "IBM,AAPL,MSFT,GOOGL"
	defaultInterval   = "5min"
	runTimeout        = 30 * time.Minute
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// 設定を解決
	symbolsCSV := os.Getenv("STOCK_SYMBOLS")
	if symbolsCSV == "" {
		symbolsCSV = defaultSymbolsCSV
	}
	symbols := splitSymbols(symbolsCSV)

	interval := os.Getenv("STOCK_INTERVAL")
	if interval == "" {
		interval = defaultInterval
	}

	// db
	gdb, err := db.OpenDB(db.LoadConfig())
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}

	// 外部APIクライアント（設定不備はここで即座に落とす）
	market, err := di.NewMarket()
	if err != nil {
		log.Fatal(err)
	}

	barRepo := adapters.NewBarRepository(gdb, retry.Policy{MaxAttempts: dbRetryAttempts, Delay: dbRetryDelay})
	rl := ratelimiter.NewRateLimiter(apiCallsPerMinute, time.Minute)
	backoff := retry.Policy{MaxAttempts: rateLimitAttempts, Delay: rateLimitDelay}

	uc := usecase.NewPipelineUsecase(market, alphavantage.NewNormalizer(), barRepo, rl, backoff)

	// SIGINT/SIGTERMで銘柄の区切りで停止する
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	summary, err := uc.Run(ctx, symbols, interval)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("batch finished: %d/%d symbols succeeded, %d rows written, elapsed %v",
		summary.Succeeded(), len(summary.Results), summary.TotalRows(), summary.Elapsed)
	for _, r := range summary.Results {
		if r.Status != entity.StatusDone {
			log.Printf("  failed: %s: %v", r.Symbol, r.Err)
		}
	}

	// 全銘柄が失敗した場合は異常終了としてオーケストレーターに知らせる
	if summary.Succeeded() == 0 {
		os.Exit(1)
	}
}

// splitSymbols はカンマ区切りの銘柄リストを分割します。空要素は除きます。
func splitSymbols(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
