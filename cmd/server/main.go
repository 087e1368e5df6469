package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_pipeline/internal/app/router"
	"stock_pipeline/internal/feature/bars/adapters"
	barhandler "stock_pipeline/internal/feature/bars/transport/handler"
	"stock_pipeline/internal/feature/bars/usecase"
	"stock_pipeline/internal/platform/cache"
	"stock_pipeline/internal/platform/db"
	infraredis "stock_pipeline/internal/platform/redis"
	"stock_pipeline/internal/shared/retry"
)

// barsCacheTTL は参照APIのキャッシュ保持期間です。取り込みは5分足が既定のため、
// それより長く保持しても鮮度の問題しか生まれません。
const barsCacheTTL = 5 * time.Minute

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	gdb, err := db.OpenDB(db.LoadConfig())
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	barRepo := adapters.NewBarRepository(gdb, retry.DefaultPolicy)

	// Redisキャッシュでラップ
	cachedBarRepo := cache.NewCachingBarRepository(rdb, barsCacheTTL, barRepo, "bars")

	// Usecase
	barsUC := usecase.NewBarsUsecase(cachedBarRepo)

	// Handler
	barsH := barhandler.NewBarHandler(barsUC)

	// ルータ生成
	router := router.NewRouter(barsH)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
