package ratelimiter

import (
	"context"
	"log/slog"
	"time"
)

// RateLimiterInterface は、外部API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context) error
}

// RateLimiter は外部APIの呼び出し頻度をプロセス内で制限します。
// フェッチを並列化する場合もこの1つのインスタンスを共有してください。
type RateLimiter struct {
	limit     int           // interval あたりの呼び出し上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded はレートリミットの上限に達しているかを確認し、必要であれば待機します。
// ctx がキャンセルされた場合は待機を中断してctxのエラーを返します。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	now := time.Now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		sleep := rl.interval - now.Sub(rl.lastReset)
		if sleep > 0 {
			slog.Warn("rate limit window exhausted, waiting", "limit", rl.limit, "sleep", sleep)
			t := time.NewTimer(sleep)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
		// リセット
		rl.count = 1
		rl.lastReset = time.Now()
	}
	return nil
}
