// Package db はGORM経由のPostgreSQL接続を管理します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"stock_pipeline/internal/feature/bars/adapters"
)

// 起動時の接続再試行の上限と間隔。コンテナ環境でDBの起動を待つためのものです。
const (
	connectDeadline = 60 * time.Second
	connectInterval = 3 * time.Second
)

// Config holds PostgreSQL connection parameters.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LoadConfig loads database configuration from environment variables,
// falling back to local development defaults.
func LoadConfig() Config {
	return Config{
		Host:     getenv("POSTGRES_HOST", "localhost"),
		Port:     getenv("POSTGRES_PORT", "5432"),
		User:     getenv("POSTGRES_USER", "postgres"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     getenv("POSTGRES_DB", "stock_data"),
		SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// BuildDSN はPostgreSQL接続用のDSN文字列を生成します。
// タイムスタンプの一意性はUTCでの等価性に依存するため、TimeZoneはUTCに固定します。
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// openerFunc はDSNからgorm.DBを開く関数の型です。テストでの差し替え用に分離しています。
type openerFunc func(dsn string) (*gorm.DB, error)

func gormOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
}

// ConnectWithRetry は接続が確立できるまで一定間隔で再試行しながらDBを開きます。
// timeoutを超えても接続できない場合は最後のエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener openerFunc) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(connectInterval)
	}
}

// OpenDB は設定からDSNを組み立てて接続し、必要に応じてマイグレーションを実行します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), connectDeadline, gormOpener)
	if err != nil {
		return nil, err
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate はスキーマを適用します。(symbol, timestamp) の一意インデックスを含みます。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&adapters.BarModel{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
