package adapters

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_pipeline/internal/feature/bars/domain"
	"stock_pipeline/internal/feature/bars/domain/entity"
	"stock_pipeline/internal/feature/bars/usecase"
	"stock_pipeline/internal/shared/retry"
)

type barPostgres struct {
	db     *gorm.DB
	policy retry.Policy // 一時的な接続障害に対する境界付き再試行
}

var _ usecase.BarRepository = (*barPostgres)(nil)

// NewBarRepository は指定されたDBと再試行ポリシーでBarリポジトリを生成します。
func NewBarRepository(db *gorm.DB, policy retry.Policy) *barPostgres {
	return &barPostgres{db: db, policy: policy}
}

// BarModel is the persisted form of entity.Bar. The unique index on
// (symbol, timestamp) is the authority for upsert conflict resolution.
// CreatedAt is set once on first insert; UpdatedAt is refreshed on every upsert.
type BarModel struct {
	ID         uint            `gorm:"primaryKey"`
	Symbol     string          `gorm:"size:10;not null;uniqueIndex:stock_data_sym_time,priority:1"`
	Timestamp  time.Time       `gorm:"not null;uniqueIndex:stock_data_sym_time,priority:2"`
	OpenPrice  decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	HighPrice  decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	LowPrice   decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	ClosePrice decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	Volume     int64           `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (BarModel) TableName() string {
	return "stock_data"
}

func toModel(e entity.Bar) BarModel {
	return BarModel{
		Symbol:     e.Symbol,
		Timestamp:  e.Timestamp,
		OpenPrice:  e.Open,
		HighPrice:  e.High,
		LowPrice:   e.Low,
		ClosePrice: e.Close,
		Volume:     e.Volume,
	}
}

func toEntity(m BarModel) entity.Bar {
	return entity.Bar{
		Symbol:    m.Symbol,
		Timestamp: m.Timestamp,
		Open:      m.OpenPrice,
		High:      m.HighPrice,
		Low:       m.LowPrice,
		Close:     m.ClosePrice,
		Volume:    m.Volume,
	}
}

// UpsertBatch は1銘柄分のBarを1トランザクションで書き込みます。
// (symbol, timestamp) が衝突した行はOHLCVとupdated_atのみ上書きされ、
// created_atは最初の挿入時の値を保ちます。一時的な接続障害はポリシーに従って
// 再試行し、それでも失敗した場合は domain.ErrConnectionFailure として返します。
// 整合性エラー（精度オーバーフロー等）は再試行せず domain.ErrConstraintViolation を返します。
func (r *barPostgres) UpsertBatch(ctx context.Context, bars []entity.Bar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	ms := make([]BarModel, 0, len(bars))
	for _, e := range bars {
		ms = append(ms, toModel(e))
	}

	op := func() error {
		// 全行コミットするか、1行もコミットしないか（他銘柄の確定済みコミットには影響しない）
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "symbol"}, {Name: "timestamp"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"open_price", "high_price", "low_price", "close_price", "volume", "updated_at",
				}),
			}).Create(&ms).Error
		})
	}

	if err := r.policy.Do(ctx, op, isTransient); err != nil {
		return 0, classifyDBError(err)
	}
	return int64(len(ms)), nil
}

// Find は指定された銘柄のBarを新しい順に検索します。
func (r *barPostgres) Find(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
	var rows []BarModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Bar, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// isTransient は再接続で回復しうる失敗かどうかを判定します。
// Postgresのクラス08（接続例外）、53（リソース不足）、57（管理者による切断）と
// ドライバ・ネットワークレベルの接続エラーを一時的な障害として扱います。
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch errClass(pgErr.Code) {
		case "08", "53", "57":
			return true
		}
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// gormのダイアレクトによってはプレーンな文字列しか得られない
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe")
}

// errClass はSQLSTATEコードの先頭2桁（エラークラス）を返します。
func errClass(code string) string {
	if len(code) < 2 {
		return code
	}
	return code[:2]
}

// classifyDBError は書き込み失敗をdomainのセンチネルエラーに対応付けます。
func classifyDBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// クラス22（データ例外）と23（整合性制約違反）は再試行しても解消しない
		switch errClass(pgErr.Code) {
		case "22", "23":
			return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrConnectionFailure, err)
	}
	return err
}
