package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
)

// SeriesCache 在 SQLite 中缓存已拉取的收盘价序列。
type SeriesCache struct {
	db *sql.DB
}

// NewSeriesCache 创建缓存并初始化表结构。
func NewSeriesCache(db *sql.DB) (*SeriesCache, error) {
	if db == nil {
		return nil, errors.New("store: 数据库实例不能为空")
	}
	cache := &SeriesCache{db: db}
	if err := cache.initSchema(); err != nil {
		return nil, err
	}
	return cache, nil
}

func (c *SeriesCache) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS price_points (
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			ts INTEGER NOT NULL,
			close TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, timeframe, ts)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_price_points_fetched ON price_points(symbol, timeframe, fetched_at);`,
	}

	for _, stmt := range schema {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: 初始化表结构失败: %w", err)
		}
	}
	return nil
}

// Save 以 upsert 方式写入序列，fetchedAt 记录拉取时间。
func (c *SeriesCache) Save(ctx context.Context, symbol, timeframe string, points []backtest.PricePoint, fetchedAt time.Time) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: 开启事务失败: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_points (symbol, timeframe, ts, close, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol, timeframe, ts) DO UPDATE SET close = excluded.close, fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("store: 预编译写入语句失败: %w", err)
	}
	defer stmt.Close()

	fetched := fetchedAt.UTC().UnixMilli()
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, symbol, timeframe, p.Timestamp.UTC().UnixMilli(), p.Close.String(), fetched); err != nil {
			return fmt.Errorf("store: 写入 %s %s 行情失败: %w", symbol, timeframe, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: 提交事务失败: %w", err)
	}
	return nil
}

// Load 返回最近 limit 个点，按时间升序；limit<=0 表示全部。
func (c *SeriesCache) Load(ctx context.Context, symbol, timeframe string, limit int) ([]backtest.PricePoint, error) {
	query := `SELECT ts, close FROM price_points WHERE symbol = ? AND timeframe = ? ORDER BY ts DESC`
	args := []interface{}{symbol, timeframe}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: 查询 %s %s 行情失败: %w", symbol, timeframe, err)
	}
	defer rows.Close()

	var points []backtest.PricePoint
	for rows.Next() {
		var (
			ts       int64
			closeStr string
		)
		if err := rows.Scan(&ts, &closeStr); err != nil {
			return nil, fmt.Errorf("store: 读取行情失败: %w", err)
		}
		closePrice, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, fmt.Errorf("store: 解析收盘价 %q 失败: %w", closeStr, err)
		}
		points = append(points, backtest.PricePoint{Timestamp: time.UnixMilli(ts).UTC(), Close: closePrice})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: 遍历行情失败: %w", err)
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// Freshness 返回该序列最近一次拉取的时间，没有缓存时 ok 为 false。
func (c *SeriesCache) Freshness(ctx context.Context, symbol, timeframe string) (time.Time, bool, error) {
	var fetched sql.NullInt64
	err := c.db.QueryRowContext(ctx,
		`SELECT MAX(fetched_at) FROM price_points WHERE symbol = ? AND timeframe = ?`,
		symbol, timeframe,
	).Scan(&fetched)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("store: 查询缓存时间失败: %w", err)
	}
	if !fetched.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(fetched.Int64).UTC(), true, nil
}
