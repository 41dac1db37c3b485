package market

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store 把最近一次从上游拉到的行情序列缓存到本地 sqlite，
// 只缓存上游数据本身，不保存任何回测/决策结果。
type Store struct {
	path string
	ttl  time.Duration

	mu sync.Mutex
	db *sql.DB
}

func NewStore(path string, ttl time.Duration) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path 不能为空")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{path: path, ttl: ttl}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS series_cache (
		ticker     TEXT NOT NULL,
		range_key  TEXT NOT NULL,
		interval   TEXT NOT NULL,
		source     TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		bars       TEXT NOT NULL,
		PRIMARY KEY (ticker, range_key, interval)
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return db, nil
}

func cacheKey(ticker, rangeKey, interval string) (string, string, string) {
	return strings.ToUpper(strings.TrimSpace(ticker)),
		strings.ToLower(strings.TrimSpace(rangeKey)),
		strings.ToLower(strings.TrimSpace(interval))
}

// Get 返回未过期的缓存序列及其来源；没有命中时 ok=false。
func (s *Store) Get(ctx context.Context, ticker, rangeKey, interval string) (PriceSeries, string, bool) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, "", false
	}
	t, r, iv := cacheKey(ticker, rangeKey, interval)
	var source, payload string
	var fetchedAt int64
	row := db.QueryRowContext(ctx,
		`SELECT source, fetched_at, bars FROM series_cache WHERE ticker=? AND range_key=? AND interval=?`,
		t, r, iv)
	if err := row.Scan(&source, &fetchedAt, &payload); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, "", false
		}
		return nil, "", false
	}
	if time.Since(time.UnixMilli(fetchedAt)) > s.ttl {
		return nil, "", false
	}
	var bars []Bar
	if err := json.Unmarshal([]byte(payload), &bars); err != nil {
		return nil, "", false
	}
	if len(bars) == 0 {
		return nil, "", false
	}
	return PriceSeries(bars), source, true
}

// Put 覆盖写入一条缓存。
func (s *Store) Put(ctx context.Context, ticker, rangeKey, interval, source string, series PriceSeries) error {
	if len(series) == 0 {
		return nil
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal([]Bar(series))
	if err != nil {
		return err
	}
	t, r, iv := cacheKey(ticker, rangeKey, interval)
	_, err = db.ExecContext(ctx,
		`INSERT INTO series_cache (ticker, range_key, interval, source, fetched_at, bars)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ticker, range_key, interval) DO UPDATE SET
		   source=excluded.source, fetched_at=excluded.fetched_at, bars=excluded.bars`,
		t, r, iv, source, time.Now().UnixMilli(), string(payload))
	return err
}
