// Package journal 把每次下单尝试落盘到 SQLite。
// 流水只记录尝试与其结果状态，用于结果未知时与交易所对账，
// 不承担成交历史或持仓的存储职责。
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"trade-gateway/internal/config"
	"trade-gateway/internal/order"
)

const schema = `
CREATE TABLE IF NOT EXISTS order_attempts (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    venue           TEXT    NOT NULL,
    symbol          TEXT    NOT NULL,
    side            TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    venue_order_id  TEXT    NOT NULL DEFAULT '',
    client_order_id TEXT    NOT NULL DEFAULT '',
    outcome_unknown INTEGER NOT NULL DEFAULT 0,
    intent_index    INTEGER NOT NULL,
    attempt         INTEGER NOT NULL,
    error_detail    TEXT    NOT NULL DEFAULT '',
    raw_response    TEXT    NOT NULL DEFAULT '',
    created_at      TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_order_attempts_client_order_id
    ON order_attempts (client_order_id);
`

// Journal 封装 SQLite 连接。
type Journal struct {
	db *sql.DB
}

// Open 根据配置初始化流水存储。
func Open(cfg config.JournalConfig) (*Journal, error) {
	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ":memory:"
	} else {
		if err := ensureDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite WAL 模式失败: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("初始化流水表失败: %w", err)
	}

	return &Journal{db: conn}, nil
}

// RecordAttempt 写入一条下单尝试记录。
func (j *Journal) RecordAttempt(ctx context.Context, res order.ExecutionResult) error {
	errDetail := ""
	if res.Err != nil {
		errDetail = res.Err.Error()
	}
	outcomeUnknown := 0
	if res.OutcomeUnknown {
		outcomeUnknown = 1
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO order_attempts
    (venue, symbol, side, status, venue_order_id, client_order_id,
     outcome_unknown, intent_index, attempt, error_detail, raw_response)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(res.Venue),
		res.Symbol,
		string(res.Side),
		string(res.Status),
		res.VenueOrderID,
		res.ClientOrderID,
		outcomeUnknown,
		res.IntentIndex,
		res.Attempt,
		errDetail,
		res.RawResponse,
	)
	if err != nil {
		return fmt.Errorf("写入下单尝试流水失败: %w", err)
	}
	return nil
}

// Close 关闭数据库连接。
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("创建目录 %q 失败: %w", path, err)
	}
	return nil
}
