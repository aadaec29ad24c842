package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"TradePilot/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			ticker     TEXT NOT NULL,
			action     TEXT NOT NULL,
			quantity   REAL,
			price      REAL,
			strategy   TEXT,
			confidence REAL,
			pnl        REAL,
			status     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker)`,

		`CREATE TABLE IF NOT EXISTS reasoning (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			ticker     TEXT NOT NULL,
			action     TEXT,
			strategy   TEXT,
			signal     TEXT,
			sentiment  REAL,
			regime     TEXT,
			confidence REAL,
			notes      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reasoning_ts ON reasoning(timestamp)`,

		`CREATE TABLE IF NOT EXISTS equity_curve (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			equity    REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equity_ts ON equity_curve(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(rec *model.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO trades
		(id, timestamp, ticker, action, quantity, price, strategy, confidence, pnl, status)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		id, ts.Unix(), rec.Ticker, rec.Action, rec.Quantity, rec.Price,
		rec.Strategy, rec.Confidence, rec.PnL, rec.Status,
	)
	return err
}

func (r *SQLiteRecorder) RecordReason(rec *model.ReasonRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO reasoning
		(timestamp, ticker, action, strategy, signal, sentiment, regime, confidence, notes)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), rec.Ticker, rec.Action, rec.Strategy, rec.Signal,
		rec.Sentiment, rec.Regime, rec.Confidence, rec.Notes,
	)
	return err
}

func (r *SQLiteRecorder) RecordEquity(equity float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO equity_curve (timestamp, equity) VALUES (?,?)`,
		time.Now().Unix(), equity)
	return err
}

// TradeHistory returns realized PnLs of the most recent filled trades,
// oldest first.
func (r *SQLiteRecorder) TradeHistory(limit int) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT pnl FROM (
			SELECT timestamp, pnl FROM trades
			WHERE status = ? AND pnl != 0
			ORDER BY timestamp DESC LIMIT ?
		) ORDER BY timestamp ASC`,
		string(model.OrderFilled), limit)
	if err != nil {
		return nil, fmt.Errorf("trade history: %w", err)
	}
	defer rows.Close()

	var pnls []float64
	for rows.Next() {
		var pnl float64
		if err := rows.Scan(&pnl); err != nil {
			return nil, err
		}
		pnls = append(pnls, pnl)
	}
	return pnls, rows.Err()
}

// TickerHistory groups realized PnLs of filled trades by ticker.
func (r *SQLiteRecorder) TickerHistory() ([]TickerPnL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT ticker, pnl FROM trades
		WHERE status = ? AND pnl != 0
		ORDER BY ticker, timestamp`,
		string(model.OrderFilled))
	if err != nil {
		return nil, fmt.Errorf("ticker history: %w", err)
	}
	defer rows.Close()

	var out []TickerPnL
	byTicker := make(map[string]int)
	for rows.Next() {
		var ticker string
		var pnl float64
		if err := rows.Scan(&ticker, &pnl); err != nil {
			return nil, err
		}
		idx, ok := byTicker[ticker]
		if !ok {
			idx = len(out)
			byTicker[ticker] = idx
			out = append(out, TickerPnL{Ticker: ticker})
		}
		out[idx].PnLs = append(out[idx].PnLs, pnl)
	}
	return out, rows.Err()
}

// EquityCurve returns up to `limit` most recent equity points, oldest first.
func (r *SQLiteRecorder) EquityCurve(limit int) ([]EquityPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, equity FROM (
			SELECT timestamp, equity FROM equity_curve
			ORDER BY timestamp DESC LIMIT ?
		) ORDER BY timestamp ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("equity curve: %w", err)
	}
	defer rows.Close()

	var points []EquityPoint
	for rows.Next() {
		var ts int64
		var equity float64
		if err := rows.Scan(&ts, &equity); err != nil {
			return nil, err
		}
		points = append(points, EquityPoint{Time: time.Unix(ts, 0), Equity: equity})
	}
	return points, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
