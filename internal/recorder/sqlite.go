package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"StockSignals/internal/model"
	"StockSignals/internal/strategy"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the signal and trade journal to a SQLite database.
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

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			classification  TEXT NOT NULL,
			total_score     INTEGER,
			price           REAL,
			volume          REAL,
			middle_band     REAL,
			upper_band      REAL,
			lower_band      REAL,
			rsi             REAL,
			macd_line       REAL,
			signal_line     REAL,
			macd_histogram  REAL,
			bollinger_score INTEGER,
			rsi_score       INTEGER,
			macd_score      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			action    TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			price     TEXT,
			realized  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(sig *model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scores := make(map[string]int, len(sig.Factors))
	for _, f := range sig.Factors {
		scores[f.Name] = f.Score
	}
	ind := sig.Indicators

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, symbol, classification, total_score, price, volume,
		 middle_band, upper_band, lower_band, rsi, macd_line, signal_line, macd_histogram,
		 bollinger_score, rsi_score, macd_score)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sig.Time.Unix(), sig.Symbol, string(sig.Classification), sig.TotalScore, sig.Price, sig.Volume,
		ind.Middle, ind.Upper, ind.Lower, ind.RSI, ind.MACD, ind.SignalLine, ind.Histogram,
		scores[strategy.FactorBollinger], scores[strategy.FactorRSI], scores[strategy.FactorMACD],
	)
	return err
}

// RecordTrade stores money as decimal strings so no precision is lost.
func (r *SQLiteRecorder) RecordTrade(tr *model.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, action, symbol, price, realized)
		VALUES (?,?,?,?,?)`,
		tr.Time.Unix(), string(tr.Action), tr.Symbol, tr.Price.String(), tr.Realized.String(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
