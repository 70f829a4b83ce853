package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"pricepeak/internal/model"
)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	runs, err := r.CountRuns()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("count runs: %w", err)
	}
	logger.Info("sqlite recorder opened", zap.String("path", dbPath), zap.Int("runs", runs))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			timestamp   INTEGER NOT NULL,
			days        INTEGER,
			reference   TEXT,
			portfolio   TEXT,
			last_price  REAL,
			last_rsi    REAL,
			regime      TEXT,
			var95       REAL,
			cvar95      REAL,
			mc_mean     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS backtests (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			strategy     TEXT,
			lookback     INTEGER,
			trades       INTEGER,
			total_return REAL,
			final_value  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtests_run ON backtests(run_id)`,

		`CREATE TABLE IF NOT EXISTS frontiers (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			instruments     TEXT,
			draws           INTEGER,
			min_vol         REAL,
			min_vol_return  REAL,
			max_sharpe      REAL,
			max_sharpe_vol  REAL,
			max_sharpe_ret  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_frontiers_run ON frontiers(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(rec *SnapshotRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := rec.Snapshot
	weights, err := json.Marshal(snap.Portfolio)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}

	var rsi sql.NullFloat64
	if rec.LastRSI != nil {
		rsi = sql.NullFloat64{Float64: *rec.LastRSI, Valid: true}
	}
	var varP, cvar, mean sql.NullFloat64
	if mc := snap.MonteCarlo; mc != nil {
		varP = sql.NullFloat64{Float64: mc.VaR95, Valid: true}
		cvar = sql.NullFloat64{Float64: mc.CVaR95, Valid: true}
		mean = sql.NullFloat64{Float64: mc.Mean, Valid: true}
	}

	_, err = r.db.Exec(`INSERT INTO snapshots
		(run_id, timestamp, days, reference, portfolio, last_price, last_rsi, regime, var95, cvar95, mc_mean)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, r.now().Unix(), snap.Days, snap.Reference, string(weights),
		rec.LastPrice, rsi, string(rec.Regime), varP, cvar, mean,
	)
	return err
}

func (r *SQLiteRecorder) RecordBacktest(runID string, res *model.BacktestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO backtests
		(run_id, timestamp, strategy, lookback, trades, total_return, final_value)
		VALUES (?,?,?,?,?,?,?)`,
		runID, r.now().Unix(), string(res.Strategy), res.Lookback,
		res.Trades, res.TotalReturnPct, res.FinalValue,
	)
	return err
}

func (r *SQLiteRecorder) RecordFrontier(runID string, res *model.FrontierResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := json.Marshal(res.Instruments)
	if err != nil {
		return fmt.Errorf("encode instruments: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO frontiers
		(run_id, timestamp, instruments, draws, min_vol, min_vol_return, max_sharpe, max_sharpe_vol, max_sharpe_ret)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		runID, r.now().Unix(), string(ids), len(res.Points),
		res.MinVolatility.VolatilityPct, res.MinVolatility.ReturnPct,
		res.MaxSharpe.Sharpe, res.MaxSharpe.VolatilityPct, res.MaxSharpe.ReturnPct,
	)
	return err
}

// CountRuns reports how many snapshots have been recorded.
func (r *SQLiteRecorder) CountRuns() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
