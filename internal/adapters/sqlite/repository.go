package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.PortfolioRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./results/portfolios.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// Series timestamps are stored as unix nanoseconds so disambiguated milliseconds survive.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		label TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		symbol TEXT NOT NULL,
		variant TEXT NOT NULL,
		init_cash REAL NOT NULL,
		leverage REAL NOT NULL,
		leverage_mode TEXT NOT NULL,
		fees REAL NOT NULL,
		frequency_ns INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_orders (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		time_ns INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		exchange_symbol TEXT NOT NULL,
		trade_type TEXT NOT NULL,
		quantity REAL NOT NULL,
		signed_quantity REAL NOT NULL,
		price REAL NOT NULL,
		trade_index INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS run_values (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		time_ns INTEGER NOT NULL,
		close REAL NOT NULL,
		cash REAL NOT NULL,
		position REAL NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS run_trades (
		run_id TEXT NOT NULL,
		trade_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		size REAL NOT NULL,
		entry_ns INTEGER NOT NULL,
		exit_ns INTEGER NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		fees REAL NOT NULL,
		pnl REAL NOT NULL,
		trade_return REAL NOT NULL,
		PRIMARY KEY (run_id, trade_id)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_source_symbol ON runs (source, symbol);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- PortfolioRepository Implementation ---

// SavePortfolio stores pf under a fresh run id, replacing any run with the same label.
func (r *Repository) SavePortfolio(ctx context.Context, pf *domain.PortfolioSnapshot) (string, error) {
	if pf == nil || pf.Label == "" {
		return "", fmt.Errorf("portfolio needs a label: %w", ports.ErrInvalidRequest)
	}
	runID := uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction for %s: %w", pf.Label, err)
	}
	defer tx.Rollback()

	if err := deleteByLabel(ctx, tx, pf.Label); err != nil {
		return "", err
	}

	const insertRun = `
	INSERT INTO runs (run_id, label, source, symbol, variant, init_cash, leverage, leverage_mode,
	                  fees, frequency_ns, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertRun,
		runID, pf.Label, pf.Source, pf.Symbol, string(pf.Variant), pf.InitCash, pf.Leverage,
		string(pf.LeverageMode), pf.Fees, int64(pf.Frequency), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to insert run %s: %w: %w", pf.Label, ports.ErrQueryFailed, err)
	}

	if err := insertOrders(ctx, tx, runID, pf.Orders); err != nil {
		return "", fmt.Errorf("failed to insert orders of %s: %w", pf.Label, err)
	}
	if err := insertValues(ctx, tx, runID, pf.Values); err != nil {
		return "", fmt.Errorf("failed to insert values of %s: %w", pf.Label, err)
	}
	if err := insertTrades(ctx, tx, runID, pf.Trades); err != nil {
		return "", fmt.Errorf("failed to insert trades of %s: %w", pf.Label, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", pf.Label, err)
	}
	r.logger.Debug(ctx, "Portfolio saved", map[string]interface{}{
		"label":  pf.Label,
		"runID":  runID,
		"values": len(pf.Values),
		"trades": len(pf.Trades),
	})
	return runID, nil
}

func deleteByLabel(ctx context.Context, tx *sql.Tx, label string) error {
	var oldID string
	err := tx.QueryRowContext(ctx, `SELECT run_id FROM runs WHERE label = ?`, label).Scan(&oldID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up run %s: %w: %w", label, ports.ErrQueryFailed, err)
	}
	for _, table := range []string{"run_orders", "run_values", "run_trades", "runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", oldID); err != nil {
			return fmt.Errorf("failed to delete previous run %s from %s: %w", label, table, err)
		}
	}
	return nil
}

func insertOrders(ctx context.Context, tx *sql.Tx, runID string, orders []domain.Order) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_orders (run_id, seq, time_ns, symbol, exchange_symbol, trade_type, quantity,
	                        signed_quantity, price, trade_index)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, o := range orders {
		if _, err := stmt.ExecContext(ctx, runID, i, o.Time.UnixNano(), o.Symbol, o.ExchangeSymbol,
			string(o.Type), o.Quantity, o.SignedQuantity, o.Price, o.TradeIndex); err != nil {
			return err
		}
	}
	return nil
}

func insertValues(ctx context.Context, tx *sql.Tx, runID string, values []domain.ValuePoint) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_values (run_id, seq, time_ns, close, cash, position, value)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, v := range values {
		if _, err := stmt.ExecContext(ctx, runID, i, v.Time.UnixNano(), v.Close, v.Cash, v.Position, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func insertTrades(ctx context.Context, tx *sql.Tx, runID string, trades []domain.ExitTrade) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_trades (run_id, trade_id, symbol, direction, size, entry_ns, exit_ns, entry_price,
	                        exit_price, fees, pnl, trade_return)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, runID, t.ID, t.Symbol, string(t.Direction), t.Size,
			t.EntryTime.UnixNano(), t.ExitTime.UnixNano(), t.EntryPrice, t.ExitPrice, t.Fees, t.PNL, t.Return); err != nil {
			return err
		}
	}
	return nil
}

// LoadPortfolio retrieves a portfolio by label. Returns nil, nil if the label is unknown.
func (r *Repository) LoadPortfolio(ctx context.Context, label string) (*domain.PortfolioSnapshot, error) {
	const query = `
	SELECT run_id, label, source, symbol, variant, init_cash, leverage, leverage_mode, fees, frequency_ns
	FROM runs WHERE label = ?`

	pf := &domain.PortfolioSnapshot{}
	var runID, variant, mode string
	var freq int64
	err := r.db.QueryRowContext(ctx, query, label).Scan(
		&runID, &pf.Label, &pf.Source, &pf.Symbol, &variant, &pf.InitCash, &pf.Leverage, &mode, &pf.Fees, &freq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "No portfolio found for label", map[string]interface{}{"label": label})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query run %s: %w: %w", label, ports.ErrQueryFailed, err)
	}
	pf.Variant = domain.Variant(variant)
	pf.LeverageMode = domain.LeverageMode(mode)
	pf.Frequency = time.Duration(freq)

	if pf.Orders, err = r.loadOrders(ctx, runID); err != nil {
		return nil, fmt.Errorf("failed to load orders of %s: %w", label, err)
	}
	if pf.Values, err = r.loadValues(ctx, runID); err != nil {
		return nil, fmt.Errorf("failed to load values of %s: %w", label, err)
	}
	if pf.Trades, err = r.loadTrades(ctx, runID); err != nil {
		return nil, fmt.Errorf("failed to load trades of %s: %w", label, err)
	}
	return pf, nil
}

func (r *Repository) loadOrders(ctx context.Context, runID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT time_ns, symbol, exchange_symbol, trade_type, quantity, signed_quantity, price, trade_index
	FROM run_orders WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		var ns int64
		var tt string
		if err := rows.Scan(&ns, &o.Symbol, &o.ExchangeSymbol, &tt, &o.Quantity, &o.SignedQuantity, &o.Price, &o.TradeIndex); err != nil {
			return nil, err
		}
		o.Time = time.Unix(0, ns).UTC()
		o.Type = domain.TradeType(tt)
		o.QuantityKnown = true
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *Repository) loadValues(ctx context.Context, runID string) ([]domain.ValuePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT time_ns, close, cash, position, value FROM run_values WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]domain.ValuePoint, 0)
	for rows.Next() {
		var v domain.ValuePoint
		var ns int64
		if err := rows.Scan(&ns, &v.Close, &v.Cash, &v.Position, &v.Value); err != nil {
			return nil, err
		}
		v.Time = time.Unix(0, ns).UTC()
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *Repository) loadTrades(ctx context.Context, runID string) ([]domain.ExitTrade, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT trade_id, symbol, direction, size, entry_ns, exit_ns, entry_price, exit_price, fees, pnl, trade_return
	FROM run_trades WHERE run_id = ? ORDER BY trade_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]domain.ExitTrade, 0)
	for rows.Next() {
		var t domain.ExitTrade
		var dir string
		var entryNs, exitNs int64
		if err := rows.Scan(&t.ID, &t.Symbol, &dir, &t.Size, &entryNs, &exitNs,
			&t.EntryPrice, &t.ExitPrice, &t.Fees, &t.PNL, &t.Return); err != nil {
			return nil, err
		}
		t.Direction = domain.TradeDirection(dir)
		t.EntryTime = time.Unix(0, entryNs).UTC()
		t.ExitTime = time.Unix(0, exitNs).UTC()
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ListRuns returns every stored run ordered by label.
func (r *Repository) ListRuns(ctx context.Context) ([]ports.RunInfo, error) {
	const query = `
	SELECT run_id, label, source, symbol, variant, init_cash, leverage, created_at
	FROM runs ORDER BY label`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	runs := make([]ports.RunInfo, 0)
	for rows.Next() {
		var info ports.RunInfo
		var variant string
		if err := rows.Scan(&info.RunID, &info.Label, &info.Source, &info.Symbol, &variant,
			&info.InitCash, &info.Leverage, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run during ListRuns: %w", err)
		}
		info.Variant = domain.Variant(variant)
		runs = append(runs, info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

var _ ports.PortfolioRepository = (*Repository)(nil)
