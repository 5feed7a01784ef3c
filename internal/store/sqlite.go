package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "options-collector/internal/errors"
	"options-collector/internal/models"
)

const dateLayout = "2006-01-02"

// SQLiteStore implements OptionStore using SQLite. The Greeks flag selects
// the schema generation: tables are created either with the base quote
// columns only, or with the Greeks superset. A deployment runs one
// generation consistently; the two are not a migration path.
type SQLiteStore struct {
	db     *sql.DB
	greeks bool
}

// Open opens (or creates) the database at dbPath. The collector opens one
// store per symbol and closes it when the symbol is done, so connection
// setup belongs to the per-symbol failure boundary.
func Open(dbPath string, greeksEnabled bool) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.NewStorageError("open", "", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("open", "", err)
	}
	return &SQLiteStore{db: db, greeks: greeksEnabled}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GreeksEnabled reports which schema generation this store writes.
func (s *SQLiteStore) GreeksEnabled() bool {
	return s.greeks
}

const tableSuffix = "_options"

// tableName derives the per-symbol table name. Symbols may carry
// non-identifier characters (BRK.B); anything outside [A-Za-z0-9_] becomes
// an underscore.
func tableName(symbol string) string {
	var b strings.Builder
	for _, r := range symbol {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + tableSuffix
}

const baseColumns = `
		contract_symbol TEXT NOT NULL,
		kind TEXT NOT NULL,
		expiration_date TEXT NOT NULL,
		strike REAL NOT NULL,
		last_price REAL,
		bid REAL,
		ask REAL,
		volume INTEGER,
		open_interest INTEGER,
		implied_volatility REAL`

const greekColumns = `
		delta REAL,
		gamma REAL,
		theta REAL,
		vega REAL,
		rho REAL`

// EnsureTable implements OptionStore.
func (s *SQLiteStore) EnsureTable(ctx context.Context, symbol string) error {
	cols := baseColumns
	if s.greeks {
		cols += "," + greekColumns
	}
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %q (%s,
		captured_at DATETIME NOT NULL,
		PRIMARY KEY (contract_symbol, captured_at)
	);`, tableName(symbol), cols)

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewStorageError("create table", symbol, err)
	}
	return nil
}

// AppendContracts implements OptionStore. Inserts are plain INSERTs: a
// duplicate uniqueness key is a constraint violation, never a silent
// overwrite.
func (s *SQLiteStore) AppendContracts(ctx context.Context, symbol string, records []models.EnrichedContract) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin", symbol, err)
	}
	defer tx.Rollback()

	var insert string
	if s.greeks {
		insert = fmt.Sprintf(`
			INSERT INTO %q (contract_symbol, kind, expiration_date, strike, last_price, bid, ask, volume, open_interest, implied_volatility, delta, gamma, theta, vega, rho, captured_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tableName(symbol))
	} else {
		insert = fmt.Sprintf(`
			INSERT INTO %q (contract_symbol, kind, expiration_date, strike, last_price, bid, ask, volume, open_interest, implied_volatility, captured_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tableName(symbol))
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return apperrors.NewStorageError("prepare", symbol, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args := []interface{}{
			rec.ContractSymbol, string(rec.Kind), rec.Expiration.Format(dateLayout),
			rec.Strike, rec.LastPrice, rec.Bid, rec.Ask,
			rec.Volume, rec.OpenInterest, rec.ImpliedVol,
		}
		if s.greeks {
			args = append(args, rec.Greeks.Delta, rec.Greeks.Gamma, rec.Greeks.Theta, rec.Greeks.Vega, rec.Greeks.Rho)
		}
		args = append(args, rec.CapturedAt.UTC())

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return apperrors.NewStorageError("insert", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit", symbol, err)
	}
	return nil
}

// Contracts implements OptionStore.
func (s *SQLiteStore) Contracts(ctx context.Context, symbol string, filter Filter) ([]models.EnrichedContract, error) {
	cols := "contract_symbol, kind, expiration_date, strike, last_price, bid, ask, volume, open_interest, implied_volatility"
	if s.greeks {
		cols += ", delta, gamma, theta, vega, rho"
	}
	query := fmt.Sprintf("SELECT %s, captured_at FROM %q WHERE 1=1", cols, tableName(symbol))
	args := []interface{}{}

	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}
	if !filter.Expiration.IsZero() {
		query += " AND expiration_date = ?"
		args = append(args, filter.Expiration.Format(dateLayout))
	}
	if !filter.Since.IsZero() {
		query += " AND captured_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	query += " ORDER BY captured_at DESC, contract_symbol ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("query", symbol, err)
	}
	defer rows.Close()

	var records []models.EnrichedContract
	for rows.Next() {
		var rec models.EnrichedContract
		var kind, expiration string
		var capturedAt time.Time

		dest := []interface{}{
			&rec.ContractSymbol, &kind, &expiration, &rec.Strike,
			&rec.LastPrice, &rec.Bid, &rec.Ask,
			&rec.Volume, &rec.OpenInterest, &rec.ImpliedVol,
		}
		if s.greeks {
			dest = append(dest, &rec.Greeks.Delta, &rec.Greeks.Gamma, &rec.Greeks.Theta, &rec.Greeks.Vega, &rec.Greeks.Rho)
		}
		dest = append(dest, &capturedAt)

		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewStorageError("scan", symbol, err)
		}

		rec.Kind = models.OptionKind(kind)
		rec.CapturedAt = capturedAt.UTC()
		if exp, err := time.Parse(dateLayout, expiration); err == nil {
			rec.Expiration = exp
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate", symbol, err)
	}
	return records, nil
}

// RowCount implements OptionStore.
func (s *SQLiteStore) RowCount(ctx context.Context, symbol string) (int64, error) {
	exists, err := s.tableExists(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName(symbol))
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.NewStorageError("count", symbol, err)
	}
	return count, nil
}

// Symbols implements OptionStore.
func (s *SQLiteStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name LIKE '%' || ? ORDER BY name ASC
	`, tableSuffix)
	if err != nil {
		return nil, apperrors.NewStorageError("list tables", "", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewStorageError("scan table", "", err)
		}
		symbols = append(symbols, strings.TrimSuffix(name, tableSuffix))
	}
	return symbols, rows.Err()
}

func (s *SQLiteStore) tableExists(ctx context.Context, symbol string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
	`, tableName(symbol)).Scan(&count)
	if err != nil {
		return false, apperrors.NewStorageError("table exists", symbol, err)
	}
	return count > 0, nil
}
