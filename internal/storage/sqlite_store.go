package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

// ListFilter narrows ListListingsFiltered. Zero values disable a condition.
type ListFilter struct {
	Limit    int
	Offset   int
	FuelType string
	Owner    string
	MinPrice float64
	MaxPrice float64
	Sort     string // price_asc, price_desc or empty for source order
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already opened database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  ordinal INTEGER NOT NULL DEFAULT 0,
  name TEXT NOT NULL,
  make TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  year INTEGER NOT NULL DEFAULT 0,
  age INTEGER,
  kilometer REAL,
  price REAL NOT NULL,
  fuel_type TEXT NOT NULL DEFAULT '',
  owner TEXT NOT NULL,
  transmission TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  seller_type TEXT NOT NULL DEFAULT '',
  drivetrain TEXT NOT NULL DEFAULT '',
  engine_cc REAL NOT NULL DEFAULT 0,
  max_power_bhp REAL NOT NULL DEFAULT 0,
  length REAL NOT NULL DEFAULT 0,
  width REAL NOT NULL DEFAULT 0,
  height REAL NOT NULL DEFAULT 0,
  seating_capacity REAL NOT NULL DEFAULT 0,
  fuel_tank_capacity REAL NOT NULL DEFAULT 0
);
`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("sqlite: create listings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);`); err != nil {
		return fmt.Errorf("sqlite: create price index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CountListings(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}

// ReplaceListings swaps the table contents for items in one transaction.
// Rows keep their position in items so reads follow source order.
func (s *SQLiteStore) ReplaceListings(ctx context.Context, items []domain.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings`); err != nil {
		return fmt.Errorf("sqlite: clear listings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO listings
(id, ordinal, name, make, model, year, age, kilometer, price, fuel_type, owner, transmission, location, color,
 seller_type, drivetrain, engine_cc, max_power_bhp, length, width, height, seating_capacity, fuel_tank_capacity)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range items {
		if _, err := stmt.ExecContext(ctx,
			l.ID, i, l.Name, l.Make, l.Model, l.Year, nullInt(l.Age), nullFloat(l.Kilometer), l.Price,
			l.FuelType, l.Owner, l.Transmission, l.Location, l.Color, l.SellerType, l.Drivetrain,
			l.EngineCC, l.MaxPowerBHP, l.Length, l.Width, l.Height, l.SeatingCapacity, l.FuelTankCapacity,
		); err != nil {
			return fmt.Errorf("sqlite: insert %q: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

const selectListing = `
SELECT id, name, make, model, year, age, kilometer, price, fuel_type, owner, transmission, location, color,
       seller_type, drivetrain, engine_cc, max_power_bhp, length, width, height, seating_capacity, fuel_tank_capacity
FROM listings
`

func (s *SQLiteStore) GetListing(ctx context.Context, id string) (domain.Listing, bool, error) {
	row := s.db.QueryRowContext(ctx, selectListing+`WHERE id = ?`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, false, nil
	}
	if err != nil {
		return domain.Listing{}, false, err
	}
	return l, true, nil
}

// AllListings returns the whole table in source order; it is the engine's snapshot.
func (s *SQLiteStore) AllListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx, selectListing+`ORDER BY ordinal, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select listings: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *SQLiteStore) ListListingsFiltered(ctx context.Context, f ListFilter) ([]domain.Listing, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if strings.TrimSpace(f.FuelType) != "" {
		where = append(where, "LOWER(fuel_type) = LOWER(?)")
		args = append(args, strings.TrimSpace(f.FuelType))
	}
	if strings.TrimSpace(f.Owner) != "" {
		where = append(where, "owner = ?")
		args = append(args, strings.TrimSpace(f.Owner))
	}
	if f.MinPrice > 0 {
		where = append(where, "price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "price <= ?")
		args = append(args, f.MaxPrice)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ") + "\n"
	}

	orderSQL := "ORDER BY ordinal, id"
	switch f.Sort {
	case "price_asc":
		orderSQL = "ORDER BY price ASC, ordinal, id"
	case "price_desc":
		orderSQL = "ORDER BY price DESC, ordinal, id"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: count listings: %w", err)
	}

	rowsArgs := append(append([]any{}, args...), f.Limit, f.Offset)
	rows, err := s.db.QueryContext(ctx, selectListing+whereSQL+orderSQL+"\nLIMIT ? OFFSET ?", rowsArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: list listings: %w", err)
	}
	defer rows.Close()

	out, err := scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(sc scanner) (domain.Listing, error) {
	var l domain.Listing
	var age sql.NullInt64
	var km sql.NullFloat64
	if err := sc.Scan(
		&l.ID, &l.Name, &l.Make, &l.Model, &l.Year, &age, &km, &l.Price, &l.FuelType, &l.Owner,
		&l.Transmission, &l.Location, &l.Color, &l.SellerType, &l.Drivetrain,
		&l.EngineCC, &l.MaxPowerBHP, &l.Length, &l.Width, &l.Height, &l.SeatingCapacity, &l.FuelTankCapacity,
	); err != nil {
		return domain.Listing{}, err
	}
	if age.Valid {
		l.Age = domain.IntPtr(int(age.Int64))
	}
	if km.Valid {
		l.Kilometer = domain.FloatPtr(km.Float64)
	}
	normaliseListing(&l)
	return l, nil
}

func scanAll(rows *sql.Rows) ([]domain.Listing, error) {
	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
