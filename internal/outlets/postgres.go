package outlets

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the directory in postgres so several instances can
// share one source of truth. The schema is created and seeded on startup.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect outlet database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS outlets (
	id          SERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	location    TEXT NOT NULL,
	city        TEXT NOT NULL,
	hours_open  TEXT NOT NULL,
	hours_close TEXT NOT NULL,
	address     TEXT NOT NULL,
	services    TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create outlets table: %w", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM outlets`).Scan(&count); err != nil {
		return fmt.Errorf("count outlets: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, o := range seedOutlets() {
		_, err := s.pool.Exec(ctx, `
INSERT INTO outlets (name, location, city, hours_open, hours_close, address, services)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.Name, o.Location, o.City, o.HoursOpen, o.HoursClose, o.Address, o.Services)
		if err != nil {
			return fmt.Errorf("seed outlet %q: %w", o.Name, err)
		}
	}
	return nil
}

// Search builds a parameterized query from the filter. Filter values only
// ever appear as bind arguments.
func (s *PostgresStore) Search(ctx context.Context, f Filter) ([]Outlet, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var loc []string
	if len(f.CityIn) > 0 {
		loc = append(loc, fmt.Sprintf("city = ANY(%s)", arg(f.CityIn)))
	}
	if f.LocationLike != "" {
		loc = append(loc, fmt.Sprintf("location ILIKE %s", arg("%"+f.LocationLike+"%")))
	}
	if len(loc) > 0 {
		conds = append(conds, "("+strings.Join(loc, " OR ")+")")
	}
	for _, svc := range f.ServicesLike {
		conds = append(conds, fmt.Sprintf("services ILIKE %s", arg("%"+svc+"%")))
	}

	query := `SELECT id, name, location, city, hours_open, hours_close, address, services FROM outlets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT %s", arg(limit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search outlets: %w", err)
	}
	defer rows.Close()

	var out []Outlet
	for rows.Next() {
		var o Outlet
		if err := rows.Scan(&o.ID, &o.Name, &o.Location, &o.City,
			&o.HoursOpen, &o.HoursClose, &o.Address, &o.Services); err != nil {
			return nil, fmt.Errorf("scan outlet row: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outlet rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
