package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Seednode/tandem/internal/tasks/migrations"
)

// PostgresStore keeps records in a single jsonb-backed table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, connString string) error {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) List(ctx context.Context, category, level string) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, level, fields FROM tasks
		 WHERE category = $1 AND ($2::text = '' OR lower(level) = lower($2::text))
		 ORDER BY created_at, id`,
		category, level)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec := Record{Category: category}
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.Fields); err != nil {
			return nil, wrapPgError(err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapPgError(err)
	}

	return out, nil
}

func (p *PostgresStore) Get(ctx context.Context, category, id string) (Record, error) {
	rec := Record{ID: id, Category: category}

	row := p.pool.QueryRow(ctx,
		`SELECT level, fields FROM tasks WHERE category = $1 AND id = $2::uuid`,
		category, id)

	if err := row.Scan(&rec.Level, &rec.Fields); err != nil {
		return Record{}, wrapPgError(err)
	}

	return rec, nil
}

func (p *PostgresStore) Add(ctx context.Context, rec Record) (Record, error) {
	rec = rec.clone()
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}

	row := p.pool.QueryRow(ctx,
		`INSERT INTO tasks (category, level, fields) VALUES ($1, $2, $3) RETURNING id::text`,
		rec.Category, rec.Level, rec.Fields)

	if err := row.Scan(&rec.ID); err != nil {
		return Record{}, wrapPgError(err)
	}

	return rec, nil
}

func (p *PostgresStore) Update(ctx context.Context, rec Record) (Record, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE tasks SET level = $3, fields = $4 WHERE category = $1 AND id = $2::uuid`,
		rec.Category, rec.ID, rec.Level, rec.Fields)
	if err != nil {
		return Record{}, wrapPgError(err)
	}

	if tag.RowsAffected() == 0 {
		return Record{}, ErrTaskNotFound
	}

	return rec.clone(), nil
}

func (p *PostgresStore) Delete(ctx context.Context, category, id string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM tasks WHERE category = $1 AND id = $2::uuid`,
		category, id)
	if err != nil {
		return wrapPgError(err)
	}

	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (p *PostgresStore) Count(ctx context.Context, category string) (int, error) {
	var n int
	row := p.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE category = $1`, category)
	if err := row.Scan(&n); err != nil {
		return 0, wrapPgError(err)
	}
	return n, nil
}

func wrapPgError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrTaskNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 22P02: invalid_text_representation, i.e. an id that is not a uuid.
		if pgErr.Code == "22P02" {
			return ErrTaskNotFound
		}
	}

	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
