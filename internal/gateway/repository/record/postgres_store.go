package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"podscript/internal/script"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS scripts (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    storage_key TEXT NOT NULL UNIQUE,
    personas JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scripts_created_at ON scripts(created_at DESC);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Insert(ctx context.Context, meta script.Metadata) (*script.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	name := strings.TrimSpace(meta.Name)
	key := strings.TrimSpace(meta.StorageKey)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if key == "" {
		return nil, fmt.Errorf("storage_key is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	personas, err := json.Marshal(meta.Personas)
	if err != nil {
		return nil, fmt.Errorf("encode personas: %w", err)
	}

	rec := script.Record{Name: name, StorageKey: key, Personas: meta.Personas}
	err = s.db.QueryRowContext(ctx, `
INSERT INTO scripts (name, storage_key, personas)
VALUES ($1, $2, $3::jsonb)
RETURNING id, created_at
`, name, key, string(personas)).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*script.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var rec script.Record
	var personas []byte
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, storage_key, personas, created_at FROM scripts WHERE id=$1
`, id).Scan(&rec.ID, &rec.Name, &rec.StorageKey, &personas, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, script.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(personas, &rec.Personas); err != nil {
		return nil, fmt.Errorf("decode personas: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]script.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, storage_key, personas, created_at FROM scripts ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]script.Record, 0, 16)
	for rows.Next() {
		var rec script.Record
		var personas []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.StorageKey, &personas, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(personas, &rec.Personas); err != nil {
			return nil, fmt.Errorf("decode personas: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
