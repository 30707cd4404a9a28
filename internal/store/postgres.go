package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/science-tutor/internal/models"
)

// PostgresStore handles users and the remote-call outcome log.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and outcomes tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(50)  UNIQUE NOT NULL,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS outcomes (
			id         UUID PRIMARY KEY,
			session_id VARCHAR(64)  NOT NULL,
			component  VARCHAR(32)  NOT NULL,
			operation  VARCHAR(64)  NOT NULL,
			fallback   BOOLEAN      NOT NULL,
			error      TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL
		);
		CREATE INDEX IF NOT EXISTS outcomes_component_idx ON outcomes (component, created_at)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, created_at`,
		username, email, hashedPassword,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RecordOutcome appends one remote-call outcome.
func (s *PostgresStore) RecordOutcome(ctx context.Context, o models.Outcome) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO outcomes (id, session_id, component, operation, fallback, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.SessionID, o.Component, o.Operation, o.Fallback, o.Error, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// FallbackRate returns, per component, how many outcomes were recorded and
// how many of them used the fallback.
func (s *PostgresStore) FallbackRate(ctx context.Context) (map[string][2]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT component, COUNT(*), COUNT(*) FILTER (WHERE fallback) FROM outcomes GROUP BY component`)
	if err != nil {
		return nil, fmt.Errorf("fallback rate: %w", err)
	}
	defer rows.Close()

	out := make(map[string][2]int)
	for rows.Next() {
		var component string
		var total, fallback int
		if err := rows.Scan(&component, &total, &fallback); err != nil {
			return nil, fmt.Errorf("fallback rate: scan: %w", err)
		}
		out[component] = [2]int{total, fallback}
	}
	return out, rows.Err()
}
