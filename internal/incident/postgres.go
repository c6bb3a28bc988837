package incident

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS compliance_incidents (
	id           TEXT PRIMARY KEY,
	types        TEXT[] NOT NULL,
	severity     TEXT NOT NULL,
	description  TEXT NOT NULL,
	message_link TEXT NOT NULL DEFAULT '',
	user_id      TEXT NOT NULL DEFAULT '',
	channel      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

const insertIncident = `INSERT INTO compliance_incidents
	(id, types, severity, description, message_link, user_id, channel, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`

// querier is the subset of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore writes incidents to the compliance_incidents table.
type PostgresStore struct {
	db   querier
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &PostgresStore{db: pool, pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create incidents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, incident *models.Incident) (string, error) {
	if incident.ID == "" {
		incident.ID = newID()
	}
	if incident.Status == "" {
		incident.Status = models.IncidentStatusOpen
	}

	var id string
	err := s.db.QueryRow(ctx, insertIncident,
		incident.ID,
		incident.Types,
		incident.Severity.String(),
		incident.Description,
		incident.MessageLink,
		incident.User,
		incident.Channel,
		string(incident.Status),
		incident.Timestamp,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert incident: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
