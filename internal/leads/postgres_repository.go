package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// pgxQuerier is satisfied by *pgxpool.Pool and pgxmock pools.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// leadDocument is the JSONB payload stored per row.
type leadDocument struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PostgresRepository stores leads as JSONB documents in Postgres.
type PostgresRepository struct {
	db pgxQuerier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new row; id and created_at are assigned by the database.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := json.Marshal(leadDocument{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to marshal document: %w", err)
	}

	query := `
		INSERT INTO leads (document)
		VALUES ($1)
		RETURNING id, created_at
	`
	var (
		id        uuid.UUID
		createdAt time.Time
	)
	if err := r.db.QueryRow(ctx, query, doc).Scan(&id, &createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return newLead(id.String(), req, createdAt.UTC()), nil
}

// GetByID fetches a lead by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}

	query := `
		SELECT document, created_at
		FROM leads
		WHERE id = $1
	`
	var (
		raw       []byte
		createdAt time.Time
	)
	if err := r.db.QueryRow(ctx, query, parsed).Scan(&raw, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}

	var doc leadDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("leads: failed to decode document: %w", err)
	}
	return newLead(parsed.String(), &CreateLeadRequest{Name: doc.Name, Email: doc.Email, Phone: doc.Phone}, createdAt.UTC()), nil
}

// Ping checks the pool can reach the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
