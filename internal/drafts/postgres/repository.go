// Package postgres provides PostgreSQL implementation of the drafts repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/drafts"
)

// Repository implements drafts.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts the draft and fills in the generated id and timestamps.
func (r *Repository) Create(ctx context.Context, draft *domain.Draft) error {
	formJSON, err := json.Marshal(draft.Form)
	if err != nil {
		return fmt.Errorf("encode draft form: %w", err)
	}

	query := `
		INSERT INTO drafts (user_id, title, form, current_step)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query, draft.UserID, draft.Title, formJSON, draft.CurrentStep).
		Scan(&draft.ID, &draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

// Get retrieves a user's draft by id.
func (r *Repository) Get(ctx context.Context, userID, id string) (*domain.Draft, error) {
	query := `
		SELECT id, user_id, title, form, current_step, created_at, updated_at
		FROM drafts
		WHERE id = $1 AND user_id = $2
	`
	draft, err := scanDraft(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, drafts.ErrDraftNotFound
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

// List retrieves a user's drafts, most recently updated first.
func (r *Repository) List(ctx context.Context, userID string) ([]*domain.Draft, error) {
	query := `
		SELECT id, user_id, title, form, current_step, created_at, updated_at
		FROM drafts
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Draft, 0)
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		list = append(list, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return list, nil
}

// Update persists a draft's title, form and step.
func (r *Repository) Update(ctx context.Context, draft *domain.Draft) error {
	formJSON, err := json.Marshal(draft.Form)
	if err != nil {
		return fmt.Errorf("encode draft form: %w", err)
	}

	query := `
		UPDATE drafts
		SET title = $3, form = $4, current_step = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query, draft.ID, draft.UserID, draft.Title, formJSON, draft.CurrentStep).
		Scan(&draft.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return drafts.ErrDraftNotFound
		}
		return fmt.Errorf("update draft: %w", err)
	}
	return nil
}

// Delete removes a user's draft. Removing an unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM drafts WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func scanDraft(row pgx.Row) (*domain.Draft, error) {
	var draft domain.Draft
	var formJSON []byte

	err := row.Scan(
		&draft.ID,
		&draft.UserID,
		&draft.Title,
		&formJSON,
		&draft.CurrentStep,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(formJSON, &draft.Form); err != nil {
		return nil, fmt.Errorf("decode draft form: %w", err)
	}
	if draft.Form.Timeline == nil {
		draft.Form.Timeline = make([]domain.TimelineEntry, 0)
	}
	return &draft, nil
}
