// Package postgres provides PostgreSQL implementation of the wizard repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/wizard"
)

// Repository implements wizard.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get retrieves a user's wizard session.
func (r *Repository) Get(ctx context.Context, userID string) (*domain.WizardSession, error) {
	query := `
		SELECT user_id, current_step, form, updated_at
		FROM wizard_sessions
		WHERE user_id = $1
	`
	var session domain.WizardSession
	var formJSON []byte

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&session.UserID,
		&session.CurrentStep,
		&formJSON,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wizard.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get wizard session: %w", err)
	}

	if err := json.Unmarshal(formJSON, &session.Form); err != nil {
		return nil, fmt.Errorf("decode wizard form: %w", err)
	}
	if session.Form.Timeline == nil {
		session.Form.Timeline = make([]domain.TimelineEntry, 0)
	}

	return &session, nil
}

// Save upserts a user's wizard session.
func (r *Repository) Save(ctx context.Context, session *domain.WizardSession) error {
	formJSON, err := json.Marshal(session.Form)
	if err != nil {
		return fmt.Errorf("encode wizard form: %w", err)
	}

	query := `
		INSERT INTO wizard_sessions (user_id, current_step, form, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET current_step = EXCLUDED.current_step,
		    form = EXCLUDED.form,
		    updated_at = now()
		RETURNING updated_at
	`
	if err := r.db.QueryRow(ctx, query, session.UserID, session.CurrentStep, formJSON).Scan(&session.UpdatedAt); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

// Delete removes a user's wizard session.
func (r *Repository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wizard_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete wizard session: %w", err)
	}
	return nil
}
