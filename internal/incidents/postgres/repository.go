// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/incidents"
)

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `
	id, user_id, title, incident_type, severity, start_time, end_time,
	timeline, root_cause, impact, resolution, logs, commits, slack_messages,
	action_items, report_markdown, status, finalized_at, shared_count, created_at
`

// Create inserts the incident and fills in the generated id and created_at.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	timelineJSON, actionsJSON, err := encodeCollections(incident)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO incidents (
			user_id, title, incident_type, severity, start_time, end_time,
			timeline, root_cause, impact, resolution, logs, commits,
			slack_messages, action_items, report_markdown, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`
	err = r.db.QueryRow(ctx, query,
		incident.UserID,
		incident.Title,
		incident.IncidentType,
		incident.Severity,
		incident.StartTime,
		incident.EndTime,
		timelineJSON,
		incident.RootCause,
		incident.Impact,
		incident.Resolution,
		incident.Logs,
		incident.Commits,
		incident.SlackMessages,
		actionsJSON,
		incident.ReportMarkdown,
		incident.Status,
	).Scan(&incident.ID, &incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident regardless of owner.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByUser retrieves an incident owned by the given user.
func (r *Repository) GetByUser(ctx context.Context, userID, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.db.QueryRow(ctx, query, id, userID))
}

// List retrieves a user's incidents, newest first.
func (r *Repository) List(ctx context.Context, userID string) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// ListAll retrieves every incident, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all incidents: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// Update persists the mutable fields of an incident.
func (r *Repository) Update(ctx context.Context, incident *domain.Incident) error {
	timelineJSON, actionsJSON, err := encodeCollections(incident)
	if err != nil {
		return err
	}

	query := `
		UPDATE incidents
		SET title = $3, incident_type = $4, severity = $5, start_time = $6,
		    end_time = $7, timeline = $8, root_cause = $9, impact = $10,
		    resolution = $11, logs = $12, commits = $13, slack_messages = $14,
		    action_items = $15, report_markdown = $16, status = $17,
		    finalized_at = $18
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.UserID,
		incident.Title,
		incident.IncidentType,
		incident.Severity,
		incident.StartTime,
		incident.EndTime,
		timelineJSON,
		incident.RootCause,
		incident.Impact,
		incident.Resolution,
		incident.Logs,
		incident.Commits,
		incident.SlackMessages,
		actionsJSON,
		incident.ReportMarkdown,
		incident.Status,
		incident.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// Delete removes a user's incident. Removing an unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}

// DeleteByID removes an incident regardless of owner.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}

// IncrementSharedCount bumps the share counter and returns the new value.
func (r *Repository) IncrementSharedCount(ctx context.Context, userID, id string) (int, error) {
	query := `
		UPDATE incidents SET shared_count = shared_count + 1
		WHERE id = $1 AND user_id = $2
		RETURNING shared_count
	`
	var count int
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, incidents.ErrIncidentNotFound
		}
		return 0, fmt.Errorf("increment shared count: %w", err)
	}
	return count, nil
}

func (r *Repository) scanOne(row pgx.Row) (*domain.Incident, error) {
	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

func (r *Repository) scanRows(rows pgx.Rows) ([]*domain.Incident, error) {
	list := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return list, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	var timelineJSON, actionsJSON []byte

	err := row.Scan(
		&incident.ID,
		&incident.UserID,
		&incident.Title,
		&incident.IncidentType,
		&incident.Severity,
		&incident.StartTime,
		&incident.EndTime,
		&timelineJSON,
		&incident.RootCause,
		&incident.Impact,
		&incident.Resolution,
		&incident.Logs,
		&incident.Commits,
		&incident.SlackMessages,
		&actionsJSON,
		&incident.ReportMarkdown,
		&incident.Status,
		&incident.FinalizedAt,
		&incident.SharedCount,
		&incident.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(timelineJSON, &incident.Timeline); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	if err := json.Unmarshal(actionsJSON, &incident.ActionItems); err != nil {
		return nil, fmt.Errorf("decode action items: %w", err)
	}
	if incident.Timeline == nil {
		incident.Timeline = make([]domain.TimelineEntry, 0)
	}
	if incident.ActionItems == nil {
		incident.ActionItems = make([]domain.ActionItem, 0)
	}
	return &incident, nil
}

func encodeCollections(incident *domain.Incident) ([]byte, []byte, error) {
	timelineJSON, err := json.Marshal(incident.Timeline)
	if err != nil {
		return nil, nil, fmt.Errorf("encode timeline: %w", err)
	}
	actionsJSON, err := json.Marshal(incident.ActionItems)
	if err != nil {
		return nil, nil, fmt.Errorf("encode action items: %w", err)
	}
	return timelineJSON, actionsJSON, nil
}
