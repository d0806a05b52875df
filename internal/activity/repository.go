package activity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Repository interface {
	// Record stores evt once. It reports false when an event with the same
	// id was already stored.
	Record(ctx context.Context, evt Event) (bool, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, evt Event) (bool, error) {
	query := `
		INSERT INTO item_activity (
			id, event_type, item_id, actor_id, payload, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		ON CONFLICT (id) DO NOTHING
	`

	payload := "{}"
	if len(evt.Payload) > 0 {
		payload = string(evt.Payload)
	}

	result, err := r.db.ExecContext(ctx, query,
		evt.ID,
		string(evt.Type),
		evt.ItemID,
		evt.ActorID,
		payload,
		evt.OccurredAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert activity %s: %w", evt.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert activity %s: %w", evt.ID, err)
	}

	if affected == 0 {
		logrus.WithField("event_id", evt.ID).Debug("Activity event already recorded")
		return false, nil
	}
	return true, nil
}
