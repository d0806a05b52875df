package item

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"item_catalog/internal/apperror"

	"github.com/sirupsen/logrus"
)

// Repository persists items. Lookups and mutations of a missing id return
// apperror.ErrNotFound. Appends are applied by the store in one step.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	List(ctx context.Context) ([]*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (*Item, error)
	Delete(ctx context.Context, id string) error
	AppendComment(ctx context.Context, id, comment string, at time.Time) (*Item, error)
	AppendRating(ctx context.Context, id string, rating float64, at time.Time) (*Item, error)
	Count(ctx context.Context) (int64, error)
}

const itemColumns = `id, name, description, price, comments, ratings, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		it       Item
		comments []byte
		ratings  []byte
	)
	if err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Description,
		&it.Price,
		&comments,
		&ratings,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(comments, &it.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	if err := json.Unmarshal(ratings, &it.Ratings); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}

	return it.normalize(), nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO items (
			id, name, description, price, comments, ratings, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, '[]'::jsonb, '[]'::jsonb, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.Price,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to create item")
		return fmt.Errorf("insert item: %w", err)
	}

	item.normalize()
	logrus.WithField("item_id", item.ID).Info("Item created successfully")
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("Failed to list items")
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]*Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return r.one(ctx, "get item", query, id)
}

// Update merges the non-nil patch fields in a single statement.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (*Item, error) {
	query := `
		UPDATE items SET
			name = COALESCE($1::text, name),
			description = COALESCE($2::text, description),
			price = COALESCE($3::double precision, price),
			updated_at = $4
		WHERE id = $5
		RETURNING ` + itemColumns

	return r.one(ctx, "update item", query, patch.Name, patch.Description, patch.Price, updatedAt, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		logrus.WithError(err).WithField("item_id", id).Error("Failed to delete item")
		return fmt.Errorf("delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if affected == 0 {
		return apperror.ErrNotFound
	}

	logrus.WithField("item_id", id).Info("Item deleted")
	return nil
}

func (r *PostgresRepository) AppendComment(ctx context.Context, id, comment string, at time.Time) (*Item, error) {
	query := `
		UPDATE items SET
			comments = comments || jsonb_build_array($1::text),
			updated_at = $2
		WHERE id = $3
		RETURNING ` + itemColumns

	return r.one(ctx, "append comment", query, comment, at, id)
}

func (r *PostgresRepository) AppendRating(ctx context.Context, id string, rating float64, at time.Time) (*Item, error) {
	query := `
		UPDATE items SET
			ratings = ratings || jsonb_build_array($1::double precision),
			updated_at = $2
		WHERE id = $3
		RETURNING ` + itemColumns

	return r.one(ctx, "append rating", query, rating, at, id)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		logrus.WithError(err).Error("Failed to count items")
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// one runs a query that yields at most one item row.
func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...interface{}) (*Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}
		logrus.WithError(err).WithField("op", op).Error("Item query failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}
