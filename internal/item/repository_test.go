package item

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"item_catalog/internal/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemRowColumns = []string{"id", "name", "description", "price", "comments", "ratings", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	it := &Item{ID: "i1", Name: "Widget", Price: 9.99, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO items")).
		WithArgs("i1", "Widget", "", 9.99, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), it))
	assert.Equal(t, []string{}, it.Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM items ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow("i1", "Widget", "", 9.99, []byte(`["nice","great"]`), []byte(`[5,4.5]`), now, now).
			AddRow("i2", "Gadget", "blue", 1.0, []byte(`[]`), []byte(`[]`), now, now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, []string{"nice", "great"}, items[0].Comments)
	assert.Equal(t, []float64{5, 4.5}, items[0].Ratings)
	assert.Equal(t, []string{}, items[1].Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM items")).WillReturnRows(sqlmock.NewRows(itemRowColumns))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestPostgresRepository_GetByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows(itemRowColumns))

	_, err := repo.GetByID(context.Background(), "i1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostgresRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	name := "Gadget"
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE items SET")).
		WithArgs("Gadget", nil, nil, now, "i1").
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow("i1", "Gadget", "", 9.99, []byte(`["nice"]`), []byte(`[]`), now, now))

	it, err := repo.Update(context.Background(), "i1", Patch{Name: &name}, now)
	require.NoError(t, err)

	assert.Equal(t, "Gadget", it.Name)
	assert.Equal(t, 9.99, it.Price)
	assert.Equal(t, []string{"nice"}, it.Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM items")).
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "i1"), apperror.ErrNotFound)
}

func TestPostgresRepository_AppendComment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("comments = comments || jsonb_build_array($1::text)")).
		WithArgs("nice", now, "i1").
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow("i1", "Widget", "", 9.99, []byte(`["first","nice"]`), []byte(`[3]`), now, now))

	it, err := repo.AppendComment(context.Background(), "i1", "nice", now)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "nice"}, it.Comments)
	assert.Equal(t, []float64{3}, it.Ratings)
}

func TestPostgresRepository_AppendRatingMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ratings = ratings || jsonb_build_array($1::double precision)")).
		WillReturnRows(sqlmock.NewRows(itemRowColumns))

	_, err := repo.AppendRating(context.Background(), "i1", 4, time.Now())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostgresRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM items")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPostgresRepository_CountFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).WillReturnError(errors.New("connection reset"))

	_, err := repo.Count(context.Background())
	assert.Error(t, err)
}
