package user

import (
	"context"
	"testing"

	"item_catalog/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &User{ID: "u1", Username: "alice", PasswordHash: "h1"}))
	assert.ErrorIs(t, repo.Create(ctx, &User{ID: "u2", Username: "alice", PasswordHash: "h2"}), apperror.ErrConflict)

	u, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "h1", u.PasswordHash)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
