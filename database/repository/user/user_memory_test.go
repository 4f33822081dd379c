package userRepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAndLookup(t *testing.T) {
	repo := NewMemoryUserRepo()
	u, err := Seed(repo, "Demo", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	got, err := repo.GetByUsername("demo")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("secret")))

	byID, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", byID.Username)

	_, err = Seed(repo, "DEMO", "other")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
