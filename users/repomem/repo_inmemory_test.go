package repomem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
	"github.com/jrsteele09/go-dbgate/users"
	"github.com/jrsteele09/go-dbgate/users/repomem"
)

func TestInMemoryUserRepo(t *testing.T) {
	repo := repomem.NewInMemoryUserRepo()

	_, err := repo.GetByIdentity("admin")
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)

	admin := &users.User{
		Identity:     "admin",
		PasswordHash: "hash",
		Capabilities: []users.Capability{users.CapabilityAdmin},
	}
	require.NoError(t, repo.Upsert(admin))
	require.NoError(t, repo.Upsert(&users.User{Identity: "readonly", Capabilities: []users.Capability{users.CapabilityRead}}))

	got, err := repo.GetByIdentity("admin")
	require.NoError(t, err)
	require.Equal(t, "admin", got.Identity)
	require.Equal(t, []users.Capability{users.CapabilityAdmin}, got.Capabilities)

	// Mutating the returned record must not affect the stored one.
	got.PasswordHash = "tampered"
	again, err := repo.GetByIdentity("admin")
	require.NoError(t, err)
	require.Equal(t, "hash", again.PasswordHash)

	all, err := repo.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "admin", all[0].Identity)
	require.Equal(t, "readonly", all[1].Identity)

	require.NoError(t, repo.Delete("readonly"))
	require.ErrorIs(t, repo.Delete("readonly"), apperrors.ErrUserNotFound)
}

func TestUpsertRequiresIdentity(t *testing.T) {
	repo := repomem.NewInMemoryUserRepo()
	require.Error(t, repo.Upsert(&users.User{}))
	require.Error(t, repo.Upsert(nil))
}
