package devseed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/quillhq/quill/internal/domain/auth"
	mocks "github.com/quillhq/quill/internal/mocks/auth"
)

func TestSeedOne_CreatesAccount(t *testing.T) {
	users := mocks.NewMemoryUserStore()
	acct := seedAccounts()[0]

	require.NoError(t, seedOne(context.Background(), users, acct, "hash"))

	user, err := users.GetByEmail(context.Background(), acct.Email)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, user.Role)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestSeedOne_ExistingAccountIsSkipped(t *testing.T) {
	users := mocks.NewMemoryUserStore()
	acct := seedAccounts()[1]

	require.NoError(t, seedOne(context.Background(), users, acct, "hash-one"))
	require.NoError(t, seedOne(context.Background(), users, acct, "hash-two"))

	user, err := users.GetByEmail(context.Background(), acct.Email)
	require.NoError(t, err)
	assert.Equal(t, "hash-one", user.PasswordHash, "existing accounts keep their password")
}

func TestSeedAccounts_CoverAllRoles(t *testing.T) {
	roles := make(map[domainauth.Role]bool)
	for _, acct := range seedAccounts() {
		roles[acct.Role] = true
	}
	assert.True(t, roles[domainauth.RoleAdmin])
	assert.True(t, roles[domainauth.RoleUser])
	assert.True(t, roles[domainauth.RoleGuest])
}
