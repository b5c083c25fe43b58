package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aibanker/go-aibanker/users"
)

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, users.ValidatePasswordStrength("Sup3rSecret"))
	})

	t.Run("too short", func(t *testing.T) {
		err := users.ValidatePasswordStrength("Ab1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("no uppercase", func(t *testing.T) {
		err := users.ValidatePasswordStrength("sup3rsecret")
		require.Error(t, err)
		require.Contains(t, err.Error(), "uppercase")
	})

	t.Run("no lowercase", func(t *testing.T) {
		err := users.ValidatePasswordStrength("SUP3RSECRET")
		require.Error(t, err)
		require.Contains(t, err.Error(), "lowercase")
	})

	t.Run("no number", func(t *testing.T) {
		err := users.ValidatePasswordStrength("SuperSecret")
		require.Error(t, err)
		require.Contains(t, err.Error(), "number")
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := users.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", hash)

	require.True(t, users.CheckPasswordHash("Sup3rSecret", hash))
	require.False(t, users.CheckPasswordHash("WrongPass1", hash))
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name string
		user users.User
		want string
	}{
		{"both names", users.User{FirstName: "Alex", LastName: "Banker", Username: "abanker"}, "Alex Banker"},
		{"first only", users.User{FirstName: "Alex", Username: "abanker"}, "Alex"},
		{"last only", users.User{LastName: "Banker", Username: "abanker"}, "Banker"},
		{"username fallback", users.User{Username: "abanker"}, "abanker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.user.FullName())
		})
	}
}

func TestUser_IsManager(t *testing.T) {
	require.True(t, (&users.User{Role: users.RoleAdmin}).IsManager())
	require.True(t, (&users.User{Role: users.RoleManager}).IsManager())
	require.False(t, (&users.User{Role: users.RoleAnalyst}).IsManager())
	require.False(t, (&users.User{Role: users.RoleViewer}).IsManager())
}

func TestValidRoleAndStatus(t *testing.T) {
	require.True(t, users.ValidRole(users.RoleManager))
	require.False(t, users.ValidRole(users.RoleType("superuser")))

	require.True(t, users.ValidStatus(users.StatusSuspended))
	require.False(t, users.ValidStatus(users.StatusType("banned")))
}

func TestUser_CanLogin(t *testing.T) {
	require.True(t, (&users.User{Active: true, Status: users.StatusActive}).CanLogin())
	require.True(t, (&users.User{Active: true, Status: users.StatusPending}).CanLogin())
	require.False(t, (&users.User{Active: false, Status: users.StatusActive}).CanLogin())
	require.False(t, (&users.User{Active: true, Status: users.StatusSuspended}).CanLogin())
}
