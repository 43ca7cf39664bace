package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	user, err := NewUser(1, "  alice  ", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, []string{RoleCustomer}, user.Roles)
	require.False(t, user.IsAdmin())
}

func TestNewUser_Invalid(t *testing.T) {
	_, err := NewUser(1, " ", "secret")
	require.ErrorIs(t, err, ErrEmptyUsername)

	_, err = NewUser(1, "alice", " ")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = NewUser(1, "alice", "abc")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestSetRoles_NormalizesAndValidates(t *testing.T) {
	user := &User{}

	require.NoError(t, user.SetRoles([]string{" Admin ", "customer", "ADMIN", ""}))
	require.Equal(t, []string{"admin", "customer"}, user.Roles)
	require.True(t, user.IsAdmin())

	require.NoError(t, user.SetRoles(nil))
	require.Equal(t, []string{RoleCustomer}, user.Roles)

	require.ErrorIs(t, user.SetRoles([]string{"root"}), ErrInvalidRole)
}

func TestUpdateProfile_ValidatesEmail(t *testing.T) {
	user := &User{}

	require.NoError(t, user.UpdateProfile("Alice", "Smith", "alice@example.com", " 555 "))
	require.Equal(t, "555", user.Phone)

	require.ErrorIs(t, user.UpdateProfile("", "", "not-an-email", ""), ErrInvalidEmail)

	// Email is optional.
	require.NoError(t, user.UpdateProfile("", "", "", ""))
}

func TestCheckPassword(t *testing.T) {
	user, err := NewUser(1, "alice", "secret")
	require.NoError(t, err)

	require.True(t, user.CheckPassword("secret"))
	require.False(t, user.CheckPassword("wrong"))
	require.False(t, user.CheckPassword(""))
}

func TestTouch(t *testing.T) {
	user := &User{}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	user.Touch(at)
	require.Equal(t, at, user.LastSeen)
}
