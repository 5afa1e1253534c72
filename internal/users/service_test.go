package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groupchat/groupchat/internal/models"
)

func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	return NewService(NewMemoryRepository()), context.Background()
}

func TestService_CreateAndVerify(t *testing.T) {
	svc, ctx := newTestService(t)

	u, err := svc.Create(ctx, "alice", "alice@example.com", "s3cretpw", models.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Empty(t, u.Password)

	id, err := svc.Verify(ctx, "alice@example.com", "s3cretpw")
	require.NoError(t, err)
	require.Equal(t, u.ID, id.ID)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, models.RoleUser, id.Role)
}

func TestService_Verify_WrongPassword(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.Create(ctx, "alice", "alice@example.com", "s3cretpw", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Verify_UnknownEmail(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.Verify(ctx, "nobody@example.com", "pw")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Verify_EmailCaseSensitive(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.Create(ctx, "alice", "alice@example.com", "s3cretpw", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "Alice@Example.com", "s3cretpw")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Create_Duplicate(t *testing.T) {
	svc, ctx := newTestService(t)
	first, err := svc.Create(ctx, "alice", "alice@example.com", "pw123456", models.RoleUser)
	require.NoError(t, err)

	dup, err := svc.Create(ctx, "alice2", "alice@example.com", "pw123456", models.RoleAdmin)
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.Equal(t, first.ID, dup.ID)
}

func TestService_Edit(t *testing.T) {
	svc, ctx := newTestService(t)
	u, err := svc.Create(ctx, "alice", "alice@example.com", "oldpw123", models.RoleUser)
	require.NoError(t, err)

	edited, err := svc.Edit(ctx, u.ID, "alice-renamed", "newpw123", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, "alice-renamed", edited.Username)
	require.Equal(t, models.RoleAdmin, edited.Role)

	// old password no longer verifies, new one does
	_, err = svc.Verify(ctx, "alice@example.com", "oldpw123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	id, err := svc.Verify(ctx, "alice@example.com", "newpw123")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, id.Role)
}

func TestService_Edit_KeepsPasswordWhenEmpty(t *testing.T) {
	svc, ctx := newTestService(t)
	u, err := svc.Create(ctx, "alice", "alice@example.com", "keepme12", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Edit(ctx, u.ID, "alice", "", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "alice@example.com", "keepme12")
	require.NoError(t, err)
}

func TestService_Edit_NotFound(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.Edit(ctx, "65f000000000000000000099", "x", "", models.RoleUser)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_List_HidesHashes(t *testing.T) {
	svc, ctx := newTestService(t)
	_, err := svc.Create(ctx, "alice", "alice@example.com", "pw123456", models.RoleUser)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "bob@example.com", "pw123456", models.RoleAdmin)
	require.NoError(t, err)

	us, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, us, 2)
	for _, u := range us {
		require.Empty(t, u.Password)
	}
}
