package groups

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/internal/users"
)

type fixture struct {
	svc   *Service
	users *users.MemoryRepository
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ur := users.NewMemoryRepository()
	return &fixture{
		svc:   NewService(NewMemoryRepository(), ur),
		users: ur,
		ctx:   context.Background(),
	}
}

func (f *fixture) addUser(t *testing.T, name string) string {
	t.Helper()
	u, err := f.users.Insert(f.ctx, &models.User{Username: name, Email: name + "@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	return u.ID
}

func TestAdd_EnrollsCreatorAsAdminMember(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin")

	g, err := f.svc.Add(f.ctx, "general", admin)
	require.NoError(t, err)
	require.Equal(t, admin, g.GroupAdminID)

	ok, err := f.svc.repo.IsAdminMember(f.ctx, g.ID, admin)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAdd_UnknownAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Add(f.ctx, "general", "65f000000000000000000099")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDelete_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner")
	other := f.addUser(t, "other")

	g, err := f.svc.Add(f.ctx, "general", owner)
	require.NoError(t, err)

	_, err = f.svc.Delete(f.ctx, g.ID, other)
	require.ErrorIs(t, err, ErrNotFound)

	deleted, err := f.svc.Delete(f.ctx, g.ID, owner)
	require.NoError(t, err)
	require.Equal(t, 1, deleted.IsDeleted)

	// deleted groups are invisible afterwards
	_, err = f.svc.Delete(f.ctx, g.ID, owner)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearch_ScopedToCallerGroups(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	_, err := f.svc.Add(f.ctx, "Go Enthusiasts", alice)
	require.NoError(t, err)
	_, err = f.svc.Add(f.ctx, "go-private", bob)
	require.NoError(t, err)

	// case-insensitive substring match within alice's groups only
	gs, err := f.svc.Search(f.ctx, "go", alice)
	require.NoError(t, err)
	require.Len(t, gs, 1)
	require.Equal(t, "Go Enthusiasts", gs[0].GroupName)

	// empty query matches all of the caller's groups
	gs, err = f.svc.Search(f.ctx, "", alice)
	require.NoError(t, err)
	require.Len(t, gs, 1)
}

func TestSearch_QueryIsLiteral(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	_, err := f.svc.Add(f.ctx, "team (core)", alice)
	require.NoError(t, err)

	// regex metacharacters in the query match literally instead of erroring
	gs, err := f.svc.Search(f.ctx, "(core)", alice)
	require.NoError(t, err)
	require.Len(t, gs, 1)

	gs, err = f.svc.Search(f.ctx, ".*", alice)
	require.NoError(t, err)
	require.Empty(t, gs)
}

func TestSearch_NoMemberships(t *testing.T) {
	f := newFixture(t)
	loner := f.addUser(t, "loner")

	gs, err := f.svc.Search(f.ctx, "", loner)
	require.NoError(t, err)
	require.Empty(t, gs)
}

func TestAddMember_Rules(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin")
	member := f.addUser(t, "member")
	outsider := f.addUser(t, "outsider")

	g, err := f.svc.Add(f.ctx, "general", admin)
	require.NoError(t, err)

	// non-admin cannot add
	_, err = f.svc.AddMember(f.ctx, g.ID, member, outsider)
	require.ErrorIs(t, err, ErrNotGroupAdmin)

	gm, err := f.svc.AddMember(f.ctx, g.ID, member, admin)
	require.NoError(t, err)
	require.Equal(t, 0, gm.IsAdmin)

	// duplicates rejected
	_, err = f.svc.AddMember(f.ctx, g.ID, member, admin)
	require.ErrorIs(t, err, ErrAlreadyMember)

	// unknown group
	_, err = f.svc.AddMember(f.ctx, "65f000000000000000000099", member, admin)
	require.ErrorIs(t, err, ErrNotFound)

	// unknown member user
	_, err = f.svc.AddMember(f.ctx, g.ID, "65f000000000000000000099", admin)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserGroups(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin")
	member := f.addUser(t, "member")

	g1, err := f.svc.Add(f.ctx, "one", admin)
	require.NoError(t, err)
	_, err = f.svc.Add(f.ctx, "two", admin)
	require.NoError(t, err)
	_, err = f.svc.AddMember(f.ctx, g1.ID, member, admin)
	require.NoError(t, err)

	ms, err := f.svc.UserGroups(f.ctx, admin)
	require.NoError(t, err)
	require.Len(t, ms, 2)

	ms, err = f.svc.UserGroups(f.ctx, member)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.Equal(t, "one", ms[0].GroupName)
}

func TestGroupMembers_RequiresMembership(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin")
	member := f.addUser(t, "member")
	outsider := f.addUser(t, "outsider")

	g, err := f.svc.Add(f.ctx, "general", admin)
	require.NoError(t, err)
	_, err = f.svc.AddMember(f.ctx, g.ID, member, admin)
	require.NoError(t, err)

	_, err = f.svc.GroupMembers(f.ctx, g.ID, outsider)
	require.ErrorIs(t, err, ErrNotMember)

	ms, err := f.svc.GroupMembers(f.ctx, g.ID, member)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	for _, m := range ms {
		require.NotEmpty(t, m.Username)
		require.NotEmpty(t, m.Email)
	}
}
