package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/groupchat/groupchat/internal/chat"
	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/groups"
	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/internal/sessions"
	"github.com/groupchat/groupchat/internal/tokens"
	"github.com/groupchat/groupchat/internal/users"
	"github.com/groupchat/groupchat/pkg/middleware"
)

type apiFixture struct {
	*testApp
	adminID  string
	memberID string
	otherID  string
	token    string
}

// newAPIFixture wires the full protected API against in-memory repositories
// and returns a logged-in session for the admin user.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = time.Hour
	cfg.JWT.CookieMaxAge = time.Hour

	usersRepo := users.NewMemoryRepository()
	usersSvc := users.NewService(usersRepo)
	groupsRepo := groups.NewMemoryRepository()
	groupsSvc := groups.NewService(groupsRepo, usersRepo)
	chatSvc := chat.NewService(chat.NewMemoryRepository(), groupsSvc, groupsRepo)

	issuer := tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	blacklist := sessions.NewMemoryBlacklist()

	r := gin.New()
	authH := NewAuthHandler(cfg, usersSvc, issuer, blacklist)
	public := r.Group("/api")
	authH.Register(public)
	protected := r.Group("/api")
	protected.Use(middleware.AuthGate(issuer, blacklist, middleware.GateConfig{}))
	authH.RegisterProtected(protected)
	NewUsersHandler(usersSvc).Register(protected)
	NewGroupsHandler(groupsSvc).Register(protected)
	NewChatHandler(chatSvc, nil).Register(protected)

	app := &testApp{router: r, users: usersSvc}
	f := &apiFixture{testApp: app}

	ctx := context.Background()
	mk := func(name, role string) string {
		u, err := usersSvc.Create(ctx, name, name+"@example.com", "s3cretpw", role)
		require.NoError(t, err)
		return u.ID
	}
	f.adminID = mk("groupadmin", models.RoleUser)
	f.memberID = mk("member", models.RoleUser)
	f.otherID = mk("other", models.RoleUser)

	env, rw := login(t, app, "groupadmin@example.com", "s3cretpw")
	require.Equal(t, http.StatusOK, rw.Code)
	f.token = tokenFrom(t, env)
	return f
}

func (f *apiFixture) createGroup(t *testing.T, name string) string {
	t.Helper()
	rw := f.do(t, http.MethodPost, "/api/groups/add", f.token, gin.H{"groupName": name, "groupAdminId": f.adminID})
	require.Equal(t, http.StatusCreated, rw.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &env))
	var g models.Group
	require.NoError(t, json.Unmarshal(env.Data, &g))
	require.NotEmpty(t, g.ID)
	return g.ID
}

func TestGroupsAPI_Lifecycle(t *testing.T) {
	f := newAPIFixture(t)
	gid := f.createGroup(t, "general")

	// add a member
	rw := f.do(t, http.MethodPost, "/api/groups/members/add", f.token,
		gin.H{"groupId": gid, "memberUserId": f.memberID, "groupAdminId": f.adminID})
	require.Equal(t, http.StatusCreated, rw.Code)

	// duplicate add rejected
	rw = f.do(t, http.MethodPost, "/api/groups/members/add", f.token,
		gin.H{"groupId": gid, "memberUserId": f.memberID, "groupAdminId": f.adminID})
	require.Equal(t, http.StatusBadRequest, rw.Code)

	// non-admin caller forbidden
	rw = f.do(t, http.MethodPost, "/api/groups/members/add", f.token,
		gin.H{"groupId": gid, "memberUserId": f.otherID, "groupAdminId": f.memberID})
	require.Equal(t, http.StatusForbidden, rw.Code)

	// member list visible to members only
	rw = f.do(t, http.MethodPost, "/api/groups/getGroupAllMembers/"+gid, f.token, gin.H{"userId": f.memberID})
	require.Equal(t, http.StatusOK, rw.Code)
	rw = f.do(t, http.MethodPost, "/api/groups/getGroupAllMembers/"+gid, f.token, gin.H{"userId": f.otherID})
	require.Equal(t, http.StatusForbidden, rw.Code)

	// user group listing
	rw = f.do(t, http.MethodGet, "/api/groups/getUsersGroups/"+f.memberID, f.token, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	// search within the caller's groups
	rw = f.do(t, http.MethodPost, "/api/groups/search", f.token, gin.H{"groupName": "GEN", "userId": f.adminID})
	require.Equal(t, http.StatusOK, rw.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &env))
	var gs []models.Group
	require.NoError(t, json.Unmarshal(env.Data, &gs))
	require.Len(t, gs, 1)

	// delete: wrong owner looks like a missing group
	rw = f.do(t, http.MethodPost, "/api/groups/delete", f.token, gin.H{"groupId": gid, "groupAdminId": f.memberID})
	require.Equal(t, http.StatusNotFound, rw.Code)
	rw = f.do(t, http.MethodPost, "/api/groups/delete", f.token, gin.H{"groupId": gid, "groupAdminId": f.adminID})
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestGroupsAPI_InvalidIDFormat(t *testing.T) {
	f := newAPIFixture(t)
	rw := f.do(t, http.MethodPost, "/api/groups/add", f.token, gin.H{"groupName": "g", "groupAdminId": "nope"})
	require.Equal(t, http.StatusBadRequest, rw.Code)

	rw = f.do(t, http.MethodGet, "/api/groups/getUsersGroups/nope", f.token, nil)
	require.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestChatAPI_MessageFlow(t *testing.T) {
	f := newAPIFixture(t)
	gid := f.createGroup(t, "general")

	rw := f.do(t, http.MethodPost, "/api/groups/members/add", f.token,
		gin.H{"groupId": gid, "memberUserId": f.memberID, "groupAdminId": f.adminID})
	require.Equal(t, http.StatusCreated, rw.Code)

	// member posts, outsider cannot
	rw = f.do(t, http.MethodPost, "/api/chat/sendMessage", f.token,
		gin.H{"groupId": gid, "userId": f.memberID, "message": "hello"})
	require.Equal(t, http.StatusCreated, rw.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &env))
	var msg models.Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))

	rw = f.do(t, http.MethodPost, "/api/chat/sendMessage", f.token,
		gin.H{"groupId": gid, "userId": f.otherID, "message": "intruder"})
	require.Equal(t, http.StatusForbidden, rw.Code)

	// history readable by members, ordered oldest first
	rw = f.do(t, http.MethodPost, "/api/chat/sendMessage", f.token,
		gin.H{"groupId": gid, "userId": f.adminID, "message": "second"})
	require.Equal(t, http.StatusCreated, rw.Code)

	rw = f.do(t, http.MethodPost, "/api/chat/getGroupMessages/"+gid, f.token, gin.H{"userId": f.adminID})
	require.Equal(t, http.StatusOK, rw.Code)
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &env))
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 2)
	require.Equal(t, "hello", msgs[0].Message)
	require.Equal(t, "second", msgs[1].Message)

	// like toggle
	rw = f.do(t, http.MethodPost, "/api/chat/likeUnlikeMessage", f.token,
		gin.H{"messageId": msg.ID, "userId": f.adminID})
	require.Equal(t, http.StatusOK, rw.Code)

	// unknown message
	rw = f.do(t, http.MethodPost, "/api/chat/likeUnlikeMessage", f.token,
		gin.H{"messageId": "65f000000000000000000099", "userId": f.adminID})
	require.Equal(t, http.StatusNotFound, rw.Code)
}

func TestChatAPI_AttachmentsUnconfigured(t *testing.T) {
	f := newAPIFixture(t)
	gid := f.createGroup(t, "general")

	rw := f.do(t, http.MethodPost, "/api/chat/attachments/"+gid, f.token, gin.H{"userId": f.adminID})
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
}

func TestUsersAPI_RequiresAdminRole(t *testing.T) {
	f := newAPIFixture(t)

	// f.token belongs to a non-admin user
	rw := f.do(t, http.MethodGet, "/api/users", f.token, nil)
	require.Equal(t, http.StatusForbidden, rw.Code)

	// promote via direct service access, then log in as an admin
	ctx := context.Background()
	u, err := f.users.Create(ctx, "root", "root@example.com", "s3cretpw", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, u.Role)

	env, rw2 := login(t, f.testApp, "root@example.com", "s3cretpw")
	require.Equal(t, http.StatusOK, rw2.Code)
	adminTok := tokenFrom(t, env)

	rw = f.do(t, http.MethodGet, "/api/users", adminTok, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = f.do(t, http.MethodPost, "/api/users/add", adminTok,
		gin.H{"username": "new", "email": "new@example.com", "password": "pw123456", "role": "user"})
	require.Equal(t, http.StatusCreated, rw.Code)

	rw = f.do(t, http.MethodPatch, "/api/users/edit/"+f.memberID, adminTok,
		gin.H{"username": "member2", "role": "user"})
	require.Equal(t, http.StatusOK, rw.Code)
}
