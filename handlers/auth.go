package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/models"
	"github.com/groupchat/groupchat/internal/sessions"
	"github.com/groupchat/groupchat/internal/tokens"
	"github.com/groupchat/groupchat/internal/users"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/middleware"
	"github.com/groupchat/groupchat/pkg/response"
)

// userDataCookie mirrors the issued token for browser clients. The
// Authorization header stays the first-class carrier.
const userDataCookie = "userData"

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthHandler serves login and logout.
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	issuer    *tokens.Issuer
	blacklist sessions.Blacklist
}

func NewAuthHandler(cfg *config.Config, u *users.Service, iss *tokens.Issuer, bl sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, issuer: iss, blacklist: bl}
}

// Register mounts the public login route. Logout is registered separately via
// RegisterProtected because it sits behind the auth gate.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
}

func (h *AuthHandler) RegisterProtected(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.GET("/logout/:userId", h.Logout)
}

// Login verifies credentials and issues a fresh session token. Every
// successful login mints a new token; earlier tokens stay valid until they
// expire or are revoked.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "email and password are required")
		return
	}
	id, err := h.usersSvc.Verify(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, users.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		logger.Errorf("login: verify failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	token, err := h.issuer.Issue(id)
	if err != nil {
		logger.Errorf("login: token issue failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	h.setUserDataCookie(c, token, id)
	// The identity is flattened next to the token; only the JWT claims nest
	// it under a "user" object.
	response.OK(c, http.StatusOK, "login successful", gin.H{
		"token":    token,
		"id":       id.ID,
		"email":    id.Email,
		"role":     id.Role,
		"username": id.Username,
	})
}

// Logout revokes the presented token for its remaining lifetime and clears
// the browser cookie. The userId path param must name an existing account.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.Param("userId")
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid user ID format")
		return
	}
	if _, err := h.usersSvc.GetByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "user not found")
			return
		}
		logger.Errorf("logout: user lookup failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	raw := c.GetString(middleware.TokenKey)
	ttl, err := tokens.RemainingTTL(raw)
	if err != nil || ttl <= 0 {
		ttl = sessions.DefaultBlacklistTTL
	}
	if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
		logger.Errorf("logout: revoke failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.SetCookie(userDataCookie, "", -1, "/", "", false, true)
	response.OK(c, http.StatusOK, "logout successful", nil)
}

func (h *AuthHandler) setUserDataCookie(c *gin.Context, token string, id models.Identity) {
	payload, err := json.Marshal(gin.H{
		"token":    token,
		"id":       id.ID,
		"email":    id.Email,
		"role":     id.Role,
		"username": id.Username,
	})
	if err != nil {
		return
	}
	maxAge := int(h.cfg.JWT.CookieMaxAge.Seconds())
	c.SetCookie(userDataCookie, string(payload), maxAge, "/", "", false, true)
}
