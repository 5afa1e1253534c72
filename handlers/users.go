package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/users"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/response"
)

type addUserRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	Role     string `json:"role" form:"role" binding:"required,oneof=admin user"`
}

type editUserRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role" binding:"required,oneof=admin user"`
}

// UsersHandler serves the account management surface. All of its routes sit
// behind the admin-only patterns of the auth gate.
type UsersHandler struct {
	svc *users.Service
}

func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) Register(rg *gin.RouterGroup) {
	u := rg.Group("/users")
	u.GET("", h.List)
	u.POST("/add", h.Add)
	u.PATCH("/edit/:userID", h.Edit)
}

func (h *UsersHandler) List(c *gin.Context) {
	us, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("users: list failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusOK, "users fetched successfully", us)
}

func (h *UsersHandler) Add(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	u, err := h.svc.Create(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	if errors.Is(err, users.ErrAlreadyExists) {
		response.Fail(c, http.StatusBadRequest, "user already exists")
		return
	}
	if err != nil {
		logger.Errorf("users: add failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusCreated, "user added successfully", u)
}

func (h *UsersHandler) Edit(c *gin.Context) {
	userID := c.Param("userID")
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid user ID format")
		return
	}
	var req editUserRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	u, err := h.svc.Edit(c.Request.Context(), userID, req.Username, req.Password, req.Role)
	if errors.Is(err, users.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		logger.Errorf("users: edit failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusOK, "information updated successfully", u)
}
