package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/groups"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/response"
)

type addGroupRequest struct {
	GroupName    string `json:"groupName" form:"groupName" binding:"required"`
	GroupAdminID string `json:"groupAdminId" form:"groupAdminId" binding:"required"`
}

type deleteGroupRequest struct {
	GroupID      string `json:"groupId" form:"groupId" binding:"required"`
	GroupAdminID string `json:"groupAdminId" form:"groupAdminId" binding:"required"`
}

type searchGroupRequest struct {
	GroupName string `json:"groupName" form:"groupName"`
	UserID    string `json:"userId" form:"userId" binding:"required"`
}

type addMemberRequest struct {
	GroupID      string `json:"groupId" form:"groupId" binding:"required"`
	MemberUserID string `json:"memberUserId" form:"memberUserId" binding:"required"`
	GroupAdminID string `json:"groupAdminId" form:"groupAdminId" binding:"required"`
}

type userIDBodyRequest struct {
	UserID string `json:"userId" form:"userId" binding:"required"`
}

// GroupsHandler serves group lifecycle and membership routes.
type GroupsHandler struct {
	svc *groups.Service
}

func NewGroupsHandler(svc *groups.Service) *GroupsHandler {
	return &GroupsHandler{svc: svc}
}

func (h *GroupsHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/groups")
	g.POST("/add", h.Add)
	g.POST("/delete", h.Delete)
	g.POST("/search", h.Search)
	g.POST("/members/add", h.AddMember)
	g.GET("/getUsersGroups/:userId", h.UserGroups)
	g.POST("/getGroupAllMembers/:groupId", h.GroupMembers)
}

func (h *GroupsHandler) Add(c *gin.Context) {
	var req addGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(req.GroupAdminID) {
		response.Fail(c, http.StatusBadRequest, "invalid user ID format")
		return
	}
	g, err := h.svc.Add(c.Request.Context(), req.GroupName, req.GroupAdminID)
	if errors.Is(err, groups.ErrUserNotFound) {
		response.Fail(c, http.StatusNotFound, "group admin not found")
		return
	}
	if err != nil {
		logger.Errorf("groups: add failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusCreated, "group added successfully", g)
}

func (h *GroupsHandler) Delete(c *gin.Context) {
	var req deleteGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(req.GroupID) || !validID(req.GroupAdminID) {
		response.Fail(c, http.StatusBadRequest, "invalid ID format")
		return
	}
	g, err := h.svc.Delete(c.Request.Context(), req.GroupID, req.GroupAdminID)
	switch {
	case errors.Is(err, groups.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, "invalid group admin ID")
		return
	case errors.Is(err, groups.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "group not found")
		return
	case err != nil:
		logger.Errorf("groups: delete failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusOK, "group deleted successfully", g)
}

func (h *GroupsHandler) Search(c *gin.Context) {
	var req searchGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(req.UserID) {
		response.Fail(c, http.StatusBadRequest, "invalid user ID format")
		return
	}
	gs, err := h.svc.Search(c.Request.Context(), req.GroupName, req.UserID)
	if errors.Is(err, groups.ErrUserNotFound) {
		response.Fail(c, http.StatusNotFound, "invalid userId")
		return
	}
	if err != nil {
		logger.Errorf("groups: search failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusOK, "group found successfully", gs)
}

func (h *GroupsHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(req.GroupID) || !validID(req.MemberUserID) || !validID(req.GroupAdminID) {
		response.Fail(c, http.StatusBadRequest, "invalid ID format")
		return
	}
	gm, err := h.svc.AddMember(c.Request.Context(), req.GroupID, req.MemberUserID, req.GroupAdminID)
	switch {
	case errors.Is(err, groups.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, "invalid member ID")
		return
	case errors.Is(err, groups.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "group not found")
		return
	case errors.Is(err, groups.ErrNotGroupAdmin):
		response.Fail(c, http.StatusForbidden, "you do not have permission to add members to this group")
		return
	case errors.Is(err, groups.ErrAlreadyMember):
		response.Fail(c, http.StatusBadRequest, "user is already a member of the group")
		return
	case err != nil:
		logger.Errorf("groups: add member failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusCreated, "member added successfully", gm)
}

func (h *GroupsHandler) UserGroups(c *gin.Context) {
	userID := c.Param("userId")
	if !validID(userID) {
		response.Fail(c, http.StatusBadRequest, "invalid user ID format")
		return
	}
	ms, err := h.svc.UserGroups(c.Request.Context(), userID)
	if errors.Is(err, groups.ErrUserNotFound) {
		response.Fail(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		logger.Errorf("groups: user groups failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusOK, "groups fetch successfully", ms)
}

func (h *GroupsHandler) GroupMembers(c *gin.Context) {
	groupID := c.Param("groupId")
	var req userIDBodyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(groupID) || !validID(req.UserID) {
		response.Fail(c, http.StatusBadRequest, "invalid ID format")
		return
	}
	ms, err := h.svc.GroupMembers(c.Request.Context(), groupID, req.UserID)
	switch {
	case errors.Is(err, groups.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, groups.ErrNotFound):
		response.Fail(c, http.StatusNotFound, "group not found")
		return
	case errors.Is(err, groups.ErrNotMember):
		response.Fail(c, http.StatusForbidden, "user is not a member of the group")
		return
	case err != nil:
		logger.Errorf("groups: members failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusOK, "group members fetch successfully", ms)
}

func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
