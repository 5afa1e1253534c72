package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groupchat/groupchat/internal/chat"
	"github.com/groupchat/groupchat/internal/storage"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/response"
)

const attachmentURLTTL = 15 * time.Minute

type sendMessageRequest struct {
	GroupID string `json:"groupId" form:"groupId" binding:"required"`
	UserID  string `json:"userId" form:"userId" binding:"required"`
	Message string `json:"message" form:"message" binding:"required"`
}

type likeUnlikeRequest struct {
	MessageID string `json:"messageId" form:"messageId" binding:"required"`
	UserID    string `json:"userId" form:"userId" binding:"required"`
}

// ChatHandler serves message posting, history, like toggling and attachment
// upload. Attachments are optional; when no store is configured the upload
// route reports the feature as unavailable.
type ChatHandler struct {
	svc         *chat.Service
	attachments *storage.AttachmentStore
}

func NewChatHandler(svc *chat.Service, attachments *storage.AttachmentStore) *ChatHandler {
	return &ChatHandler{svc: svc, attachments: attachments}
}

func (h *ChatHandler) Register(rg *gin.RouterGroup) {
	c := rg.Group("/chat")
	c.POST("/sendMessage", h.SendMessage)
	c.POST("/getGroupMessages/:groupId", h.GroupMessages)
	c.POST("/likeUnlikeMessage", h.LikeUnlike)
	c.POST("/attachments/:groupId", h.UploadAttachment)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(req.GroupID) || !validID(req.UserID) {
		response.Fail(c, http.StatusBadRequest, "invalid ID format")
		return
	}
	msg, err := h.svc.Send(c.Request.Context(), req.GroupID, req.UserID, req.Message)
	if err != nil {
		h.writeChatError(c, err, "send")
		return
	}
	response.OK(c, http.StatusCreated, "message sent successfully", msg)
}

func (h *ChatHandler) GroupMessages(c *gin.Context) {
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
	msgs, err := h.svc.History(c.Request.Context(), groupID, req.UserID)
	if err != nil {
		h.writeChatError(c, err, "history")
		return
	}
	response.OK(c, http.StatusOK, "messages fetch successfully", msgs)
}

func (h *ChatHandler) LikeUnlike(c *gin.Context) {
	var req likeUnlikeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	if !validID(req.MessageID) || !validID(req.UserID) {
		response.Fail(c, http.StatusBadRequest, "invalid ID format")
		return
	}
	like, err := h.svc.ToggleLike(c.Request.Context(), req.MessageID, req.UserID)
	if err != nil {
		h.writeChatError(c, err, "like")
		return
	}
	response.OK(c, http.StatusOK, "message like/unlike successfully", like)
}

// UploadAttachment stores one multipart file for the group and returns its
// object key plus a short-lived download URL.
func (h *ChatHandler) UploadAttachment(c *gin.Context) {
	if h.attachments == nil {
		response.Fail(c, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}
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
	// Reuse the membership rules of message reads.
	if _, err := h.svc.History(c.Request.Context(), groupID, req.UserID); err != nil {
		h.writeChatError(c, err, "attachment")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		logger.Errorf("chat: open upload failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	defer f.Close()
	key, err := h.attachments.Put(c.Request.Context(), groupID, fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		logger.Errorf("chat: store attachment failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	url, err := h.attachments.PresignedURL(c.Request.Context(), key, attachmentURLTTL)
	if err != nil {
		logger.Errorf("chat: presign attachment failed: %v", err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, http.StatusCreated, "attachment uploaded successfully", gin.H{"key": key, "url": url})
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, chat.ErrGroupNotFound):
		response.Fail(c, http.StatusNotFound, "group not found")
	case errors.Is(err, chat.ErrMessageNotFound):
		response.Fail(c, http.StatusNotFound, "message not found")
	case errors.Is(err, chat.ErrNotMember):
		response.Fail(c, http.StatusForbidden, "user is not a member of the group")
	default:
		logger.Errorf("chat: %s failed: %v", op, err)
		response.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
