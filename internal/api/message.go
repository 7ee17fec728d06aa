package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat/internal/authz"
	"groupchat/internal/middleware"
	"groupchat/internal/models"
	"groupchat/internal/repository"
)

// Membership errors. Search reuses the post wording — that asymmetry
// is part of the wire contract.
const (
	errMustBeMemberToPost = "You must be a member of the group to post messages"
	errMustBeMemberToView = "You must be a member of the group to view messages"
)

// MessageHandler serves message CRUD and search within a group.
//
// Post, list, search and get require the caller to be a group member.
// Edit and delete only require that the group exists and the caller
// authored the message — membership is deliberately not re-checked
// there; changing that would change observable behavior.
type MessageHandler struct {
	groupRepo      repository.GroupRepository
	membershipRepo repository.MembershipRepository
	messageRepo    repository.MessageRepository
	logger         *zap.Logger
}

func NewMessageHandler(
	groupRepo repository.GroupRepository,
	membershipRepo repository.MembershipRepository,
	messageRepo repository.MessageRepository,
	logger *zap.Logger,
) *MessageHandler {
	return &MessageHandler{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
		logger:         logger,
	}
}

type messageTextRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

type searchMessageRequest struct {
	Query string `json:"query"`
}

// loadGroup resolves :id and fetches the group, writing the error
// response itself when the group can't be served. ok is false if a
// response was already written.
func (h *MessageHandler) loadGroup(c *gin.Context) (*models.Group, bool) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return nil, false
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to get group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get group"})
		return nil, false
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, false
	}
	return group, true
}

// requireMember checks the caller's membership against the group's
// member set, writing a 401 with msg when the caller is not a member.
func (h *MessageHandler) requireMember(c *gin.Context, group *models.Group, msg string) bool {
	members, err := h.membershipRepo.ListMembers(c.Request.Context(), group.ID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return false
	}
	if !authz.IsMemberOf(middleware.GetUserID(c), members) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
		return false
	}
	return true
}

func messageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("mid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, false
	}
	return id, true
}

// Post handles POST /groups/:id/messages.
func (h *MessageHandler) Post(c *gin.Context) {
	group, ok := h.loadGroup(c)
	if !ok {
		return
	}
	if !h.requireMember(c, group, errMustBeMemberToPost) {
		return
	}

	var req messageTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), group.ID, middleware.GetUserID(c), req.Text)
	if err != nil {
		h.logger.Error("failed to create message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// List handles GET /groups/:id/messages — newest first.
func (h *MessageHandler) List(c *gin.Context) {
	group, ok := h.loadGroup(c)
	if !ok {
		return
	}
	if !h.requireMember(c, group, errMustBeMemberToView) {
		return
	}

	messages, err := h.messageRepo.ListByGroup(c.Request.Context(), group.ID)
	if err != nil {
		h.logger.Error("failed to list messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": len(messages)})
}

// Search handles POST /groups/:id/messages/search — case-insensitive
// substring match, newest first.
func (h *MessageHandler) Search(c *gin.Context) {
	group, ok := h.loadGroup(c)
	if !ok {
		return
	}
	if !h.requireMember(c, group, errMustBeMemberToPost) {
		return
	}

	var req searchMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := h.messageRepo.SearchByText(c.Request.Context(), group.ID, req.Query)
	if err != nil {
		h.logger.Error("failed to search messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": len(messages)})
}

// Get handles GET /groups/:id/messages/:mid.
func (h *MessageHandler) Get(c *gin.Context) {
	group, ok := h.loadGroup(c)
	if !ok {
		return
	}
	if !h.requireMember(c, group, errMustBeMemberToView) {
		return
	}

	msgID, ok := messageID(c)
	if !ok {
		return
	}

	msg, err := h.messageRepo.GetByID(c.Request.Context(), group.ID, msgID)
	if err != nil {
		h.logger.Error("failed to get message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get message"})
		return
	}
	if msg == nil {
		// Trailing period differs from the other message-not-found
		// responses; kept for compatibility.
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Edit handles PUT /groups/:id/messages/:mid. Author-only; the
// creation timestamp is untouched.
func (h *MessageHandler) Edit(c *gin.Context) {
	group, ok := h.loadGroup(c)
	if !ok {
		return
	}

	msgID, ok := messageID(c)
	if !ok {
		return
	}

	msg, err := h.messageRepo.GetByID(c.Request.Context(), group.ID, msgID)
	if err != nil {
		h.logger.Error("failed to get message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to edit message"})
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	if !authz.OwnsMessage(middleware.GetUserID(c), msg) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to edit this message"})
		return
	}

	var req messageTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.messageRepo.UpdateText(c.Request.Context(), msgID, req.Text)
	if err != nil {
		h.logger.Error("failed to update message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to edit message"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": updated})
}

// Delete handles DELETE /groups/:id/messages/:mid. Author-only; likes
// go with the message.
func (h *MessageHandler) Delete(c *gin.Context) {
	group, ok := h.loadGroup(c)
	if !ok {
		return
	}

	msgID, ok := messageID(c)
	if !ok {
		return
	}

	msg, err := h.messageRepo.GetByID(c.Request.Context(), group.ID, msgID)
	if err != nil {
		h.logger.Error("failed to get message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	if !authz.OwnsMessage(middleware.GetUserID(c), msg) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to delete this message"})
		return
	}

	if err := h.messageRepo.Delete(c.Request.Context(), msgID); err != nil {
		h.logger.Error("failed to delete message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
