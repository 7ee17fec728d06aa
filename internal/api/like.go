package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat/internal/middleware"
	"groupchat/internal/models"
	"groupchat/internal/repository"
)

// LikeHandler serves like/unlike on a message. Both only require that
// the group and message exist — membership is not checked here, same
// as edit/delete.
type LikeHandler struct {
	groupRepo   repository.GroupRepository
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
	logger      *zap.Logger
}

func NewLikeHandler(
	groupRepo repository.GroupRepository,
	messageRepo repository.MessageRepository,
	likeRepo repository.LikeRepository,
	logger *zap.Logger,
) *LikeHandler {
	return &LikeHandler{
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		logger:      logger,
	}
}

// loadMessage resolves :id/:mid down to the message, writing the error
// response on any failure.
func (h *LikeHandler) loadMessage(c *gin.Context) (*models.Message, bool) {
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

	msgID, err := strconv.ParseInt(c.Param("mid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return nil, false
	}

	msg, err := h.messageRepo.GetByID(c.Request.Context(), groupID, msgID)
	if err != nil {
		h.logger.Error("failed to get message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get message"})
		return nil, false
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return nil, false
	}

	return msg, true
}

// Like handles POST /groups/:id/messages/:mid/like.
//
// Authors can never like their own message, and a user can hold at
// most one like per message — the pre-check and the DB constraint both
// map to the same 400, so a race changes nothing observable.
func (h *LikeHandler) Like(c *gin.Context) {
	msg, ok := h.loadMessage(c)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if msg.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot like your own message"})
		return
	}

	existing, err := h.likeRepo.GetByUserAndMessage(c.Request.Context(), userID, msg.ID)
	if err != nil {
		h.logger.Error("failed to check like", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like message"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already liked this message"})
		return
	}

	_, err = h.likeRepo.Create(c.Request.Context(), userID, msg.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already liked this message"})
			return
		}
		h.logger.Error("failed to create like", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Liked successfully"})
}

// Unlike handles DELETE /groups/:id/messages/:mid/like.
func (h *LikeHandler) Unlike(c *gin.Context) {
	msg, ok := h.loadMessage(c)
	if !ok {
		return
	}

	removed, err := h.likeRepo.Delete(c.Request.Context(), middleware.GetUserID(c), msg.ID)
	if err != nil {
		h.logger.Error("failed to delete like", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unlike message"})
		return
	}
	if !removed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have not liked this message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unliked successfully"})
}
