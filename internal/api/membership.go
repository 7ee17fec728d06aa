package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat/internal/repository"
)

// MembershipHandler serves member add/remove/list. Unlike the message
// endpoints, none of these require the caller to be a member — any
// authenticated admin/user may manage and inspect membership.
type MembershipHandler struct {
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	logger         *zap.Logger
}

func NewMembershipHandler(
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	logger *zap.Logger,
) *MembershipHandler {
	return &MembershipHandler{
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

type memberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Add handles POST /groups/:id/members.
func (h *MembershipHandler) Add(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to get group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	err = h.membershipRepo.AddMember(c.Request.Context(), groupID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this group"})
			return
		}
		h.logger.Error("failed to add member", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User added to group successfully"})
}

// List handles GET /groups/:id/members.
func (h *MembershipHandler) List(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to get group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	members, err := h.membershipRepo.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// Remove handles POST /groups/:id/remove_member.
//
// A user who exists but is not a member gets the same "User not found"
// as a user who doesn't exist at all — there is no distinct
// not-a-member response.
func (h *MembershipHandler) Remove(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to get group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	removed := false
	if user != nil {
		removed, err = h.membershipRepo.RemoveMember(c.Request.Context(), groupID, req.UserID)
		if err != nil {
			h.logger.Error("failed to remove member", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
			return
		}
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	group.Members, err = h.membershipRepo.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}
