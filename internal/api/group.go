package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat/internal/models"
	"groupchat/internal/repository"
)

// GroupHandler serves group CRUD and search. Groups serialize with
// their full member list; there is no creator field — nothing tracks
// who created a group after the fact.
type GroupHandler struct {
	groupRepo      repository.GroupRepository
	membershipRepo repository.MembershipRepository
	logger         *zap.Logger
}

func NewGroupHandler(groupRepo repository.GroupRepository, membershipRepo repository.MembershipRepository, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type searchGroupRequest struct {
	Name string `json:"name"`
}

// withMembers fills in Members for each group.
func (h *GroupHandler) withMembers(c *gin.Context, groups []models.Group) ([]models.Group, error) {
	for i := range groups {
		members, err := h.membershipRepo.ListMembers(c.Request.Context(), groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

// List handles GET /groups.
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupRepo.List(c.Request.Context())
	if err == nil {
		groups, err = h.withMembers(c, groups)
	}
	if err != nil {
		h.logger.Error("failed to list groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Get handles GET /groups/:id.
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to get group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get group"})
		return
	}
	if group == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	group.Members, err = h.membershipRepo.ListMembers(c.Request.Context(), group.ID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

// Create handles POST /groups. Name uniqueness is a DB constraint: a
// losing racer gets the same conflict response as a plain duplicate.
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupRepo.Create(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group with this name already exists"})
			return
		}
		h.logger.Error("failed to create group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}
	group.Members = make([]models.User, 0)

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// Delete handles DELETE /groups/:id. Messages and their likes cascade
// in storage.
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	removed, err := h.groupRepo.Delete(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to delete group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete group"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

// Search handles POST /groups/search — case-insensitive substring
// match on the name. No results is an empty list, not an error.
func (h *GroupHandler) Search(c *gin.Context) {
	var req searchGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups, err := h.groupRepo.SearchByName(c.Request.Context(), req.Name)
	if err == nil {
		groups, err = h.withMembers(c, groups)
	}
	if err != nil {
		h.logger.Error("failed to search groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}
