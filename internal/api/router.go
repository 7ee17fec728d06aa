package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groupchat/internal/middleware"
	"groupchat/internal/models"
	"groupchat/internal/repository"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Group      *GroupHandler
	Membership *MembershipHandler
	Message    *MessageHandler
	Like       *LikeHandler
}

// RegisterRoutes attaches the full HTTP surface to the engine.
//
// The guard chain is explicit and ordered: token validity
// (AuthMiddleware), then role + active enforcement (RequireRoles, with
// a fresh DB read). Group and message routes admit both roles; the
// /users tree is admin-only; login is public; logout needs only a
// valid token.
func RegisterRoutes(r *gin.Engine, h Handlers, jwtSecret string, userRepo repository.UserRepository, logger *zap.Logger) {
	r.POST("/login", h.Auth.Login)

	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(jwtSecret))

	authed.POST("/logout", h.Auth.Logout)

	anyRole := authed.Group("")
	anyRole.Use(middleware.RequireRoles(userRepo, logger, models.RoleAdmin, models.RoleUser))

	anyRole.GET("/groups", h.Group.List)
	anyRole.POST("/groups", h.Group.Create)
	anyRole.POST("/groups/search", h.Group.Search)
	anyRole.GET("/groups/:id", h.Group.Get)
	anyRole.DELETE("/groups/:id", h.Group.Delete)

	anyRole.POST("/groups/:id/members", h.Membership.Add)
	anyRole.GET("/groups/:id/members", h.Membership.List)
	anyRole.POST("/groups/:id/remove_member", h.Membership.Remove)

	anyRole.GET("/groups/:id/messages", h.Message.List)
	anyRole.POST("/groups/:id/messages", h.Message.Post)
	anyRole.POST("/groups/:id/messages/search", h.Message.Search)
	anyRole.GET("/groups/:id/messages/:mid", h.Message.Get)
	anyRole.PUT("/groups/:id/messages/:mid", h.Message.Edit)
	anyRole.DELETE("/groups/:id/messages/:mid", h.Message.Delete)

	anyRole.POST("/groups/:id/messages/:mid/like", h.Like.Like)
	anyRole.DELETE("/groups/:id/messages/:mid/like", h.Like.Unlike)

	adminOnly := authed.Group("")
	adminOnly.Use(middleware.RequireRoles(userRepo, logger, models.RoleAdmin))

	adminOnly.GET("/users", h.User.List)
	adminOnly.POST("/users", h.User.Create)
	adminOnly.GET("/users/:id", h.User.Get)
	adminOnly.PUT("/users/:id", h.User.Update)
	adminOnly.DELETE("/users/:id", h.User.Delete)
}
