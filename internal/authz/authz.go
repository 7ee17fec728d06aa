// Package authz holds the authorization predicates. They are pure
// functions over already-loaded state — no I/O — so the caller decides
// what to fetch and the predicate only answers yes or no.
package authz

import (
	"github.com/google/uuid"

	"groupchat/internal/models"
)

// RoleAllowed reports whether the user's derived role is in the
// allowed set.
func RoleAllowed(user *models.User, allowed []string) bool {
	role := user.Role()
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// IsMemberOf reports whether userID appears in the group's member set.
// Callers enforce this before any message read or post; a failure maps
// to 401, not 403.
func IsMemberOf(userID uuid.UUID, members []models.User) bool {
	for _, m := range members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// OwnsMessage reports whether userID authored the message. Enforced
// before edit and delete.
func OwnsMessage(userID uuid.UUID, msg *models.Message) bool {
	return msg.UserID == userID
}
