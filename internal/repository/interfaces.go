package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"groupchat/internal/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (username, group name, membership pair, like pair).
// Concurrent requests can race past any pre-check read, so the
// constraint is the authoritative enforcement and handlers map this
// error to the corresponding conflict response.
var ErrDuplicate = errors.New("duplicate record")

// Stores return (nil, nil) when a record is absent: not-found is an
// expected outcome the handler maps to a 404, not an error.

// UserRepository handles account persistence.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string, isActive, isAdmin bool) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)

	// Update persists the full user row and refreshes updated_at.
	// Partial-update semantics (only patch fields touched) are applied
	// by the caller on a freshly loaded row before calling Update.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete reports whether a row was removed. Memberships, messages
	// and likes cascade in the schema.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// GroupRepository handles group persistence.
type GroupRepository interface {
	Create(ctx context.Context, name string) (*models.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)

	// SearchByName does a case-insensitive substring match.
	SearchByName(ctx context.Context, name string) ([]models.Group, error)

	// Delete reports whether a row was removed. Messages and their
	// likes cascade in the schema.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// MembershipRepository handles the user↔group relation.
type MembershipRepository interface {
	// AddMember returns ErrDuplicate if the user is already a member.
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error

	// RemoveMember reports whether a membership row was removed.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)

	// ListMembers returns the group's member set as full user rows,
	// in join order. Empty slice, never nil.
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error)
}

// MessageRepository handles message persistence. All lookups are
// scoped to a group: a message id from another group is not-found.
type MessageRepository interface {
	Create(ctx context.Context, groupID, userID uuid.UUID, text string) (*models.Message, error)
	GetByID(ctx context.Context, groupID uuid.UUID, messageID int64) (*models.Message, error)

	// ListByGroup returns messages newest-first (timestamp desc, id
	// desc on ties), likes populated.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Message, error)

	// SearchByText matches a case-insensitive substring, newest-first.
	SearchByText(ctx context.Context, groupID uuid.UUID, query string) ([]models.Message, error)

	// UpdateText mutates only the text; the creation timestamp is
	// immutable.
	UpdateText(ctx context.Context, messageID int64, text string) (*models.Message, error)

	Delete(ctx context.Context, messageID int64) error
}

// LikeRepository handles likes independently of the message's other
// fields.
type LikeRepository interface {
	// Create returns ErrDuplicate if the user already liked the
	// message.
	Create(ctx context.Context, userID uuid.UUID, messageID int64) (*models.Like, error)
	GetByUserAndMessage(ctx context.Context, userID uuid.UUID, messageID int64) (*models.Like, error)
	Delete(ctx context.Context, userID uuid.UUID, messageID int64) (bool, error)
}
