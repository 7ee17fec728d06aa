package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values derived from User.IsAdmin. Role is never stored — it is
// computed from the flag so the two can't drift apart.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account in the system.
//
// PasswordHash is write-only: the `json:"-"` tag keeps it out of every
// serialized response. Only the bcrypt hash is ever stored — the
// plaintext password exists transiently in the create/login request.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role maps the admin flag to a two-valued role.
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Group is a named message board. Name is unique across the system,
// enforced by a DB constraint rather than a pre-check.
//
// Members is populated by the handler when serializing a group; the
// groups table itself only stores id and name.
type Group struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Members []User    `json:"members"`
}

// Membership is the join row between users and groups. No payload
// beyond the pair; (GroupID, UserID) is the primary key.
type Membership struct {
	GroupID uuid.UUID `json:"group_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// Message is a text post inside a group.
//
// Messages use bigserial IDs rather than UUIDs: they are the
// highest-volume table, and a monotonically increasing int64 doubles
// as the tiebreaker when two messages share a timestamp.
//
// Timestamp is set once at creation and never touched by edits.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	UserID    uuid.UUID `json:"user_id"`
	GroupID   uuid.UUID `json:"group_id"`
	Timestamp time.Time `json:"timestamp"`
	Likes     []Like    `json:"likes"`
}

// Like records that a user liked a message. At most one row may exist
// per (UserID, MessageID) pair — a DB unique constraint backs this up.
type Like struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MessageID int64     `json:"message_id"`
}
