package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"groupchat/internal/models"
	"groupchat/internal/repository"
)

type MembershipStore struct {
	pool *pgxpool.Pool
}

func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

func (s *MembershipStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	// The (group_id, user_id) primary key is the uniqueness invariant;
	// a second add races straight into it and comes back as
	// ErrDuplicate regardless of any pre-check the handler did.
	query := `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)`

	_, err := s.pool.Exec(ctx, query, groupID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("add member: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *MembershipStore) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MembershipStore) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		JOIN group_members gm ON gm.user_id = users.id
		WHERE gm.group_id = $1
		ORDER BY users.created_at`

	rows, err := s.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}
