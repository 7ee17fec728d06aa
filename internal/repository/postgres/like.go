package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"groupchat/internal/models"
	"groupchat/internal/repository"
)

type LikeStore struct {
	pool *pgxpool.Pool
}

func NewLikeStore(pool *pgxpool.Pool) *LikeStore {
	return &LikeStore{pool: pool}
}

func (s *LikeStore) Create(ctx context.Context, userID uuid.UUID, messageID int64) (*models.Like, error) {
	// UNIQUE (user_id, message_id) catches the race where two like
	// requests pass the handler's pre-check at the same time.
	query := `
		INSERT INTO likes (user_id, message_id)
		VALUES ($1, $2)
		RETURNING id, user_id, message_id`

	var l models.Like
	err := s.pool.QueryRow(ctx, query, userID, messageID).Scan(&l.ID, &l.UserID, &l.MessageID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert like: %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}
	return &l, nil
}

func (s *LikeStore) GetByUserAndMessage(ctx context.Context, userID uuid.UUID, messageID int64) (*models.Like, error) {
	query := `
		SELECT id, user_id, message_id
		FROM likes
		WHERE user_id = $1 AND message_id = $2`

	var l models.Like
	err := s.pool.QueryRow(ctx, query, userID, messageID).Scan(&l.ID, &l.UserID, &l.MessageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &l, nil
}

func (s *LikeStore) Delete(ctx context.Context, userID uuid.UUID, messageID int64) (bool, error) {
	query := `
		DELETE FROM likes
		WHERE user_id = $1 AND message_id = $2`

	tag, err := s.pool.Exec(ctx, query, userID, messageID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
