package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"groupchat/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Create(ctx context.Context, groupID, userID uuid.UUID, text string) (*models.Message, error) {
	query := `
		INSERT INTO messages (text, user_id, group_id, timestamp)
		VALUES ($1, $2, $3, now())
		RETURNING id, text, user_id, group_id, timestamp`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query, text, userID, groupID).Scan(
		&msg.ID,
		&msg.Text,
		&msg.UserID,
		&msg.GroupID,
		&msg.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	msg.Likes = make([]models.Like, 0)
	return &msg, nil
}

// GetByID is scoped to a group: a valid message id under the wrong
// group is not-found.
func (s *MessageStore) GetByID(ctx context.Context, groupID uuid.UUID, messageID int64) (*models.Message, error) {
	query := `
		SELECT id, text, user_id, group_id, timestamp
		FROM messages
		WHERE id = $1 AND group_id = $2`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query, messageID, groupID).Scan(
		&msg.ID,
		&msg.Text,
		&msg.UserID,
		&msg.GroupID,
		&msg.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}

	if err := s.attachLikes(ctx, []*models.Message{&msg}); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MessageStore) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT id, text, user_id, group_id, timestamp
		FROM messages
		WHERE group_id = $1
		ORDER BY timestamp DESC, id DESC`

	return s.queryMessages(ctx, query, groupID)
}

func (s *MessageStore) SearchByText(ctx context.Context, groupID uuid.UUID, search string) ([]models.Message, error) {
	query := `
		SELECT id, text, user_id, group_id, timestamp
		FROM messages
		WHERE group_id = $1 AND text ILIKE '%' || $2 || '%'
		ORDER BY timestamp DESC, id DESC`

	return s.queryMessages(ctx, query, groupID, search)
}

func (s *MessageStore) queryMessages(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.Text,
			&msg.UserID,
			&msg.GroupID,
			&msg.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Likes = make([]models.Like, 0)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	refs := make([]*models.Message, len(messages))
	for i := range messages {
		refs[i] = &messages[i]
	}
	if err := s.attachLikes(ctx, refs); err != nil {
		return nil, err
	}

	return messages, nil
}

// attachLikes populates Likes for the given messages with one query.
func (s *MessageStore) attachLikes(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]int64, len(messages))
	byID := make(map[int64]*models.Message, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
		if m.Likes == nil {
			m.Likes = make([]models.Like, 0)
		}
		byID[m.ID] = m
	}

	query := `
		SELECT id, user_id, message_id
		FROM likes
		WHERE message_id = ANY($1)
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.ID, &l.UserID, &l.MessageID); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		if m, ok := byID[l.MessageID]; ok {
			m.Likes = append(m.Likes, l)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate likes: %w", err)
	}

	return nil
}

func (s *MessageStore) UpdateText(ctx context.Context, messageID int64, text string) (*models.Message, error) {
	// Only the text moves; timestamp keeps its creation value.
	query := `
		UPDATE messages
		SET text = $2
		WHERE id = $1
		RETURNING id, text, user_id, group_id, timestamp`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query, messageID, text).Scan(
		&msg.ID,
		&msg.Text,
		&msg.UserID,
		&msg.GroupID,
		&msg.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update message: %w", err)
	}

	if err := s.attachLikes(ctx, []*models.Message{&msg}); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MessageStore) Delete(ctx context.Context, messageID int64) error {
	// Likes cascade in the schema.
	_, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
