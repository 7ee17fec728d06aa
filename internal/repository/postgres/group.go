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

type GroupStore struct {
	pool *pgxpool.Pool
}

func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{pool: pool}
}

func (s *GroupStore) Create(ctx context.Context, name string) (*models.Group, error) {
	query := `
		INSERT INTO groups (name)
		VALUES ($1)
		RETURNING id, name`

	var g models.Group
	err := s.pool.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert group: %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return &g, nil
}

func (s *GroupStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	query := `SELECT id, name FROM groups WHERE id = $1`

	var g models.Group
	err := s.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

func (s *GroupStore) List(ctx context.Context) ([]models.Group, error) {
	return s.queryGroups(ctx, `SELECT id, name FROM groups ORDER BY name`)
}

func (s *GroupStore) SearchByName(ctx context.Context, name string) ([]models.Group, error) {
	query := `SELECT id, name FROM groups WHERE name ILIKE '%' || $1 || '%' ORDER BY name`
	return s.queryGroups(ctx, query, name)
}

func (s *GroupStore) queryGroups(ctx context.Context, query string, args ...any) ([]models.Group, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

func (s *GroupStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	// Memberships, messages and their likes cascade in the schema.
	tag, err := s.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
