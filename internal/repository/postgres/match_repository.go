package postgres

import (
	"context"
	"errors"
	"fmt"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository реализация репозитория пар для PostgreSQL
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository создает новый экземпляр MatchRepository
func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &MatchRepository{pool: pool}
}

// CreateIfAbsent создает пару либо возвращает существующую.
// Уникальный индекс на (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id))
// гарантирует не более одной пары на неупорядоченную пару пользователей:
// два встречных лайка, пришедшие одновременно, создадут ровно одну запись
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, match *domain.Match) (*domain.Match, error) {
	query := `INSERT INTO matches (id, user1_id, user2_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ((LEAST(user1_id, user2_id)), (GREATEST(user1_id, user2_id))) DO NOTHING
		RETURNING id, user1_id, user2_id, is_active, created_at`

	created, err := r.scanMatch(r.pool.QueryRow(ctx, query,
		match.ID,
		match.User1ID,
		match.User2ID,
		match.IsActive,
		match.CreatedAt))

	if err == nil {
		return created, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	// Вставка не прошла из-за конфликта, читаем каноничную запись
	existingQuery := `SELECT id, user1_id, user2_id, is_active, created_at
		FROM matches
		WHERE LEAST(user1_id, user2_id) = LEAST($1, $2)
			AND GREATEST(user1_id, user2_id) = GREATEST($1, $2)`

	existing, err := r.scanMatch(r.pool.QueryRow(ctx, existingQuery, match.User1ID, match.User2ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load existing match: %w", err)
	}

	return existing, nil
}

// FindByID возвращает пару по ее ID
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*domain.Match, error) {
	query := `SELECT id, user1_id, user2_id, is_active, created_at FROM matches WHERE id = $1`

	return r.scanMatch(r.pool.QueryRow(ctx, query, id))
}

// ListActiveByUser возвращает активные пары пользователя
func (r *MatchRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Match, error) {
	query := `SELECT id, user1_id, user2_id, is_active, created_at
		FROM matches
		WHERE (user1_id = $1 OR user2_id = $1) AND is_active = TRUE
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		var match domain.Match
		err := rows.Scan(&match.ID, &match.User1ID, &match.User2ID, &match.IsActive, &match.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, &match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}

	return matches, nil
}

// scanMatch разбирает строку результата в доменную структуру
func (r *MatchRepository) scanMatch(row pgx.Row) (*domain.Match, error) {
	var match domain.Match
	err := row.Scan(&match.ID, &match.User1ID, &match.User2ID, &match.IsActive, &match.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}
