package postgres

import (
	"context"
	"fmt"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository реализация репозитория симпатий для PostgreSQL
type LikeRepository struct {
	pool *pgxpool.Pool
}

// NewLikeRepository создает новый экземпляр LikeRepository
func NewLikeRepository(pool *pgxpool.Pool) repository.LikeRepository {
	return &LikeRepository{pool: pool}
}

// CreateIfAbsent сохраняет новую симпатию.
// Уникальный индекс на (from_user_id, to_user_id) гарантирует
// не более одной записи на упорядоченную пару: повторная вставка
// возвращает false без ошибки и без побочных эффектов
func (r *LikeRepository) CreateIfAbsent(ctx context.Context, like *domain.Like) (bool, error) {
	query := `INSERT INTO likes (id, from_user_id, to_user_id, is_superlike, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		like.ID,
		like.FromUserID,
		like.ToUserID,
		like.IsSuperlike,
		like.CreatedAt)

	if err != nil {
		return false, fmt.Errorf("failed to create like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Exists проверяет наличие симпатии для упорядоченной пары
func (r *LikeRepository) Exists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE from_user_id = $1 AND to_user_id = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, fromUserID, toUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}

	return exists, nil
}
