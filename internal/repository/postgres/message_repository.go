package postgres

import (
	"context"
	"fmt"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository реализация репозитория сообщений для PostgreSQL
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository создает новый экземпляр MessageRepository
func NewMessageRepository(pool *pgxpool.Pool) repository.MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create сохраняет новое сообщение
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `INSERT INTO messages (id, match_id, sender_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.MatchID,
		message.SenderID,
		message.Content,
		message.IsRead,
		message.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByMatch возвращает страницу сообщений пары
// Сообщения отсортированы от новых к старым
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string, limit, offset int) ([]*domain.Message, error) {
	query := `SELECT id, match_id, sender_id, content, is_read, created_at
		FROM messages
		WHERE match_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, matchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var message domain.Message
		err := rows.Scan(
			&message.ID,
			&message.MatchID,
			&message.SenderID,
			&message.Content,
			&message.IsRead,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return messages, nil
}
