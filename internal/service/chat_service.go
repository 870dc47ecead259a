package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"SparkMatchPlatform/pkg/config"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
	"github.com/google/uuid"
)

var (
	// ErrMatchNotFound пара не существует или неактивна
	ErrMatchNotFound = apperrors.New(apperrors.ErrNotFound, "match not found")
	// ErrNotParticipant пользователь не участник пары
	ErrNotParticipant = apperrors.New(apperrors.ErrForbidden, "not a participant of this match")
	// ErrEmptyMessage сообщение пустое
	ErrEmptyMessage = apperrors.New(apperrors.ErrValidation, "message content is empty")
	// ErrMessageTooLong сообщение превышает допустимую длину
	ErrMessageTooLong = apperrors.New(apperrors.ErrValidation, "message content is too long")
)

// ChatService интерфейс для сервиса чата
type ChatService interface {
	AuthorizeParticipant(ctx context.Context, matchID, userID string) (*domain.Match, error)
	SaveMessage(ctx context.Context, matchID, senderID, content string) (*domain.Message, error)
	GetHistory(ctx context.Context, matchID, userID string, limit, offset int) ([]*domain.Message, error)
}

// chatService реализация ChatService
type chatService struct {
	matchRepository   repository.MatchRepository
	messageRepository repository.MessageRepository
	cfg               *config.ChatConfig
	log               logger.Logger
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(
	matchRepository repository.MatchRepository,
	messageRepository repository.MessageRepository,
	cfg *config.ChatConfig,
	log logger.Logger,
) ChatService {
	return &chatService{
		matchRepository:   matchRepository,
		messageRepository: messageRepository,
		cfg:               cfg,
		log:               log,
	}
}

// AuthorizeParticipant проверяет, что пара существует, активна
// и пользователь является ее участником
func (s *chatService) AuthorizeParticipant(ctx context.Context, matchID, userID string) (*domain.Match, error) {
	match, err := s.matchRepository.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match: %w", err)
	}

	if !match.IsActive {
		return nil, ErrMatchNotFound
	}

	if !match.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	return match, nil
}

// SaveMessage сохраняет сообщение в истории пары.
// Длина проверяется в символах, не в байтах
func (s *chatService) SaveMessage(ctx context.Context, matchID, senderID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > s.cfg.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	message := &domain.Message{
		ID:        uuid.New().String(),
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messageRepository.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return message, nil
}

// GetHistory возвращает страницу истории сообщений пары,
// новые сообщения первыми. Доступ только участникам
func (s *chatService) GetHistory(ctx context.Context, matchID, userID string, limit, offset int) ([]*domain.Message, error) {
	if _, err := s.AuthorizeParticipant(ctx, matchID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.cfg.HistoryPageSize {
		limit = s.cfg.HistoryPageSize
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.messageRepository.ListByMatch(ctx, matchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load message history: %w", err)
	}

	return messages, nil
}
