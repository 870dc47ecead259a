package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/handler"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatService мок для ChatService
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) AuthorizeParticipant(ctx context.Context, matchID, userID string) (*domain.Match, error) {
	args := m.Called(ctx, matchID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockChatService) SaveMessage(ctx context.Context, matchID, senderID, content string) (*domain.Message, error) {
	args := m.Called(ctx, matchID, senderID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockChatService) GetHistory(ctx context.Context, matchID, userID string, limit, offset int) ([]*domain.Message, error) {
	args := m.Called(ctx, matchID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func newChatHandler(t *testing.T) (http.Handler, *MockChatService) {
	t.Helper()

	testLogger, err := logger.NewLogger("dev", "error", "test")
	require.NoError(t, err)

	chatService := &MockChatService{}
	h := handler.NewChatHandler(testLogger, chatService)

	// Маршрутизация через mux, иначе PathValue не заполняется
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/chat/{matchID}/messages", h.History)

	return mux, chatService
}

func TestChatHandler_History(t *testing.T) {
	mux, chatService := newChatHandler(t)

	messages := []*domain.Message{
		{ID: "msg-2", MatchID: "match-1", SenderID: "user-2", Content: "hi"},
		{ID: "msg-1", MatchID: "match-1", SenderID: "user-1", Content: "hello"},
	}
	chatService.On("GetHistory", mock.Anything, "match-1", "user-1", 20, 40).Return(messages, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/chat/match-1/messages?limit=20&offset=40", nil)
	req = withUser(req, "user-1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "msg-1")
	assert.Contains(t, rec.Body.String(), "msg-2")
}

func TestChatHandler_History_NotParticipant(t *testing.T) {
	mux, chatService := newChatHandler(t)

	chatService.On("GetHistory", mock.Anything, "match-1", "user-99", 0, 0).
		Return(nil, service.ErrNotParticipant)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/match-1/messages", nil)
	req = withUser(req, "user-99")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatHandler_History_UnknownMatch(t *testing.T) {
	mux, chatService := newChatHandler(t)

	chatService.On("GetHistory", mock.Anything, "no-such-match", "user-1", 0, 0).
		Return(nil, service.ErrMatchNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/no-such-match/messages", nil)
	req = withUser(req, "user-1")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatHandler_History_WithoutAuth(t *testing.T) {
	mux, chatService := newChatHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/match-1/messages", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	chatService.AssertNotCalled(t, "GetHistory",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
