package errors_test

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "SparkMatchPlatform/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is_ComparesByCode(t *testing.T) {
	err1 := apperrors.New(apperrors.ErrNotFound, "user not found")
	err2 := apperrors.New(apperrors.ErrNotFound, "match not found")
	err3 := apperrors.New(apperrors.ErrConflict, "email taken")

	assert.True(t, stderrors.Is(err1, err2))
	assert.False(t, stderrors.Is(err1, err3))
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	wrapped := apperrors.Wrap(cause, apperrors.ErrStoreUnavailable, "redis unavailable")

	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestError_ToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   apperrors.ErrorCode
		status int
	}{
		{apperrors.ErrNotFound, http.StatusNotFound},
		{apperrors.ErrValidation, http.StatusBadRequest},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrConflict, http.StatusConflict},
		{apperrors.ErrTooManyRequests, http.StatusTooManyRequests},
		{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{apperrors.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := apperrors.New(tt.code, "test")
		assert.Equal(t, tt.status, err.ToHTTPStatus(), string(tt.code))
	}
}

func TestWriteHTTP_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()

	apperrors.WriteHTTP(recorder, apperrors.New(apperrors.ErrTooManyRequests, "rate limit exceeded"))

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "TOO_MANY_REQUESTS")
	assert.Contains(t, recorder.Body.String(), "rate limit exceeded")
}

func TestWriteHTTP_PlainErrorBecomesInternal(t *testing.T) {
	recorder := httptest.NewRecorder()

	apperrors.WriteHTTP(recorder, stderrors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
	// Внутренняя причина не утекает в ответ
	assert.NotContains(t, recorder.Body.String(), "something broke")
}

func TestFromError(t *testing.T) {
	appErr := apperrors.New(apperrors.ErrForbidden, "nope")
	assert.Equal(t, appErr, apperrors.FromError(appErr))

	converted := apperrors.FromError(stderrors.New("boom"))
	require.NotNil(t, converted)
	assert.Equal(t, apperrors.ErrInternal, converted.Code)

	assert.Nil(t, apperrors.FromError(nil))
}

func TestIsCode(t *testing.T) {
	err := apperrors.New(apperrors.ErrValidation, "bad input")

	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.False(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	assert.False(t, apperrors.IsCode(stderrors.New("plain"), apperrors.ErrValidation))
}
