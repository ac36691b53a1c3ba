package result

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceeded(t *testing.T) {
	s := Succeeded()
	assert.True(t, s.OK())
	assert.NoError(t, s.Err())
	assert.Empty(t, s.Error)
}

func TestFailed(t *testing.T) {
	cause := apperrors.New(apperrors.ErrUpstreamService, "API Error: quota exceeded")
	s := Failed(cause)

	assert.False(t, s.OK())
	assert.Equal(t, "API Error: quota exceeded", s.Error)
	assert.True(t, apperrors.Is(s.Err(), apperrors.ErrUpstreamService))

	var appErr *apperrors.AppError
	require.True(t, errors.As(s.Err(), &appErr))
	assert.Same(t, cause, appErr)
}

func TestFailed_NilError(t *testing.T) {
	s := Failed(nil)
	assert.False(t, s.OK())
	assert.Error(t, s.Err())
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(Failed(errors.New("boom")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(data))

	var decoded Status
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualError(t, decoded.Err(), "boom")
}

func TestFailedStage(t *testing.T) {
	cause := apperrors.New(apperrors.ErrUpstreamResponse, "failed to parse script JSON: invalid character")
	s := FailedStage(cause, apperrors.ErrScriptGeneration)

	assert.False(t, s.OK())
	assert.Equal(t, "Script generation failed: failed to parse script JSON: invalid character", s.Error)
	assert.True(t, apperrors.Is(s.Err(), apperrors.ErrScriptGeneration))
	assert.Equal(t, "failed to parse script JSON: invalid character", apperrors.GetDetails(s.Err()))

	var appErr *apperrors.AppError
	require.True(t, errors.As(s.Err(), &appErr))
	assert.ErrorIs(t, s.Err(), cause)
}
