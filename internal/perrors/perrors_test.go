package perrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyStatusAndRetryability(t *testing.T) {
	cases := []struct {
		code      ErrCode
		status    int
		retryable bool
	}{
		{ErrCodeInvalidRequest, http.StatusBadRequest, false},
		{ErrCodeParameterValidation, http.StatusBadRequest, false},
		{ErrCodeRateLimited, http.StatusTooManyRequests, true},
		{ErrCodeUpstreamTransient, http.StatusBadGateway, true},
		{ErrCodeUpstreamPermanent, http.StatusBadGateway, false},
		{ErrCodeUpstreamTimeout, http.StatusGatewayTimeout, true},
		{ErrCodeNoOutput, http.StatusBadGateway, true},
		{ErrCodeProjectNotFound, http.StatusNotFound, false},
		{ErrCodeSceneNotFound, http.StatusNotFound, false},
		{ErrCodeSceneImageMissing, http.StatusNotFound, false},
		{ErrCodeAssetNotFound, http.StatusNotFound, false},
	}

	for _, tc := range cases {
		t.Run(tc.code.Code, func(t *testing.T) {
			err := New(tc.code, "boom", nil)

			var perr Err
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.status, perr.HttpStatus())
			assert.Equal(t, tc.retryable, perr.Retryable)
			assert.Equal(t, tc.code.Code, perr.ErrorCode)
		})
	}
}

func TestNewErrRateLimited(t *testing.T) {
	err := NewErrRateLimited(42000, 0)

	var perr Err
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.HttpStatus())
	assert.True(t, perr.Retryable)
	assert.Equal(t, "retry after 42000ms", perr.SuggestedAction)
	require.Len(t, perr.Args, 1)
	assert.Equal(t, int64(42000), perr.Args[0]["retryAfterMs"])
}

func TestNewErrParameterValidation(t *testing.T) {
	err := NewErrParameterValidation("duration 6s is not allowed", "use 8s")

	var perr Err
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.HttpStatus())
	assert.False(t, perr.Retryable)
	assert.Equal(t, "use 8s", perr.SuggestedAction)
}

func TestWithRequestIDPreservesEverythingElse(t *testing.T) {
	base := New(ErrCodeNoOutput, "no output", nil).(Err)
	withID := base.WithRequestID("req-123")

	assert.Equal(t, "req-123", withID.RequestID)
	assert.Equal(t, base.ErrorCode, withID.ErrorCode)
	assert.Equal(t, base.Retryable, withID.Retryable)

	// The original is unchanged; With* helpers are value receivers.
	assert.Empty(t, base.RequestID)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, New(ErrCodeInvalidRequest, "x", nil).(Err).IsClientError())
	assert.True(t, New(ErrCodeRateLimited, "x", nil).(Err).IsClientError())
	assert.False(t, New(ErrCodeUpstreamTransient, "x", nil).(Err).IsClientError())
	assert.False(t, New(ErrCodeInternalServer, "x", nil).(Err).IsClientError())
}
