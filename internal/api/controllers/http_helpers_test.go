package controllers

import (
	"context"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/reqctx"
)

func TestResponsesCarryRequestID(t *testing.T) {
	ctx, scope := reqctx.New(context.Background(), "")
	require.NotEmpty(t, scope.RequestID)

	t.Run("success", func(t *testing.T) {
		var reqCtx fasthttp.RequestCtx
		writeOK(&reqCtx, ctx, "Chat completed", map[string]string{"text": "hi"})

		assert.Equal(t, scope.RequestID, string(reqCtx.Response.Header.Peek("X-Request-Id")))
		assert.Equal(t, fasthttp.StatusOK, reqCtx.Response.StatusCode())
	})

	t.Run("rate limit rejection", func(t *testing.T) {
		perr := perrors.NewErrRateLimited(2000, 0).(perrors.Err).WithRequestID(scope.RequestID)

		var reqCtx fasthttp.RequestCtx
		writeError(&reqCtx, ctx, "Rate limit exceeded", perr)

		assert.Equal(t, scope.RequestID, string(reqCtx.Response.Header.Peek("X-Request-Id")))
		assert.Equal(t, fasthttp.StatusTooManyRequests, reqCtx.Response.StatusCode())

		var body struct {
			ErrorDetails struct {
				RequestID string `json:"requestId"`
			} `json:"errorDetails"`
		}
		require.NoError(t, json.Unmarshal(reqCtx.Response.Body(), &body))
		assert.Equal(t, scope.RequestID, body.ErrorDetails.RequestID)
	})

	t.Run("no scope leaves the header unset", func(t *testing.T) {
		var reqCtx fasthttp.RequestCtx
		writeOK(&reqCtx, context.Background(), "ok", nil)

		assert.Empty(t, reqCtx.Response.Header.Peek("X-Request-Id"))
	})
}
