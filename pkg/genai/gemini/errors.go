package gemini

import (
	"fmt"
	"net/http"

	"github.com/scenecraft/scenecraft/internal/perrors"
)

// ClassifyAPIError converts a provider error into the gateway error taxonomy.
// Status >= 500 and rate-limit-equivalent statuses are retryable; everything
// else is permanent. The raw provider shape never reaches the caller.
func ClassifyAPIError(op string, model string, apiErr *APIError) error {
	msg := fmt.Sprintf("provider error during %s (model %s): %s", op, model, apiErr.Message)

	code := perrors.ErrCodeUpstreamPermanent
	if apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests {
		code = perrors.ErrCodeUpstreamTransient
	}

	e := perrors.New(code, msg, fmt.Errorf("%s (code: %d, status: %s)", apiErr.Message, apiErr.Code, apiErr.Status),
		map[string]interface{}{"provider_code": apiErr.Code, "provider_status": apiErr.Status, "model": model}).(perrors.Err)
	return e.WithEntryPoint(op)
}

// classifyHTTPFailure handles non-2xx responses whose body did not carry the
// provider error envelope.
func classifyHTTPFailure(op string, model string, statusCode int) error {
	return ClassifyAPIError(op, model, &APIError{
		Code:    statusCode,
		Message: fmt.Sprintf("provider returned HTTP %d", statusCode),
		Status:  http.StatusText(statusCode),
	})
}

// ClassifyTransport wraps network-level failures (no HTTP response at all)
// as retryable upstream errors.
func ClassifyTransport(op string, model string, err error) error {
	e := perrors.New(perrors.ErrCodeUpstreamTransient,
		fmt.Sprintf("provider unreachable during %s (model %s)", op, model), err,
		map[string]interface{}{"model": model}).(perrors.Err)
	return e.WithEntryPoint(op)
}
