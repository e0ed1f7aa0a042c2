package perrors

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

// ErrCode is a closed set of error classifications. Retryable tells the caller
// whether resubmitting the same request unmodified may succeed.
type ErrCode struct {
	Code      string `json:"code"`
	Status    int    `json:"status"`
	Retryable bool   `json:"retryable"`
}

var (
	ErrCodeInvalidRequest      ErrCode = ErrCode{"VALIDATION_FAILED", http.StatusBadRequest, false}
	ErrCodeParameterValidation         = ErrCode{"PARAMETER_VALIDATION_FAILED", http.StatusBadRequest, false}
	ErrCodeRateLimited                 = ErrCode{"RATE_LIMITED", http.StatusTooManyRequests, true}
	ErrCodeUpstreamTransient           = ErrCode{"UPSTREAM_TRANSIENT", http.StatusBadGateway, true}
	ErrCodeUpstreamPermanent           = ErrCode{"UPSTREAM_PERMANENT", http.StatusBadGateway, false}
	ErrCodeUpstreamTimeout             = ErrCode{"UPSTREAM_TIMEOUT", http.StatusGatewayTimeout, true}
	ErrCodeNoOutput                    = ErrCode{"NO_OUTPUT_PRODUCED", http.StatusBadGateway, true}
	ErrCodeProjectNotFound             = ErrCode{"PROJECT_NOT_FOUND", http.StatusNotFound, false}
	ErrCodeSceneNotFound               = ErrCode{"SCENE_NOT_FOUND", http.StatusNotFound, false}
	ErrCodeSceneImageMissing           = ErrCode{"SCENE_IMAGE_MISSING", http.StatusNotFound, false}
	ErrCodeAssetNotFound               = ErrCode{"ASSET_NOT_FOUND", http.StatusNotFound, false}
	ErrCodeNotFound                    = ErrCode{"NOT_FOUND", http.StatusNotFound, false}
	ErrCodeConflict                    = ErrCode{"CONFLICT", http.StatusConflict, false}
	ErrCodeInternalServer              = ErrCode{"INTERNAL_SERVER_ERROR", http.StatusInternalServerError, false}
)

// Err is the only error shape that crosses the gateway boundary.
type Err struct {
	Message         string                   `json:"-"`
	Err             string                   `json:"error"`
	Code            ErrCode                  `json:"-"`
	ErrorCode       string                   `json:"errorCode,omitempty"`
	Retryable       bool                     `json:"retryable"`
	RequestID       string                   `json:"requestId,omitempty"`
	SuggestedAction string                   `json:"suggestedAction,omitempty"`
	EntryPoint      string                   `json:"entryPoint,omitempty"`
	Stacktrace      []string                 `json:"-"`
	Args            []map[string]interface{} `json:"details,omitempty"`
}

func (e Err) Error() string {
	return e.Err
}

func (e Err) HttpStatus() int {
	return e.Code.Status
}

// IsClientError reports whether the error is a 4xx-equivalent. Client errors
// are not operational incidents and are logged at a lower level.
func (e Err) IsClientError() bool {
	return e.Code.Status >= 400 && e.Code.Status < 500
}

func (e Err) Print(ctx context.Context) {
	args := []any{
		slog.Any("error", e.Error()),
		slog.String("error_code", e.ErrorCode),
		slog.Bool("retryable", e.Retryable),
	}
	if e.RequestID != "" {
		args = append(args, slog.String("request_id", e.RequestID))
	}
	if len(e.Args) > 0 {
		for k, v := range e.Args[0] {
			args = append(args, slog.Any(k, v))
		}
	}

	if e.IsClientError() {
		slog.WarnContext(ctx, e.Message, args...)
		return
	}

	args = append(args, slog.Any("stacktrace", e.Stacktrace))
	slog.ErrorContext(ctx, e.Message, args...)
}

// WithRequestID attaches the request id so clients and operators can
// correlate logs. The id must be the one minted at admission, never a new one.
func (e Err) WithRequestID(id string) Err {
	e.RequestID = id
	return e
}

// WithEntryPoint records the gateway operation that produced the error.
func (e Err) WithEntryPoint(op string) Err {
	e.EntryPoint = op
	return e
}

// WithSuggestedAction attaches a concrete corrective value for parameter
// validation failures, e.g. "use 720p".
func (e Err) WithSuggestedAction(action string) Err {
	e.SuggestedAction = action
	return e
}

func New(code ErrCode, msg string, err error, args ...map[string]interface{}) error {
	pc := make([]uintptr, 20)
	count := runtime.Callers(1, pc)
	frames := runtime.CallersFrames(pc[:count])

	var stacktrace []string
	for frame, hasMore := frames.Next(); hasMore; frame, hasMore = frames.Next() {
		stacktrace = append(stacktrace, fmt.Sprintf("%s:%d", frame.File, frame.Line))
	}

	errString := msg
	if err != nil {
		errString = err.Error()
	}

	return Err{
		Code:       code,
		ErrorCode:  code.Code,
		Retryable:  code.Retryable,
		Message:    msg,
		Err:        errString,
		Stacktrace: stacktrace,
		Args:       args,
	}
}

func NewErrInvalidRequest(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInvalidRequest, msg, err, args...)
}

func NewErrInternalServerError(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInternalServer, msg, err, args...)
}

// NewErrRateLimited builds the fixed admission rejection. retryAfterMs is the
// time remaining until the caller's window resets.
func NewErrRateLimited(retryAfterMs int64, remaining int) error {
	e := New(ErrCodeRateLimited, "Rate limit exceeded",
		fmt.Errorf("rate limit exceeded, retry after %dms", retryAfterMs),
		map[string]interface{}{"retryAfterMs": retryAfterMs, "remaining": remaining}).(Err)
	return e.WithSuggestedAction(fmt.Sprintf("retry after %dms", retryAfterMs))
}

// NewErrParameterValidation builds a capability validation failure with a
// concrete corrective value in suggestion.
func NewErrParameterValidation(msg string, suggestion string) error {
	e := New(ErrCodeParameterValidation, msg, fmt.Errorf("%s", msg)).(Err)
	if suggestion != "" {
		e = e.WithSuggestedAction(suggestion)
	}
	return e
}
