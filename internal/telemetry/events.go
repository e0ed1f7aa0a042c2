package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/scenecraft/scenecraft/internal/reqctx"
)

// Event is one generation request outcome. Emitted once at request
// completion, never mutated afterwards.
type Event struct {
	RequestID         string
	Endpoint          string
	Status            string
	LatencyMs         int64
	Model             string
	ErrorCode         string
	Retryable         bool
	PromptFingerprint string
}

// Emitter writes generation events to the structured log and, when a
// ClickHouse connection is configured, to the generation_events table.
type Emitter struct {
	enabled bool
	conn    driver.Conn
}

// NewEmitter creates an Emitter. conn may be nil; events then go to slog only.
func NewEmitter(enabled bool, conn driver.Conn) *Emitter {
	return &Emitter{enabled: enabled, conn: conn}
}

// EmitCompletion derives an Event from the request scope and emits it.
// status is "success" or "error"; errCode/retryable come from the classified
// error when status is "error".
func (e *Emitter) EmitCompletion(ctx context.Context, endpoint, status, errCode string, retryable bool) {
	scope := reqctx.FromContext(ctx)
	if scope == nil {
		return
	}

	e.Emit(ctx, Event{
		RequestID:         scope.RequestID,
		Endpoint:          endpoint,
		Status:            status,
		LatencyMs:         time.Since(scope.StartedAt).Milliseconds(),
		Model:             scope.MetaValue("model"),
		ErrorCode:         errCode,
		Retryable:         retryable,
		PromptFingerprint: scope.MetaValue("prompt_fingerprint"),
	})
}

func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if !e.enabled {
		return
	}

	slog.InfoContext(ctx, "generation event",
		slog.String("request_id", ev.RequestID),
		slog.String("endpoint", ev.Endpoint),
		slog.String("status", ev.Status),
		slog.Int64("latency_ms", ev.LatencyMs),
		slog.String("model", ev.Model),
		slog.String("error_code", ev.ErrorCode),
		slog.Bool("retryable", ev.Retryable),
		slog.String("prompt_fingerprint", ev.PromptFingerprint),
	)

	if e.conn == nil {
		return
	}

	err := e.conn.AsyncInsert(ctx, `
		INSERT INTO generation_events
			(request_id, endpoint, status, latency_ms, model, error_code, retryable, prompt_fingerprint, emitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		false,
		ev.RequestID, ev.Endpoint, ev.Status, ev.LatencyMs, ev.Model, ev.ErrorCode, ev.Retryable, ev.PromptFingerprint, time.Now(),
	)
	if err != nil {
		slog.WarnContext(ctx, "Failed to insert generation event into ClickHouse", slog.Any("error", err))
	}
}
