package observability

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"decentrashop/core/events"
	"decentrashop/core/types"
)

// Emitter bridges engine events into structured logs and Prometheus
// counters. It satisfies core/events.Emitter.
type Emitter struct {
	logger *slog.Logger
}

// NewEmitter creates an emitter logging through the supplied logger. A nil
// logger falls back to slog.Default.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{logger: logger}
}

// Emit records the event type in the settlement metrics and logs the full
// attribute payload when the event carries one.
func (e *Emitter) Emit(evt events.Event) {
	if e == nil || evt == nil {
		return
	}
	eventType := evt.EventType()
	metrics := SettlementMetrics()
	metrics.RecordEvent(eventType)
	if strings.HasSuffix(eventType, ".withdrawn") {
		metrics.RecordWithdrawal()
	}

	attrs := []any{
		slog.String("type", eventType),
		slog.String("event_id", uuid.NewString()),
	}
	if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
		if payload := carrier.Event(); payload != nil {
			for key, value := range payload.Attributes {
				attrs = append(attrs, slog.String(key, value))
			}
		}
	}
	e.logger.Info("settlement event", attrs...)
}
