package outbox

import (
	"context"
	"log/slog"
)

// LogProducer stands in for a broker in local runs: it logs each record and acknowledges it.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "outbox record", "topic", topic, "key", key, "type", headers["ce_type"], "bytes", len(payload))
	return nil
}
