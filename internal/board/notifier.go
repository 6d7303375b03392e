package board

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/lucasmv/zapflow-backend/pkg/logger"
	"github.com/lucasmv/zapflow-backend/pkg/metrics"
	"github.com/lucasmv/zapflow-backend/pkg/redis"
)

// RedisNotifier carries board events over one Redis pub/sub channel per
// tenant, so every API instance sees writes made by its peers.
type RedisNotifier struct {
	client  *redis.Client
	logger  *logger.Logger
	metrics *metrics.StorefrontMetrics
	buffer  int
}

// NewRedisNotifier builds a notifier. The buffer bounds how many events a
// slow subscriber can lag before drops.
func NewRedisNotifier(client *redis.Client, logg *logger.Logger, m *metrics.StorefrontMetrics, buffer int) *RedisNotifier {
	if buffer <= 0 {
		buffer = 64
	}
	return &RedisNotifier{client: client, logger: logg, metrics: m, buffer: buffer}
}

// Publish serializes the event onto the tenant channel. Failures are logged
// and swallowed: losing a push never fails the write that caused it, the
// board self-heals on the next resync.
func (n *RedisNotifier) Publish(ctx context.Context, companyID uuid.UUID, event Event) error {
	if n == nil || n.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	channel := n.client.BoardChannel(companyID.String())
	if err := n.client.Publish(ctx, channel, payload); err != nil {
		if n.logger != nil {
			n.logger.Warn(n.logger.WithField(ctx, "error", err.Error()), "board event publish failed")
		}
		return nil
	}
	n.metrics.IncBoardEvent(string(event.Kind))
	return nil
}

// Subscribe opens the tenant channel and decodes events until the context
// ends or the returned cancel func runs. Undecodable payloads are skipped.
func (n *RedisNotifier) Subscribe(ctx context.Context, companyID uuid.UUID) (<-chan Event, func(), error) {
	channel := n.client.BoardChannel(companyID.String())
	sub, err := n.client.Subscribe(ctx, channel)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan Event, n.buffer)
	done := make(chan struct{})

	go func() {
		defer close(events)
		source := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-source:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					if n.logger != nil {
						n.logger.Warn(n.logger.WithField(ctx, "error", err.Error()), "dropping malformed board event")
					}
					continue
				}
				select {
				case events <- event:
				default:
					// subscriber is not draining, drop instead of blocking the pump
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return events, cancel, nil
}
