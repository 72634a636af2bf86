package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	applicantPrefix = "applicant:"
	workerPrefix    = "worker:"
	casePrefix      = "case:"
)

type Bus struct {
	rdb   *redis.Client
	log   *zap.Logger
	ctx   context.Context
	wsHub WSHub
	now   func() time.Time
}

type WSHub interface {
	Publish(channel string, message map[string]interface{})
}

// New returns a bus. A nil client keeps events in-process (hub only).
func New(rdb *redis.Client, log *zap.Logger) *Bus {
	return &Bus{
		rdb: rdb,
		log: log,
		ctx: context.Background(),
		now: time.Now,
	}
}

// SetWSHub sets the WebSocket hub for event broadcasting
func (b *Bus) SetWSHub(hub WSHub) {
	b.wsHub = hub
}

// PublishApplicant publishes an event to an applicant's channel
func (b *Bus) PublishApplicant(applicantID string, event map[string]interface{}) error {
	return b.Publish(applicantPrefix+applicantID, event)
}

// PublishWorker publishes an event to a staff member's channel
func (b *Bus) PublishWorker(workerID string, event map[string]interface{}) error {
	return b.Publish(workerPrefix+workerID, event)
}

// PublishCase publishes an event to a case's channel
func (b *Bus) PublishCase(caseID string, event map[string]interface{}) error {
	return b.Publish(casePrefix+caseID, event)
}

// Publish publishes an event to a channel
func (b *Bus) Publish(channel string, event map[string]interface{}) error {
	out := make(map[string]interface{}, len(event)+2)
	for k, v := range event {
		out[k] = v
	}
	out["channel"] = channel
	out["ts"] = b.now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(out)
	if err != nil {
		return err
	}

	if b.rdb != nil {
		if err := b.rdb.Publish(b.ctx, channel, data).Err(); err != nil {
			b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
			return err
		}
	}

	if b.wsHub != nil {
		b.wsHub.Publish(channel, out)
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.String("event", string(data)))
	return nil
}
