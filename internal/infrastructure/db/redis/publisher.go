package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/silab/attendance-system/internal/core/ports"
)

// SnapshotPublisher fans dashboard snapshots out over a Redis pub/sub
// channel. Delivery is at-least-once and unordered across subscribers, which
// is safe because every snapshot is a full replacement, never a diff.
type SnapshotPublisher struct {
	client  *redis.Client
	channel string
}

// NewSnapshotPublisher publishes on the given channel ("dashboard" by
// convention; every dashboard session subscribes to the same one).
func NewSnapshotPublisher(client *redis.Client, channel string) *SnapshotPublisher {
	if channel == "" {
		channel = "dashboard"
	}
	return &SnapshotPublisher{client: client, channel: channel}
}

func (p *SnapshotPublisher) Publish(ctx context.Context, snap *ports.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("publish snapshot: encode: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
