package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/silab/attendance-system/internal/core/ports"
)

// ScanDebounce provides the scan idempotency window backed by Redis.
// The serialized successful result is stored under scan:<code> for the
// debounce TTL, so a double-observed tap replays the original outcome
// instead of re-mutating the ledger.
type ScanDebounce struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScanDebounce creates a ScanDebounce with the given replay window.
func NewScanDebounce(client *redis.Client, ttl time.Duration) *ScanDebounce {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &ScanDebounce{client: client, ttl: ttl}
}

// Lookup returns the stored result for the code, or nil when the window has
// passed (or the code was never ingested).
func (d *ScanDebounce) Lookup(ctx context.Context, rfidCode string) (*ports.ScanResult, error) {
	raw, err := d.client.Get(ctx, d.key(rfidCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("debounce lookup: %w", err)
	}

	var result ports.ScanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("debounce lookup: decode: %w", err)
	}
	return &result, nil
}

// Remember stores a successful result for the debounce window. Failed scans
// are never remembered; an immediate retry may legitimately succeed (e.g.
// after the operator flips the mode).
func (d *ScanDebounce) Remember(ctx context.Context, rfidCode string, result *ports.ScanResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("debounce remember: encode: %w", err)
	}
	return d.client.Set(ctx, d.key(rfidCode), raw, d.ttl).Err()
}

func (d *ScanDebounce) key(rfidCode string) string {
	return "scan:" + rfidCode
}
