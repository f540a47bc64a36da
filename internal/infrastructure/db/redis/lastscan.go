package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/silab/attendance-system/internal/core/ports"
)

const lastScanKey = "last_rfid_scan"

// LastScanStore is the UI bridge holding the most recently observed raw code.
// Take consumes the value (GETDEL) so each tap auto-fills at most one form.
type LastScanStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLastScanStore(client *redis.Client, ttl time.Duration) *LastScanStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LastScanStore{client: client, ttl: ttl}
}

func (s *LastScanStore) Remember(ctx context.Context, rfidCode string) error {
	if err := s.client.Set(ctx, lastScanKey, rfidCode, s.ttl).Err(); err != nil {
		return fmt.Errorf("remember last scan: %w", err)
	}
	return nil
}

func (s *LastScanStore) Take(ctx context.Context) (*ports.LastScan, error) {
	code, err := s.client.GetDel(ctx, lastScanKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNoRecentScan
		}
		return nil, fmt.Errorf("take last scan: %w", err)
	}
	return &ports.LastScan{RFIDCode: code, Timestamp: time.Now().UTC()}, nil
}
