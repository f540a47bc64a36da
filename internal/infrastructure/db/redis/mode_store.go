package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/silab/attendance-system/internal/core/domain"
)

const modeKey = "rfid_mode"

// modeTTL bounds how long an operator-set mode survives without renewal; an
// expired entry falls back to registration, the safe idle mode.
const modeTTL = 24 * time.Hour

// ModeStore is the single global scanner mode register, persisted in Redis so
// every request-handling worker observes the same value.
type ModeStore struct {
	client *redis.Client
}

func NewModeStore(client *redis.Client) *ModeStore {
	return &ModeStore{client: client}
}

// Get returns the current mode, defaulting to registration when the register
// has never been written or its entry expired.
func (s *ModeStore) Get(ctx context.Context) (domain.ScannerMode, error) {
	raw, err := s.client.Get(ctx, modeKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DefaultMode, nil
		}
		return "", fmt.Errorf("get mode: %w", err)
	}

	mode := domain.ScannerMode(raw)
	if !mode.IsValid() {
		// A corrupted register value must not wedge scanning.
		return domain.DefaultMode, nil
	}
	return mode, nil
}

func (s *ModeStore) Set(ctx context.Context, mode domain.ScannerMode) error {
	if err := s.client.Set(ctx, modeKey, string(mode), modeTTL).Err(); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	return nil
}
