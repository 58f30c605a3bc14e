package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// mirrorFailuresKey holds one hash field per username whose Identity
// Directory account could not be created.
const mirrorFailuresKey = "identity:mirror_failures"

// MirrorLedger records users persisted locally but missing from the Identity
// Directory, so operators can reconcile them.
type MirrorLedger struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewMirrorLedger creates a MirrorLedger wrapping the given Redis client.
func NewMirrorLedger(client redis.Cmdable) *MirrorLedger {
	return &MirrorLedger{client: client, now: func() time.Time { return time.Now().UTC() }}
}

// Record stores (or overwrites) the failure for username.
func (l *MirrorLedger) Record(ctx context.Context, username string, cause error) error {
	b, err := json.Marshal(domain.MirrorFailure{
		Username: username,
		Error:    cause.Error(),
		FailedAt: l.now(),
	})
	if err != nil {
		return fmt.Errorf("mirror ledger: encode: %w", err)
	}
	if err := l.client.HSet(ctx, mirrorFailuresKey, username, b).Err(); err != nil {
		return fmt.Errorf("mirror ledger: record: %w", err)
	}
	return nil
}

// Resolve drops the entry for username. Missing entries are not an error.
func (l *MirrorLedger) Resolve(ctx context.Context, username string) error {
	if err := l.client.HDel(ctx, mirrorFailuresKey, username).Err(); err != nil {
		return fmt.Errorf("mirror ledger: resolve: %w", err)
	}
	return nil
}

// List returns all pending failures, oldest first.
func (l *MirrorLedger) List(ctx context.Context) ([]domain.MirrorFailure, error) {
	entries, err := l.client.HGetAll(ctx, mirrorFailuresKey).Result()
	if err != nil {
		return nil, fmt.Errorf("mirror ledger: list: %w", err)
	}

	out := make([]domain.MirrorFailure, 0, len(entries))
	for username, raw := range entries {
		var f domain.MirrorFailure
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			f = domain.MirrorFailure{Username: username, Error: raw}
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.Before(out[j].FailedAt) })
	return out, nil
}
