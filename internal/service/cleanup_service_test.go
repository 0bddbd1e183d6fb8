package service

import (
	"context"
	"testing"
	"time"
)

type countingCleaner struct {
	tokens, snapshots int
	key               string
	maxAge            time.Duration
}

func (c *countingCleaner) ClearExpiredResetTokens(context.Context) (int64, error) {
	c.tokens++
	return 1, nil
}

func (c *countingCleaner) DeleteStale(_ context.Context, key string, maxAge time.Duration) (int64, error) {
	c.snapshots++
	c.key, c.maxAge = key, maxAge
	return 2, nil
}

func TestCleanupRunOnce(t *testing.T) {
	c := &countingCleaner{}
	NewCleanupService(c, c).RunOnce(context.Background())
	if c.tokens != 1 || c.snapshots != 1 {
		t.Errorf("tokens=%d snapshots=%d", c.tokens, c.snapshots)
	}
	if c.key != "hompro" || c.maxAge != 7*24*time.Hour {
		t.Errorf("key=%s maxAge=%v", c.key, c.maxAge)
	}
}

func TestCleanupStopIsIdempotent(t *testing.T) {
	c := &countingCleaner{}
	svc := NewCleanupService(c, c)
	svc.Start()
	svc.Stop()
	svc.Stop()
	if c.tokens < 1 {
		t.Error("start should run an initial cleanup")
	}
}
