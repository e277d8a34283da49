package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// collectRepo gathers inserted entries behind a mutex.
type collectRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *collectRepo) Insert(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *collectRepo) FindByType(context.Context, string, int64) ([]domain.AuditEntry, error) {
	return nil, nil
}

func (r *collectRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func TestDispatcher_RecordsThroughWorkers(t *testing.T) {
	repo := &collectRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		d.Record(domain.AuditEntry{UserID: "user-1", Message: "m", Type: domain.AuditTypeUsers})
	}

	deadline := time.After(2 * time.Second)
	for repo.count() < n {
		select {
		case <-deadline:
			t.Fatalf("only %d of %d entries persisted", repo.count(), n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	d.Wait()
}

func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := &collectRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	// Workers intentionally not started: the channel fills up and overflow
	// must be dropped instead of blocking the caller.

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Record(domain.AuditEntry{UserID: "user-1", Type: domain.AuditTypeUsers})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}
}

func TestDispatcher_ShardIsStablePerUser(t *testing.T) {
	d := NewDispatcher(4, &collectRepo{}, zerolog.Nop())

	first := d.shardIndex("user-abc")
	for i := 0; i < 10; i++ {
		if d.shardIndex("user-abc") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}
