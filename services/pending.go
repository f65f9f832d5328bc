package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/store"
	"github.com/masroufi/sync-api/utils"
)

const pendingKey = "pending_ops"

const (
	defaultMaxPendingOps = 100
	defaultMaxAttempts   = 20
)

// PendingQueue persists remote writes that failed (typically offline)
// and replays them in order once connectivity returns. Replayed writes
// are idempotent by document id; a replayed create additionally swaps
// the local_ temporary id in the cache for the remote-assigned one and
// re-notifies, exactly like a create that succeeded first try.
type PendingQueue struct {
	mu       sync.Mutex
	local    *store.Local
	lists    *store.ListCache
	remote   Remote
	notifier *Notifier

	maxOps      int
	maxAttempts int
}

func NewPendingQueue(local *store.Local, lists *store.ListCache, remote Remote, notifier *Notifier) *PendingQueue {
	return &PendingQueue{
		local:       local,
		lists:       lists,
		remote:      remote,
		notifier:    notifier,
		maxOps:      defaultMaxPendingOps,
		maxAttempts: defaultMaxAttempts,
	}
}

// Enqueue appends op to the persisted queue. When the queue is full the
// oldest op is dropped; the optimistic cache entry it backed stays, the
// write is simply never retried.
func (q *PendingQueue) Enqueue(op models.PendingOp) {
	q.mu.Lock()
	defer q.mu.Unlock()

	op.ID = uuid.New().String()
	op.CreatedAt = time.Now()

	ops := q.loadLocked()
	if len(ops) >= q.maxOps {
		utils.SafeWarn("pending queue full, dropping oldest op %s (%s %s)",
			ops[0].ID, ops[0].Kind, ops[0].Entity)
		ops = ops[1:]
	}
	ops = append(ops, op)
	q.local.SaveLocal(pendingKey, ops)

	utils.SafeInfo("queued %s on %s for retry (doc %s)", op.Kind, op.Entity, utils.MaskID(op.DocID))
}

// CancelForDoc drops every queued op referencing docID. Used when a
// never-synced record is deleted locally: replaying its queued create
// would resurrect it remotely.
func (q *PendingQueue) CancelForDoc(docID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops := q.loadLocked()
	kept := ops[:0]
	for _, op := range ops {
		if op.DocID == docID {
			continue
		}
		kept = append(kept, op)
	}
	if len(kept) != len(ops) {
		q.local.SaveLocal(pendingKey, kept)
	}
}

// Len reports the number of queued operations.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.loadLocked())
}

// Replay attempts the queued operations in FIFO order. It stops at the
// first failure (the device is likely still offline) after bumping the
// op's attempt count; an op past its attempt budget is dropped with an
// error log rather than blocking the queue forever.
func (q *PendingQueue) Replay(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops := q.loadLocked()
	for len(ops) > 0 {
		op := ops[0]

		err := q.attempt(ctx, op)
		if err == nil {
			// attempt may have rewritten queued doc ids; reload before
			// dropping the completed op.
			ops = q.loadLocked()
			if len(ops) > 0 {
				ops = ops[1:]
			}
			q.local.SaveLocal(pendingKey, ops)
			continue
		}

		op.Attempts++
		if op.Attempts >= q.maxAttempts {
			utils.SafeError("giving up on %s %s after %d attempts: %v", op.Kind, op.Entity, op.Attempts, err)
			ops = ops[1:]
		} else {
			utils.SafeWarn("replay of %s %s failed (attempt %d): %v", op.Kind, op.Entity, op.Attempts, err)
			ops[0] = op
		}
		q.local.SaveLocal(pendingKey, ops)
		return
	}
	q.local.SaveLocal(pendingKey, ops)
}

// Run replays on a fixed interval until ctx is done.
func (q *PendingQueue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	q.Replay(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Replay(ctx)
		}
	}
}

func (q *PendingQueue) attempt(ctx context.Context, op models.PendingOp) error {
	switch op.Kind {
	case models.OpCreate:
		payload := normalizeDocTimes(op.Payload, "date", "createdAt")
		remoteID, err := q.remote.CreateDocument(ctx, op.Collection, payload)
		if err != nil {
			return err
		}
		q.reconcileCreate(op, remoteID)
		return nil

	case models.OpUpdate:
		return q.remote.UpdateDocument(ctx, op.Collection, op.DocID, normalizeDocTimes(op.Payload, "date", "createdAt"))

	case models.OpDelete:
		return q.remote.DeleteDocument(ctx, op.Collection, op.DocID)

	case models.OpIncrement:
		return q.remote.AtomicIncrement(ctx, op.Collection, op.DocID, op.Field, op.Delta)
	}
	utils.SafeError("unknown pending op kind %q, dropping", op.Kind)
	return nil
}

// reconcileCreate swaps the temp id for the remote one in the cache and
// in any still-queued op that referenced it, then notifies observers.
func (q *PendingQueue) reconcileCreate(op models.PendingOp, remoteID string) {
	if op.CacheKey != "" {
		if !q.lists.Update(op.CacheKey, "id", op.DocID, map[string]any{"id": remoteID}) {
			utils.SafeWarn("replayed create %s: cache entry %s already gone", op.Entity, utils.MaskID(op.DocID))
		}
	}

	ops := q.loadLocked()
	changed := false
	for i := range ops {
		if ops[i].DocID == op.DocID && ops[i].ID != op.ID {
			ops[i].DocID = remoteID
			changed = true
		}
	}
	if changed {
		q.local.SaveLocal(pendingKey, ops)
	}

	q.notifier.Notify(op.Entity)
	utils.LogSyncAction("replayed create", op.Entity, remoteID, "")
}

func (q *PendingQueue) loadLocked() []models.PendingOp {
	var ops []models.PendingOp
	q.local.GetLocal(pendingKey, &ops)
	return ops
}
