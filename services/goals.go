package services

import (
	"context"
	"sync"
	"time"

	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/store"
	"github.com/masroufi/sync-api/utils"

	"github.com/shopspring/decimal"
)

// GoalService syncs savings goals. Same optimistic protocol as
// transactions, plus goal funding, which must go through the remote
// store's atomic increment so concurrent funding from another device
// cannot lose an update.
type GoalService struct {
	lists    *store.ListCache
	remote   Remote
	notifier *Notifier
	pending  *PendingQueue
}

func NewGoalService(lists *store.ListCache, remote Remote, notifier *Notifier, pending *PendingQueue) *GoalService {
	return &GoalService{lists: lists, remote: remote, notifier: notifier, pending: pending}
}

// AddGoal creates a goal with savedAmount 0. Returns the authoritative
// identifier at call completion (remote id on success, local_ id when
// the create is pending).
func (s *GoalService) AddGoal(ctx context.Context, g models.Goal) string {
	tempID := newLocalID()
	g.ID = tempID
	g.SavedAmount = decimal.Zero
	g.CreatedAt = time.Now()

	key := goalsKey(g.UserID)
	s.lists.Add(key, g)
	s.notifier.Notify(EntityGoals)

	remoteID, err := s.remote.CreateDocument(ctx, goalsCollection, goalDoc(g))
	if err != nil {
		utils.SafeWarn("add goal: remote create failed, keeping %s: %v", tempID, err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityGoals,
			Collection: goalsCollection,
			CacheKey:   key,
			Kind:       models.OpCreate,
			DocID:      tempID,
			Payload:    goalDoc(g),
		})
		return tempID
	}

	if !s.lists.Update(key, "id", tempID, map[string]any{"id": remoteID}) {
		utils.SafeWarn("add goal: entry %s vanished before id swap", tempID)
	}
	s.notifier.Notify(EntityGoals)
	utils.LogSyncAction("add", EntityGoals, remoteID, g.UserID)
	return remoteID
}

// SubscribeGoals follows the common protocol: cached snapshot first,
// local re-emission while the cache is still trusted, then the remote
// result set ordered by creation time descending.
func (s *GoalService) SubscribeGoals(ctx context.Context, ownerID string, callback func([]models.Goal)) func() {
	var mu sync.Mutex
	closed := false
	trustCache := true
	key := goalsKey(ownerID)

	emitCache := func() {
		var cached []models.Goal
		s.lists.Load(key, &cached)
		if cached == nil {
			cached = []models.Goal{}
		}
		callback(cached)
	}
	emitCache()

	unsubscribeBus := s.notifier.Subscribe(EntityGoals, func() {
		mu.Lock()
		emit := !closed && trustCache
		mu.Unlock()
		if emit {
			emitCache()
		}
	})

	q := Query{
		Filters:    []Filter{{Field: "userId", Op: OpEqual, Value: ownerID}},
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      maxSubscriptionResults,
	}
	cancelRemote, err := s.remote.SubscribeQuery(ctx, goalsCollection, q,
		func(docs []Doc) {
			mu.Lock()
			if closed {
				mu.Unlock()
				return
			}
			trustCache = false
			mu.Unlock()

			goals := make([]models.Goal, 0, len(docs))
			for _, d := range docs {
				goals = append(goals, goalFromDoc(d))
			}
			callback(goals)
			s.lists.Replace(key, goals)
		},
		func(err error) {
			utils.SafeWarn("goals subscription for %s: %v", utils.MaskID(ownerID), err)
		},
	)
	if err != nil {
		utils.SafeWarn("goals subscription for %s unavailable: %v", utils.MaskID(ownerID), err)
		cancelRemote = func() {}
	}

	return func() {
		mu.Lock()
		closed = true
		mu.Unlock()
		unsubscribeBus()
		cancelRemote()
	}
}

// UpdateGoal merges name/target changes into the cached record, then
// fire-and-forgets the remote merge-write.
func (s *GoalService) UpdateGoal(ctx context.Context, ownerID, id, name string, targetAmount decimal.Decimal) {
	patch := map[string]any{"name": name, "targetAmount": targetAmount}
	if !s.lists.Update(goalsKey(ownerID), "id", id, patch) {
		utils.SafeWarn("update goal: %s not in cache", utils.MaskID(id))
	}
	s.notifier.Notify(EntityGoals)

	remotePatch := Doc{"name": name, "targetAmount": targetAmount.InexactFloat64()}
	if IsLocalID(id) {
		// Create still queued; queue the update against the temp id,
		// replay rewrites it once the create lands.
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityGoals,
			Collection: goalsCollection,
			Kind:       models.OpUpdate,
			DocID:      id,
			Payload:    remotePatch,
		})
		return
	}
	if err := s.remote.UpdateDocument(ctx, goalsCollection, id, remotePatch); err != nil {
		utils.SafeWarn("update goal %s: remote failed: %v", utils.MaskID(id), err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityGoals,
			Collection: goalsCollection,
			Kind:       models.OpUpdate,
			DocID:      id,
			Payload:    remotePatch,
		})
	}
}

// UpdateGoalProgress funds a goal: the cached savedAmount moves by
// delta immediately (never below zero), the remote side gets an atomic
// increment for the same effective amount.
func (s *GoalService) UpdateGoalProgress(ctx context.Context, ownerID, id string, delta decimal.Decimal) {
	key := goalsKey(ownerID)

	var goals []models.Goal
	s.lists.Load(key, &goals)
	var current decimal.Decimal
	found := false
	for _, g := range goals {
		if g.ID == id {
			current = g.SavedAmount
			found = true
			break
		}
	}
	if !found {
		utils.SafeWarn("fund goal: %s not in cache", utils.MaskID(id))
		return
	}

	newSaved := current.Add(delta)
	if newSaved.IsNegative() {
		newSaved = decimal.Zero
	}
	effective := newSaved.Sub(current)

	if !s.lists.Update(key, "id", id, map[string]any{"savedAmount": newSaved}) {
		utils.SafeWarn("fund goal: %s raced out of the cache", utils.MaskID(id))
		return
	}
	s.notifier.Notify(EntityGoals)

	if IsLocalID(id) {
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityGoals,
			Collection: goalsCollection,
			Kind:       models.OpIncrement,
			DocID:      id,
			Field:      "savedAmount",
			Delta:      effective.InexactFloat64(),
		})
		return
	}
	if err := s.remote.AtomicIncrement(ctx, goalsCollection, id, "savedAmount", effective.InexactFloat64()); err != nil {
		utils.SafeWarn("fund goal %s: remote increment failed: %v", utils.MaskID(id), err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityGoals,
			Collection: goalsCollection,
			Kind:       models.OpIncrement,
			DocID:      id,
			Field:      "savedAmount",
			Delta:      effective.InexactFloat64(),
		})
	}
}

// DeleteGoal removes the goal locally and fire-and-forgets the remote
// delete. Deleting a never-synced goal surfaces nothing to the caller.
func (s *GoalService) DeleteGoal(ctx context.Context, ownerID, id string) {
	if !s.lists.Remove(goalsKey(ownerID), "id", id) {
		utils.SafeWarn("delete goal: %s not in cache", utils.MaskID(id))
	}
	s.notifier.Notify(EntityGoals)

	if IsLocalID(id) {
		// Never synced; drop the queued create instead of calling remote.
		s.pending.CancelForDoc(id)
		return
	}
	if err := s.remote.DeleteDocument(ctx, goalsCollection, id); err != nil {
		utils.SafeWarn("delete goal %s: remote failed: %v", utils.MaskID(id), err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityGoals,
			Collection: goalsCollection,
			Kind:       models.OpDelete,
			DocID:      id,
		})
	}
}

// CachedGoals returns the current cached snapshot for the owner.
func (s *GoalService) CachedGoals(ownerID string) []models.Goal {
	var cached []models.Goal
	s.lists.Load(goalsKey(ownerID), &cached)
	if cached == nil {
		cached = []models.Goal{}
	}
	return cached
}

func goalDoc(g models.Goal) Doc {
	return Doc{
		"name":         g.Name,
		"targetAmount": g.TargetAmount.InexactFloat64(),
		"savedAmount":  g.SavedAmount.InexactFloat64(),
		"userId":       g.UserID,
		"createdAt":    g.CreatedAt.UTC(),
	}
}

func goalFromDoc(d Doc) models.Goal {
	return models.Goal{
		ID:           docString(d, "id"),
		Name:         docString(d, "name"),
		TargetAmount: docDecimal(d, "targetAmount"),
		SavedAmount:  docDecimal(d, "savedAmount"),
		UserID:       docString(d, "userId"),
		CreatedAt:    docTime(d, "createdAt"),
	}
}
