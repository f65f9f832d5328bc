package services

import (
	"context"
	"sync"

	"github.com/masroufi/sync-api/models"
	"github.com/masroufi/sync-api/store"
	"github.com/masroufi/sync-api/utils"
)

// SubscriptionService syncs recurring subscriptions with the same
// cache-first protocol as the other collections. (The first mobile
// release kept subscriptions remote-only; they get the full cache
// treatment here so the list works offline like everything else.)
type SubscriptionService struct {
	lists    *store.ListCache
	remote   Remote
	notifier *Notifier
	pending  *PendingQueue
}

func NewSubscriptionService(lists *store.ListCache, remote Remote, notifier *Notifier, pending *PendingQueue) *SubscriptionService {
	return &SubscriptionService{lists: lists, remote: remote, notifier: notifier, pending: pending}
}

// AddSubscription writes optimistically and returns the authoritative
// identifier at call completion.
func (s *SubscriptionService) AddSubscription(ctx context.Context, sub models.Subscription) string {
	tempID := newLocalID()
	sub.ID = tempID

	key := subscriptionsKey(sub.UserID)
	s.lists.Add(key, sub)
	s.notifier.Notify(EntitySubscriptions)

	remoteID, err := s.remote.CreateDocument(ctx, subscriptionsCollection, subscriptionDoc(sub))
	if err != nil {
		utils.SafeWarn("add subscription: remote create failed, keeping %s: %v", tempID, err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntitySubscriptions,
			Collection: subscriptionsCollection,
			CacheKey:   key,
			Kind:       models.OpCreate,
			DocID:      tempID,
			Payload:    subscriptionDoc(sub),
		})
		return tempID
	}

	if !s.lists.Update(key, "id", tempID, map[string]any{"id": remoteID}) {
		utils.SafeWarn("add subscription: entry %s vanished before id swap", tempID)
	}
	s.notifier.Notify(EntitySubscriptions)
	utils.LogSyncAction("add", EntitySubscriptions, remoteID, sub.UserID)
	return remoteID
}

// SubscribeSubscriptions follows the common subscribe protocol.
func (s *SubscriptionService) SubscribeSubscriptions(ctx context.Context, ownerID string, callback func([]models.Subscription)) func() {
	var mu sync.Mutex
	closed := false
	trustCache := true
	key := subscriptionsKey(ownerID)

	emitCache := func() {
		var cached []models.Subscription
		s.lists.Load(key, &cached)
		if cached == nil {
			cached = []models.Subscription{}
		}
		callback(cached)
	}
	emitCache()

	unsubscribeBus := s.notifier.Subscribe(EntitySubscriptions, func() {
		mu.Lock()
		emit := !closed && trustCache
		mu.Unlock()
		if emit {
			emitCache()
		}
	})

	q := Query{
		Filters: []Filter{{Field: "userId", Op: OpEqual, Value: ownerID}},
		OrderBy: "dueDay",
		Limit:   maxSubscriptionResults,
	}
	cancelRemote, err := s.remote.SubscribeQuery(ctx, subscriptionsCollection, q,
		func(docs []Doc) {
			mu.Lock()
			if closed {
				mu.Unlock()
				return
			}
			trustCache = false
			mu.Unlock()

			subs := make([]models.Subscription, 0, len(docs))
			for _, d := range docs {
				subs = append(subs, subscriptionFromDoc(d))
			}
			callback(subs)
			s.lists.Replace(key, subs)
		},
		func(err error) {
			utils.SafeWarn("subscriptions subscription for %s: %v", utils.MaskID(ownerID), err)
		},
	)
	if err != nil {
		utils.SafeWarn("subscriptions subscription for %s unavailable: %v", utils.MaskID(ownerID), err)
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

// UpdateSubscription merges the new fields into the cached record,
// then fire-and-forgets a remote merge-write.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, sub models.Subscription) {
	if sub.ID == "" {
		return
	}
	patch := map[string]any{
		"name":   sub.Name,
		"amount": sub.Amount,
		"dueDay": sub.DueDay,
		"icon":   sub.Icon,
	}
	if !s.lists.Update(subscriptionsKey(sub.UserID), "id", sub.ID, patch) {
		utils.SafeWarn("update subscription: %s not in cache", utils.MaskID(sub.ID))
	}
	s.notifier.Notify(EntitySubscriptions)

	remotePatch := subscriptionDoc(sub)
	if IsLocalID(sub.ID) {
		// Create still queued; queue the update against the temp id,
		// replay rewrites it once the create lands.
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntitySubscriptions,
			Collection: subscriptionsCollection,
			Kind:       models.OpUpdate,
			DocID:      sub.ID,
			Payload:    remotePatch,
		})
		return
	}
	if err := s.remote.UpdateDocument(ctx, subscriptionsCollection, sub.ID, remotePatch); err != nil {
		utils.SafeWarn("update subscription %s: remote failed: %v", utils.MaskID(sub.ID), err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntitySubscriptions,
			Collection: subscriptionsCollection,
			Kind:       models.OpUpdate,
			DocID:      sub.ID,
			Payload:    remotePatch,
		})
	}
}

// DeleteSubscription removes locally and fire-and-forgets the remote
// delete.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, ownerID, id string) {
	if !s.lists.Remove(subscriptionsKey(ownerID), "id", id) {
		utils.SafeWarn("delete subscription: %s not in cache", utils.MaskID(id))
	}
	s.notifier.Notify(EntitySubscriptions)

	if IsLocalID(id) {
		// Never synced; drop the queued create instead of calling remote.
		s.pending.CancelForDoc(id)
		return
	}
	if err := s.remote.DeleteDocument(ctx, subscriptionsCollection, id); err != nil {
		utils.SafeWarn("delete subscription %s: remote failed: %v", utils.MaskID(id), err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntitySubscriptions,
			Collection: subscriptionsCollection,
			Kind:       models.OpDelete,
			DocID:      id,
		})
	}
}

// CachedSubscriptions returns the current cached snapshot for the owner.
func (s *SubscriptionService) CachedSubscriptions(ownerID string) []models.Subscription {
	var cached []models.Subscription
	s.lists.Load(subscriptionsKey(ownerID), &cached)
	if cached == nil {
		cached = []models.Subscription{}
	}
	return cached
}

func subscriptionDoc(sub models.Subscription) Doc {
	return Doc{
		"userId": sub.UserID,
		"name":   sub.Name,
		"amount": sub.Amount.InexactFloat64(),
		"dueDay": sub.DueDay,
		"icon":   sub.Icon,
	}
}

func subscriptionFromDoc(d Doc) models.Subscription {
	return models.Subscription{
		ID:     docString(d, "id"),
		UserID: docString(d, "userId"),
		Name:   docString(d, "name"),
		Amount: docDecimal(d, "amount"),
		DueDay: docInt(d, "dueDay"),
		Icon:   docString(d, "icon"),
	}
}
