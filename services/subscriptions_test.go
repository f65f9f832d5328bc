package services

import (
	"context"
	"testing"

	"github.com/masroufi/sync-api/models"

	"github.com/shopspring/decimal"
)

func newSubscription(owner, name string, amount int64, dueDay int) models.Subscription {
	return models.Subscription{
		UserID: owner,
		Name:   name,
		Amount: decimal.NewFromInt(amount),
		DueDay: dueDay,
	}
}

func TestAddSubscriptionOnline(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriptionService(env.lists, env.remote, env.notifier, env.pending)

	id := svc.AddSubscription(context.Background(), newSubscription("u1", "Netflix", 15, 5))

	if IsLocalID(id) {
		t.Fatalf("online add returned %q, want a remote id", id)
	}
	cached := svc.CachedSubscriptions("u1")
	if len(cached) != 1 || cached[0].ID != id {
		t.Fatalf("cache = %+v, want one record carrying the remote id", cached)
	}
}

func TestSubscribeSubscriptionsOrdersByDueDay(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriptionService(env.lists, env.remote, env.notifier, env.pending)
	ctx := context.Background()

	svc.AddSubscription(ctx, newSubscription("u1", "Gym", 30, 20))
	svc.AddSubscription(ctx, newSubscription("u1", "Netflix", 15, 5))
	svc.AddSubscription(ctx, newSubscription("u1", "Spotify", 10, 12))

	var last []models.Subscription
	unsubscribe := svc.SubscribeSubscriptions(ctx, "u1", func(subs []models.Subscription) {
		last = subs
	})
	defer unsubscribe()

	if len(last) != 3 {
		t.Fatalf("remote snapshot has %d records, want 3", len(last))
	}
	if last[0].DueDay != 5 || last[1].DueDay != 12 || last[2].DueDay != 20 {
		t.Fatalf("due days %d/%d/%d, want ascending 5/12/20", last[0].DueDay, last[1].DueDay, last[2].DueDay)
	}
}

func TestUpdatePendingSubscriptionReplays(t *testing.T) {
	env := newTestEnv(t)
	env.remote.setOffline(true)
	svc := NewSubscriptionService(env.lists, env.remote, env.notifier, env.pending)
	ctx := context.Background()

	tempID := svc.AddSubscription(ctx, newSubscription("u1", "Netflix", 15, 5))

	updated := newSubscription("u1", "Netflix Premium", 20, 5)
	updated.ID = tempID
	svc.UpdateSubscription(ctx, updated)

	cached := svc.CachedSubscriptions("u1")
	if cached[0].Name != "Netflix Premium" || !cached[0].Amount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("cache = %+v, want the updated fields", cached[0])
	}

	env.remote.setOffline(false)
	env.pending.Replay(ctx)

	docs, err := env.remote.QueryDocuments(ctx, subscriptionsCollection, Query{})
	if err != nil {
		t.Fatalf("querying remote: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("remote has %d documents after replay, want 1", len(docs))
	}
	if docString(docs[0], "name") != "Netflix Premium" {
		t.Fatalf("remote name = %q, want the queued update applied", docString(docs[0], "name"))
	}
}

func TestDeleteSubscriptionEnqueuesOnRemoteFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriptionService(env.lists, env.remote, env.notifier, env.pending)
	ctx := context.Background()

	id := svc.AddSubscription(ctx, newSubscription("u1", "Gym", 30, 1))

	env.remote.setOffline(true)
	svc.DeleteSubscription(ctx, "u1", id)

	if got := len(svc.CachedSubscriptions("u1")); got != 0 {
		t.Fatalf("cache has %d records after delete, want 0", got)
	}
	if env.pending.Len() != 1 {
		t.Fatalf("pending queue has %d ops, want the queued delete", env.pending.Len())
	}

	env.remote.setOffline(false)
	env.pending.Replay(ctx)

	docs, err := env.remote.QueryDocuments(ctx, subscriptionsCollection, Query{})
	if err != nil {
		t.Fatalf("querying remote: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("remote has %d documents after replayed delete, want 0", len(docs))
	}
}
