package services

import (
	"context"
	"sync"

	"github.com/masroufi/sync-api/store"
	"github.com/masroufi/sync-api/utils"

	"github.com/shopspring/decimal"
)

// BudgetService syncs the single monthly budget figure each user keeps
// on their profile document. Unlike the list services it surfaces
// remote failures on Set: saving a setting is an explicit one-shot
// action and the caller must know to show feedback, where list
// mutations favor instant optimism.
type BudgetService struct {
	local    *store.Local
	remote   Remote
	notifier *Notifier
}

func NewBudgetService(local *store.Local, remote Remote, notifier *Notifier) *BudgetService {
	return &BudgetService{local: local, remote: remote, notifier: notifier}
}

// SetBudget updates the cache optimistically, notifies observers, then
// performs the remote merge-write and returns its error.
func (s *BudgetService) SetBudget(ctx context.Context, ownerID string, budget decimal.Decimal) error {
	s.local.SaveLocal(budgetKey(ownerID), budget)
	s.notifier.Notify(EntityBudget)

	err := s.remote.UpdateDocument(ctx, usersCollection, ownerID, Doc{"budget": budget.InexactFloat64()})
	if err != nil {
		utils.SafeWarn("set budget for %s: remote failed: %v", utils.MaskID(ownerID), err)
		return err
	}
	utils.LogSyncAction("set", EntityBudget, ownerID, ownerID)
	return nil
}

// GetBudget reads the remote profile, falling back to the cached value
// when the remote is unreachable. Absent everywhere means zero.
func (s *BudgetService) GetBudget(ctx context.Context, ownerID string) decimal.Decimal {
	doc, err := s.remote.GetDocument(ctx, usersCollection, ownerID)
	if err == nil {
		budget := docDecimal(doc, "budget")
		s.local.SaveLocal(budgetKey(ownerID), budget)
		return budget
	}
	if err != ErrNotFound {
		utils.SafeWarn("get budget for %s: remote failed, serving cache: %v", utils.MaskID(ownerID), err)
	}

	var cached decimal.Decimal
	if s.local.GetLocal(budgetKey(ownerID), &cached) {
		return cached
	}
	return decimal.Zero
}

// SubscribeBudget emits the cached value immediately, then mirrors the
// remote profile document.
func (s *BudgetService) SubscribeBudget(ctx context.Context, ownerID string, callback func(decimal.Decimal)) func() {
	var mu sync.Mutex
	closed := false
	trustCache := true
	key := budgetKey(ownerID)

	emitCache := func() {
		var cached decimal.Decimal
		s.local.GetLocal(key, &cached)
		callback(cached)
	}
	emitCache()

	unsubscribeBus := s.notifier.Subscribe(EntityBudget, func() {
		mu.Lock()
		emit := !closed && trustCache
		mu.Unlock()
		if emit {
			emitCache()
		}
	})

	q := Query{Filters: []Filter{{Field: "_id", Op: OpEqual, Value: ownerID}}, Limit: 1}
	cancelRemote, err := s.remote.SubscribeQuery(ctx, usersCollection, q,
		func(docs []Doc) {
			mu.Lock()
			if closed {
				mu.Unlock()
				return
			}
			trustCache = false
			mu.Unlock()

			budget := decimal.Zero
			if len(docs) > 0 {
				budget = docDecimal(docs[0], "budget")
			}
			callback(budget)
			s.local.SaveLocal(key, budget)
		},
		func(err error) {
			utils.SafeWarn("budget subscription for %s: %v", utils.MaskID(ownerID), err)
		},
	)
	if err != nil {
		utils.SafeWarn("budget subscription for %s unavailable: %v", utils.MaskID(ownerID), err)
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
