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

// TransactionService keeps a user's transactions simultaneously in the
// local cache and the remote store: reads are cache-first, writes are
// optimistic (cache + notify before the remote call), and the remote
// merely confirms, swapping the temporary id for its own.
type TransactionService struct {
	lists    *store.ListCache
	remote   Remote
	notifier *Notifier
	pending  *PendingQueue
}

func NewTransactionService(lists *store.ListCache, remote Remote, notifier *Notifier, pending *PendingQueue) *TransactionService {
	return &TransactionService{lists: lists, remote: remote, notifier: notifier, pending: pending}
}

// AddTransaction writes the transaction optimistically and returns the
// identifier that is authoritative at call completion: the remote id
// when the create succeeded, the local_ temporary id otherwise. Remote
// failure never reaches the caller; the write is queued for replay.
func (s *TransactionService) AddTransaction(ctx context.Context, t models.Transaction) string {
	tempID := newLocalID()
	t.ID = tempID
	if t.Date.IsZero() {
		t.Date = time.Now()
	}

	key := transactionsKey(t.UserID)
	s.lists.Add(key, t)
	s.notifier.Notify(EntityTransactions)

	remoteID, err := s.remote.CreateDocument(ctx, transactionsCollection, transactionDoc(t))
	if err != nil {
		utils.SafeWarn("add transaction: remote create failed, keeping %s: %v", tempID, err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityTransactions,
			Collection: transactionsCollection,
			CacheKey:   key,
			Kind:       models.OpCreate,
			DocID:      tempID,
			Payload:    transactionDoc(t),
		})
		return tempID
	}

	// Merge against the temporary id: a concurrent local update may have
	// touched other fields of this entry in the meantime.
	if !s.lists.Update(key, "id", tempID, map[string]any{"id": remoteID}) {
		utils.SafeWarn("add transaction: entry %s vanished before id swap", tempID)
	}
	s.notifier.Notify(EntityTransactions)
	utils.LogSyncAction("add", EntityTransactions, remoteID, t.UserID)
	return remoteID
}

// SubscribeTransactions emits the cached snapshot immediately, re-emits
// on local-only mutations until the first authoritative remote snapshot
// arrives, then mirrors the remote. The returned function tears both
// registrations down; callers must invoke it.
func (s *TransactionService) SubscribeTransactions(ctx context.Context, ownerID string, callback func([]models.Transaction)) func() {
	var mu sync.Mutex
	closed := false
	trustCache := true
	key := transactionsKey(ownerID)

	emitCache := func() {
		var cached []models.Transaction
		s.lists.Load(key, &cached)
		if cached == nil {
			cached = []models.Transaction{}
		}
		callback(cached)
	}
	emitCache()

	unsubscribeBus := s.notifier.Subscribe(EntityTransactions, func() {
		mu.Lock()
		emit := !closed && trustCache
		mu.Unlock()
		if emit {
			emitCache()
		}
	})

	q := Query{
		Filters:    []Filter{{Field: "userId", Op: OpEqual, Value: ownerID}},
		OrderBy:    "date",
		Descending: true,
		Limit:      maxSubscriptionResults,
	}
	cancelRemote, err := s.remote.SubscribeQuery(ctx, transactionsCollection, q,
		func(docs []Doc) {
			mu.Lock()
			if closed {
				mu.Unlock()
				return
			}
			trustCache = false
			mu.Unlock()

			transactions := make([]models.Transaction, 0, len(docs))
			for _, d := range docs {
				transactions = append(transactions, transactionFromDoc(d))
			}
			callback(transactions)
			s.lists.Replace(key, transactions)
		},
		func(err error) {
			utils.SafeWarn("transactions subscription for %s: %v", utils.MaskID(ownerID), err)
		},
	)
	if err != nil {
		// Offline or unreachable: keep serving the cache.
		utils.SafeWarn("transactions subscription for %s unavailable: %v", utils.MaskID(ownerID), err)
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

// DeleteTransaction removes the record locally, then fire-and-forgets
// the remote delete. A never-synced (local_) record needs no remote
// call at all.
func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID, id string) {
	if !s.lists.Remove(transactionsKey(ownerID), "id", id) {
		utils.SafeWarn("delete transaction: %s not in cache", utils.MaskID(id))
	}
	s.notifier.Notify(EntityTransactions)

	if IsLocalID(id) {
		// Never synced; drop the queued create instead of calling remote.
		s.pending.CancelForDoc(id)
		return
	}
	if err := s.remote.DeleteDocument(ctx, transactionsCollection, id); err != nil {
		utils.SafeWarn("delete transaction %s: remote failed: %v", utils.MaskID(id), err)
		s.pending.Enqueue(models.PendingOp{
			Entity:     EntityTransactions,
			Collection: transactionsCollection,
			Kind:       models.OpDelete,
			DocID:      id,
		})
	}
}

// CachedTransactions returns the current cached snapshot for the owner.
func (s *TransactionService) CachedTransactions(ownerID string) []models.Transaction {
	var cached []models.Transaction
	s.lists.Load(transactionsKey(ownerID), &cached)
	if cached == nil {
		cached = []models.Transaction{}
	}
	return cached
}

// MonthlyExpenses sums the owner's expenses for the month containing
// ref, against the remote store. Untyped legacy records count as
// expenses, like the mobile app counted them.
func (s *TransactionService) MonthlyExpenses(ctx context.Context, ownerID string, ref time.Time) (decimal.Decimal, error) {
	startOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)

	docs, err := s.remote.QueryDocuments(ctx, transactionsCollection, Query{
		Filters: []Filter{
			{Field: "userId", Op: OpEqual, Value: ownerID},
			{Field: "date", Op: OpGreaterOrEqual, Value: startOfMonth},
			{Field: "date", Op: OpLessOrEqual, Value: endOfMonth},
		},
	})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, d := range docs {
		t := transactionFromDoc(d)
		if t.IsExpense() {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func transactionDoc(t models.Transaction) Doc {
	return Doc{
		"amount":      t.Amount.InexactFloat64(),
		"category":    t.Category,
		"description": t.Description,
		"date":        t.Date.UTC(),
		"userId":      t.UserID,
		"type":        t.Type,
	}
}

func transactionFromDoc(d Doc) models.Transaction {
	return models.Transaction{
		ID:          docString(d, "id"),
		Amount:      docDecimal(d, "amount"),
		Category:    docString(d, "category"),
		Description: docString(d, "description"),
		Date:        docTime(d, "date"),
		UserID:      docString(d, "userId"),
		Type:        docString(d, "type"),
	}
}
