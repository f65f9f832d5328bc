package services

import "sync"

// Entity names used by the notification bus and the websocket stream.
const (
	EntityTransactions  = "transactions"
	EntityGoals         = "goals"
	EntitySubscriptions = "subscriptions"
	EntityBudget        = "budget"
)

// Notifier is the in-process change bus: when a service mutates a
// local cache, it notifies here so active subscribers re-read the cache
// and re-emit. Remote snapshots don't pass through the bus (the remote
// subscription already delivers those). Callbacks carry no payload on
// purpose: every listener re-fetches the cache itself, so there is no
// stale payload to get wrong.
//
// One Notifier is built in main and injected into every service, so
// tests can run isolated instances.
type Notifier struct {
	mu        sync.Mutex
	nextToken int
	listeners map[string][]busListener
}

type busListener struct {
	token int
	fn    func()
}

func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[string][]busListener)}
}

// Subscribe registers fn for an entity and returns its unsubscribe.
// Unsubscribing one listener never disturbs the others.
func (n *Notifier) Subscribe(entity string, fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextToken++
	token := n.nextToken
	n.listeners[entity] = append(n.listeners[entity], busListener{token: token, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		list := n.listeners[entity]
		for i := range list {
			if list[i].token == token {
				n.listeners[entity] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Notify invokes every listener registered for the entity,
// synchronously, in registration order.
func (n *Notifier) Notify(entity string) {
	n.mu.Lock()
	list := make([]busListener, len(n.listeners[entity]))
	copy(list, n.listeners[entity])
	n.mu.Unlock()

	for _, l := range list {
		l.fn()
	}
}
