package event

import (
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/segmentio/ksuid"
)

// Listener is notified about committed events
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to a Listener
type ListenerFunc func(Event)

// OnEvent calls f(e)
func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Subscription binds a listener to an address, until cancelled
type Subscription struct {
	id       ksuid.KSUID
	addr     model.Address
	listener Listener
	registry *Registry
}

// ID of this subscription
func (s *Subscription) ID() string { return s.id.String() }

// Address the listener is registered on
func (s *Subscription) Address() model.Address { return s.addr }

// Cancel this subscription. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	s.registry.cancel(s)
}

// Registry holds listeners keyed by address.
//
// A listener registered on an address is notified about events on this entity and
// on any entity below it. Listeners do not belong to entities: they survive the
// removal and re-creation of the entity they listen to.
//
// The registry is safe for concurrent use. Readers work on an immutable snapshot of
// the radix tree, so listeners may subscribe or cancel while being notified.
type Registry struct {
	mx   sync.Mutex
	tree *iradix.Tree
}

// NewRegistry builds an empty listener registry
func NewRegistry() *Registry {
	return &Registry{tree: iradix.New()}
}

func keyFor(addr model.Address) []byte {
	if addr.IsZero() {
		return []byte("/")
	}
	return []byte(addr.String() + "/")
}

// Subscribe registers a listener on some address
func (r *Registry) Subscribe(addr model.Address, listener Listener) *Subscription {
	sub := &Subscription{
		id:       ksuid.New(),
		addr:     addr,
		listener: listener,
		registry: r,
	}

	r.mx.Lock()
	defer r.mx.Unlock()

	key := keyFor(addr)
	var subs []*Subscription
	if v, ok := r.tree.Get(key); ok {
		subs = v.([]*Subscription)
	}
	updated := make([]*Subscription, 0, len(subs)+1)
	updated = append(updated, subs...)
	updated = append(updated, sub)
	r.tree, _, _ = r.tree.Insert(key, updated)

	return sub
}

func (r *Registry) cancel(sub *Subscription) {
	r.mx.Lock()
	defer r.mx.Unlock()

	key := keyFor(sub.addr)
	v, ok := r.tree.Get(key)
	if !ok {
		return
	}
	subs := v.([]*Subscription)
	updated := make([]*Subscription, 0, len(subs))
	for _, s := range subs {
		if s != sub {
			updated = append(updated, s)
		}
	}
	switch {
	case len(updated) == len(subs):
		return
	case len(updated) == 0:
		r.tree, _, _ = r.tree.Delete(key)
	default:
		r.tree, _, _ = r.tree.Insert(key, updated)
	}
}

// Len is the number of active subscriptions
func (r *Registry) Len() int {
	r.mx.Lock()
	tree := r.tree
	r.mx.Unlock()

	n := 0
	tree.Root().Walk(func(_ []byte, v interface{}) bool {
		n += len(v.([]*Subscription))
		return false
	})
	return n
}

func (r *Registry) snapshot() *iradix.Tree {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.tree
}

// bubble collects the subscriptions registered on addr and its ancestors, most specific first.
//
// When below is not zero, only subscriptions strictly below this address are collected.
func bubble(tree *iradix.Tree, addr, below model.Address) []*Subscription {
	floor := -1
	if !below.IsZero() {
		floor = len(keyFor(below))
	}

	var levels [][]*Subscription
	tree.Root().WalkPath(keyFor(addr), func(k []byte, v interface{}) bool {
		if len(k) > floor {
			levels = append(levels, v.([]*Subscription))
		}
		return false
	})

	var subs []*Subscription
	for i := len(levels) - 1; i >= 0; i-- {
		subs = append(subs, levels[i]...)
	}
	return subs
}

// Dispatch notifies listeners about an event.
//
// An atomic event is delivered to the listeners on the changed entity, then on each of
// its ancestors. For a transaction event, each atomic event is first delivered to the
// listeners located strictly below the transaction target, then the transaction event is
// delivered once to the listeners on the target and its ancestors.
func (r *Registry) Dispatch(e Event) {
	tree := r.snapshot()

	if tx, ok := e.(*TransactionEvent); ok {
		for _, ev := range tx.events {
			for _, sub := range bubble(tree, ev.ChangedEntity(), tx.TargetAddr) {
				sub.listener.OnEvent(ev)
			}
		}
	}

	for _, sub := range bubble(tree, e.ChangedEntity(), model.Address{}) {
		sub.listener.OnEvent(e)
	}
}
