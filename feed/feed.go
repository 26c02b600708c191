// Package feed provides a minimal typed publish/subscribe primitive, in the
// spirit of the reference corpus's own event.TypeMux/Subscription pairing
// (worker.go subscribes to NewTxsEvent, ChainHeadEvent, ChainSideEvent over
// plain channels) but generalized with Go generics so each subscriber gets
// its own buffered channel of a fixed event type instead of a type-switch
// over interface{}.
package feed

import "sync"

// Feed fans a sequence of values of type T out to every current subscriber.
// The zero value is ready to use.
type Feed[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

// Subscription is a handle returned by Subscribe. Unsubscribe removes the
// subscriber from the feed and closes its channel.
type Subscription struct {
	unsubscribe func()
}

// Unsubscribe detaches the subscriber. Safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Subscribe registers a new subscriber with the given channel buffer size
// and returns the channel to receive on plus a Subscription to later detach.
func (f *Feed[T]) Subscribe(buffer int) (<-chan T, Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[int]chan T)
	}
	id := f.next
	f.next++
	ch := make(chan T, buffer)
	f.subs[id] = ch

	once := sync.Once{}
	sub := Subscription{unsubscribe: func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}}
	return ch, sub
}

// Send delivers v to every current subscriber. A subscriber whose buffer is
// full is skipped for this send rather than blocking the publisher: slow
// consumers lose events instead of stalling the whole feed.
func (f *Feed[T]) Send(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- v:
		default:
		}
	}
}
