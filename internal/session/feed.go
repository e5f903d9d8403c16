package session

import (
	"sync"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
)

const subscriberBuffer = 8

// feed holds the latest identity and fans every published value out to
// subscribers in publish order. A subscriber that falls behind loses its oldest
// pending values, never the latest one.
type feed struct {
	mu     sync.RWMutex
	value  *domain.Identity
	subs   map[int]chan *domain.Identity
	nextID int
}

func newFeed() *feed {
	return &feed{subs: make(map[int]chan *domain.Identity)}
}

func (f *feed) load() *domain.Identity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return clone(f.value)
}

func (f *feed) publish(v *domain.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.value = clone(v)
	for _, ch := range f.subs {
		deliver(ch, clone(v))
	}
}

// subscribe returns a channel primed with the current value
func (f *feed) subscribe() (<-chan *domain.Identity, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan *domain.Identity, subscriberBuffer)
	ch <- clone(f.value)
	f.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// deliver never blocks: a full buffer drops its oldest value to make room for v
func deliver(ch chan *domain.Identity, v *domain.Identity) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func clone(v *domain.Identity) *domain.Identity {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
