package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/prohmpiriya/ecom-storefront/internal/domain"
	"github.com/prohmpiriya/ecom-storefront/pkg/logger"
)

// Factory builds the manager of session sid
type Factory func(sid string) *Manager

// Registry keeps one Manager per browser session id. The first request for an
// id bootstraps it exactly once, even when several requests arrive together.
type Registry struct {
	factory Factory
	ttl     time.Duration
	log     *logger.Logger
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

type entry struct {
	mgr      *Manager
	lastSeen time.Time
	cancel   func()
}

// NewRegistry creates a registry evicting sessions idle longer than ttl (0 keeps them forever)
func NewRegistry(factory Factory, ttl time.Duration, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		factory: factory,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the bootstrapped manager of sid
func (r *Registry) Get(ctx context.Context, sid string) (*Manager, error) {
	if sid == "" {
		return nil, fmt.Errorf("empty session id")
	}

	if m, ok := r.touch(sid); ok {
		return m, nil
	}

	v, err, _ := r.group.Do(sid, func() (interface{}, error) {
		if m, ok := r.touch(sid); ok {
			return m, nil
		}

		m := r.factory(sid)
		// bootstrap must outlive a cancelled first request
		m.Bootstrap(context.WithoutCancel(ctx))

		r.mu.Lock()
		r.entries[sid] = &entry{mgr: m, lastSeen: r.now(), cancel: r.watch(sid, m)}
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manager), nil
}

func (r *Registry) touch(sid string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.mgr, true
}

// watch logs identity transitions of a session
func (r *Registry) watch(sid string, m *Manager) func() {
	ch, cancel := m.Subscribe()
	short := sid
	if len(short) > 8 {
		short = short[:8]
	}
	go func() {
		var last *domain.Identity
		for id := range ch {
			switch {
			case id != nil && (last == nil || last.Email != id.Email || last.Role != id.Role):
				r.log.Debug("Session identity changed", zap.String("session", short), zap.String("role", string(id.Role)))
			case id == nil && last != nil:
				r.log.Debug("Session became anonymous", zap.String("session", short))
			}
			last = id
		}
	}()
	return cancel
}

// Forget drops sid from the registry; its stored credentials are untouched
func (r *Registry) Forget(sid string) {
	r.mu.Lock()
	e, ok := r.entries[sid]
	delete(r.entries, sid)
	r.mu.Unlock()
	if ok {
		e.cancel()
	}
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep evicts sessions idle past the TTL and returns how many were removed
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var evicted []*entry
	for sid, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e)
			delete(r.entries, sid)
		}
	}
	r.mu.Unlock()

	for _, e := range evicted {
		e.cancel()
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info(fmt.Sprintf("Evicted %d idle sessions", n))
			}
		}
	}
}
