package booking

import (
	"sync"
	"time"

	"github.com/iliyamo/matchday-seat-client/internal/session"
)

type poolKey struct {
	session string
	match   uint64
}

type pooled struct {
	ctrl    *Controller
	touched time.Time
}

// Pool keeps one Controller per (session, match) so that re-sorting across
// requests re-renders the snapshot instead of refetching it.  Entries idle
// longer than the TTL are dropped on the next access.
type Pool struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[poolKey]*pooled
	build   func(matchID uint64, sess session.Session) *Controller
	now     func() time.Time
}

// NewPool creates a pool whose controllers are made by build.
func NewPool(ttl time.Duration, build func(matchID uint64, sess session.Session) *Controller) *Pool {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Pool{ttl: ttl, entries: map[poolKey]*pooled{}, build: build, now: time.Now}
}

// Get returns the controller for sess and matchID, creating it if needed.
// The controller is rebound to sess so a fresh login is picked up.  A
// session without an id gets a controller that is not kept.
func (p *Pool) Get(sess session.Session, matchID uint64) *Controller {
	if sess.ID == "" {
		return p.build(matchID, sess)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.sweepLocked(now)

	k := poolKey{session: sess.ID, match: matchID}
	if e, ok := p.entries[k]; ok {
		e.touched = now
		e.ctrl.Bind(sess)
		return e.ctrl
	}
	c := p.build(matchID, sess)
	p.entries[k] = &pooled{ctrl: c, touched: now}
	return c
}

// Forget drops every controller of a session, used on logout.
func (p *Pool) Forget(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.entries {
		if k.session == sessionID {
			delete(p.entries, k)
		}
	}
}

// Len reports the number of pooled controllers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Pool) sweepLocked(now time.Time) {
	for k, e := range p.entries {
		if now.Sub(e.touched) > p.ttl {
			delete(p.entries, k)
		}
	}
}
