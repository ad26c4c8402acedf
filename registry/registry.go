// Package registry is the enhancement registry and lifecycle guard: it owns
// the EnhancementTarget records, the listener-ownership records, and the
// per-target locking that serializes all tree mutation.
package registry

import (
	"crypto/rand"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/models"
)

/*
Locking hierarchy: Registry.mu above any EnhancementTarget.Mu. Registry.mu
guards the target maps only; never acquire it while holding a target lock.
All tree reads and mutations for a target happen under that target's Mu,
including asynchronous completion callbacks.
*/

// MarkerAttr is the idempotency marker written synchronously on the
// enhanced element before any asynchronous work begins, so a second
// enhancement call racing the first still observes the guard.
const MarkerAttr = "data-enhanced"

// HandlerFunc handles one relayed DOM event. Recoverable failures are
// expressed as DOM state, not errors; only configuration-level problems
// return one.
type HandlerFunc func(ev *models.Event, res *models.EventResult) error

// ListenerRecord makes event-listener lifetime explicit: handler plus
// target node plus event name, so cleanup is a deterministic iteration
// rather than reliance on closure collection.
type ListenerRecord struct {
	Event   string
	Node    *html.Node
	Handler HandlerFunc
}

// EnhancementTarget is a live element plus its enhancement state.
type EnhancementTarget struct {
	ID          string
	Kind        models.EnhancementKind
	Doc         *dom.Document
	Root        *html.Node
	Initialized bool

	// Mu serializes every read and mutation of the held tree.
	Mu sync.Mutex

	handlers     map[string][]ListenerRecord
	cleanup      func()
	cleanedUp    bool
	lastAccessed time.Time
}

// Registry tracks all live enhancement targets.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]*EnhancementTarget
	byRoot  map[*html.Node]string

	Fragments *FragmentCache
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets:   make(map[string]*EnhancementTarget),
		byRoot:    make(map[*html.Node]string),
		Fragments: NewFragmentCache(),
	}
}

// Register creates and stores a target record for root, marks the element,
// and returns the record. The marker attribute and the registry entry are
// both written before Register returns.
func (r *Registry) Register(kind models.EnhancementKind, doc *dom.Document, root *html.Node) *EnhancementTarget {
	t := &EnhancementTarget{
		ID:           ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Kind:         kind,
		Doc:          doc,
		Root:         root,
		Initialized:  true,
		handlers:     make(map[string][]ListenerRecord),
		lastAccessed: time.Now().UTC(),
	}
	dom.SetAttr(root, MarkerAttr, "true")

	r.mu.Lock()
	r.targets[t.ID] = t
	r.byRoot[root] = t.ID
	r.mu.Unlock()

	return t
}

// Lookup retrieves a target by ID.
func (r *Registry) Lookup(id string) (*EnhancementTarget, bool) {
	r.mu.RLock()
	t, ok := r.targets[id]
	r.mu.RUnlock()
	if ok {
		t.Touch()
	}
	return t, ok
}

// LookupByRoot answers the first-class "already enhanced" query by element
// identity, independent of attribute string-matching.
func (r *Registry) LookupByRoot(root *html.Node) (*EnhancementTarget, bool) {
	r.mu.RLock()
	id, ok := r.byRoot[root]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.Lookup(id)
}

// Remove drops a target from the registry maps. Cleanup is the caller's
// responsibility via Target.RunCleanup.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	if t, ok := r.targets[id]; ok {
		delete(r.byRoot, t.Root)
		delete(r.targets, id)
	}
	r.mu.Unlock()
	r.Fragments.Invalidate(id)
}

// Count returns the number of live targets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// EvictExpired removes targets idle longer than ttl, running their cleanup.
func (r *Registry) EvictExpired(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	r.mu.Lock()
	var expired []*EnhancementTarget
	for id, t := range r.targets {
		t.Mu.Lock()
		idle := t.lastAccessed.Before(cutoff)
		t.Mu.Unlock()
		if idle {
			expired = append(expired, t)
			delete(r.byRoot, t.Root)
			delete(r.targets, id)
		}
	}
	r.mu.Unlock()

	for _, t := range expired {
		t.RunCleanup()
		r.Fragments.Invalidate(t.ID)
	}
	if len(expired) > 0 {
		log.Printf("registry: evicted %d expired target(s)", len(expired))
	}
	return len(expired)
}

// StartCleanupRoutine evicts expired targets on an interval.
func StartCleanupRoutine(r *Registry, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			r.EvictExpired(ttl)
		}
	}()
}

// Touch refreshes the target's idle clock.
func (t *EnhancementTarget) Touch() {
	t.Mu.Lock()
	t.lastAccessed = time.Now().UTC()
	t.Mu.Unlock()
}

// AddListener records handler ownership for one event name on one node.
// Callers hold no lock ordering obligations; listener registration happens
// during Enhance, before the target is reachable by events.
func (t *EnhancementTarget) AddListener(event string, node *html.Node, handler HandlerFunc) {
	t.handlers[event] = append(t.handlers[event], ListenerRecord{
		Event:   event,
		Node:    node,
		Handler: handler,
	})
}

// Listeners returns the records for one event name. Caller must hold t.Mu.
func (t *EnhancementTarget) Listeners(event string) []ListenerRecord {
	return t.handlers[event]
}

// SetCleanup stores the teardown function returned to the host wrapper.
func (t *EnhancementTarget) SetCleanup(fn func()) {
	t.cleanup = fn
}

// RunCleanup detaches every listener, runs the enhancer's teardown once,
// and clears the marker attribute. Safe to call repeatedly; the second
// call's cleanup is equivalent to the first's.
func (t *EnhancementTarget) RunCleanup() {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	if t.cleanedUp {
		return
	}
	t.cleanedUp = true
	t.handlers = make(map[string][]ListenerRecord)
	if t.cleanup != nil {
		t.cleanup()
	}
	dom.RemoveAttr(t.Root, MarkerAttr)
	t.Initialized = false
}
