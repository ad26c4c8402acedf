// Package events applies relayed DOM event batches to enhancement targets.
package events

import (
	"errors"
	"log"

	"github.com/civicui/enhance-go/models"
	"github.com/civicui/enhance-go/registry"
)

// ErrTargetNotFound is returned for event batches addressed to an unknown
// or already torn-down target.
var ErrTargetNotFound = errors.New("enhancement target not found")

// Processor dispatches event batches to the listeners registered for a
// target. All handlers for a batch run under the target's lock, so a batch
// is applied atomically with respect to fragment serialization.
type Processor struct {
	registry *registry.Registry
}

// NewProcessor creates an event processor over the registry.
func NewProcessor(reg *registry.Registry) *Processor {
	return &Processor{registry: reg}
}

// ProcessEvents applies a batch in order and returns the re-serialized
// fragment plus any directives the handlers produced. Unknown event types
// are logged and skipped; handler-level recoverable failures surface as
// DOM state, not as errors.
func (p *Processor) ProcessEvents(targetID string, evs []models.Event) (*models.EventResult, error) {
	t, ok := p.registry.Lookup(targetID)
	if !ok {
		return nil, ErrTargetNotFound
	}

	res := &models.EventResult{}

	t.Mu.Lock()
	for i := range evs {
		ev := &evs[i]
		listeners := t.Listeners(ev.Type)
		if len(listeners) == 0 {
			log.Printf("WARNING: events - no listener for event type %q on target %s", ev.Type, targetID)
			continue
		}
		for _, rec := range listeners {
			if err := rec.Handler(ev, res); err != nil {
				log.Printf("ERROR: events - handler for %q on target %s: %v", ev.Type, targetID, err)
			}
		}
	}
	res.HTML = t.Doc.Render()
	// Cached under the target lock so an asynchronous preview completion
	// cannot interleave its invalidation with a stale store.
	p.registry.Fragments.Set(targetID, res.HTML)
	t.Mu.Unlock()

	return res, nil
}
