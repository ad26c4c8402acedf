package inpagenav

import (
	"github.com/civicui/enhance-go/models"
)

// Observer is the engine-side model of the shared intersection observer:
// one observer covers every heading, and each callback recomputes the
// active section from the latest ratios.
type Observer struct {
	threshold  float64
	rootMargin string

	order        []string
	known        map[string]bool
	ratios       map[string]float64
	intersecting map[string]bool

	activeID  string
	connected bool
}

// NewObserver creates an observer over the given headings, in document
// order.
func NewObserver(threshold float64, rootMargin string, headingIDs []string) *Observer {
	o := &Observer{
		threshold:    threshold,
		rootMargin:   rootMargin,
		order:        headingIDs,
		known:        make(map[string]bool, len(headingIDs)),
		ratios:       make(map[string]float64, len(headingIDs)),
		intersecting: make(map[string]bool, len(headingIDs)),
		connected:    true,
	}
	for _, id := range headingIDs {
		o.known[id] = true
	}
	return o
}

// Apply folds a batch of samples into the observer state and returns the
// resulting active heading plus whether it changed.
//
// Tie-break policy: among headings meeting or exceeding the threshold, the
// earliest in document order with the highest intersection ratio wins.
// When no heading satisfies the threshold the previous active heading is
// kept — clearing it would flicker to "none" during fast scrolling.
func (o *Observer) Apply(samples []models.IntersectionSample) (string, bool) {
	if !o.connected {
		return o.activeID, false
	}

	for _, s := range samples {
		if !o.known[s.HeadingID] {
			continue
		}
		o.ratios[s.HeadingID] = s.Ratio
		o.intersecting[s.HeadingID] = s.Intersecting
	}

	best := ""
	bestRatio := -1.0
	for _, id := range o.order {
		if !o.intersecting[id] {
			continue
		}
		ratio := o.ratios[id]
		if ratio < o.threshold {
			continue
		}
		// Strict > keeps the earliest of equal ratios.
		if ratio > bestRatio {
			best = id
			bestRatio = ratio
		}
	}

	if best == "" || best == o.activeID {
		return o.activeID, false
	}
	o.activeID = best
	return best, true
}

// ActiveID returns the currently active heading id, empty when none has
// ever satisfied the threshold.
func (o *Observer) ActiveID() string {
	return o.activeID
}

// Disconnect stops the observer; later samples are ignored.
func (o *Observer) Disconnect() {
	o.connected = false
}

// Connected reports whether the observer still accepts samples.
func (o *Observer) Connected() bool {
	return o.connected
}
