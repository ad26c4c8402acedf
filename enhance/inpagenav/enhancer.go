package inpagenav

import (
	"errors"
	"log"

	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/models"
	"github.com/civicui/enhance-go/registry"
)

// ErrAlreadyEnhanced is returned when the marker attribute is present on
// markup the registry has no record of.
var ErrAlreadyEnhanced = errors.New("element already carries the enhancement marker")

// Notifier receives enhancement notifications at DOM mutation points.
type Notifier interface {
	Notify(n models.Notification)
}

// Enhancer builds and drives in-page navigation enhancements.
type Enhancer struct {
	registry *registry.Registry
	notifier Notifier
}

// NewEnhancer creates a navigation enhancer. notifier may be nil.
func NewEnhancer(reg *registry.Registry, notifier Notifier) *Enhancer {
	return &Enhancer{registry: reg, notifier: notifier}
}

type state struct {
	container *html.Node
	nav       *html.Node
	links     map[string]*html.Node
	entries   []*models.NavigationEntry
	observer  *Observer
	cfg       Config
}

// Enhance scans the content root for headings, builds the nested link
// list, and registers the active-section observer. A repeated call for the
// same container is a no-op returning the previously registered target. A
// content-root selector that resolves to nothing is not an error: the
// content may simply not be mounted, so the navigation stays empty and
// nothing is registered.
func (e *Enhancer) Enhance(doc *dom.Document, container *html.Node) (*registry.EnhancementTarget, error) {
	if t, ok := e.registry.LookupByRoot(container); ok {
		return t, nil
	}
	if _, marked := dom.GetAttr(container, registry.MarkerAttr); marked {
		return nil, ErrAlreadyEnhanced
	}

	cfg := ParseConfig(container)

	contentRoot := dom.QueryFirst(doc.Root, cfg.MainContentSelector)
	if contentRoot == nil {
		log.Printf("inpagenav: content root %q not found, navigation left empty", cfg.MainContentSelector)
		return nil, nil
	}

	headings := CollectHeadings(contentRoot, cfg.HeadingElements)
	EnsureHeadingIDs(headings)
	entries := BuildEntries(headings)

	nav, links := BuildNav(cfg, entries)
	container.AppendChild(nav)

	headingIDs := make([]string, 0, len(headings))
	for _, h := range headings {
		headingIDs = append(headingIDs, dom.Attr(h, "id"))
	}

	st := &state{
		container: container,
		nav:       nav,
		links:     links,
		entries:   entries,
		observer:  NewObserver(cfg.Threshold, cfg.RootMargin, headingIDs),
		cfg:       cfg,
	}

	t := e.registry.Register(models.KindNav, doc, container)
	t.AddListener(models.EventClick, nav, e.clickHandler(st))
	t.AddListener(models.EventIntersection, container, e.intersectionHandler(t, st))
	t.SetCleanup(func() { e.teardown(st) })

	return t, nil
}

// clickHandler answers a navigation link activation with a scroll
// directive: the heading's offset minus the configured scroll offset,
// animated or instant per the smooth-scroll flag. Default navigation is
// the host's to prevent; the engine only supplies the destination.
func (e *Enhancer) clickHandler(st *state) registry.HandlerFunc {
	return func(ev *models.Event, res *models.EventResult) error {
		if _, ok := st.links[ev.HeadingID]; !ok {
			log.Printf("WARNING: inpagenav - click for unknown heading %q ignored", ev.HeadingID)
			return nil
		}
		res.Scroll = &models.ScrollDirective{
			Top:      ev.OffsetTop - float64(st.cfg.ScrollOffset),
			Behavior: st.cfg.ScrollBehavior(),
		}
		return nil
	}
}

// intersectionHandler folds samples into the observer and retargets the
// current-item class when the active section changes.
func (e *Enhancer) intersectionHandler(t *registry.EnhancementTarget, st *state) registry.HandlerFunc {
	return func(ev *models.Event, res *models.EventResult) error {
		active, changed := st.observer.Apply(ev.Samples)
		if !changed {
			return nil
		}
		SetActiveLink(st.links, st.entries, active)

		if e.notifier != nil {
			e.notifier.Notify(models.Notification{
				TargetID: t.ID,
				Kind:     string(models.KindNav),
				Type:     models.NotifySectionChanged,
				Data:     map[string]any{"headingId": active},
			})
		}
		return nil
	}
}

// teardown disconnects the observer and removes every generated node. Runs
// under the target lock via RunCleanup.
func (e *Enhancer) teardown(st *state) {
	st.observer.Disconnect()
	dom.Detach(st.nav)
	st.links = make(map[string]*html.Node)
	st.entries = nil
}
