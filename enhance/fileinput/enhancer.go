package fileinput

import (
	"errors"
	"log"
	"strconv"
	"time"

	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/models"
	"github.com/civicui/enhance-go/registry"
	"github.com/civicui/enhance-go/utils/images"
)

// ErrMissingContainer is the fatal configuration error raised when the
// input has no drop-zone ancestor. The enhancer never guesses a container;
// the original markup is left untouched and usable as plain HTML.
var ErrMissingContainer = errors.New("file input has no drop-zone container ancestor")

// ErrAlreadyEnhanced is returned when the marker attribute is present on
// markup the registry has no record of (e.g. re-posted, already-enhanced
// output).
var ErrAlreadyEnhanced = errors.New("element already carries the enhancement marker")

// Notifier receives enhancement notifications at DOM mutation points.
type Notifier interface {
	Notify(n models.Notification)
}

// Enhancer builds and drives file-input enhancements.
type Enhancer struct {
	registry      *registry.Registry
	notifier      Notifier
	announceDelay time.Duration
	previewMaxPx  int
	now           func() time.Time
}

// NewEnhancer creates a file-input enhancer. notifier may be nil.
func NewEnhancer(reg *registry.Registry, notifier Notifier, announceDelay time.Duration, previewMaxPx int) *Enhancer {
	return &Enhancer{
		registry:      reg,
		notifier:      notifier,
		announceDelay: announceDelay,
		previewMaxPx:  previewMaxPx,
		now:           time.Now,
	}
}

// state is the per-target enhancement state, owned exclusively by the
// handlers registered for that target. All access happens under the
// target's lock.
type state struct {
	dropzone     *html.Node
	targetEl     *html.Node
	box          *html.Node
	instructions *html.Node
	input        *html.Node
	statusEl     *html.Node
	headingEl    *html.Node
	errorEl      *html.Node

	multiple     bool
	disabled     bool
	accept       []string
	errorMessage string
	labelText    string

	dragging      bool
	previews      []*models.FilePreviewEntry
	previewNodes  map[string]*html.Node
	announceTimer *time.Timer
}

// Enhance transforms a bare file input into the drop-zone structure and
// registers the enhancement target. Repeated calls for the same element
// return the original target; the marker attribute is written before any
// asynchronous work can begin.
func (e *Enhancer) Enhance(doc *dom.Document, input *html.Node) (*registry.EnhancementTarget, error) {
	dropzone := dom.Closest(input, "."+DropzoneClass)
	if dropzone == nil {
		log.Printf("ERROR: fileinput - missing drop-zone container, enhancement skipped")
		return nil, ErrMissingContainer
	}

	if t, ok := e.registry.LookupByRoot(dropzone); ok {
		return t, nil
	}
	if _, marked := dom.GetAttr(dropzone, registry.MarkerAttr); marked {
		return nil, ErrAlreadyEnhanced
	}

	st := &state{
		dropzone:     dropzone,
		input:        input,
		previewNodes: make(map[string]*html.Node),
	}
	_, st.multiple = dom.GetAttr(input, "multiple")
	_, st.disabled = dom.GetAttr(input, "disabled")
	if dom.Attr(input, "aria-disabled") == "true" {
		st.disabled = true
	}
	st.accept = ParseAccept(dom.Attr(input, "accept"))
	st.errorMessage = defaultErrorMessage
	if msg, ok := dom.GetAttr(input, "data-errormessage"); ok && msg != "" {
		st.errorMessage = msg
	}
	st.labelText = instructionsText(st.multiple)

	e.buildDropZone(st)

	t := e.registry.Register(models.KindFileInput, doc, dropzone)
	t.AddListener(models.EventDragEnter, st.targetEl, e.dragEnterHandler(st))
	t.AddListener(models.EventDragOver, st.targetEl, e.dragEnterHandler(st))
	t.AddListener(models.EventDragLeave, st.targetEl, e.dragLeaveHandler(st))
	t.AddListener(models.EventDrop, st.targetEl, e.dropHandler(t, st))
	t.AddListener(models.EventChange, st.input, e.changeHandler(t, st))
	t.SetCleanup(func() { e.teardown(st) })

	return t, nil
}

// buildDropZone synthesizes the target region, instructions, box, and live
// region around the original input.
func (e *Enhancer) buildDropZone(st *state) {
	dom.AddClass(st.input, InputClass)
	dom.SetAttr(st.input, "aria-label", st.labelText)

	st.targetEl = dom.NewElement("div", "class", TargetClass)
	st.dropzone.InsertBefore(st.targetEl, st.input)

	st.instructions = buildInstructions(st.multiple)
	st.box = dom.NewElement("div", "class", BoxClass)

	dom.Detach(st.input)
	st.targetEl.AppendChild(st.instructions)
	st.targetEl.AppendChild(st.box)
	st.targetEl.AppendChild(st.input)

	if st.disabled {
		// A disabled control should not announce selection state.
		dom.AddClass(st.dropzone, DisabledModifier)
		return
	}
	st.statusEl = buildStatusNode(st.multiple)
	st.dropzone.InsertBefore(st.statusEl, st.targetEl)
}

// Drag state machine: idle -> dragging -> idle. Repeated dragover events
// are idempotent no-ops once already dragging.

func (e *Enhancer) dragEnterHandler(st *state) registry.HandlerFunc {
	return func(ev *models.Event, res *models.EventResult) error {
		if st.dragging {
			return nil
		}
		st.dragging = true
		dom.AddClass(st.targetEl, DragClass)
		return nil
	}
}

func (e *Enhancer) dragLeaveHandler(st *state) registry.HandlerFunc {
	return func(ev *models.Event, res *models.EventResult) error {
		st.dragging = false
		dom.RemoveClass(st.targetEl, DragClass)
		return nil
	}
}

func (e *Enhancer) dropHandler(t *registry.EnhancementTarget, st *state) registry.HandlerFunc {
	change := e.changeHandler(t, st)
	return func(ev *models.Event, res *models.EventResult) error {
		st.dragging = false
		dom.RemoveClass(st.targetEl, DragClass)
		if len(ev.Files) == 0 {
			return nil
		}
		return change(ev, res)
	}
}

// changeHandler runs the accept-filter gate and the preview pipeline.
func (e *Enhancer) changeHandler(t *registry.EnhancementTarget, st *state) registry.HandlerFunc {
	return func(ev *models.Event, res *models.EventResult) error {
		files := ev.Files

		if len(st.accept) > 0 {
			for _, f := range files {
				mime := images.DetectMIME(f.Type, f.Data)
				if !fileAccepted(st.accept, f.Name, mime) {
					// Whole batch rejected; no partial acceptance.
					e.rejectBatch(t, st, f.Name)
					return nil
				}
			}
		}
		dom.RemoveClass(st.targetEl, InvalidFileClass)
		if st.errorEl != nil {
			dom.Detach(st.errorEl)
			st.errorEl = nil
		}

		e.removeOldPreviews(st)

		if len(files) == 0 {
			e.scheduleAnnounce(t, st, defaultStatusText(st.multiple))
			return nil
		}

		names := make([]string, 0, len(files))
		anchor := st.instructions
		for _, f := range files {
			names = append(names, f.Name)

			entry := &models.FilePreviewEntry{
				FileName:    f.Name,
				GeneratedID: dom.MakeSafeForID(f.Name) + "-" + strconv.FormatInt(e.now().Unix(), 10),
				Status:      models.PreviewLoading,
			}
			st.previews = append(st.previews, entry)

			previewEl, img := buildPreview(entry.GeneratedID, f.Name)
			dom.InsertAfter(anchor, previewEl)
			anchor = previewEl
			st.previewNodes[entry.GeneratedID] = previewEl

			// Reads are fire-and-forget; each file completes independently.
			go e.generatePreview(t, st, entry, img, f)
		}

		st.headingEl = buildHeading(len(files), st.multiple)
		st.targetEl.InsertBefore(st.headingEl, st.instructions)
		dom.AddClass(st.instructions, HiddenClass)
		dom.SetAttr(st.input, "aria-label", changeLabel(st.multiple))

		status := selectedStatusText(names)
		e.scheduleAnnounce(t, st, status)
		res.Status = status

		e.notify(models.Notification{
			TargetID: t.ID,
			Kind:     string(models.KindFileInput),
			Type:     models.NotifyFilesAccepted,
			Data:     map[string]any{"count": len(files)},
		})
		return nil
	}
}

// rejectBatch clears the selection, shows the sanitized error message, and
// marks the drop target invalid.
func (e *Enhancer) rejectBatch(t *registry.EnhancementTarget, st *state, offendingName string) {
	dom.RemoveAttr(st.input, "value")
	e.removeOldPreviews(st)

	if st.errorEl == nil {
		st.errorEl = buildErrorMessage(st.errorMessage)
		st.targetEl.InsertBefore(st.errorEl, st.instructions)
	}
	dom.AddClass(st.targetEl, InvalidFileClass)

	e.notify(models.Notification{
		TargetID: t.ID,
		Kind:     string(models.KindFileInput),
		Type:     models.NotifyFilesRejected,
		Data:     map[string]any{"file": offendingName},
	})
}

// removeOldPreviews discards every preview node unconditionally and
// restores the instructions. No preview is ever reused across batches.
func (e *Enhancer) removeOldPreviews(st *state) {
	for _, node := range st.previewNodes {
		dom.Detach(node)
	}
	st.previewNodes = make(map[string]*html.Node)
	st.previews = nil

	if st.headingEl != nil {
		dom.Detach(st.headingEl)
		st.headingEl = nil
	}
	dom.RemoveClass(st.instructions, HiddenClass)
	dom.SetAttr(st.input, "aria-label", st.labelText)
}

// generatePreview is the asynchronous read for one file. A stale
// completion (node no longer attached) is a harmless no-op.
func (e *Enhancer) generatePreview(t *registry.EnhancementTarget, st *state, entry *models.FilePreviewEntry, img *html.Node, payload models.FilePayload) {
	src, err := images.Thumbnail(payload.Data, payload.Type, e.previewMaxPx)

	t.Mu.Lock()
	defer t.Mu.Unlock()
	if !dom.Contains(st.dropzone, img) {
		return
	}

	if err != nil {
		e.applyFallback(entry, img)
	} else {
		entry.Status = models.PreviewReady
		entry.PreviewSrc = src
		dom.SetAttr(img, "src", src)
		dom.RemoveClass(img, LoadingClass)
	}
	e.registry.Fragments.Invalidate(t.ID)
}

// applyFallback swaps in the category icon. The status check is the Go
// analogue of a self-removing error listener: the fallback attaches
// exactly once.
func (e *Enhancer) applyFallback(entry *models.FilePreviewEntry, img *html.Node) {
	if entry.Status == models.PreviewFallback {
		return
	}
	entry.Status = models.PreviewFallback
	dom.AddClass(img, fallbackClass(entry.FileName))
	dom.RemoveClass(img, LoadingClass)
}

// scheduleAnnounce delays the live-region write by a fixed interval so
// assistive technology reliably picks up the content change rather than
// missing it amid near-simultaneous DOM mutation. A non-positive delay
// writes synchronously.
func (e *Enhancer) scheduleAnnounce(t *registry.EnhancementTarget, st *state, text string) {
	if st.statusEl == nil {
		return
	}
	if st.announceTimer != nil {
		st.announceTimer.Stop()
	}

	write := func() {
		if !dom.Contains(st.dropzone, st.statusEl) {
			return
		}
		dom.SetText(st.statusEl, text)
		e.registry.Fragments.Invalidate(t.ID)
		e.notify(models.Notification{
			TargetID: t.ID,
			Kind:     string(models.KindFileInput),
			Type:     models.NotifyStatusAnnounce,
			Data:     map[string]any{"text": text},
		})
	}

	if e.announceDelay <= 0 {
		write()
		return
	}
	st.announceTimer = time.AfterFunc(e.announceDelay, func() {
		t.Mu.Lock()
		defer t.Mu.Unlock()
		write()
	})
}

// teardown restores the original minimal markup. It runs under the target
// lock via RunCleanup and must not re-acquire it.
func (e *Enhancer) teardown(st *state) {
	if st.announceTimer != nil {
		st.announceTimer.Stop()
	}
	if st.statusEl != nil {
		dom.Detach(st.statusEl)
	}
	if st.errorEl != nil {
		dom.Detach(st.errorEl)
	}
	for _, node := range st.previewNodes {
		dom.Detach(node)
	}
	st.previewNodes = make(map[string]*html.Node)
	if st.headingEl != nil {
		dom.Detach(st.headingEl)
	}

	dom.Detach(st.input)
	st.dropzone.InsertBefore(st.input, st.targetEl)
	dom.Detach(st.targetEl)

	dom.RemoveClass(st.input, InputClass)
	dom.RemoveAttr(st.input, "aria-label")
	dom.RemoveClass(st.dropzone, DisabledModifier)
	dom.RemoveClass(st.dropzone, DragClass)
}

func (e *Enhancer) notify(n models.Notification) {
	if e.notifier != nil {
		e.notifier.Notify(n)
	}
}
