// Package api exposes the enhancement engine over HTTP: fragment
// enhancement, relayed event application, fragment retrieval, teardown, and
// the notification WebSocket.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicui/enhance-go/config"
	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/enhance/fileinput"
	"github.com/civicui/enhance-go/enhance/inpagenav"
	"github.com/civicui/enhance-go/events"
	"github.com/civicui/enhance-go/models"
	"github.com/civicui/enhance-go/registry"
	"github.com/civicui/enhance-go/services"
)

// Handlers bundles the engine components behind the HTTP surface.
type Handlers struct {
	Registry  *registry.Registry
	FileInput *fileinput.Enhancer
	Nav       *inpagenav.Enhancer
	Processor *events.Processor
	Hub       *services.Hub
}

// NewHandlers wires the handler set.
func NewHandlers(reg *registry.Registry, fi *fileinput.Enhancer, nav *inpagenav.Enhancer, proc *events.Processor, hub *services.Hub) *Handlers {
	return &Handlers{
		Registry:  reg,
		FileInput: fi,
		Nav:       nav,
		Processor: proc,
		Hub:       hub,
	}
}

// EnhanceFileInputHandler parses the posted fragment, enhances the file
// input it contains, and returns the registered target plus the enhanced
// markup.
func (h *Handlers) EnhanceFileInputHandler(c *gin.Context) {
	var req models.EnhanceFileInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "html field is required"})
		return
	}

	if h.Registry.Count() >= config.MaxTargets {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "target capacity reached"})
		return
	}

	doc, err := dom.ParseFragment(req.HTML)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unparsable html fragment"})
		return
	}

	input := dom.QueryFirst(doc.Root, "input[type=file]")
	if input == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fragment contains no file input"})
		return
	}

	t, err := h.FileInput.Enhance(doc, input)
	switch err {
	case nil:
	case fileinput.ErrMissingContainer:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case fileinput.ErrAlreadyEnhanced:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		log.Printf("ERROR: api - file input enhancement failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enhancement failed"})
		return
	}

	c.JSON(http.StatusOK, models.EnhanceResponse{
		TargetID: t.ID,
		HTML:     h.renderTarget(t),
	})
}

// EnhanceInPageNavHandler enhances the navigation container in the posted
// fragment. A missing content root is a configured no-op: the markup comes
// back unmodified with no target registered.
func (h *Handlers) EnhanceInPageNavHandler(c *gin.Context) {
	var req models.EnhanceNavRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "html field is required"})
		return
	}

	if h.Registry.Count() >= config.MaxTargets {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "target capacity reached"})
		return
	}

	doc, err := dom.ParseFragment(req.HTML)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unparsable html fragment"})
		return
	}

	container := dom.QueryFirst(doc.Root, "."+inpagenav.ContainerClass)
	if container == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fragment contains no navigation container"})
		return
	}

	t, err := h.Nav.Enhance(doc, container)
	if err != nil {
		if err == inpagenav.ErrAlreadyEnhanced {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: api - navigation enhancement failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enhancement failed"})
		return
	}
	if t == nil {
		// Content root not mounted; nothing was generated.
		c.JSON(http.StatusOK, models.EnhanceResponse{HTML: doc.Render()})
		return
	}

	c.JSON(http.StatusOK, models.EnhanceResponse{
		TargetID: t.ID,
		HTML:     h.renderTarget(t),
	})
}

// ApplyEventsHandler applies a relayed event batch against a target.
func (h *Handlers) ApplyEventsHandler(c *gin.Context) {
	targetID := c.Param("id")

	var req models.EventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "events field is required"})
		return
	}
	for i := range req.Events {
		for j := range req.Events[i].Files {
			if len(req.Events[i].Files[j].Data) > config.MaxFileBytes {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{
					"error": fmt.Sprintf("file %q exceeds the %d byte limit", req.Events[i].Files[j].Name, config.MaxFileBytes),
				})
				return
			}
		}
	}

	res, err := h.Processor.ProcessEvents(targetID, req.Events)
	if err != nil {
		if err == events.ErrTargetNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("ERROR: api - event application failed for %s: %v", targetID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event application failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetFragmentHandler returns the target's current serialized fragment,
// cache-first, with the content digest exposed as an ETag.
func (h *Handlers) GetFragmentHandler(c *gin.Context) {
	targetID := c.Param("id")

	t, ok := h.Registry.Lookup(targetID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "enhancement target not found"})
		return
	}

	markup, digest, hit := h.Registry.Fragments.Get(targetID)
	if !hit {
		t.Mu.Lock()
		markup = t.Doc.Render()
		t.Mu.Unlock()
		digest = h.Registry.Fragments.Set(targetID, markup)
	}

	if match := c.GetHeader("If-None-Match"); match != "" && match == digest {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", digest)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

// TeardownHandler runs the target's cleanup, unregisters it, and returns
// the restored minimal markup.
func (h *Handlers) TeardownHandler(c *gin.Context) {
	targetID := c.Param("id")

	t, ok := h.Registry.Lookup(targetID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "enhancement target not found"})
		return
	}

	t.RunCleanup()
	restored := h.renderTarget(t)
	h.Registry.Remove(targetID)

	if h.Hub != nil {
		h.Hub.Notify(models.Notification{
			TargetID: targetID,
			Kind:     string(t.Kind),
			Type:     models.NotifyTeardown,
		})
	}

	c.JSON(http.StatusOK, models.EnhanceResponse{HTML: restored})
}

// HealthHandler reports process liveness and registry occupancy.
func (h *Handlers) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"targets":     h.Registry.Count(),
		"subscribers": h.Hub.ClientCount(),
		"fragments":   h.Registry.Fragments.Stats(),
	})
}

// renderTarget serializes the target's document under its lock.
func (h *Handlers) renderTarget(t *registry.EnhancementTarget) string {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	markup := t.Doc.Render()
	h.Registry.Fragments.Set(t.ID, markup)
	return markup
}
