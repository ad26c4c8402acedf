// Package models holds the shared data types for the enhancement engine.
package models

// Event is one DOM event relayed by the host wrapper against an enhanced
// target. Type selects which payload fields are meaningful.
type Event struct {
	Type      string               `json:"type"`
	Files     []FilePayload        `json:"files,omitempty"`
	Samples   []IntersectionSample `json:"samples,omitempty"`
	HeadingID string               `json:"headingId,omitempty"`
	OffsetTop float64              `json:"offsetTop,omitempty"`
}

// Event types accepted by the processor.
const (
	EventDragEnter    = "dragenter"
	EventDragOver     = "dragover"
	EventDragLeave    = "dragleave"
	EventDrop         = "drop"
	EventChange       = "change"
	EventClick        = "click"
	EventIntersection = "intersection"
)

// FilePayload is one file carried by a change or drop event. Data is
// base64-decoded by the JSON layer.
type FilePayload struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// IntersectionSample reports how much of a heading element is within the
// observed viewport region, as sampled host-side.
type IntersectionSample struct {
	HeadingID    string  `json:"headingId"`
	Ratio        float64 `json:"ratio"`
	Intersecting bool    `json:"intersecting"`
}

// ScrollDirective tells the host wrapper where to scroll after a
// navigation link activation. Top already has the configured offset
// subtracted.
type ScrollDirective struct {
	Top      float64 `json:"top"`
	Behavior string  `json:"behavior"`
}

// EventResult is returned from applying an event batch: the re-serialized
// fragment plus any side directives.
type EventResult struct {
	HTML   string           `json:"html"`
	Scroll *ScrollDirective `json:"scroll,omitempty"`
	Status string           `json:"status,omitempty"`
}

// EnhanceFileInputRequest is the body for the file-input enhancement
// endpoint. HTML is the minimal fragment authored by the host wrapper.
type EnhanceFileInputRequest struct {
	HTML string `json:"html" binding:"required"`
}

// EnhanceNavRequest is the body for the in-page navigation endpoint. The
// fragment must contain both the nav container and the content root it
// scans.
type EnhanceNavRequest struct {
	HTML string `json:"html" binding:"required"`
}

// EnhanceResponse returns the registered target ID and the enhanced
// fragment. TargetID is empty when enhancement was a configured no-op.
type EnhanceResponse struct {
	TargetID string `json:"targetId,omitempty"`
	HTML     string `json:"html"`
}

// EventsRequest is the body for the event application endpoint.
type EventsRequest struct {
	Events []Event `json:"events" binding:"required"`
}

// Notification is pushed to WebSocket subscribers at the same DOM mutation
// points the host wrapper may layer custom events on.
type Notification struct {
	TargetID string         `json:"targetId"`
	Kind     string         `json:"kind"`
	Type     string         `json:"type"`
	Data     map[string]any `json:"data,omitempty"`
}

// Notification types.
const (
	NotifyFilesAccepted  = "files-accepted"
	NotifyFilesRejected  = "files-rejected"
	NotifyStatusAnnounce = "status-announce"
	NotifySectionChanged = "section-changed"
	NotifyTeardown       = "teardown"
)
