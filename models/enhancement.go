package models

// EnhancementKind identifies which enhancer owns a target.
type EnhancementKind string

const (
	KindFileInput EnhancementKind = "file-input"
	KindNav       EnhancementKind = "nav"
)

// PreviewStatus is the lifecycle state of one file's preview.
type PreviewStatus string

const (
	PreviewLoading  PreviewStatus = "loading"
	PreviewReady    PreviewStatus = "ready"
	PreviewFallback PreviewStatus = "fallback"
)

// FilePreviewEntry tracks one selected file's preview state. The whole set
// is discarded and regenerated whenever the file list changes; there is no
// incremental diffing.
type FilePreviewEntry struct {
	FileName    string
	GeneratedID string
	Status      PreviewStatus
	PreviewSrc  string
}

// NavigationEntry is one heading discovered in the content root. Entries
// form a tree isomorphic to the heading hierarchy.
type NavigationEntry struct {
	HeadingID string
	Text      string
	Level     int
	IsActive  bool
	Children  []*NavigationEntry
}

// Walk visits the entry and every descendant in document order.
func (e *NavigationEntry) Walk(fn func(*NavigationEntry)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}
