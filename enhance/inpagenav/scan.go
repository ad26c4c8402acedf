package inpagenav

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/models"
)

// CollectHeadings returns the content root's headings matching the
// configured tags, in document order.
func CollectHeadings(contentRoot *html.Node, tags []string) []*html.Node {
	return dom.Scan(contentRoot, strings.Join(tags, ", "))
}

// EnsureHeadingIDs synthesizes a deterministic id for every heading that
// lacks one: slugged text, disambiguated with a counter on collision.
func EnsureHeadingIDs(headings []*html.Node) {
	used := make(map[string]bool)
	for _, h := range headings {
		if id := dom.Attr(h, "id"); id != "" {
			used[id] = true
		}
	}

	for _, h := range headings {
		if dom.Attr(h, "id") != "" {
			continue
		}
		base := dom.MakeSafeForID(dom.TextContent(h))
		id := base
		for n := 1; used[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
		}
		used[id] = true
		dom.SetAttr(h, "id", id)
	}
}

// BuildEntries mirrors the heading hierarchy into a NavigationEntry tree.
// Nesting depth follows heading depth relative to the shallowest included
// tag; a heading deeper than its predecessor by more than one level nests
// one level below its nearest actual ancestor — no skipped levels are
// synthesized.
func BuildEntries(headings []*html.Node) []*models.NavigationEntry {
	var roots []*models.NavigationEntry

	type stackItem struct {
		entry *models.NavigationEntry
		level int
	}
	var stack []stackItem

	for _, h := range headings {
		level := headingLevel(h.Data)
		entry := &models.NavigationEntry{
			HeadingID: dom.Attr(h, "id"),
			Text:      strings.TrimSpace(dom.TextContent(h)),
			Level:     level,
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1].entry
			parent.Children = append(parent.Children, entry)
		}
		stack = append(stack, stackItem{entry: entry, level: level})
	}

	return roots
}
