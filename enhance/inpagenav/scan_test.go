package inpagenav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/models"
)

func headingsFor(t *testing.T, markup string, tags []string) []*models.NavigationEntry {
	t.Helper()
	doc, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	headings := CollectHeadings(doc.Root, tags)
	EnsureHeadingIDs(headings)
	return BuildEntries(headings)
}

func TestBuildEntriesNesting(t *testing.T) {
	entries := headingsFor(t, `
<h2>Overview</h2>
<h2>Eligibility</h2>
<h3>Basic Requirements</h3>
<h2>How to Apply</h2>`, []string{"h2", "h3"})

	require.Len(t, entries, 3)
	assert.Equal(t, "Overview", entries[0].Text)
	assert.Empty(t, entries[0].Children)
	assert.Equal(t, "Eligibility", entries[1].Text)
	require.Len(t, entries[1].Children, 1)
	assert.Equal(t, "Basic Requirements", entries[1].Children[0].Text)
	assert.Equal(t, "How to Apply", entries[2].Text)
}

func TestBuildEntriesSkippedLevels(t *testing.T) {
	// h4 directly under h2: it nests one level below its nearest actual
	// ancestor, no empty intermediate level is synthesized.
	entries := headingsFor(t, `
<h2>Top</h2>
<h4>Deep</h4>
<h3>Middle</h3>`, []string{"h2", "h3", "h4"})

	require.Len(t, entries, 1)
	require.Len(t, entries[0].Children, 2)
	assert.Equal(t, "Deep", entries[0].Children[0].Text)
	assert.Empty(t, entries[0].Children[0].Children)
	assert.Equal(t, "Middle", entries[0].Children[1].Text, "h3 pops the deeper h4 off the stack")
}

func TestBuildEntriesLeadingSubheading(t *testing.T) {
	entries := headingsFor(t, `<h3>Orphan</h3><h2>First Section</h2>`, []string{"h2", "h3"})

	require.Len(t, entries, 2)
	assert.Equal(t, "Orphan", entries[0].Text, "a leading deep heading becomes a top-level entry")
	assert.Equal(t, "First Section", entries[1].Text)
}

func TestEnsureHeadingIDsAvoidsAuthoredIDs(t *testing.T) {
	doc, err := dom.ParseFragment(`<h2 id="overview">First</h2><h2>Overview</h2>`)
	require.NoError(t, err)
	headings := CollectHeadings(doc.Root, []string{"h2"})
	EnsureHeadingIDs(headings)

	assert.Equal(t, "overview", dom.Attr(headings[0], "id"), "authored id untouched")
	assert.Equal(t, "overview-1", dom.Attr(headings[1], "id"), "generated id steps around the authored one")
}

func TestNavWalkEntries(t *testing.T) {
	entries := headingsFor(t, `<h2>A</h2><h3>B</h3><h3>C</h3>`, []string{"h2", "h3"})

	var visited []string
	for _, e := range entries {
		e.Walk(func(n *models.NavigationEntry) { visited = append(visited, n.Text) })
	}
	assert.Equal(t, []string{"A", "B", "C"}, visited)
}
