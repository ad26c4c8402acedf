package inpagenav

import (
	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/models"
)

// BuildNav renders the entry tree into the navigation structure and
// returns the nav element plus a headingID->link index used for active
// toggling.
func BuildNav(cfg Config, entries []*models.NavigationEntry) (*html.Node, map[string]*html.Node) {
	nav := dom.NewElement("nav",
		"class", NavClass,
		"aria-label", cfg.TitleText,
	)

	title := dom.NewElement(cfg.TitleHeadingLevel, "class", HeadingClass, "tabindex", "0")
	title.AppendChild(dom.NewText(cfg.TitleText))
	nav.AppendChild(title)

	links := make(map[string]*html.Node)
	nav.AppendChild(buildList(entries, 0, links))
	return nav, links
}

func buildList(entries []*models.NavigationEntry, depth int, links map[string]*html.Node) *html.Node {
	list := dom.NewElement("ul", "class", ListClass)
	for _, entry := range entries {
		item := dom.NewElement("li", "class", ItemClass)
		if depth > 0 {
			dom.AddClass(item, SubItemClass)
		}

		link := dom.NewElement("a",
			"class", LinkClass,
			"href", "#"+entry.HeadingID,
		)
		link.AppendChild(dom.NewText(entry.Text))
		item.AppendChild(link)
		links[entry.HeadingID] = link

		if len(entry.Children) > 0 {
			item.AppendChild(buildList(entry.Children, depth+1, links))
		}
		list.AppendChild(item)
	}
	return list
}

// SetActiveLink assigns the current-item class to exactly one link: a
// total, mutually-exclusive assignment, never multiple simultaneous
// actives.
func SetActiveLink(links map[string]*html.Node, entries []*models.NavigationEntry, activeID string) {
	for id, link := range links {
		if id == activeID {
			dom.AddClass(link, CurrentClass)
		} else {
			dom.RemoveClass(link, CurrentClass)
		}
	}
	for _, root := range entries {
		root.Walk(func(e *models.NavigationEntry) {
			e.IsActive = e.HeadingID == activeID
		})
	}
}
