// Package inpagenav derives a table of contents from document headings and
// tracks the active section from viewport-intersection samples. Generated
// structure and class names mirror the reference design system exactly.
package inpagenav

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
)

const (
	ContainerClass = "usa-in-page-nav"
	NavClass       = "usa-in-page-nav__nav"
	HeadingClass   = "usa-in-page-nav__heading"
	ListClass      = "usa-in-page-nav__list"
	ItemClass      = "usa-in-page-nav__item"
	SubItemClass   = "usa-in-page-nav__item--sub-item"
	LinkClass      = "usa-in-page-nav__link"
	CurrentClass   = "usa-current"
)

// Defaults applied when a data attribute is absent or unparsable.
const (
	defaultTitleText    = "On this page"
	defaultTitleLevel   = "h4"
	defaultContentSel   = "main"
	defaultHeadingElems = "h2 h3"
	defaultRootMargin   = "0px 0px 0px 0px"
	defaultThreshold    = 1.0
)

// Config is read from data attributes on the navigation container.
type Config struct {
	TitleText           string
	TitleHeadingLevel   string
	MainContentSelector string
	HeadingElements     []string
	ScrollOffset        int
	Threshold           float64
	RootMargin          string
	SmoothScroll        bool
}

// ParseConfig reads the declarative configuration off the container.
// Unparsable values fall back to defaults; configuration mistakes degrade,
// never crash.
func ParseConfig(container *html.Node) Config {
	cfg := Config{
		TitleText:           defaultTitleText,
		TitleHeadingLevel:   defaultTitleLevel,
		MainContentSelector: defaultContentSel,
		HeadingElements:     strings.Fields(defaultHeadingElems),
		Threshold:           defaultThreshold,
		RootMargin:          defaultRootMargin,
		SmoothScroll:        true,
	}

	if v, ok := dom.GetAttr(container, "data-title-text"); ok {
		cfg.TitleText = v
	}
	if v, ok := dom.GetAttr(container, "data-title-heading-level"); ok && isHeadingTag(v) {
		cfg.TitleHeadingLevel = strings.ToLower(v)
	}
	if v, ok := dom.GetAttr(container, "data-main-content-selector"); ok && strings.TrimSpace(v) != "" {
		cfg.MainContentSelector = v
	}
	if v, ok := dom.GetAttr(container, "data-heading-elements"); ok {
		var tags []string
		for _, tag := range strings.Fields(v) {
			if isHeadingTag(tag) {
				tags = append(tags, strings.ToLower(tag))
			}
		}
		if len(tags) > 0 {
			cfg.HeadingElements = tags
		}
	}
	if v, ok := dom.GetAttr(container, "data-scroll-offset"); ok {
		if offset, err := strconv.Atoi(strings.TrimSuffix(v, "px")); err == nil {
			cfg.ScrollOffset = offset
		}
	}
	if v, ok := dom.GetAttr(container, "data-threshold"); ok {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil && threshold >= 0 && threshold <= 1 {
			cfg.Threshold = threshold
		}
	}
	if v, ok := dom.GetAttr(container, "data-root-margin"); ok && strings.TrimSpace(v) != "" {
		cfg.RootMargin = v
	}
	if v, ok := dom.GetAttr(container, "data-smooth-scroll"); ok {
		cfg.SmoothScroll = v != "false"
	}

	return cfg
}

// ScrollBehavior maps the smooth-scroll flag onto the directive value.
func (c Config) ScrollBehavior() string {
	if c.SmoothScroll {
		return "smooth"
	}
	return "auto"
}

func isHeadingTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// headingLevel converts a heading tag to its numeric depth.
func headingLevel(tag string) int {
	if len(tag) == 2 && (tag[0] == 'h' || tag[0] == 'H') && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
