package inpagenav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicui/enhance-go/dom"
)

func containerFor(t *testing.T, markup string) Config {
	t.Helper()
	doc, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	return ParseConfig(dom.QueryFirst(doc.Root, "div"))
}

func TestParseConfigDefaults(t *testing.T) {
	cfg := containerFor(t, `<div class="usa-in-page-nav"></div>`)

	assert.Equal(t, "On this page", cfg.TitleText)
	assert.Equal(t, "h4", cfg.TitleHeadingLevel)
	assert.Equal(t, "main", cfg.MainContentSelector)
	assert.Equal(t, []string{"h2", "h3"}, cfg.HeadingElements)
	assert.Equal(t, 0, cfg.ScrollOffset)
	assert.Equal(t, 1.0, cfg.Threshold)
	assert.Equal(t, "0px 0px 0px 0px", cfg.RootMargin)
	assert.True(t, cfg.SmoothScroll)
	assert.Equal(t, "smooth", cfg.ScrollBehavior())
}

func TestParseConfigOverrides(t *testing.T) {
	cfg := containerFor(t, `<div class="usa-in-page-nav"
		data-title-text="Contents"
		data-title-heading-level="H3"
		data-main-content-selector=".docs-body"
		data-heading-elements="h2 h3 h4"
		data-scroll-offset="64px"
		data-threshold="0.25"
		data-root-margin="-10% 0px -60% 0px"
		data-smooth-scroll="false"></div>`)

	assert.Equal(t, "Contents", cfg.TitleText)
	assert.Equal(t, "h3", cfg.TitleHeadingLevel)
	assert.Equal(t, ".docs-body", cfg.MainContentSelector)
	assert.Equal(t, []string{"h2", "h3", "h4"}, cfg.HeadingElements)
	assert.Equal(t, 64, cfg.ScrollOffset)
	assert.Equal(t, 0.25, cfg.Threshold)
	assert.Equal(t, "-10% 0px -60% 0px", cfg.RootMargin)
	assert.False(t, cfg.SmoothScroll)
	assert.Equal(t, "auto", cfg.ScrollBehavior())
}

func TestParseConfigRejectsUnusableValues(t *testing.T) {
	cfg := containerFor(t, `<div class="usa-in-page-nav"
		data-title-heading-level="div"
		data-heading-elements="span strong"
		data-scroll-offset="tall"
		data-threshold="7"></div>`)

	assert.Equal(t, "h4", cfg.TitleHeadingLevel)
	assert.Equal(t, []string{"h2", "h3"}, cfg.HeadingElements, "non-heading tags fall back entirely")
	assert.Equal(t, 0, cfg.ScrollOffset)
	assert.Equal(t, 1.0, cfg.Threshold, "out-of-range threshold falls back")
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 2, headingLevel("h2"))
	assert.Equal(t, 6, headingLevel("H6"))
	assert.Equal(t, 0, headingLevel("div"))
	assert.Equal(t, 0, headingLevel("h7"))
}
