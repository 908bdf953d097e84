// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package sanitize cleans rich-text HTML before it is persisted in a catalog.

The browser editor sanitizes too, but the server never trusts client HTML:
every description passes through this allow-list policy on create, update,
and translation, regardless of what the client claims to have done.

The policy is fixed at construction: a small tag/attribute allow-list, anchors
rewritten to open externally without opener access, and iframes restricted to
a short list of embed hosts. Sanitization is idempotent: cleaning already
clean HTML returns it byte-identical.
*/
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// iframeSrcAllowed restricts embeds to known video hosts.
var iframeSrcAllowed = regexp.MustCompile(
	`^https://(www\.youtube\.com/embed/|www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`,
)

// Sanitizer applies the fixed Atelier rich-text policy.
//
// # Concurrency
//
// bluemonday policies are safe for concurrent use once built; so is Sanitizer.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New builds the rich-text policy.
//
// allowInlineStyles optionally permits the style attribute the editor's
// toolbar emits (text alignment, colors). Everything else about the policy
// is non-configurable.
func New(allowInlineStyles bool) *Sanitizer {
	p := bluemonday.NewPolicy()

	// Text structure
	p.AllowElements(
		"p", "br", "hr",
		"b", "strong", "i", "em", "u", "s", "sub", "sup",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"blockquote", "code", "pre",
		"span", "div",
	)

	// Links: standard URL rules, forced to open externally without a usable
	// window.opener.
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	// Inline images (catalog assets are referenced by relative path).
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")

	// Embeds: only the allow-listed hosts may appear in an iframe src.
	p.AllowAttrs("src").Matching(iframeSrcAllowed).OnElements("iframe")
	p.AllowAttrs("width", "height", "allowfullscreen", "frameborder").OnElements("iframe")

	if allowInlineStyles {
		p.AllowAttrs("style").Globally()
	}

	return &Sanitizer{policy: p}
}

// Clean returns html with everything outside the allow-list removed.
func (s *Sanitizer) Clean(html string) string {
	return s.policy.Sanitize(html)
}
