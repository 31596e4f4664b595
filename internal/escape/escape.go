// Package escape makes plain text safe to embed in HTML markup.
package escape

import "html"

// String replaces <, >, &, " and ' with their entities and leaves every other
// rune untouched. It is not idempotent: escaping twice double-escapes, so apply
// it exactly once per raw plain-text field and never to rich-text content.
func String(text string) string {
	return html.EscapeString(text)
}
