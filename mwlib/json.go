package mwlib

import (
	"strings"

	"github.com/antonholmquist/jason"
)

// Write an array of titles into a piped request string.
func MakeTitleString(titles []string) string {
	return strings.Join(titles, "|")
}

// GetJsonPage returns the first page of a formatversion=2 query reply, or
// nil if the reply has no pages or the page is missing. A missing category
// page that still has members counts as present.
func GetJsonPage(json *jason.Object) *jason.Object {
	pages, err := json.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		return nil
	}
	page := pages[0]
	if PageMissing(page) {
		if _, err := page.GetObject("categoryinfo"); err != nil {
			return nil
		}
	}
	return page
}

// PageMissing reports whether a formatversion=2 page object is flagged
// missing or invalid.
func PageMissing(page *jason.Object) bool {
	if missing, err := page.GetBoolean("missing"); err == nil && missing {
		return true
	}
	if invalid, err := page.GetBoolean("invalid"); err == nil && invalid {
		return true
	}
	return false
}
