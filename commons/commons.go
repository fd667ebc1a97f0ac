// Package commons reads category membership from Wikimedia Commons.
package commons

import (
	"net/url"
	"strings"
)

// APIURL is the Action API endpoint of Wikimedia Commons.
const APIURL = "https://commons.wikimedia.org/w/api.php"

const (
	categoryPrefix = "Category:"
	filePrefix     = "File:"
	wikiURL        = "https://commons.wikimedia.org/wiki/"
	indexURL       = "https://commons.wikimedia.org/w/index.php"
)

// CategoryTitle returns the page title of a category given with or without
// its namespace prefix. Underscores are read as spaces.
func CategoryTitle(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if strings.HasPrefix(name, categoryPrefix) {
		return name
	}
	return categoryPrefix + name
}

// TrimCategory strips the namespace prefix from a category title.
func TrimCategory(title string) string {
	return strings.TrimPrefix(title, categoryPrefix)
}

// FileTitle returns the page title of a file given with or without its
// namespace prefix.
func FileTitle(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if strings.HasPrefix(name, filePrefix) {
		return name
	}
	return filePrefix + name
}

// TrimFile strips the namespace prefix from a file title. Wikidata
// commonsMedia values are written without it.
func TrimFile(title string) string {
	return strings.TrimPrefix(title, filePrefix)
}

// CategoryURL returns the canonical URL of a category page.
func CategoryURL(name string) string {
	title := strings.ReplaceAll(CategoryTitle(name), " ", "_")
	return wikiURL + url.PathEscape(title)
}

func queryEscape(title string) string {
	return url.QueryEscape(strings.ReplaceAll(title, " ", "_"))
}
