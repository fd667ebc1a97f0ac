// Package wikidata maps Commons categories to Wikidata items and writes
// statements to them through the Wikibase API.
package wikidata

import (
	"regexp"

	"github.com/pkg/errors"
)

// APIURL is the Action API endpoint of Wikidata.
const APIURL = "https://www.wikidata.org/w/api.php"

// Properties and items used in the statements written by the bot.
const (
	PropertyQuantity        = "P1114"
	PropertyPointInTime     = "P585"
	PropertyImage           = "P18"
	PropertyIllustration    = "P13162"
	PropertyHeuristic       = "P887"
	PropertyImportURL       = "P4656"
	PropertyDepicts         = "P180"
	PropertyInstanceOf      = "P31"
	PropertyMainTopic       = "P301"
	ItemInferredFromCommons = "Q131478853"
	ItemWikimediaCategory   = "Q4167836"

	calendarGregorian = "http://www.wikidata.org/entity/Q1985727"
	commonsSite       = "commonswiki"
)

var (
	ErrNoItem         = errors.New("no Wikidata item found")
	ErrItemNotFound   = errors.New("item does not exist")
	ErrMalformedInput = errors.New("malformed input")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrLogin          = errors.New("login failed")
	ErrEditConflict   = errors.New("edit conflict")
)

var (
	itemPattern      = regexp.MustCompile(`^Q[1-9][0-9]*$`)
	propertyPattern  = regexp.MustCompile(`^P[1-9][0-9]*$`)
	mediaInfoPattern = regexp.MustCompile(`^M[1-9][0-9]*$`)
)

// ValidItem reports whether id is a well formed item reference.
func ValidItem(id string) bool {
	return itemPattern.MatchString(id)
}

// ValidMediaInfo reports whether id is a well formed Commons MediaInfo
// reference, M followed by the file's page id.
func ValidMediaInfo(id string) bool {
	return mediaInfoPattern.MatchString(id)
}

// ValidEntity reports whether statements can be written to id: an item or
// a MediaInfo entity.
func ValidEntity(id string) bool {
	return ValidItem(id) || ValidMediaInfo(id)
}

// ValidProperty reports whether id is a well formed property reference.
func ValidProperty(id string) bool {
	return propertyPattern.MatchString(id)
}
