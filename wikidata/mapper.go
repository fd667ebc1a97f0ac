package wikidata

import (
	"regexp"
	"strings"

	"github.com/apex/log"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/pkg/errors"
)

// ItemFinder looks items up in the sitelink and label indexes.
type ItemFinder interface {
	FindBySitelink(site, title string) (string, error)
	Search(name string) (string, error)
}

// Naming conventions of illustration categories on Commons, tried in
// order. The first group is the taxon name.
var taxonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([^-]+?)\s+-\s+botanical illustrations$`),
	regexp.MustCompile(`^([^-]+?)\s+botanical illustrations$`),
	regexp.MustCompile(`^([^-]+?)\s+\(illustrations\)$`),
}

// TaxonName derives a taxon name from an illustration category name, with
// or without the Category: prefix. Names that follow none of the known
// conventions are returned unchanged, without prefix.
func TaxonName(category string) string {
	name := commons.TrimCategory(strings.TrimSpace(category))
	for _, pattern := range taxonPatterns {
		if match := pattern.FindStringSubmatch(name); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return name
}

// Mapper finds the Wikidata item a Commons category is about.
type Mapper struct {
	finder ItemFinder

	// Item, if set, is returned for every category.
	Item string
}

// NewMapper returns a Mapper using finder for lookups.
func NewMapper(finder ItemFinder) *Mapper {
	return &Mapper{finder: finder}
}

// Map returns the item for a category: the fixed Item if set, else the
// item sitelinked to the taxon's own Commons category, else the item whose
// label is the taxon name. ErrNoItem if all of them fail.
func (m *Mapper) Map(category string) (string, error) {
	if m.Item != "" {
		if !ValidItem(m.Item) {
			return "", errors.Wrapf(ErrMalformedInput, "item %q", m.Item)
		}
		return m.Item, nil
	}
	taxon := TaxonName(category)
	if taxon == "" {
		return "", errors.Wrapf(ErrNoItem, "no taxon name in %q", category)
	}
	logger := log.WithField("taxon", taxon)
	item, err := m.finder.FindBySitelink(commonsSite, commons.CategoryTitle(taxon))
	if err != nil {
		return "", err
	}
	if item != "" {
		logger.Debugf("found %s by Commons sitelink", item)
		return item, nil
	}
	item, err = m.finder.Search(taxon)
	if err != nil {
		return "", err
	}
	if item != "" {
		logger.Debugf("found %s by label", item)
		return item, nil
	}
	return "", errors.Wrapf(ErrNoItem, "for %q (taxon %q)", category, taxon)
}

// IllustrationCategory reports whether a category name follows one of the
// naming conventions of illustration categories.
func IllustrationCategory(category string) bool {
	name := commons.TrimCategory(strings.TrimSpace(category))
	for _, pattern := range taxonPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}
