package main

import (
	"github.com/apex/log"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/garyhouston/illustrationcount/wikidata"
	"github.com/pkg/errors"
)

type fileCounter interface {
	Count(cat commons.Category) (int, error)
	Files(cat commons.Category) ([]string, error)
	Subcategories(title string) ([]string, error)
	FilePermalink(file string) (string, error)
	FileInfos(files []string) (map[string]*commons.FileInfo, error)
}

type itemMapper interface {
	Map(category string) (string, error)
}

type statementPublisher interface {
	Lookup(item string) (*wikidata.Entity, error)
	Publish(item string, st wikidata.Statement) (wikidata.Outcome, error)
	Add(item string, statements []wikidata.Statement) (int, error)
}

// One pass from a category to a statement.
type pipeline struct {
	resolver  fileCounter
	mapper    itemMapper
	builder   wikidata.Builder
	publisher statementPublisher
	review    *reviewFile // Only used in image mode.
	state     *processedState
	stats     *stats

	recursive bool
	depth     int
	writeZero bool   // Write zero counts instead of skipping them.
	count     string // Write this count instead of counting files.
	images    bool   // Add image statements instead of counts.
	depicts   bool   // Add depicts statements to the files instead of counts.
	dryRun    bool   // Nothing is written, so nothing is marked processed.

	items map[string]string // category title -> item, "" if there is none
}

func (p *pipeline) category(name string) commons.Category {
	return commons.Category{Name: name, Recursive: p.recursive, Depth: p.depth}
}

// Map a category to its item, remembering the answer for the rest of the
// run.
func (p *pipeline) mapItem(category string) (string, error) {
	title := commons.CategoryTitle(category)
	if item, found := p.items[title]; found {
		if item == "" {
			return "", errors.Wrapf(wikidata.ErrNoItem, "for %q", title)
		}
		return item, nil
	}
	item, err := p.mapper.Map(category)
	if err != nil && !errors.Is(err, wikidata.ErrNoItem) {
		return "", err
	}
	if p.items == nil {
		p.items = make(map[string]string)
	}
	p.items[title] = item
	return item, err
}

// Record something as processed in the state file. Dry runs leave the
// state alone, so a later real run still handles it.
func (p *pipeline) mark(mark func(string) error, name string) error {
	if p.dryRun || p.state == nil {
		return nil
	}
	return mark(name)
}

// Tally the statements added to one item or file.
func (p *pipeline) recordAdded(written int) {
	switch {
	case written == 0:
		p.stats.unchanged++
	case p.dryRun:
		p.stats.dryRun++
	default:
		p.stats.edited++
	}
}

// Count the files in a category and write the count to its item.
func (p *pipeline) processCategory(name string) error {
	p.stats.examined++
	switch {
	case p.images:
		return p.processImages(name)
	case p.depicts:
		return p.processDepicts(name)
	}
	logger := log.WithField("category", name)
	var count int
	var err error
	if p.count != "" {
		count, err = wikidata.ParseCount(p.count)
	} else {
		count, err = p.resolver.Count(p.category(name))
	}
	if err != nil {
		return err
	}
	logger.Debugf("%d image files", count)
	if count == 0 && !p.writeZero {
		logger.Info("no image files, skipping")
		p.stats.skipped++
		return nil
	}
	item, err := p.mapItem(name)
	if err != nil {
		p.stats.unmapped++
		return err
	}
	st, err := p.builder.CountStatement(item, count, commons.CategoryURL(name))
	if err != nil {
		return err
	}
	outcome, err := p.publisher.Publish(item, st)
	if err != nil {
		return errors.Wrapf(err, "publishing count for %s", name)
	}
	p.stats.record(outcome)
	logger.WithField("item", item).Infof("%d files, %s", count, outcome)
	return nil
}
