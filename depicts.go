package main

import (
	"sort"

	"github.com/apex/log"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/garyhouston/illustrationcount/wikidata"
	"github.com/pkg/errors"
)

// The taxa a file illustrates: the item of the category being processed,
// then the items of the file's other illustration categories.
func (p *pipeline) fileTaxa(item string, categories []string) ([]string, error) {
	seen := map[string]bool{item: true}
	var others []string
	for _, cat := range categories {
		if !wikidata.IllustrationCategory(cat) {
			continue
		}
		other, err := p.mapItem(cat)
		if errors.Is(err, wikidata.ErrNoItem) {
			log.WithField("category", cat).Debug("no item, not used for depicts")
			continue
		}
		if err != nil {
			return nil, err
		}
		if !seen[other] {
			seen[other] = true
			others = append(others, other)
		}
	}
	sort.Strings(others)
	return append([]string{item}, others...), nil
}

// Add depicts statements to the structured data of each file in a taxon
// category. A file showing a single taxon gets a preferred statement, one
// showing several gets a normal statement per taxon.
func (p *pipeline) processDepicts(name string) error {
	logger := log.WithField("category", name)
	files, err := p.resolver.Files(p.category(name))
	if err != nil {
		return err
	}
	var todo []string
	for _, file := range files {
		if !p.state.fileDone(file) {
			todo = append(todo, file)
		}
	}
	if len(todo) == 0 {
		logger.Info("no unprocessed image files, skipping")
		p.stats.skipped++
		return nil
	}
	item, err := p.mapItem(name)
	if err != nil {
		p.stats.unmapped++
		return err
	}
	infos, err := p.resolver.FileInfos(todo)
	if err != nil {
		return err
	}
	for _, file := range todo {
		fileLogger := logger.WithField("file", file)
		info, found := infos[commons.FileTitle(file)]
		if !found {
			fileLogger.Warn("file page missing, possibly deleted")
			continue
		}
		taxa, err := p.fileTaxa(item, info.Categories)
		if err != nil {
			return err
		}
		rank := "preferred"
		if len(taxa) > 1 {
			rank = "normal"
		}
		statements := make([]wikidata.Statement, 0, len(taxa))
		for _, taxon := range taxa {
			st, err := p.builder.DepictsStatement(info.MediaInfo, taxon, rank, info.Permalink)
			if err != nil {
				return err
			}
			statements = append(statements, st)
		}
		written, err := p.publisher.Add(info.MediaInfo, statements)
		if err != nil {
			return errors.Wrapf(err, "adding depicts to %s", file)
		}
		p.recordAdded(written)
		fileLogger.WithField("entity", info.MediaInfo).Debugf("%d depicts statements added, %s rank", written, rank)
		if err := p.mark(p.state.markFile, file); err != nil {
			return err
		}
	}
	return nil
}
