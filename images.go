package main

import (
	"github.com/apex/log"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/garyhouston/illustrationcount/wikidata"
	"github.com/pkg/errors"
)

// Categories with more files than this are left for manual review.
const maxAutoImages = 2

// Choose the property for illustration images: the main image if the item
// has none, else the botanical illustration property, else nothing.
func imageProperty(entity *wikidata.Entity) string {
	hasImage := entity.HasClaims(wikidata.PropertyImage)
	hasIllustration := entity.HasClaims(wikidata.PropertyIllustration)
	switch {
	case !hasImage && !hasIllustration:
		return wikidata.PropertyImage
	case hasImage && !hasIllustration:
		return wikidata.PropertyIllustration
	}
	return ""
}

// Add the files of a small illustration category to its item as image
// statements. Larger categories are saved for manual review.
func (p *pipeline) processImages(name string) error {
	logger := log.WithField("category", name)
	files, err := p.resolver.Files(p.category(name))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("no image files, skipping")
		p.stats.skipped++
		return nil
	}
	item, err := p.mapItem(name)
	if err != nil {
		p.stats.unmapped++
		return err
	}
	if len(files) > maxAutoImages {
		logger.Infof("%d files, saved for review", len(files))
		p.stats.review++
		return p.review.add(commons.CategoryTitle(name), files)
	}
	entity, err := p.publisher.Lookup(item)
	if err != nil {
		return err
	}
	property := imageProperty(entity)
	if property == "" {
		logger.WithField("item", item).Info("already has image and illustration, skipping")
		p.stats.unchanged++
		return nil
	}
	statements := make([]wikidata.Statement, 0, len(files))
	for _, file := range files {
		permalink, err := p.resolver.FilePermalink(file)
		if err != nil {
			return err
		}
		st, err := p.builder.ImageStatement(item, property, commons.TrimFile(file), permalink)
		if err != nil {
			return err
		}
		statements = append(statements, st)
	}
	written, err := p.publisher.Add(item, statements)
	if err != nil {
		return errors.Wrapf(err, "adding images for %s", name)
	}
	p.recordAdded(written)
	logger.WithField("item", item).Infof("%d %s statements added", written, property)
	return nil
}
