package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/garyhouston/illustrationcount/commons"
	"github.com/garyhouston/illustrationcount/wikidata"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// Errors that stop a tree walk instead of being counted against one
// category.
func fatal(err error) bool {
	return errors.Is(err, wikidata.ErrLogin) || errors.Is(err, wikidata.ErrNotLoggedIn)
}

// Errors after which a category needn't be tried again on the next run.
func permanent(err error) bool {
	return errors.Is(err, wikidata.ErrNoItem) || errors.Is(err, commons.ErrCategoryNotFound)
}

func newProgressBar(count int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		count,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetWriter(os.Stderr),
	)
}

// Walk a family category: its subcategories are genera, and theirs are
// taxon illustration categories, each of which goes through the pipeline.
// A failure on one taxon is logged and the walk goes on.
func (p *pipeline) processTree(root string, progress bool) error {
	genera, err := p.resolver.Subcategories(root)
	if err != nil {
		return err
	}
	log.WithField("category", root).Infof("%d genera", len(genera))
	var bar *progressbar.ProgressBar
	if progress {
		bar = newProgressBar(len(genera), "genera")
	}
	failed := 0
	for _, genus := range genera {
		if bar != nil {
			bar.Add(1)
		}
		if strings.Contains(genus, "Unidentified") || p.state.genusDone(genus) {
			log.WithField("genus", genus).Debug("skipping")
			continue
		}
		taxa, err := p.resolver.Subcategories(genus)
		if err != nil {
			return err
		}
		genusFailed := false
		for _, taxon := range taxa {
			logger := log.WithField("category", taxon)
			if p.state.taxonDone(taxon) {
				logger.Debug("already processed")
				continue
			}
			if !wikidata.IllustrationCategory(taxon) {
				logger.Debug("not an illustration category")
				continue
			}
			if err := p.processCategory(taxon); err != nil {
				if fatal(err) {
					return err
				}
				if !permanent(err) {
					p.stats.errors++
					failed++
					genusFailed = true
					logger.WithError(err).Error("failed")
					continue
				}
				logger.WithError(err).Warn("skipping")
			}
			if err := p.mark(p.state.markTaxon, taxon); err != nil {
				return err
			}
		}
		if genusFailed {
			continue
		}
		if err := p.mark(p.state.markGenus, genus); err != nil {
			return err
		}
	}
	if failed > 0 {
		return errors.Errorf("%d categories failed", failed)
	}
	return nil
}

// Walk a category whose subcategories are family categories, such as
// "Botanical illustrations by family", running processTree on each.
func (p *pipeline) processFamilies(root string, progress bool) error {
	families, err := p.resolver.Subcategories(root)
	if err != nil {
		return err
	}
	log.WithField("category", root).Infof("%d families", len(families))
	failed := 0
	for _, family := range families {
		logger := log.WithField("family", family)
		if p.state.familyDone(family) {
			logger.Debug("already processed")
			continue
		}
		if err := p.processTree(family, progress); err != nil {
			if fatal(err) {
				return err
			}
			failed++
			logger.WithError(err).Error("failed")
			continue
		}
		if err := p.mark(p.state.markFamily, family); err != nil {
			return err
		}
	}
	if failed > 0 {
		return errors.Errorf("%d families failed", failed)
	}
	return nil
}
