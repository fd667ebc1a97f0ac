package main

import (
	"fmt"

	"github.com/garyhouston/illustrationcount/wikidata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Processing statistics.
type stats struct {
	examined  int32 // Categories examined.
	skipped   int32 // Categories without image files.
	unmapped  int32 // Categories without a Wikidata item.
	edited    int32 // Items edited.
	unchanged int32 // Items already up to date.
	dryRun    int32 // Edits skipped by --dry-run.
	review    int32 // Categories saved for manual review.
	errors    int32 // Categories where processing failed.
}

func (s *stats) record(outcome wikidata.Outcome) {
	switch outcome {
	case wikidata.Created, wikidata.Updated:
		s.edited++
	case wikidata.Unchanged:
		s.unchanged++
	case wikidata.DryRun:
		s.dryRun++
	}
}

func (s stats) print() {
	fmt.Println("Categories examined: ", s.examined)
	fmt.Println("Categories without image files: ", s.skipped)
	fmt.Println("Categories without item: ", s.unmapped)
	fmt.Println("Items edited: ", s.edited)
	fmt.Println("Items already up to date: ", s.unchanged)
	if s.dryRun > 0 {
		fmt.Println("Edits skipped by dry run: ", s.dryRun)
	}
	if s.review > 0 {
		fmt.Println("Categories saved for review: ", s.review)
	}
	fmt.Println("Categories with errors: ", s.errors)
}

// Gauges for the last run, labelled by outcome.
func (s stats) collector() *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "illustrationcount_categories",
		Help: "Categories processed in the last run, by outcome.",
	}, []string{"outcome"})
	for outcome, value := range map[string]int32{
		"examined":  s.examined,
		"skipped":   s.skipped,
		"unmapped":  s.unmapped,
		"edited":    s.edited,
		"unchanged": s.unchanged,
		"dry_run":   s.dryRun,
		"review":    s.review,
		"errors":    s.errors,
	} {
		gauge.WithLabelValues(outcome).Set(float64(value))
	}
	return gauge
}

// Push the statistics to a Prometheus Pushgateway.
func (s stats) push(url string) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(s.collector())
	return push.New(url, "illustrationcount").Gatherer(registry).Push()
}
