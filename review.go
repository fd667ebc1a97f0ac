package main

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Write data as YAML to a temporary file, then rename it into place.
func writeYAML(path string, data interface{}) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "creating "+tmpPath)
	}
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		file.Close()
		return errors.Wrap(err, "encoding "+path)
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return errors.Wrap(err, "encoding "+path)
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "closing "+tmpPath)
	}
	return errors.Wrap(os.Rename(tmpPath, path), "replacing "+path)
}

// Read YAML from path into data. A missing file leaves data alone.
func readYAML(path string, data interface{}) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading "+path)
	}
	return errors.Wrap(yaml.Unmarshal(content, data), "parsing "+path)
}

// Categories with too many files to handle automatically, mapped to their
// files. Entries are merged into whatever the file already holds.
type reviewFile struct {
	path string
}

func (r *reviewFile) add(category string, files []string) error {
	if r == nil || r.path == "" {
		return nil
	}
	entries := make(map[string][]string)
	if err := readYAML(r.path, &entries); err != nil {
		return err
	}
	entries[category] = files
	return writeYAML(r.path, entries)
}

// Families, genera, taxon categories and files already handled, so an
// interrupted run can resume.
type processedState struct {
	path string

	Families []string `yaml:"families,omitempty"`
	Genera   []string `yaml:"genera"`
	Taxa     []string `yaml:"taxa"`
	Files    []string `yaml:"files,omitempty"`

	families map[string]bool
	genera   map[string]bool
	taxa     map[string]bool
	files    map[string]bool
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, entry := range list {
		set[entry] = true
	}
	return set
}

func loadProcessedState(path string) (*processedState, error) {
	state := &processedState{path: path}
	if path != "" {
		if err := readYAML(path, state); err != nil {
			return nil, err
		}
	}
	state.families = toSet(state.Families)
	state.genera = toSet(state.Genera)
	state.taxa = toSet(state.Taxa)
	state.files = toSet(state.Files)
	return state, nil
}

func (s *processedState) familyDone(family string) bool {
	return s.families[family]
}

func (s *processedState) genusDone(genus string) bool {
	return s.genera[genus]
}

func (s *processedState) taxonDone(taxon string) bool {
	return s.taxa[taxon]
}

func (s *processedState) fileDone(file string) bool {
	return s.files[file]
}

func (s *processedState) save() error {
	if s.path == "" {
		return nil
	}
	s.Families = sortedKeys(s.families)
	s.Genera = sortedKeys(s.genera)
	s.Taxa = sortedKeys(s.taxa)
	s.Files = sortedKeys(s.files)
	return writeYAML(s.path, s)
}

func (s *processedState) markFamily(family string) error {
	s.families[family] = true
	return s.save()
}

func (s *processedState) markGenus(genus string) error {
	s.genera[genus] = true
	return s.save()
}

func (s *processedState) markTaxon(taxon string) error {
	s.taxa[taxon] = true
	return s.save()
}

func (s *processedState) markFile(file string) error {
	s.files[file] = true
	return s.save()
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
