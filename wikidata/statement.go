package wikidata

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DataValue is the "datavalue" member of a Wikibase snak.
type DataValue struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Value is the value of a snak.
type Value interface {
	DataValue() DataValue
	// Matches reports whether a claim read back from Wikidata holds
	// this value.
	Matches(c Claim) bool
}

// Quantity is a unitless amount.
type Quantity struct {
	Amount int64
}

func (q Quantity) DataValue() DataValue {
	return DataValue{Type: "quantity", Value: map[string]string{
		"amount": "+" + strconv.FormatInt(q.Amount, 10),
		"unit":   "1",
	}}
}

func (q Quantity) Matches(c Claim) bool {
	amount, ok := c.Amount()
	return ok && amount == float64(q.Amount)
}

// Time is a Gregorian date with day precision.
type Time struct {
	Time time.Time
}

func (t Time) wikiTime() string {
	return "+" + t.Time.UTC().Format("2006-01-02") + "T00:00:00Z"
}

func (t Time) DataValue() DataValue {
	return DataValue{Type: "time", Value: map[string]interface{}{
		"time":          t.wikiTime(),
		"timezone":      0,
		"before":        0,
		"after":         0,
		"precision":     11,
		"calendarmodel": calendarGregorian,
	}}
}

func (t Time) Matches(c Claim) bool {
	text, ok := c.TimeString()
	return ok && text == t.wikiTime()
}

// ItemValue refers to another item.
type ItemValue struct {
	ID string
}

func (v ItemValue) DataValue() DataValue {
	numeric, _ := strconv.ParseInt(strings.TrimPrefix(v.ID, "Q"), 10, 64)
	return DataValue{Type: "wikibase-entityid", Value: map[string]interface{}{
		"entity-type": "item",
		"numeric-id":  numeric,
		"id":          v.ID,
	}}
}

func (v ItemValue) Matches(c Claim) bool {
	id, ok := c.EntityID()
	return ok && id == v.ID
}

// CommonsMedia is a file name on Commons, without the File: prefix.
type CommonsMedia struct {
	Name string
}

func (m CommonsMedia) DataValue() DataValue {
	return DataValue{Type: "string", Value: m.Name}
}

func (m CommonsMedia) Matches(c Claim) bool {
	text, ok := c.Text()
	normalize := func(s string) string { return strings.ReplaceAll(s, "_", " ") }
	return ok && normalize(text) == normalize(m.Name)
}

// URL is a web address.
type URL struct {
	Address string
}

func (u URL) DataValue() DataValue {
	return DataValue{Type: "string", Value: u.Address}
}

func (u URL) Matches(c Claim) bool {
	text, ok := c.Text()
	return ok && text == u.Address
}

// Snak is a property/value pair used as a qualifier or in a reference.
type Snak struct {
	Property string
	Value    Value
}

// Statement is a property/value assertion with its qualifiers and
// references, ready to be written to an item.
type Statement struct {
	Property   string
	Value      Value
	Qualifiers []Snak
	References [][]Snak
	Rank       string // "normal" if empty.
}

type snakJSON struct {
	SnakType  string    `json:"snaktype"`
	Property  string    `json:"property"`
	DataValue DataValue `json:"datavalue"`
}

type referenceJSON struct {
	Snaks      map[string][]snakJSON `json:"snaks"`
	SnaksOrder []string              `json:"snaks-order"`
}

type claimJSON struct {
	ID              string                `json:"id"`
	Type            string                `json:"type"`
	Rank            string                `json:"rank"`
	MainSnak        snakJSON              `json:"mainsnak"`
	Qualifiers      map[string][]snakJSON `json:"qualifiers,omitempty"`
	QualifiersOrder []string              `json:"qualifiers-order,omitempty"`
	References      []referenceJSON       `json:"references,omitempty"`
}

func newSnakJSON(s Snak) snakJSON {
	return snakJSON{SnakType: "value", Property: s.Property, DataValue: s.Value.DataValue()}
}

// Group snaks by property, keeping the order in which properties first
// appear.
func groupSnaks(snaks []Snak) (map[string][]snakJSON, []string) {
	if len(snaks) == 0 {
		return nil, nil
	}
	grouped := make(map[string][]snakJSON)
	var order []string
	for _, s := range snaks {
		if _, found := grouped[s.Property]; !found {
			order = append(order, s.Property)
		}
		grouped[s.Property] = append(grouped[s.Property], newSnakJSON(s))
	}
	return grouped, order
}

// ClaimJSON serialises the statement as the "claim" parameter of
// wbsetclaim. guid is the claim id, <item>$<uuid>.
func (s Statement) ClaimJSON(guid string) ([]byte, error) {
	rank := s.Rank
	if rank == "" {
		rank = "normal"
	}
	claim := claimJSON{
		ID:       guid,
		Type:     "statement",
		Rank:     rank,
		MainSnak: newSnakJSON(Snak{Property: s.Property, Value: s.Value}),
	}
	claim.Qualifiers, claim.QualifiersOrder = groupSnaks(s.Qualifiers)
	for _, ref := range s.References {
		snaks, order := groupSnaks(ref)
		claim.References = append(claim.References, referenceJSON{Snaks: snaks, SnaksOrder: order})
	}
	data, err := json.Marshal(claim)
	return data, errors.Wrap(err, "encoding claim")
}

// Builder makes the statements written by the bot.
type Builder struct {
	Property    string // Property receiving the count.
	PointInTime string // Qualifier property for the count date. Empty to omit.
	Now         func() time.Time
}

// NewBuilder returns a Builder writing counts to property with a
// pointInTime qualifier.
func NewBuilder(property, pointInTime string) (Builder, error) {
	if !ValidProperty(property) {
		return Builder{}, errors.Wrapf(ErrMalformedInput, "property %q", property)
	}
	if pointInTime != "" && !ValidProperty(pointInTime) {
		return Builder{}, errors.Wrapf(ErrMalformedInput, "qualifier property %q", pointInTime)
	}
	return Builder{Property: property, PointInTime: pointInTime, Now: time.Now}, nil
}

// ParseCount converts a textual count, rejecting anything that isn't a
// non-negative integer.
func ParseCount(text string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count < 0 {
		return 0, errors.Wrapf(ErrMalformedInput, "count %q", text)
	}
	return count, nil
}

// The reference attached to everything the bot writes: inferred from
// Wikimedia Commons, plus the page it was inferred from.
func commonsReference(source string) [][]Snak {
	ref := []Snak{{Property: PropertyHeuristic, Value: ItemValue{ID: ItemInferredFromCommons}}}
	if source != "" {
		ref = append(ref, Snak{Property: PropertyImportURL, Value: URL{Address: source}})
	}
	return [][]Snak{ref}
}

// CountStatement builds the statement recording count files for item.
// source is the URL of the counted category, or empty.
func (b Builder) CountStatement(item string, count int, source string) (Statement, error) {
	if !ValidItem(item) {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "item %q", item)
	}
	if count < 0 {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "negative count %d", count)
	}
	st := Statement{
		Property:   b.Property,
		Value:      Quantity{Amount: int64(count)},
		References: commonsReference(source),
	}
	if b.PointInTime != "" {
		now := time.Now
		if b.Now != nil {
			now = b.Now
		}
		st.Qualifiers = []Snak{{Property: b.PointInTime, Value: Time{Time: now()}}}
	}
	return st, nil
}

// ImageStatement builds a commonsMedia statement for item. permalink is
// the revision URL of the file page, or empty.
func (b Builder) ImageStatement(item, property, file, permalink string) (Statement, error) {
	if !ValidItem(item) {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "item %q", item)
	}
	if !ValidProperty(property) {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "property %q", property)
	}
	if strings.TrimSpace(file) == "" {
		return Statement{}, errors.Wrap(ErrMalformedInput, "empty file name")
	}
	return Statement{
		Property:   property,
		Value:      CommonsMedia{Name: strings.TrimPrefix(file, "File:")},
		References: commonsReference(permalink),
	}, nil
}

// DepictsStatement builds a depicts statement for the MediaInfo entity of
// a file. rank is "preferred" when the file shows a single taxon.
func (b Builder) DepictsStatement(mediaInfo, item, rank, permalink string) (Statement, error) {
	if !ValidMediaInfo(mediaInfo) {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "MediaInfo id %q", mediaInfo)
	}
	if !ValidItem(item) {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "item %q", item)
	}
	if rank != "normal" && rank != "preferred" {
		return Statement{}, errors.Wrapf(ErrMalformedInput, "rank %q", rank)
	}
	return Statement{
		Property:   PropertyDepicts,
		Value:      ItemValue{ID: item},
		References: commonsReference(permalink),
		Rank:       rank,
	}, nil
}
