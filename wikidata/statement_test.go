package wikidata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func fixedBuilder(t *testing.T) Builder {
	b, err := NewBuilder(PropertyQuantity, PropertyPointInTime)
	if err != nil {
		t.Fatal(err)
	}
	b.Now = func() time.Time { return time.Date(2024, 5, 1, 17, 30, 0, 0, time.UTC) }
	return b
}

func TestCountStatement(t *testing.T) {
	st, err := fixedBuilder(t).CountStatement("Q123", 42, "https://commons.wikimedia.org/wiki/Category:Rosa")
	if err != nil {
		t.Fatal(err)
	}
	if st.Property != PropertyQuantity {
		t.Fatal("count attached to", st.Property)
	}
	if diff := cmp.Diff(Quantity{Amount: 42}, st.Value); diff != "" {
		t.Fatal(diff)
	}
	data, err := st.ClaimJSON("Q123$5627445f-43cb-ed6d-3adb-760e85bd17ee")
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	expect := map[string]interface{}{
		"id":   "Q123$5627445f-43cb-ed6d-3adb-760e85bd17ee",
		"type": "statement",
		"rank": "normal",
		"mainsnak": map[string]interface{}{
			"snaktype": "value",
			"property": "P1114",
			"datavalue": map[string]interface{}{
				"type":  "quantity",
				"value": map[string]interface{}{"amount": "+42", "unit": "1"},
			},
		},
		"qualifiers": map[string]interface{}{
			"P585": []interface{}{map[string]interface{}{
				"snaktype": "value",
				"property": "P585",
				"datavalue": map[string]interface{}{
					"type": "time",
					"value": map[string]interface{}{
						"time":          "+2024-05-01T00:00:00Z",
						"timezone":      float64(0),
						"before":        float64(0),
						"after":         float64(0),
						"precision":     float64(11),
						"calendarmodel": "http://www.wikidata.org/entity/Q1985727",
					},
				},
			}},
		},
		"qualifiers-order": []interface{}{"P585"},
		"references": []interface{}{map[string]interface{}{
			"snaks": map[string]interface{}{
				"P887": []interface{}{map[string]interface{}{
					"snaktype": "value",
					"property": "P887",
					"datavalue": map[string]interface{}{
						"type": "wikibase-entityid",
						"value": map[string]interface{}{
							"entity-type": "item",
							"numeric-id":  float64(131478853),
							"id":          "Q131478853",
						},
					},
				}},
				"P4656": []interface{}{map[string]interface{}{
					"snaktype": "value",
					"property": "P4656",
					"datavalue": map[string]interface{}{
						"type":  "string",
						"value": "https://commons.wikimedia.org/wiki/Category:Rosa",
					},
				}},
			},
			"snaks-order": []interface{}{"P887", "P4656"},
		}},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestCountStatementConfiguredProperty(t *testing.T) {
	b, err := NewBuilder("P4765", "")
	if err != nil {
		t.Fatal(err)
	}
	st, err := b.CountStatement("Q123", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if st.Property != "P4765" {
		t.Fatal("count attached to", st.Property)
	}
	if len(st.Qualifiers) != 0 {
		t.Fatal("expected no qualifiers")
	}
	if diff := cmp.Diff([][]Snak{{{Property: PropertyHeuristic, Value: ItemValue{ID: ItemInferredFromCommons}}}}, st.References); diff != "" {
		t.Fatal(diff)
	}
}

func TestCountStatementRejectsMalformedInput(t *testing.T) {
	type testcase struct {
		name  string
		item  string
		count int
	}
	testcases := []testcase{
		{name: "negative count", item: "Q123", count: -1},
		{name: "empty item", item: "", count: 1},
		{name: "property as item", item: "P18", count: 1},
		{name: "leading zero", item: "Q0123", count: 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixedBuilder(t).CountStatement(tc.item, tc.count, "")
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatal("expected", ErrMalformedInput, "got", err)
			}
		})
	}
}

func TestNewBuilderRejectsBadProperty(t *testing.T) {
	if _, err := NewBuilder("quantity", ""); !errors.Is(err, ErrMalformedInput) {
		t.Fatal("expected", ErrMalformedInput, "got", err)
	}
	if _, err := NewBuilder("P1114", "Q5"); !errors.Is(err, ErrMalformedInput) {
		t.Fatal("expected", ErrMalformedInput, "got", err)
	}
}

func TestParseCount(t *testing.T) {
	type testcase struct {
		input     string
		expect    int
		expectErr bool
	}
	testcases := []testcase{
		{input: "42", expect: 42},
		{input: " 0 ", expect: 0},
		{input: "forty-two", expectErr: true},
		{input: "-3", expectErr: true},
		{input: "4.2", expectErr: true},
		{input: "", expectErr: true},
	}
	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			count, err := ParseCount(tc.input)
			switch {
			case tc.expectErr && !errors.Is(err, ErrMalformedInput):
				t.Fatal("expected", ErrMalformedInput, "got", err)
			case !tc.expectErr && err != nil:
				t.Fatal(err)
			case count != tc.expect:
				t.Fatal("expected", tc.expect, "got", count)
			}
		})
	}
}

func TestImageStatement(t *testing.T) {
	st, err := fixedBuilder(t).ImageStatement("Q123", PropertyImage, "File:Rosa canina.jpg", "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(CommonsMedia{Name: "Rosa canina.jpg"}, st.Value); diff != "" {
		t.Fatal(diff)
	}
	if _, err := fixedBuilder(t).ImageStatement("Q123", PropertyImage, " ", ""); !errors.Is(err, ErrMalformedInput) {
		t.Fatal("expected", ErrMalformedInput, "got", err)
	}
}

func TestDepictsStatement(t *testing.T) {
	permalink := "https://commons.wikimedia.org/w/index.php?title=File:Rosa_canina.jpg&oldid=9"
	st, err := fixedBuilder(t).DepictsStatement("M555", "Q123", "preferred", permalink)
	if err != nil {
		t.Fatal(err)
	}
	expect := Statement{
		Property: PropertyDepicts,
		Value:    ItemValue{ID: "Q123"},
		References: [][]Snak{{
			{Property: PropertyHeuristic, Value: ItemValue{ID: ItemInferredFromCommons}},
			{Property: PropertyImportURL, Value: URL{Address: permalink}},
		}},
		Rank: "preferred",
	}
	if diff := cmp.Diff(expect, st); diff != "" {
		t.Fatal(diff)
	}
	type testcase struct {
		name      string
		mediaInfo string
		item      string
		rank      string
	}
	testcases := []testcase{
		{name: "item instead of MediaInfo", mediaInfo: "Q555", item: "Q123", rank: "normal"},
		{name: "bad item", mediaInfo: "M555", item: "Rosa", rank: "normal"},
		{name: "deprecated rank", mediaInfo: "M555", item: "Q123", rank: "deprecated"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixedBuilder(t).DepictsStatement(tc.mediaInfo, tc.item, tc.rank, "")
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatal("expected", ErrMalformedInput, "got", err)
			}
		})
	}
}

func TestEditSummary(t *testing.T) {
	got := EditSummary("Add count", "abc123")
	if got != "Add count ([[:toolforge:editgroups/b/CB/abc123|details]])" {
		t.Fatal("unexpected", got)
	}
	if EditSummary("Add count", "") != "Add count" {
		t.Fatal("empty group should leave summary alone")
	}
	got = CommonsEditSummary("Add depicts", "abc123")
	if got != "Add depicts ([[:toolforge:editgroups-commons/b/CB/abc123|details]])" {
		t.Fatal("unexpected", got)
	}
	if NewEditGroup() == "" {
		t.Fatal("empty edit group")
	}
}
