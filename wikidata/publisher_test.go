package wikidata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type write struct {
	item  string
	guid  string
	value Value
}

// fakeKnowledgeBase keeps items in memory and records writes.
type fakeKnowledgeBase struct {
	entities map[string]*Entity
	session  bool
	loginErr error
	writeErr error
	logins   int
	writes   []write
}

func (f *fakeKnowledgeBase) LoggedIn() bool {
	return f.session
}

func (f *fakeKnowledgeBase) Login(username, password string) error {
	f.logins++
	return f.loginErr
}

func (f *fakeKnowledgeBase) Lookup(id string) (*Entity, error) {
	entity, found := f.entities[id]
	if !found {
		return nil, errors.Wrap(ErrItemNotFound, id)
	}
	return entity, nil
}

func (f *fakeKnowledgeBase) WriteStatement(entity *Entity, guid string, st Statement, summary string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, write{item: entity.ID, guid: guid, value: st.Value})
	return nil
}

func newFakeKB() *fakeKnowledgeBase {
	return &fakeKnowledgeBase{entities: map[string]*Entity{
		"Q123": {ID: "Q123", LastRevID: 5, Claims: map[string][]Claim{}},
		"Q456": {ID: "Q456", LastRevID: 6, Claims: map[string][]Claim{
			"P1114": {{ID: "Q456$OLD", Property: "P1114", Type: "quantity", value: quantityValue("+7")}},
		}},
	}}
}

func newTestPublisher(kb KnowledgeBase) *Publisher {
	p := NewPublisher(kb)
	p.newGUID = func(item string) string { return item + "$NEW" }
	return p
}

func countStatement(n int64) Statement {
	return Statement{Property: "P1114", Value: Quantity{Amount: n}}
}

var creds = Credentials{Username: "Bot@count", Password: "secret"}

func TestPublishCreates(t *testing.T) {
	kb := newFakeKB()
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	outcome, err := p.Publish("Q123", countStatement(42))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Created {
		t.Fatal("expected created, got", outcome)
	}
	expect := []write{{item: "Q123", guid: "Q123$NEW", value: Quantity{Amount: 42}}}
	if diff := cmp.Diff(expect, kb.writes, cmp.AllowUnexported(write{})); diff != "" {
		t.Fatal(diff)
	}
}

func TestPublishUpdatesExisting(t *testing.T) {
	kb := newFakeKB()
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	outcome, err := p.Publish("Q456", countStatement(9))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Updated {
		t.Fatal("expected updated, got", outcome)
	}
	if len(kb.writes) != 1 || kb.writes[0].guid != "Q456$OLD" {
		t.Fatal("existing statement not replaced", kb.writes)
	}
}

func TestPublishUnchanged(t *testing.T) {
	kb := newFakeKB()
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	outcome, err := p.Publish("Q456", countStatement(7))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Unchanged || len(kb.writes) != 0 {
		t.Fatal("expected no write, got", outcome, kb.writes)
	}
}

func TestPublishMissingItemNeverWrites(t *testing.T) {
	kb := newFakeKB()
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	_, err := p.Publish("Q999", countStatement(1))
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatal("expected", ErrItemNotFound, "got", err)
	}
	if len(kb.writes) != 0 {
		t.Fatal("wrote to a missing item")
	}
}

func TestLoginFailureNeverWrites(t *testing.T) {
	type testcase struct {
		name  string
		creds Credentials
		kb    *fakeKnowledgeBase
	}
	failing := newFakeKB()
	failing.loginErr = errors.New("Failed: Incorrect username or password entered.")
	testcases := []testcase{
		{name: "rejected", creds: creds, kb: failing},
		{name: "no credentials", creds: Credentials{}, kb: newFakeKB()},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPublisher(tc.kb)
			if err := p.Login(tc.creds); !errors.Is(err, ErrLogin) {
				t.Fatal("expected", ErrLogin, "got", err)
			}
			if _, err := p.Publish("Q123", countStatement(1)); !errors.Is(err, ErrNotLoggedIn) {
				t.Fatal("expected", ErrNotLoggedIn, "got", err)
			}
			if _, err := p.Add("Q123", []Statement{countStatement(1)}); !errors.Is(err, ErrNotLoggedIn) {
				t.Fatal("expected", ErrNotLoggedIn, "got", err)
			}
			if len(tc.kb.writes) != 0 {
				t.Fatal("write attempted after failed login")
			}
		})
	}
}

func TestLoginReusesSession(t *testing.T) {
	kb := newFakeKB()
	kb.session = true
	if err := newTestPublisher(kb).Login(Credentials{}); err != nil {
		t.Fatal(err)
	}
	if kb.logins != 0 {
		t.Fatal("logged in again despite a valid session")
	}
}

func TestPublishDryRun(t *testing.T) {
	kb := newFakeKB()
	p := newTestPublisher(kb)
	p.DryRun = true
	outcome, err := p.Publish("Q123", countStatement(3))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != DryRun || len(kb.writes) != 0 {
		t.Fatal("dry run wrote", kb.writes)
	}
}

func TestPublishSurfacesEditConflict(t *testing.T) {
	kb := newFakeKB()
	kb.writeErr = errors.Wrap(ErrEditConflict, "Q123")
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Publish("Q123", countStatement(3)); !errors.Is(err, ErrEditConflict) {
		t.Fatal("expected", ErrEditConflict, "got", err)
	}
}

func TestAddSkipsPresentValues(t *testing.T) {
	kb := newFakeKB()
	kb.entities["Q123"].Claims["P18"] = []Claim{{ID: "Q123$IMG", Property: "P18", Type: "string", value: stringValue("A.jpg")}}
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	statements := []Statement{
		{Property: "P18", Value: CommonsMedia{Name: "A.jpg"}},
		{Property: "P18", Value: CommonsMedia{Name: "B.jpg"}},
	}
	written, err := p.Add("Q123", statements)
	if err != nil {
		t.Fatal(err)
	}
	if written != 1 || len(kb.writes) != 1 {
		t.Fatal("expected one write, got", kb.writes)
	}
	if diff := cmp.Diff(CommonsMedia{Name: "B.jpg"}, kb.writes[0].value); diff != "" {
		t.Fatal(diff)
	}
}

func TestAddDepictsToMediaInfo(t *testing.T) {
	kb := newFakeKB()
	kb.entities["M555"] = &Entity{ID: "M555", LastRevID: 8, Claims: map[string][]Claim{
		"P180": {{ID: "M555$OLD", Property: "P180", Type: "wikibase-entityid", value: mustValue(`{"entity-type":"item","id":"Q123"}`)}},
	}}
	p := newTestPublisher(kb)
	if err := p.Login(creds); err != nil {
		t.Fatal(err)
	}
	statements := []Statement{
		{Property: PropertyDepicts, Value: ItemValue{ID: "Q123"}, Rank: "normal"},
		{Property: PropertyDepicts, Value: ItemValue{ID: "Q456"}, Rank: "normal"},
	}
	written, err := p.Add("M555", statements)
	if err != nil {
		t.Fatal(err)
	}
	expect := []write{{item: "M555", guid: "M555$NEW", value: ItemValue{ID: "Q456"}}}
	if written != 1 {
		t.Fatal("expected one write, got", written)
	}
	if diff := cmp.Diff(expect, kb.writes, cmp.AllowUnexported(write{})); diff != "" {
		t.Fatal(diff)
	}
}
