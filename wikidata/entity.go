package wikidata

import (
	"strconv"

	"github.com/antonholmquist/jason"
	"github.com/pkg/errors"
)

// Entity is an item as read from Wikidata.
type Entity struct {
	ID        string
	LastRevID int64
	Claims    map[string][]Claim // By property.
}

// HasClaims reports whether the item has at least one statement for
// property.
func (e *Entity) HasClaims(property string) bool {
	return len(e.Claims[property]) > 0
}

// IsCategoryItem reports whether the item is an instance of Wikimedia
// category.
func (e *Entity) IsCategoryItem() bool {
	for _, claim := range e.Claims[PropertyInstanceOf] {
		if id, ok := claim.EntityID(); ok && id == ItemWikimediaCategory {
			return true
		}
	}
	return false
}

// Claim is a statement read back from an item.
type Claim struct {
	ID       string // Statement GUID.
	Property string
	Rank     string
	Type     string // Datavalue type. Empty for novalue/somevalue snaks.
	value    *jason.Value
}

// Amount returns the amount of a quantity claim.
func (c Claim) Amount() (float64, bool) {
	if c.Type != "quantity" || c.value == nil {
		return 0, false
	}
	obj, err := c.value.Object()
	if err != nil {
		return 0, false
	}
	text, err := obj.GetString("amount")
	if err != nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(text, 64)
	return amount, err == nil
}

// EntityID returns the referenced id of an entity claim.
func (c Claim) EntityID() (string, bool) {
	if c.Type != "wikibase-entityid" || c.value == nil {
		return "", false
	}
	obj, err := c.value.Object()
	if err != nil {
		return "", false
	}
	id, err := obj.GetString("id")
	return id, err == nil
}

// Text returns the value of a string claim (commonsMedia, url, ...).
func (c Claim) Text() (string, bool) {
	if c.Type != "string" || c.value == nil {
		return "", false
	}
	text, err := c.value.String()
	return text, err == nil
}

// TimeString returns the timestamp of a time claim, e.g.
// "+2024-05-01T00:00:00Z".
func (c Claim) TimeString() (string, bool) {
	if c.Type != "time" || c.value == nil {
		return "", false
	}
	obj, err := c.value.Object()
	if err != nil {
		return "", false
	}
	text, err := obj.GetString("time")
	return text, err == nil
}

// Parse one member of the "entities" object of a wbgetentities reply.
func parseEntity(obj *jason.Object) (*Entity, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return nil, errors.Wrap(err, "entity without id")
	}
	entity := &Entity{ID: id, Claims: make(map[string][]Claim)}
	entity.LastRevID, _ = obj.GetInt64("lastrevid")
	// MediaInfo entities call their claims "statements".
	claims, err := obj.GetObject("claims")
	if err != nil {
		claims, err = obj.GetObject("statements")
	}
	if err != nil {
		// Entities without statements may report them as an empty array.
		return entity, nil
	}
	for property := range claims.Map() {
		list, err := claims.GetObjectArray(property)
		if err != nil {
			return nil, errors.Wrapf(err, "claims for %s on %s", property, id)
		}
		for _, claimObj := range list {
			claim := Claim{Property: property}
			claim.ID, _ = claimObj.GetString("id")
			claim.Rank, _ = claimObj.GetString("rank")
			if dataType, err := claimObj.GetString("mainsnak", "datavalue", "type"); err == nil {
				claim.Type = dataType
				claim.value, _ = claimObj.GetValue("mainsnak", "datavalue", "value")
			}
			entity.Claims[property] = append(entity.Claims[property], claim)
		}
	}
	return entity, nil
}
