package wikidata

import (
	"strconv"
	"strings"

	mwclient "cgt.name/pkg/go-mwclient"
	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
	"github.com/apex/log"
	"github.com/pkg/errors"
)

// MediaWiki is the part of *mwclient.Client used to talk to Wikidata.
type MediaWiki interface {
	Get(p params.Values) (*jason.Object, error)
	Post(p params.Values) (*jason.Object, error)
	GetToken(tokenName string) (string, error)
	Login(username, password string) error
}

// Client reads and edits Wikidata items. It implements KnowledgeBase and
// ItemFinder.
type Client struct {
	mw MediaWiki

	// Language used for label searches.
	Language string
}

// NewClient wraps a go-mwclient client connected to the Wikidata API.
func NewClient(mw MediaWiki) *Client {
	return &Client{mw: mw, Language: "en"}
}

// LoggedIn reports whether the client's session cookies belong to a
// logged in user.
func (c *Client) LoggedIn() bool {
	_, err := c.mw.Get(params.Values{
		"action":   "query",
		"assert":   "user",
		"continue": "",
	})
	return err == nil
}

// Login authenticates with a user name and (bot) password.
func (c *Client) Login(username, password string) error {
	return c.mw.Login(username, password)
}

func apiErrorCode(err error) string {
	var apiErr mwclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// Lookup reads an item's or MediaInfo entity's revision id and
// statements. A missing item gives ErrItemNotFound, a missing MediaInfo
// entity comes back empty.
func (c *Client) Lookup(id string) (*Entity, error) {
	json, err := c.mw.Get(params.Values{
		"action": "wbgetentities",
		"ids":    id,
		"props":  "info|claims",
	})
	if err != nil {
		if apiErrorCode(err) == "no-such-entity" {
			return nil, errors.Wrap(ErrItemNotFound, id)
		}
		return nil, errors.Wrapf(err, "reading %s", id)
	}
	obj, err := json.GetObject("entities", id)
	if err != nil {
		return nil, errors.Wrap(ErrItemNotFound, id)
	}
	if _, err := obj.GetValue("missing"); err == nil {
		if ValidMediaInfo(id) {
			// A file without structured data yet. wbsetclaim creates it.
			return &Entity{ID: id, Claims: make(map[string][]Claim)}, nil
		}
		return nil, errors.Wrap(ErrItemNotFound, id)
	}
	if redirect, err := obj.GetString("redirects", "to"); err == nil {
		log.WithField("item", id).Warnf("redirects to %s", redirect)
	}
	return parseEntity(obj)
}

// FindBySitelink returns the item linked to a page of the given site, or
// "" if there is none. When the linked item is a Wikimedia category item,
// the item of its main topic is returned instead, or "" if it has no
// single main topic.
func (c *Client) FindBySitelink(site, title string) (string, error) {
	json, err := c.mw.Get(params.Values{
		"action": "wbgetentities",
		"sites":  site,
		"titles": title,
		"props":  "info|claims",
	})
	if err != nil {
		return "", errors.Wrapf(err, "sitelink lookup for %s", title)
	}
	entities, err := json.GetObject("entities")
	if err != nil {
		return "", nil
	}
	for id, value := range entities.Map() {
		obj, err := value.Object()
		if err != nil {
			continue
		}
		if _, err := obj.GetValue("missing"); err == nil || strings.HasPrefix(id, "-") {
			continue
		}
		entity, err := parseEntity(obj)
		if err != nil {
			return "", err
		}
		if !entity.IsCategoryItem() {
			return id, nil
		}
		topics := entity.Claims[PropertyMainTopic]
		if len(topics) != 1 {
			log.WithField("title", title).Debugf("%s is a category item without a single main topic", id)
			return "", nil
		}
		topic, ok := topics[0].EntityID()
		if !ok {
			return "", nil
		}
		log.WithField("title", title).Debugf("%s is a category item about %s", id, topic)
		return topic, nil
	}
	return "", nil
}

// Search returns the first item whose label or alias equals name, ignoring
// case, or "" if there is none.
func (c *Client) Search(name string) (string, error) {
	json, err := c.mw.Get(params.Values{
		"action":   "wbsearchentities",
		"search":   name,
		"language": c.Language,
		"type":     "item",
		"limit":    "10",
	})
	if err != nil {
		return "", errors.Wrapf(err, "searching for %s", name)
	}
	results, err := json.GetObjectArray("search")
	if err != nil {
		return "", nil
	}
	for _, result := range results {
		id, err := result.GetString("id")
		if err != nil {
			continue
		}
		label, _ := result.GetString("label")
		matched, _ := result.GetString("match", "text")
		if strings.EqualFold(label, name) || strings.EqualFold(matched, name) {
			return id, nil
		}
	}
	return "", nil
}

// WriteStatement sets the claim with the given GUID on entity, creating it
// or replacing an existing claim with the same GUID. The edit is based on
// the revision the entity was read at, so a concurrent edit gives
// ErrEditConflict.
func (c *Client) WriteStatement(entity *Entity, guid string, st Statement, summary string) error {
	claim, err := st.ClaimJSON(guid)
	if err != nil {
		return err
	}
	token, err := c.mw.GetToken(mwclient.CSRFToken)
	if err != nil {
		return errors.Wrap(err, "getting edit token")
	}
	p := params.Values{
		"action":  "wbsetclaim",
		"claim":   string(claim),
		"summary": summary,
		"token":   token,
		"bot":     "",
	}
	if entity.LastRevID > 0 {
		p["baserevid"] = strconv.FormatInt(entity.LastRevID, 10)
	}
	if _, err := c.mw.Post(p); err != nil {
		if apiErrorCode(err) == "editconflict" {
			return errors.Wrap(ErrEditConflict, entity.ID)
		}
		return errors.Wrapf(err, "writing %s on %s", st.Property, entity.ID)
	}
	return nil
}
