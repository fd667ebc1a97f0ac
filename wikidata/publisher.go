package wikidata

import (
	"os"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// KnowledgeBase is what the Publisher needs from Wikidata. *Client
// implements it.
type KnowledgeBase interface {
	LoggedIn() bool
	Login(username, password string) error
	Lookup(id string) (*Entity, error)
	WriteStatement(entity *Entity, guid string, st Statement, summary string) error
}

// Credentials for the bot account, normally a bot password.
type Credentials struct {
	Username string
	Password string
}

// CredentialsFromEnv reads <prefix>_username and <prefix>_password.
func CredentialsFromEnv(prefix string) Credentials {
	return Credentials{
		Username: os.Getenv(prefix + "_username"),
		Password: os.Getenv(prefix + "_password"),
	}
}

// Outcome of publishing a statement.
type Outcome int

const (
	Created Outcome = iota
	Updated
	Unchanged
	DryRun
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case DryRun:
		return "dry run"
	}
	return "unknown"
}

// Publisher writes statements to items.
type Publisher struct {
	kb       KnowledgeBase
	loggedIn bool
	newGUID  func(item string) string

	// DryRun does everything except the write.
	DryRun bool
	// Summary is the edit summary of every write.
	Summary string
}

// NewPublisher returns a Publisher writing through kb.
func NewPublisher(kb KnowledgeBase) *Publisher {
	return &Publisher{
		kb: kb,
		newGUID: func(item string) string {
			return item + "$" + uuid.Must(uuid.NewRandom()).String()
		},
	}
}

// Login reuses the current session if it is still logged in, else
// authenticates with creds. Publish refuses to write until Login has
// succeeded.
func (p *Publisher) Login(creds Credentials) error {
	if p.kb.LoggedIn() {
		log.Debug("session cookies are still logged in")
		p.loggedIn = true
		return nil
	}
	if creds.Username == "" || creds.Password == "" {
		return errors.Wrap(ErrLogin, "username or password not set in environment")
	}
	if err := p.kb.Login(creds.Username, creds.Password); err != nil {
		return errors.Wrap(ErrLogin, err.Error())
	}
	log.WithField("user", creds.Username).Debug("logged in")
	p.loggedIn = true
	return nil
}

// Lookup reads an item.
func (p *Publisher) Lookup(item string) (*Entity, error) {
	if !ValidEntity(item) {
		return nil, errors.Wrapf(ErrMalformedInput, "item %q", item)
	}
	return p.kb.Lookup(item)
}

func (p *Publisher) checkLogin() error {
	if !p.DryRun && !p.loggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

// Publish writes a single-valued statement: if the item already has a
// statement for the property with the same value nothing is written,
// if it has one with another value that statement is replaced, otherwise
// a new one is created.
func (p *Publisher) Publish(item string, st Statement) (Outcome, error) {
	if err := p.checkLogin(); err != nil {
		return 0, err
	}
	entity, err := p.Lookup(item)
	if err != nil {
		return 0, err
	}
	logger := log.WithField("item", item).WithField("property", st.Property)
	existing := entity.Claims[st.Property]
	for _, claim := range existing {
		if st.Value.Matches(claim) {
			logger.Debug("statement already up to date")
			return Unchanged, nil
		}
	}
	outcome := Created
	var guid string
	if len(existing) > 0 {
		if len(existing) > 1 {
			logger.Warnf("%d statements, replacing the first", len(existing))
		}
		guid = existing[0].ID
		outcome = Updated
	} else {
		guid = p.newGUID(item)
	}
	if p.DryRun {
		logger.Infof("dry run, would have %s statement", outcome)
		return DryRun, nil
	}
	if err := p.kb.WriteStatement(entity, guid, st, p.Summary); err != nil {
		return 0, err
	}
	logger.Infof("statement %s", outcome)
	return outcome, nil
}

// Add appends statements whose value isn't on the item yet, and returns
// how many were written (or would have been, in a dry run).
func (p *Publisher) Add(item string, statements []Statement) (int, error) {
	if err := p.checkLogin(); err != nil {
		return 0, err
	}
	entity, err := p.Lookup(item)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, st := range statements {
		present := false
		for _, claim := range entity.Claims[st.Property] {
			if st.Value.Matches(claim) {
				present = true
				break
			}
		}
		if present {
			continue
		}
		if !p.DryRun {
			if err := p.kb.WriteStatement(entity, p.newGUID(item), st, p.Summary); err != nil {
				return written, err
			}
			// LastRevID is stale after our own edit.
			entity.LastRevID = 0
		}
		written++
	}
	log.WithField("item", item).Infof("%d statements added", written)
	return written, nil
}
