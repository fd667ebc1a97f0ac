package wikidata

import (
	"fmt"
	"math/rand/v2"
)

// NewEditGroup returns a random EditGroups batch id. Edits sharing it can
// be reviewed and reverted together.
func NewEditGroup() string {
	return fmt.Sprintf("%x", rand.Int64N(1<<48))
}

// EditSummary appends an EditGroups link for group to text, for edits on
// Wikidata.
func EditSummary(text, group string) string {
	return editGroupsLink("editgroups", text, group)
}

// CommonsEditSummary is EditSummary for edits on Commons, which has its own
// EditGroups instance.
func CommonsEditSummary(text, group string) string {
	return editGroupsLink("editgroups-commons", text, group)
}

func editGroupsLink(tool, text, group string) string {
	if group == "" {
		return text
	}
	return text + " ([[:toolforge:" + tool + "/b/CB/" + group + "|details]])"
}
