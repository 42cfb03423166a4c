package workflow

import (
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/bump"
	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/classify"
)

// Pending suggests the bump for everything staged in the document text and
// returns the number of staged entries. Entries are classified by the block
// they sit in; a block or entry mentioning "breaking" counts as breaking.
func Pending(text string) (bump.Level, int) {
	staging := changelog.Parse(text).Staging()
	if staging == nil {
		return bump.None, 0
	}

	var cs []classify.Classification
	for _, b := range changelog.ParseStagingBody(staging.Body).Blocks {
		name := b.Name()
		blockBreaking := strings.Contains(strings.ToLower(name), "breaking")
		for _, entry := range b.Entries() {
			cs = append(cs, classify.Classification{
				Category: name,
				Breaking: blockBreaking || strings.Contains(strings.ToLower(entry), "breaking"),
			})
		}
	}
	return bump.SuggestAll(cs), len(cs)
}
