package getter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vmunix/sweepr/internal/plex"
)

// foldName normalizes a collection name for comparison.
// Casers are stateful, so one is built per call.
func foldName(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// managedCollection returns the folded name of the rule's own collection.
func managedCollection(rc *RuleContext) (string, error) {
	if rc == nil {
		return "", ErrRuleContextRequired
	}
	return foldName(rc.ManagedCollection()), nil
}

// countUnmanaged counts tags that are not the managed collection.
// Every tag instance counts; duplicates are not collapsed.
func countUnmanaged(tags []plex.Tag, managed string) int {
	n := 0
	for _, t := range tags {
		if foldName(t.Tag) != managed {
			n++
		}
	}
	return n
}

// collectionUnion concatenates the collections of the item and its ancestors.
// Nil ancestors contribute nothing.
func collectionUnion(items ...*plex.MediaItem) []plex.Tag {
	var out []plex.Tag
	for _, item := range items {
		if item != nil {
			out = append(out, item.Collection...)
		}
	}
	return out
}

func tagNames(tags []plex.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Tag
	}
	return out
}

func trimmedTagNames(tags []plex.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.TrimSpace(t.Tag)
	}
	return out
}
