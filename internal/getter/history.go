package getter

import (
	"cmp"
	"slices"
	"time"

	"github.com/vmunix/sweepr/internal/plex"
)

// viewerSet returns the distinct account ids present in the events.
func viewerSet(events []plex.WatchEvent) map[int]struct{} {
	set := make(map[int]struct{}, len(events))
	for _, ev := range events {
		set[ev.AccountID] = struct{}{}
	}
	return set
}

// uniqueViewers returns distinct account ids in order of first appearance.
func uniqueViewers(events []plex.WatchEvent) []int {
	seen := make(map[int]struct{}, len(events))
	out := make([]int, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.AccountID]; ok {
			continue
		}
		seen[ev.AccountID] = struct{}{}
		out = append(out, ev.AccountID)
	}
	return out
}

// lastViewedAt returns the most recent view time.
func lastViewedAt(events []plex.WatchEvent) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}
	latest := events[0]
	for _, ev := range events[1:] {
		if ev.ViewedAt > latest.ViewedAt {
			latest = ev
		}
	}
	return latest.ViewedTime(), true
}

// byPositionDesc orders events by key, highest first. Ties keep the reverse of
// their fetch order: a stable ascending sort followed by a reversal.
func byPositionDesc(events []plex.WatchEvent, key func(plex.WatchEvent) int) []plex.WatchEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b plex.WatchEvent) int {
		return cmp.Compare(key(a), key(b))
	})
	slices.Reverse(out)
	return out
}

// lastWatchedByPosition picks the events of the highest season, then of the
// highest episode within it, and returns the latest view among them. It
// answers "when was the furthest episode watched", not "when was anything
// last watched".
func lastWatchedByPosition(events []plex.WatchEvent) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}

	bySeason := byPositionDesc(events, func(ev plex.WatchEvent) int { return ev.SeasonIndex })
	topSeason := bySeason[0].SeasonIndex
	inSeason := slices.DeleteFunc(bySeason, func(ev plex.WatchEvent) bool {
		return ev.SeasonIndex != topSeason
	})

	byEpisode := byPositionDesc(inSeason, func(ev plex.WatchEvent) int { return ev.EpisodeIndex })
	topEpisode := byEpisode[0].EpisodeIndex

	latest := byEpisode[0]
	for _, ev := range byEpisode[1:] {
		if ev.EpisodeIndex != topEpisode {
			break
		}
		if ev.ViewedAt > latest.ViewedAt {
			latest = ev
		}
	}
	return latest.ViewedTime(), true
}
