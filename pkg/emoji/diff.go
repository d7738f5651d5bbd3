package emoji

import "sort"

// Entry is a single emoji in a FlatIndex.
type Entry struct {
	Name string
	URL  string
}

// Delta is the work needed to bring the mirrored files in line with a new
// index.
type Delta struct {
	// ToAdd contains the emojis that are new, or whose URL changed. They need
	// to be downloaded.
	ToAdd []Entry

	// ToRemove contains the emojis that are gone, or whose URL changed. Their
	// local files need to be deleted.
	ToRemove []Entry
}

// Empty returns whether the delta requires no changes.
func (d Delta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Diff returns the emojis that need to be downloaded or removed to go from
// the previous index to the current one. An emoji whose URL changed shows up
// in both lists. A renamed emoji is treated as an unrelated removal and
// addition.
// Both lists are sorted by name.
func Diff(previous, current FlatIndex) Delta {
	return Delta{
		ToAdd:    changed(current, previous),
		ToRemove: changed(previous, current),
	}
}

// changed returns the entries in `from` that are missing from `other`, or
// that have a different URL there.
func changed(from, other FlatIndex) (entries []Entry) {
	for name, url := range from {
		if otherURL, ok := other[name]; !ok || otherURL != url {
			entries = append(entries, Entry{Name: name, URL: url})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}
