package emoji

import (
	"fmt"
	"strings"
)

// AliasPrefix marks a target as a reference to another emoji in the same
// index.
const AliasPrefix = "alias:"

// RawIndex is the emoji index as returned by Slack.
type RawIndex struct {
	OK bool `json:"ok"`

	// Error is only set by Slack when OK is false.
	Error string `json:"error,omitempty"`

	// Emoji maps each emoji name to either a URL or an alias reference.
	Emoji map[string]string `json:"emoji"`
}

// EmptyRawIndex returns the index used when nothing has been mirrored yet.
func EmptyRawIndex() RawIndex {
	return RawIndex{OK: true, Emoji: map[string]string{}}
}

// FlatIndex maps each emoji name to the URL of its image.
type FlatIndex map[string]string

// UnresolvedAliasError describes an emoji that doesn't resolve to a URL:
// either an alias that doesn't point at an emoji with a direct URL, or an
// emoji whose target is empty. Target is empty in the latter case.
type UnresolvedAliasError struct {
	Name   string
	Target string
}

func (err UnresolvedAliasError) Error() string {
	if err.Target == "" {
		return fmt.Sprintf("emoji %q has no image URL", err.Name)
	}
	return fmt.Sprintf("alias %q -> %q does not resolve to an image", err.Name, err.Target)
}

// IsAlias returns whether target references another emoji.
func IsAlias(target string) bool {
	return strings.HasPrefix(target, AliasPrefix)
}

// Resolve replaces each alias in raw with the URL of the emoji it refers to.
// Only one level of aliasing is followed. Aliases that point at a missing
// emoji, or at another alias, are left out of the returned index and
// reported instead, as are emoji with an empty target.
func Resolve(raw map[string]string) (FlatIndex, []UnresolvedAliasError) {
	flat := FlatIndex{}
	var unresolved []UnresolvedAliasError
	for name, target := range raw {
		if target == "" {
			unresolved = append(unresolved, UnresolvedAliasError{Name: name})
			continue
		}
		if !IsAlias(target) {
			flat[name] = target
			continue
		}

		ref := strings.TrimPrefix(target, AliasPrefix)
		url, ok := raw[ref]
		if !ok || url == "" || IsAlias(url) {
			unresolved = append(unresolved, UnresolvedAliasError{Name: name, Target: ref})
			continue
		}
		flat[name] = url
	}
	return flat, unresolved
}
