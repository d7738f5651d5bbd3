package emoji

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		raw           map[string]string
		exp           FlatIndex
		expUnresolved []UnresolvedAliasError
	}{
		{
			name: "Empty",
			raw:  map[string]string{},
			exp:  FlatIndex{},
		},
		{
			name: "NoAliases",
			raw: map[string]string{
				"smile": "https://emoji.slack-edge.com/T1/smile/1.png",
				"wink":  "https://emoji.slack-edge.com/T1/wink/2.gif",
			},
			exp: FlatIndex{
				"smile": "https://emoji.slack-edge.com/T1/smile/1.png",
				"wink":  "https://emoji.slack-edge.com/T1/wink/2.gif",
			},
		},
		{
			name: "Alias",
			raw:  map[string]string{"a": "url1", "b": "alias:a"},
			exp:  FlatIndex{"a": "url1", "b": "url1"},
		},
		{
			name: "MissingReferent",
			raw:  map[string]string{"a": "url1", "b": "alias:gone"},
			exp:  FlatIndex{"a": "url1"},
			expUnresolved: []UnresolvedAliasError{
				{Name: "b", Target: "gone"},
			},
		},
		{
			name: "Chain",
			raw:  map[string]string{"a": "url1", "b": "alias:a", "c": "alias:b"},
			exp:  FlatIndex{"a": "url1", "b": "url1"},
			expUnresolved: []UnresolvedAliasError{
				{Name: "c", Target: "b"},
			},
		},
		{
			name: "Cycle",
			raw:  map[string]string{"a": "alias:b", "b": "alias:a"},
			exp:  FlatIndex{},
			expUnresolved: []UnresolvedAliasError{
				{Name: "a", Target: "b"},
				{Name: "b", Target: "a"},
			},
		},
		{
			name: "EmptyTarget",
			raw:  map[string]string{"a": "", "b": "alias:a", "c": "url1"},
			exp:  FlatIndex{"c": "url1"},
			expUnresolved: []UnresolvedAliasError{
				{Name: "a"},
				{Name: "b", Target: "a"},
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			flat, unresolved := Resolve(test.raw)
			sort.Slice(unresolved, func(i, j int) bool {
				return unresolved[i].Name < unresolved[j].Name
			})
			assert.Equal(t, test.exp, flat)
			assert.Equal(t, test.expUnresolved, unresolved)
		})
	}
}

func TestResolveDirectTargetsUnchanged(t *testing.T) {
	raw := map[string]string{}
	for i := 0; i < 100; i++ {
		raw[fmt.Sprintf("emoji-%d", i)] = fmt.Sprintf("https://example.com/%d.png", rand.Int())
	}

	flat, unresolved := Resolve(raw)
	assert.Empty(t, unresolved)
	assert.Equal(t, FlatIndex(raw), flat)
}

func TestRawIndexJSON(t *testing.T) {
	var index RawIndex
	require.NoError(t, json.Unmarshal(
		[]byte(`{"ok":true,"emoji":{"smile":"http://a/1.png","grin":"alias:smile"},"cache_ts":"1"}`),
		&index))
	assert.Equal(t, RawIndex{
		OK:    true,
		Emoji: map[string]string{"smile": "http://a/1.png", "grin": "alias:smile"},
	}, index)

	out, err := json.Marshal(EmptyRawIndex())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"emoji":{}}`, string(out))
}
