package errors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	assert.NoError(t, WithContext(nil, "ignored"))

	root := FileNotFound{Path: "/emoji/index.json"}
	err := WithContext(WithContext(root, "read"), "load index")
	assert.EqualError(t, err, `load index: read: "/emoji/index.json" does not exist`)
	assert.Equal(t, root, RootCause(err))
}

func TestFriendlyMessage(t *testing.T) {
	friendly := NewFriendlyError("missing %s", "token")
	msg, ok := GetFriendlyMessage(WithContext(friendly, "parse config"))
	assert.True(t, ok)
	assert.Equal(t, "missing token", msg)

	_, ok = GetFriendlyMessage(WithContext(os.ErrNotExist, "stat"))
	assert.False(t, ok)
}

func TestRemoteError(t *testing.T) {
	assert.EqualError(t, RemoteError{Op: "emoji.list", Reason: "invalid_auth"},
		"emoji.list: invalid_auth")
	assert.EqualError(t, RemoteError{Op: "download", StatusCode: 404, Reason: "404 Not Found"},
		"download: unexpected status 404: 404 Not Found")
}
