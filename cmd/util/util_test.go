package util

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/sidkik/emoji-mirror/pkg/errors"
)

func mockExit(t *testing.T) *int {
	code := -1
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = os.Exit })
	return &code
}

func TestHandleFatalError(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	code := mockExit(t)
	HandleFatalError(errors.WithContext(errors.New("connection refused"), "fetch index"))
	assert.Equal(t, 1, *code)
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	}

	hook.Reset()
	code = mockExit(t)
	HandleFatalError(errors.WithContext(errors.NewFriendlyError("no token"), "load config"))
	assert.Equal(t, 1, *code)
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, entry.Level)
	}
}

func TestHandlePanic(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	code := mockExit(t)
	func() {
		defer HandlePanic()
		panic("boom")
	}()
	assert.Equal(t, 1, *code)
	assert.Equal(t, "Unexpected panic: boom", hook.LastEntry().Message)
}
