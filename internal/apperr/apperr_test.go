package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "❌ No sticky message found in this channel.")
	wrapped := fmt.Errorf("sticky stop: %w", err)

	assert.True(t, errors.Is(wrapped, NotFound))
	assert.False(t, errors.Is(wrapped, Conflict))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestUserMessage(t *testing.T) {
	msg, ok := UserMessage(New(CodeConflict, "❌ You're already AFK!"))
	assert.True(t, ok)
	assert.Equal(t, "❌ You're already AFK!", msg)

	_, ok = UserMessage(New(CodePersistence, "save failed"))
	assert.False(t, ok)

	_, ok = UserMessage(errors.New("boom"))
	assert.False(t, ok)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("http 500")
	err := Wrap(CodeTransient, "❌ Failed to set up sticky message.", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, Transient)
	assert.Equal(t, CodeUnknown, CodeOf(cause))
}
