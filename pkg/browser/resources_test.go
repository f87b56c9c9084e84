package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestShouldBlock(t *testing.T) {
	set := blockedTypes([]string{"Image", "fonts", " Media ", ""})

	assert.True(t, shouldBlock(set, proto.NetworkResourceTypeImage))
	assert.True(t, shouldBlock(set, proto.NetworkResourceTypeFont))
	assert.True(t, shouldBlock(set, proto.NetworkResourceTypeMedia))
	assert.False(t, shouldBlock(set, proto.NetworkResourceTypeDocument))
	assert.False(t, shouldBlock(set, proto.NetworkResourceTypeScript))
	assert.False(t, shouldBlock(set, proto.NetworkResourceTypeXHR))
	assert.Len(t, set, 3)
}
