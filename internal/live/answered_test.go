// internal/live/answered_test.go
package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnsweredSet(t *testing.T) {
	s := NewAnsweredSet()

	assert.True(t, s.Add("ada"))
	assert.False(t, s.Add("ada"), "second add for the same name must report duplicate")
	assert.True(t, s.Has("ada"))
	assert.True(t, s.Add("bob"))
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Add("ada"), "a cleared set accepts the name again")
}
