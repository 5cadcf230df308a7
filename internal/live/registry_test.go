// internal/live/registry_test.go
package live

import (
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPlayerAccepted(t *testing.T) {
	r := NewConnectionRegistry()
	sock := &fakeSocket{}

	conn, outcome := r.RegisterPlayer("ada", sock, false)
	require.NotNil(t, conn)
	assert.Equal(t, Accepted, outcome)
	assert.Equal(t, 1, r.PlayerCount())
}

func TestRegisterPlayerDuplicateRejected(t *testing.T) {
	r := NewConnectionRegistry()
	first := &fakeSocket{}
	second := &fakeSocket{}

	original, _ := r.RegisterPlayer("ada", first, false)
	conn, outcome := r.RegisterPlayer("ada", second, false)

	assert.Nil(t, conn)
	assert.Equal(t, RejectedDuplicate, outcome)
	assert.True(t, second.wasClosed(), "the rejected socket must be closed")
	assert.Equal(t, websocket.StatusPolicyViolation, second.closeCode)
	assert.False(t, first.wasClosed(), "the original socket must stay open")

	// The original registration is untouched.
	snap := r.SnapshotPlayers()
	require.Len(t, snap, 1)
	assert.Same(t, original, snap[0])
}

func TestRegisterPlayerReconnectSupersedes(t *testing.T) {
	r := NewConnectionRegistry()
	first := &fakeSocket{}
	second := &fakeSocket{}

	old, _ := r.RegisterPlayer("ada", first, false)
	replacement, outcome := r.RegisterPlayer("ada", second, true)

	require.NotNil(t, replacement)
	assert.Equal(t, SupersededPrevious, outcome)
	assert.True(t, first.wasClosed(), "the superseded socket must be closed")
	assert.Equal(t, websocket.StatusNormalClosure, first.closeCode)
	assert.Equal(t, 1, r.PlayerCount(), "exactly one entry per name")
	assert.NotEqual(t, old.ConnID, replacement.ConnID)

	snap := r.SnapshotPlayers()
	require.Len(t, snap, 1)
	assert.Same(t, replacement, snap[0])
}

func TestRemovePlayerSupersededCleanupIsNoOp(t *testing.T) {
	r := NewConnectionRegistry()
	old, _ := r.RegisterPlayer("ada", &fakeSocket{}, false)
	replacement, _ := r.RegisterPlayer("ada", &fakeSocket{}, true)

	// The old connection's deferred cleanup fires after the reconnect.
	r.RemovePlayer(old)

	snap := r.SnapshotPlayers()
	require.Len(t, snap, 1, "the replacement must not be evicted")
	assert.Same(t, replacement, snap[0])
}

func TestRemovePlayerIdempotent(t *testing.T) {
	r := NewConnectionRegistry()
	conn, _ := r.RegisterPlayer("ada", &fakeSocket{}, false)

	r.RemovePlayer(conn)
	r.RemovePlayer(conn)
	r.RemovePlayer(nil)

	assert.Equal(t, 0, r.PlayerCount())
}

func TestSpectatorLifecycle(t *testing.T) {
	r := NewConnectionRegistry()

	a := r.RegisterSpectator(&fakeSocket{})
	b := r.RegisterSpectator(&fakeSocket{})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.SpectatorCount())

	r.RemoveSpectator(a.ID)
	r.RemoveSpectator(a.ID)
	assert.Equal(t, 1, r.SpectatorCount())
}

func TestTouchSpectatorRefreshesActivity(t *testing.T) {
	r := NewConnectionRegistry()
	clock := newFakeClock()
	r.now = clock.now

	conn := r.RegisterSpectator(&fakeSocket{})
	before := conn.LastActive

	clock.advance(30 * time.Second)
	r.TouchSpectator(conn.ID)

	assert.True(t, conn.LastActive.After(before))
}
