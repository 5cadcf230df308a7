// internal/live/registry.go
package live

import (
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// RegisterOutcome reports what happened to a player registration.
type RegisterOutcome int

const (
	Accepted RegisterOutcome = iota
	RejectedDuplicate
	SupersededPrevious
)

// PlayerConn is one identified player connection. Players are keyed by
// display name, not connection id, so a reconnect can supersede a
// stale socket for the same name.
type PlayerConn struct {
	Name   string
	Socket Socket
	ConnID uuid.UUID
}

// SpectatorConn is one anonymous spectator connection.
type SpectatorConn struct {
	ID         uuid.UUID
	Socket     Socket
	LastActive time.Time
}

// ConnectionRegistry is the in-memory directory of live connections.
// Mutation never interleaves with broadcast iteration: broadcasters
// take a snapshot copy and iterate that.
type ConnectionRegistry struct {
	mu         sync.Mutex
	players    map[string]*PlayerConn
	spectators map[uuid.UUID]*SpectatorConn
	now        func() time.Time
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		players:    make(map[string]*PlayerConn),
		spectators: make(map[uuid.UUID]*SpectatorConn),
		now:        time.Now,
	}
}

// RegisterPlayer installs a connection under the given name. This is a
// compare-and-swap by name: a duplicate without the reconnect flag is
// rejected and its socket closed, leaving the existing entry intact; a
// reconnect closes the previous socket and takes over the name. Close
// errors on the losing socket are swallowed; the registry transition
// always proceeds.
func (r *ConnectionRegistry) RegisterPlayer(name string, sock Socket, reconnect bool) (*PlayerConn, RegisterOutcome) {
	r.mu.Lock()
	prev, exists := r.players[name]
	if exists && !reconnect {
		r.mu.Unlock()
		_ = sock.Close(websocket.StatusPolicyViolation, "name already taken")
		return nil, RejectedDuplicate
	}

	conn := &PlayerConn{Name: name, Socket: sock, ConnID: uuid.New()}
	r.players[name] = conn
	r.mu.Unlock()

	if exists {
		_ = prev.Socket.Close(websocket.StatusNormalClosure, "superseded by reconnect")
		return conn, SupersededPrevious
	}
	return conn, Accepted
}

// RemovePlayer deletes the entry for conn's name, but only if conn is
// still the registered connection. A superseded connection's cleanup
// must not evict its replacement. Idempotent.
func (r *ConnectionRegistry) RemovePlayer(conn *PlayerConn) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	if cur, ok := r.players[conn.Name]; ok && cur == conn {
		delete(r.players, conn.Name)
	}
	r.mu.Unlock()
}

// RegisterSpectator always accepts; spectators carry no identity.
func (r *ConnectionRegistry) RegisterSpectator(sock Socket) *SpectatorConn {
	conn := &SpectatorConn{ID: uuid.New(), Socket: sock, LastActive: r.now()}
	r.mu.Lock()
	r.spectators[conn.ID] = conn
	r.mu.Unlock()
	return conn
}

// RemoveSpectator is idempotent; removing an absent id is a no-op.
func (r *ConnectionRegistry) RemoveSpectator(id uuid.UUID) {
	r.mu.Lock()
	delete(r.spectators, id)
	r.mu.Unlock()
}

// TouchSpectator refreshes a spectator's last-activity timestamp.
func (r *ConnectionRegistry) TouchSpectator(id uuid.UUID) {
	r.mu.Lock()
	if s, ok := r.spectators[id]; ok {
		s.LastActive = r.now()
	}
	r.mu.Unlock()
}

// SnapshotPlayers returns a point-in-time copy for safe iteration
// during concurrent broadcast.
func (r *ConnectionRegistry) SnapshotPlayers() []*PlayerConn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*PlayerConn, 0, len(r.players))
	for _, c := range r.players {
		out = append(out, c)
	}
	return out
}

// SnapshotSpectators returns a point-in-time copy of spectators.
func (r *ConnectionRegistry) SnapshotSpectators() []*SpectatorConn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*SpectatorConn, 0, len(r.spectators))
	for _, c := range r.spectators {
		out = append(out, c)
	}
	return out
}

// PlayerCount reports how many named players are connected.
func (r *ConnectionRegistry) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// SpectatorCount reports how many spectators are connected.
func (r *ConnectionRegistry) SpectatorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spectators)
}
