package wsclient

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

// Manager is a process-wide registry of WebSocket sessions. Session
// creation/destruction and any one-time transport-library init are guarded
// by a single registry-wide mutex; each Session then owns its own mutex for
// its deques and running flag. The zero value is not usable; use NewManager.
type Manager struct {
	mu       sync.Mutex
	sessions map[int]*Session
	nextID   int
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int]*Session)}
}

// Init opens an outbound WebSocket session to url, spawns its TX worker and
// transport loop, and does not return until the scheme upgrade has
// completed (gorilla/websocket's Dial performs the HTTP 101 handshake
// synchronously, so that is satisfied by Dial returning without error).
// recvBufferSize sets the transport's read buffer; 0 keeps the transport
// default.
func (m *Manager) Init(url string, connectTimeout time.Duration, recvBufferSize int) (int, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: connectTimeout,
		ReadBufferSize:   recvBufferSize,
	}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return 0, cerr.New("opening websocket session to "+url, err, cerr.ErrTransport)
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	sess := newSession(id, conn)
	m.sessions[id] = sess
	m.mu.Unlock()

	go sess.runTX()
	go sess.runTransport()

	return id, nil
}

func (m *Manager) session(id int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s == nil {
		return nil, cerr.New("unknown session id", cerr.ErrTransport)
	}
	return s, nil
}

func (m *Manager) write(id int, method string, kind FrameKind, payload []byte, frameID string) (string, error) {
	s, err := m.session(id)
	if err != nil {
		return "", err
	}
	if frameID == "" {
		frameID = generateFrameID(method)
	}
	s.enqueueTX(OutgoingFrame{FrameID: frameID, Kind: kind, Payload: payload})
	return frameID, nil
}

// WriteText enqueues a text frame and returns its frame id.
func (m *Manager) WriteText(id int, payload []byte, frameID string) (string, error) {
	return m.write(id, "ws.write.text", FrameText, payload, frameID)
}

// WriteBinary enqueues a binary frame and returns its frame id.
func (m *Manager) WriteBinary(id int, payload []byte, frameID string) (string, error) {
	return m.write(id, "ws.write.binary", FrameBinary, payload, frameID)
}

// WritePing enqueues a ping frame (empty payload) and returns its frame id.
func (m *Manager) WritePing(id int, frameID string) (string, error) {
	return m.write(id, "ws.write.ping", FramePing, nil, frameID)
}

// WritePong enqueues a pong frame (empty payload) and returns its frame id.
func (m *Manager) WritePong(id int, frameID string) (string, error) {
	return m.write(id, "ws.write.pong", FramePong, nil, frameID)
}

// WriteClose enqueues a close frame carrying the given 16-bit code in
// network byte order and returns its frame id.
func (m *Manager) WriteClose(id int, code uint16, frameID string) (string, error) {
	return m.write(id, "ws.write.close", FrameClose, closePayload(code), frameID)
}

// AwaitAndRetrieve waits up to timeout for session id's RX deque to contain
// a frame whose id matches targetFrameID, scanning newest to oldest, and
// removes it on a hit.
func (m *Manager) AwaitAndRetrieve(id int, targetFrameID string, timeout time.Duration) (IncomingFrame, bool, error) {
	s, err := m.session(id)
	if err != nil {
		return IncomingFrame{}, false, err
	}
	f, ok := s.awaitAndRetrieve(targetFrameID, timeout)
	return f, ok, nil
}

// Finalize performs graceful shutdown: send a close frame, wait for the TX
// deque to drain, retire the session, wait for the transport loop to
// observe retirement and exit, then null the registry slot (keeping the id
// pinned rather than reusing it).
func (m *Manager) Finalize(id int) error {
	s, err := m.session(id)
	if err != nil {
		return err
	}

	if _, err := m.WriteClose(id, 1000, ""); err != nil {
		return err
	}
	s.waitToFlush()
	s.retire()
	s.waitLoopToFinish()
	_ = s.conn.Close()

	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()
	return nil
}
