package wsclient

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

const transportPollInterval = 1 * time.Second

// Session holds one WebSocket connection's mutable state: its two deques,
// the partial-frame receive buffer, the running flag, and the condition
// variable the TX worker, awaitAndRetrieve, waitToFlush and waitLoopToFinish
// block on (the transport loop blocks in ReadMessage instead).
type Session struct {
	id   int
	conn *websocket.Conn

	mu       sync.Mutex
	cond     *sync.Cond
	rx       []IncomingFrame
	tx       []OutgoingFrame
	rxBuffer []byte
	running  bool
	upgraded bool
	loopDone bool
}

func newSession(id int, conn *websocket.Conn) *Session {
	s := &Session{id: id, conn: conn, running: true}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// notify wakes every waiter blocked on the session's condition variable.
// Callers must hold s.mu.
func (s *Session) notify() {
	s.cond.Broadcast()
}

// runTX waits until either the session is retired or the TX deque is
// non-empty, then drains it FIFO, sending each frame over the transport.
// A send failure is logged and does not retire the session. After draining
// it re-notifies so a WaitToFlush caller observes the empty deque.
func (s *Session) runTX() {
	for {
		s.mu.Lock()
		for s.running && len(s.tx) == 0 {
			s.cond.Wait()
		}
		if !s.running && len(s.tx) == 0 {
			s.mu.Unlock()
			return
		}
		pending := s.tx
		s.tx = nil
		s.mu.Unlock()

		for _, f := range pending {
			if err := s.send(f); err != nil {
				log.Printf("wsclient: session %d: send %s failed: %v", s.id, f.FrameID, err)
			}
		}

		s.mu.Lock()
		s.notify()
		s.mu.Unlock()
	}
}

func (s *Session) send(f OutgoingFrame) error {
	switch f.Kind {
	case FrameText:
		return s.conn.WriteMessage(websocket.TextMessage, f.Payload)
	case FrameBinary:
		return s.conn.WriteMessage(websocket.BinaryMessage, f.Payload)
	case FramePing:
		return s.conn.WriteMessage(websocket.PingMessage, f.Payload)
	case FramePong:
		return s.conn.WriteMessage(websocket.PongMessage, f.Payload)
	case FrameClose:
		return s.conn.WriteMessage(websocket.CloseMessage, f.Payload)
	default:
		return cerr.New("unknown frame kind", cerr.ErrTransport)
	}
}

// runTransport drives the connection's read side: one blocking ReadMessage
// per iteration, each chunk fed to onChunk. Dial already performed the
// ws/wss scheme upgrade synchronously before this loop starts, so the
// upgraded flag is set up front rather than detected mid-loop.
func (s *Session) runTransport() {
	s.mu.Lock()
	s.upgraded = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		retired := !s.running
		s.mu.Unlock()
		if retired {
			break
		}

		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			log.Printf("wsclient: session %d: transport event: %v", s.id, err)
			s.mu.Lock()
			retired = !s.running
			s.mu.Unlock()
			if retired {
				break
			}
			time.Sleep(transportPollInterval)
			continue
		}

		// gorilla/websocket's default close handler intercepts close
		// frames inside ReadMessage and surfaces them as an error, so only
		// text/binary payloads ever reach here as a successful read.
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			s.onChunk(data)
		}
	}

	s.mu.Lock()
	s.loopDone = true
	s.notify()
	s.mu.Unlock()
}

// onChunk implements the RX callback: append to rxBuffer, check for a
// syntactically complete JSON document via brace/bracket/string-depth
// balancing (not a full parse), and on completion extract "id" and push an
// IncomingFrame.
func (s *Session) onChunk(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rxBuffer = append(s.rxBuffer, chunk...)
	if !jsonBalanced(s.rxBuffer) {
		log.Printf("wsclient: session %d: partial chunk buffered (%d bytes)", s.id, len(s.rxBuffer))
		return
	}

	data := s.rxBuffer
	s.rxBuffer = nil

	frameID := extractJSONID(data)
	s.rx = append(s.rx, IncomingFrame{
		FrameID:        frameID,
		Data:           data,
		LocalTimestamp: time.Now(),
	})
	s.notify()
}

// enqueueTX appends f to the TX deque and wakes the TX worker.
func (s *Session) enqueueTX(f OutgoingFrame) {
	s.mu.Lock()
	s.tx = append(s.tx, f)
	s.notify()
	s.mu.Unlock()
}

// awaitAndRetrieve waits up to timeout for the RX deque to contain a frame
// whose FrameID matches target, scanning from newest to oldest, and removes
// it on a hit.
func (s *Session) awaitAndRetrieve(target string, timeout time.Duration) (IncomingFrame, bool) {
	deadline := time.Now().Add(timeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if idx := findNewestFrame(s.rx, target); idx >= 0 {
			f := s.rx[idx]
			s.rx = append(s.rx[:idx], s.rx[idx+1:]...)
			return f, true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Printf("wsclient: session %d: await_and_retrieve timed out for %s", s.id, target)
			return IncomingFrame{}, false
		}
		waitOnCondWithTimeout(s.cond, remaining)
	}
}

func findNewestFrame(rx []IncomingFrame, target string) int {
	for i := len(rx) - 1; i >= 0; i-- {
		if rx[i].FrameID == target {
			return i
		}
	}
	return -1
}

// waitOnCondWithTimeout blocks on cond until the next Broadcast/Signal or
// until timeout elapses, whichever comes first. The caller must hold the
// cond's locker; it is released while waiting and re-acquired before
// returning, matching sync.Cond.Wait's contract.
func waitOnCondWithTimeout(cond *sync.Cond, timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}

// waitToFlush blocks until the TX deque is empty.
func (s *Session) waitToFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.tx) > 0 {
		s.cond.Wait()
	}
}

// waitLoopToFinish blocks until the transport loop has observed retirement
// and exited.
func (s *Session) waitLoopToFinish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.loopDone {
		s.cond.Wait()
	}
}

// retire marks the session as no longer alive and wakes every waiter.
func (s *Session) retire() {
	s.mu.Lock()
	s.running = false
	s.notify()
	s.mu.Unlock()
}
