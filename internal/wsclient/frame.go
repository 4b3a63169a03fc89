// Package wsclient implements a long-lived WebSocket session manager: a
// process-wide registry of sessions, each driving a TX worker and a
// transport loop, correlating responses to requests by frame id.
package wsclient

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FrameKind distinguishes the WebSocket opcode an OutgoingFrame carries.
type FrameKind int

const (
	FrameText FrameKind = iota
	FrameBinary
	FramePing
	FramePong
	FrameClose
)

// IncomingFrame is one fully reassembled inbound message, tagged with the
// request id it correlates to (or "NULL" if the payload carried none) and
// the time it was received.
type IncomingFrame struct {
	FrameID        string
	Data           []byte
	LocalTimestamp time.Time
}

// OutgoingFrame is one message queued for the TX worker.
type OutgoingFrame struct {
	FrameID string
	Kind    FrameKind
	Payload []byte
}

const frameIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateFrameID renders "<method>-xxxx-xxxx" with each 'x' replaced by a
// random alphanumeric character, and '.' in method replaced by '_' (frame
// ids must match [A-Za-z0-9_-]+).
func generateFrameID(method string) string {
	method = strings.ReplaceAll(method, ".", "_")
	return method + "-" + randomAlphanumeric(4) + "-" + randomAlphanumeric(4)
}

func randomAlphanumeric(n int) string {
	var sb strings.Builder
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// uuid's generator already pulls from crypto/rand; fall back to it
		// so a frame id is still produced even if this read ever fails.
		id := uuid.New()
		copy(buf, id[:])
	}
	for _, b := range buf {
		sb.WriteByte(frameIDAlphabet[int(b)%len(frameIDAlphabet)])
	}
	return sb.String()
}

// closePayload encodes a WebSocket close code as a big-endian 16-bit value.
func closePayload(code uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, code)
	return buf
}
