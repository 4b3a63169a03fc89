package wsclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoopbackEchoServer starts an httptest server that upgrades every
// connection to a WebSocket and reflects each incoming text message back
// verbatim.
func newLoopbackEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestManager_correlatesEchoedResponse(t *testing.T) {
	srv := newLoopbackEchoServer(t)

	m := NewManager()
	id, err := m.Init(wsURL(srv.URL), 2*time.Second, 0)
	require.NoError(t, err)

	_, err = m.WriteText(id, []byte(`{"id":"req-0001","method":"ping"}`), "req-0001")
	require.NoError(t, err)

	frame, ok, err := m.AwaitAndRetrieve(id, "req-0001", 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "req-0001", frame.FrameID)
	assert.Contains(t, string(frame.Data), "req-0001")

	require.NoError(t, m.Finalize(id))
}

func TestManager_awaitAndRetrieveTimesOutOnUnknownFrame(t *testing.T) {
	srv := newLoopbackEchoServer(t)

	m := NewManager()
	id, err := m.Init(wsURL(srv.URL), 2*time.Second, 0)
	require.NoError(t, err)

	_, ok, err := m.AwaitAndRetrieve(id, "never-sent", 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Finalize(id))
}

func TestManager_unknownSessionIDFails(t *testing.T) {
	m := NewManager()
	_, err := m.WriteText(999, []byte("x"), "")
	assert.Error(t, err)
}

func TestGenerateFrameID_dotsReplacedWithUnderscore(t *testing.T) {
	id := generateFrameID("ws.write.text")
	assert.True(t, strings.HasPrefix(id, "ws_write_text-"))
	assert.False(t, strings.Contains(id, "."))
}

func TestJSONBalanced(t *testing.T) {
	assert.True(t, jsonBalanced([]byte(`{"id":"a"}`)))
	assert.False(t, jsonBalanced([]byte(`{"id":"a"`)))
	assert.True(t, jsonBalanced([]byte(`{"a":"}{"}`)))
}

func TestExtractJSONID(t *testing.T) {
	assert.Equal(t, "req-0001", extractJSONID([]byte(`{"id":"req-0001","method":"ping"}`)))
	assert.Equal(t, "NULL", extractJSONID([]byte(`{"method":"ping"}`)))
}
