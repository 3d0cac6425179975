package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSessions(t *testing.T, srv *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for srv.hub.SessionCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("SessionCount() = %d, want %d", srv.hub.SessionCount(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWebSocketStreamsPackets(t *testing.T) {
	srv, mux := newTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	conn := dialWS(t, ts)
	waitForSessions(t, srv, 1)

	for i := 0; i < 3; i++ {
		srv.hub.Publish(srv.engine.Tick())
	}

	for want := uint64(0); want < 3; want++ {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		// Decode loosely to pin the wire field names, not just the Go types.
		var frame map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &frame))
		for _, key := range []string{"timestamp", "sequence", "joints", "motors", "sensors", "power", "system"} {
			assert.Contains(t, frame, key)
		}

		var seq uint64
		require.NoError(t, json.Unmarshal(frame["sequence"], &seq))
		assert.Equal(t, want, seq)

		var joints map[string]struct {
			Position float64 `json:"position"`
			Velocity float64 `json:"velocity"`
			Torque   float64 `json:"torque"`
		}
		require.NoError(t, json.Unmarshal(frame["joints"], &joints))
		for _, name := range []string{"left_hip", "left_knee", "right_hip", "right_knee"} {
			assert.Contains(t, joints, name)
		}

		// With no faults injected the message list is an empty array on
		// the wire, not null.
		var system struct {
			ErrorMessages json.RawMessage `json:"error_messages"`
		}
		require.NoError(t, json.Unmarshal(frame["system"], &system))
		assert.Equal(t, "[]", string(system.ErrorMessages))
	}
}

func TestWebSocketDisconnectUnsubscribes(t *testing.T) {
	srv, mux := newTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	conn := dialWS(t, ts)
	waitForSessions(t, srv, 1)

	conn.Close()
	waitForSessions(t, srv, 0)
}

func TestWebSocketMultipleObserversSameOrder(t *testing.T) {
	srv, mux := newTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	a := dialWS(t, ts)
	b := dialWS(t, ts)
	waitForSessions(t, srv, 2)

	for i := 0; i < 5; i++ {
		srv.hub.Publish(srv.engine.Tick())
	}

	for _, conn := range []*websocket.Conn{a, b} {
		for want := uint64(0); want < 5; want++ {
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, data, err := conn.ReadMessage()
			require.NoError(t, err)
			var frame struct {
				Sequence uint64 `json:"sequence"`
			}
			require.NoError(t, json.Unmarshal(data, &frame))
			assert.Equal(t, want, frame.Sequence)
		}
	}
}

func TestWebSocketRejectedWhenHubClosed(t *testing.T) {
	srv, mux := newTestServer(t)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	srv.hub.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err) // upgrade succeeds, then the server says goodbye
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway) ||
		websocket.IsUnexpectedCloseError(err), "err = %v", err)
}
