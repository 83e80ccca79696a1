package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echocommand/echod/internal/control"
	"github.com/echocommand/echod/internal/dispatch"
	"github.com/echocommand/echod/internal/history"
	"github.com/echocommand/echod/internal/intent"
	"github.com/echocommand/echod/internal/protocol"
	"github.com/echocommand/echod/internal/resolve"
	"github.com/echocommand/echod/internal/router"
	"github.com/echocommand/echod/internal/session"
)

type fixture struct {
	ts         *httptest.Server
	sessions   *session.Registry
	recorder   *history.Recorder
	controller *control.MockController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	sessions := session.NewRegistry(logger, 0, 0)
	controller := control.NewMockController()
	recorder := history.NewRecorder(0)
	dispatcher := dispatch.New(logger, controller, sessions, recorder)
	msgRouter := router.New(logger, sessions, dispatcher, resolve.NewKeyword(), resolve.NewPassthrough(), nil)

	srv := NewServer(logger, "127.0.0.1:0", msgRouter, sessions, recorder)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, sessions: sessions, recorder: recorder, controller: controller}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	f.sessions.Create("probe")

	var body struct {
		Status      string `json:"status"`
		Connections int    `json:"active_connections"`
		Sessions    struct {
			Total  int `json:"total"`
			Active int `json:"active"`
		} `json:"sessions"`
	}
	code := getJSON(t, f.ts.URL+"/healthz", &body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Zero(t, body.Connections)
	assert.Equal(t, 1, body.Sessions.Total)
	assert.Equal(t, 1, body.Sessions.Active)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.ts.URL+"/v1/sessions?owner=ops", "", nil)
	require.NoError(t, err)
	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.SessionID)

	var sess session.Session
	code := getJSON(t, f.ts.URL+"/v1/sessions/"+created.SessionID, &sess)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ops", sess.Owner)
	assert.True(t, sess.Active)

	req, err := http.NewRequest(http.MethodDelete, f.ts.URL+"/v1/sessions/"+created.SessionID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusOK, del.StatusCode)

	// Terminating twice reports not found.
	del, err = http.DefaultClient.Do(req.Clone(req.Context()))
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNotFound, del.StatusCode)
}

func TestSessionByIDRejectsBadPaths(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound, getJSON(t, f.ts.URL+"/v1/sessions/no-such-id", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, f.ts.URL+"/v1/sessions/a/b", nil))
}

func TestHistoryEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.Create("")
	in := intent.Intent{Category: intent.CategorySystemControl, Action: "mute"}
	f.recorder.Record(id, in, control.Result{Succeeded: true, Message: "audio muted"})
	f.recorder.Record("other", in, control.Result{Succeeded: false, Message: "failed"})

	var body struct {
		Records []history.Record `json:"records"`
		Stats   history.Stats    `json:"stats"`
	}
	code := getJSON(t, f.ts.URL+"/v1/history?session_id="+id, &body)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body.Records, 1)
	assert.Equal(t, id, body.Records[0].SessionID)
	assert.Equal(t, 2, body.Stats.Total)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, f.ts.URL+"/v1/history?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, f.ts.URL+"/v1/history?limit=-1", nil))
}

func TestWebSocketRoundTrip(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(protocol.Envelope{
		Type: protocol.MessageTypeText,
		Text: "mute the sound",
	}))
	var reply protocol.Response
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, protocol.MessageTypeResponse, reply.Type)
	assert.True(t, reply.Succeeded)
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, 1, f.controller.CallCounts["mute"])

	// The implicitly created session is live while the connection is up.
	sess, found := f.sessions.Get(reply.SessionID)
	require.True(t, found)
	assert.True(t, sess.Active)
}

func TestWebSocketOriginPolicy(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"

	// Cross-origin upgrade is refused.
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if conn != nil {
		conn.Close()
	}
	if resp != nil {
		resp.Body.Close()
	}
	assert.Error(t, err)

	// Same-host origin is accepted.
	header = http.Header{"Origin": []string{f.ts.URL}}
	conn, resp, err = websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	conn.Close()
}
