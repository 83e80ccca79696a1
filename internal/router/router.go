// Package router is the protocol state machine. It correlates inbound
// envelopes to sessions, routes them by message type, and guarantees that no
// single malformed message can take the connection down: only transport
// failures terminate a connection.
package router

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/echocommand/echod/internal/control"
	"github.com/echocommand/echod/internal/dispatch"
	"github.com/echocommand/echod/internal/intent"
	"github.com/echocommand/echod/internal/protocol"
	"github.com/echocommand/echod/internal/session"
)

// Resolver turns an utterance into an intent. Resolution quality is a
// collaborator concern; the router only consumes the structured result.
type Resolver interface {
	Resolve(ctx context.Context, text string) (intent.Intent, error)
}

// Transcriber turns raw audio into text. An empty transcript means
// recognition failed.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error)
}

// Synthesizer renders a spoken reply. Optional; failures are never fatal.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Router drives the per-connection message loop.
type Router struct {
	logger      *log.Logger
	sessions    *session.Registry
	dispatcher  *dispatch.Dispatcher
	resolver    Resolver
	transcriber Transcriber
	synthesizer Synthesizer
}

func New(logger *log.Logger, sessions *session.Registry, dispatcher *dispatch.Dispatcher, resolver Resolver, transcriber Transcriber, synthesizer Synthesizer) *Router {
	return &Router{
		logger:      logger,
		sessions:    sessions,
		dispatcher:  dispatcher,
		resolver:    resolver,
		transcriber: transcriber,
		synthesizer: synthesizer,
	}
}

// ConnState tracks per-connection bookkeeping: sessions the router created
// implicitly on this connection, so they can be terminated when the
// connection goes away instead of waiting for the idle sweep.
type ConnState struct {
	mu      sync.Mutex
	created map[string]struct{}
}

func NewConnState() *ConnState {
	return &ConnState{created: make(map[string]struct{})}
}

func (c *ConnState) track(sessionID string) {
	c.mu.Lock()
	c.created[sessionID] = struct{}{}
	c.mu.Unlock()
}

func (c *ConnState) drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.created))
	for id := range c.created {
		ids = append(ids, id)
	}
	c.created = make(map[string]struct{})
	return ids
}

// ServeConn processes messages from one connection strictly in arrival
// order until the transport breaks. Concurrent connections are independent:
// each runs on its own goroutine, so a slow OS call here never stalls
// another connection's loop.
func (r *Router) ServeConn(ctx context.Context, conn *websocket.Conn) {
	state := NewConnState()
	defer r.releaseConn(state)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			r.logger.Printf("connection closed err=%v", err)
			return
		}
		resp := r.HandleMessage(ctx, raw, state)
		if err := conn.WriteJSON(resp); err != nil {
			r.logger.Printf("connection write failed err=%v", err)
			return
		}
	}
}

// releaseConn terminates every session this connection created implicitly.
func (r *Router) releaseConn(state *ConnState) {
	for _, id := range state.drain() {
		r.sessions.Terminate(id)
	}
}

// HandleMessage processes one inbound envelope and always produces a
// response. Content errors are reported on the live connection; nothing here
// propagates.
func (r *Router) HandleMessage(ctx context.Context, raw []byte, state *ConnState) (resp protocol.Response) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return protocol.NewError(protocol.ErrCodeMalformedMessage, err.Error(), "")
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("message handling panic type=%s panic=%v", env.Type, rec)
			resp = protocol.NewError(protocol.ErrCodeMessageHandlingError, "internal error handling message", env.SessionID)
		}
	}()

	sessionID := env.SessionID
	if sessionID != "" {
		r.sessions.Touch(sessionID)
	} else if env.CarriesContent() || env.Type == protocol.MessageTypeHeartbeat {
		sessionID = r.sessions.Create("")
		state.track(sessionID)
	}

	switch env.Type {
	case protocol.MessageTypeHeartbeat:
		return protocol.NewHeartbeat(sessionID)
	case protocol.MessageTypeText:
		return r.handleText(ctx, env, sessionID)
	case protocol.MessageTypeAudio:
		return r.handleAudio(ctx, env, sessionID)
	case protocol.MessageTypeCommand:
		return r.handleCommand(ctx, env, sessionID)
	default:
		return protocol.NewError(protocol.ErrCodeUnknownMessageType,
			"unknown message type: "+string(env.Type), sessionID)
	}
}

func (r *Router) handleText(ctx context.Context, env protocol.Envelope, sessionID string) protocol.Response {
	text := strings.TrimSpace(env.Text)
	if text == "" {
		return protocol.NewError(protocol.ErrCodeEmptyText, "text content is empty", sessionID)
	}
	return r.resolveAndDispatch(ctx, text, sessionID, nil)
}

func (r *Router) handleAudio(ctx context.Context, env protocol.Envelope, sessionID string) protocol.Response {
	payload, err := base64.StdEncoding.DecodeString(env.AudioData)
	if err != nil {
		// The payload may already be plain bytes; let the transcriber decide.
		payload = []byte(env.AudioData)
	}

	text := ""
	if r.transcriber != nil && len(payload) > 0 {
		sampleRate := env.SampleRate
		if sampleRate <= 0 {
			sampleRate = 16000
		}
		transcript, err := r.transcriber.Transcribe(ctx, payload, sampleRate)
		if err != nil {
			r.logger.Printf("transcription failed session_id=%s err=%v", sessionID, err)
		} else {
			text = strings.TrimSpace(transcript)
		}
	}
	if text == "" {
		// Recognition failure is a user-facing outcome, not a protocol error.
		return protocol.NewResult(sessionID, false, "speech recognition failed, please try again", nil)
	}

	return r.resolveAndDispatch(ctx, text, sessionID, map[string]any{"transcription": text})
}

func (r *Router) handleCommand(ctx context.Context, env protocol.Envelope, sessionID string) protocol.Response {
	in := intent.Intent{
		// Left unparsed on purpose: an unknown category must surface as an
		// "unknown action" result, never be coerced to a neighboring one.
		Category:   intent.Category(env.Category),
		Action:     env.Action,
		Parameters: env.Parameters,
		Confidence: 1.0,
	}
	return r.dispatchIntent(ctx, in, sessionID, nil)
}

func (r *Router) resolveAndDispatch(ctx context.Context, text, sessionID string, extra map[string]any) protocol.Response {
	if r.resolver == nil {
		return protocol.NewResult(sessionID, false, "no intent resolver configured", extra)
	}
	in, err := r.resolver.Resolve(ctx, text)
	if err != nil {
		r.logger.Printf("intent resolution failed session_id=%s err=%v", sessionID, err)
		return protocol.NewResult(sessionID, false, "sorry, I could not understand that", extra)
	}
	return r.dispatchIntent(ctx, in, sessionID, extra)
}

func (r *Router) dispatchIntent(ctx context.Context, in intent.Intent, sessionID string, extra map[string]any) protocol.Response {
	res := r.dispatcher.Dispatch(ctx, in, sessionID)

	data := map[string]any{
		"intent": map[string]any{
			"category":   in.Category,
			"action":     in.Action,
			"confidence": in.Confidence,
		},
		"duration_ms": res.Duration.Milliseconds(),
	}
	for k, v := range extra {
		data[k] = v
	}
	if res.Output != "" {
		data["output"] = res.Output
	}
	if res.FailureDetail != "" {
		data["failure_detail"] = res.FailureDetail
	}

	resp := protocol.NewResult(sessionID, res.Succeeded, res.Message, data)
	resp.AudioReply = r.speak(ctx, res)
	return resp
}

// speak renders the optional spoken reply. Synthesis problems are logged and
// swallowed; the textual response stands on its own.
func (r *Router) speak(ctx context.Context, res control.Result) string {
	if r.synthesizer == nil || res.Message == "" {
		return ""
	}
	audio, err := r.synthesizer.Synthesize(ctx, res.Message)
	if err != nil {
		r.logger.Printf("speech synthesis failed err=%v", err)
		return ""
	}
	if len(audio) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}
