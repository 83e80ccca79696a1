// Package protocol defines the JSON envelopes exchanged over the duplex
// connection. Every inbound message is an Envelope; every outbound message is
// a Response of type "response", "error" or "heartbeat".
package protocol

type MessageType string

const (
	MessageTypeAudio     MessageType = "audio"
	MessageTypeText      MessageType = "text"
	MessageTypeCommand   MessageType = "command"
	MessageTypeHeartbeat MessageType = "heartbeat"
	MessageTypeResponse  MessageType = "response"
	MessageTypeError     MessageType = "error"
)

const (
	ErrCodeMalformedMessage     = "MALFORMED_MESSAGE"
	ErrCodeUnknownMessageType   = "UNKNOWN_MESSAGE_TYPE"
	ErrCodeEmptyText            = "EMPTY_TEXT"
	ErrCodeMessageHandlingError = "MESSAGE_HANDLING_ERROR"
)

// Envelope is one inbound request. Which fields are meaningful depends on
// Type: Text for "text", AudioData/SampleRate for "audio",
// Category/Action/Parameters for "command".
type Envelope struct {
	Type       MessageType    `json:"type"`
	SessionID  string         `json:"session_id,omitempty"`
	Text       string         `json:"text,omitempty"`
	AudioData  string         `json:"audio_data,omitempty"`
	SampleRate int            `json:"sample_rate,omitempty"`
	Category   string         `json:"category,omitempty"`
	Action     string         `json:"action,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// CarriesContent reports whether the message type triggers session creation
// when no session_id is supplied.
func (e Envelope) CarriesContent() bool {
	switch e.Type {
	case MessageTypeAudio, MessageTypeText, MessageTypeCommand:
		return true
	default:
		return false
	}
}

// Response is one outbound message.
type Response struct {
	Type         MessageType    `json:"type"`
	SessionID    string         `json:"session_id,omitempty"`
	Succeeded    bool           `json:"succeeded"`
	Message      string         `json:"message,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	AudioReply   string         `json:"audio_reply,omitempty"`
	Status       string         `json:"status,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

func NewError(code, message, sessionID string) Response {
	return Response{
		Type:         MessageTypeError,
		SessionID:    sessionID,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func NewHeartbeat(sessionID string) Response {
	return Response{
		Type:      MessageTypeHeartbeat,
		SessionID: sessionID,
		Succeeded: true,
		Status:    "alive",
	}
}

func NewResult(sessionID string, succeeded bool, message string, data map[string]any) Response {
	return Response{
		Type:      MessageTypeResponse,
		SessionID: sessionID,
		Succeeded: succeeded,
		Message:   message,
		Data:      data,
	}
}
