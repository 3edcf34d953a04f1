package websocket

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Full board snapshot, sent on connect and after every change
	MessageTypeState MessageType = "state"

	// A single relay changed (REST control or input edge)
	MessageTypeRelayChanged MessageType = "relay_changed"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// RelayChangedData describes one relay transition.
type RelayChangedData struct {
	Relay  string `json:"relay"`
	State  string `json:"state"`
	Source string `json:"source"` // "api" or "key"
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewStateMessage(state interface{}) Message {
	return NewMessage(MessageTypeState, state)
}

func NewRelayChangedMessage(relay, state, source string) Message {
	return NewMessage(MessageTypeRelayChanged, RelayChangedData{
		Relay:  relay,
		State:  state,
		Source: source,
	})
}

func NewSystemStatusMessage(status interface{}) Message {
	return NewMessage(MessageTypeSystemStatus, status)
}
